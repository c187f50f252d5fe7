// Package ux keeps the user's notification preferences.
//
// Preferences live in a small JSON file next to the config and are consulted
// only when fridge notifications are turned into on-screen alerts or
// proactive assistant messages. The conversation core never reads them.
package ux
