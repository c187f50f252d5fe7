package chat

import (
	"context"
	"fmt"
	"sync"

	"fridgechat/internal/conversation"
	"fridgechat/internal/fridge"
	"fridgechat/internal/logging"
	"fridgechat/internal/ux"
)

// Announcer turns fridge notifications into proactive assistant messages.
// It runs at startup and whenever the inventory watcher reports a change.
type Announcer struct {
	assistant   *conversation.Assistant
	inventory   fridge.Inventory
	bridge      *fridge.Bridge
	preferences *ux.PreferencesManager

	mu sync.Mutex
	// seen holds the titles already announced so an unchanged fridge does
	// not repeat itself on every save.
	seen map[string]bool
}

// NewAnnouncer creates an announcer. A nil preferences manager allows every
// notification.
func NewAnnouncer(a *conversation.Assistant, inv fridge.Inventory, b *fridge.Bridge, prefs *ux.PreferencesManager) *Announcer {
	return &Announcer{
		assistant:   a,
		inventory:   inv,
		bridge:      b,
		preferences: prefs,
		seen:        make(map[string]bool),
	}
}

// Check reads the inventory and announces every new notification the
// preferences allow. It returns the number of messages announced.
func (an *Announcer) Check(ctx context.Context) (int, error) {
	an.mu.Lock()
	defer an.mu.Unlock()

	items, err := an.inventory.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("read inventory: %w", err)
	}

	notes := an.bridge.Notifications(items)
	if an.preferences != nil {
		if !an.preferences.Get().Proactive {
			return 0, nil
		}
		notes = an.preferences.Filter(notes)
	}

	suggestions := an.bridge.Suggestions(items)
	announced := 0
	current := make(map[string]bool, len(notes))
	for _, n := range notes {
		key := n.Type + "|" + n.Title + "|" + n.Message
		current[key] = true
		if an.seen[key] {
			continue
		}
		an.assistant.Announce(NotificationMessage(n, suggestions))
		announced++
	}
	an.seen = current

	if announced > 0 {
		logging.Bridge("announced %d of %d notifications", announced, len(notes))
	}
	return announced, nil
}

// NotificationMessage renders a notification as an assistant message with
// a card and the given suggestion chips.
func NotificationMessage(n fridge.Notification, suggestions []string) conversation.Message {
	return conversation.Message{
		Role:        conversation.RoleAssistant,
		Text:        "**" + n.Title + "**\n\n" + n.Message,
		Suggestions: append([]string(nil), suggestions...),
		Cards: []conversation.Card{{
			Title:    n.Title,
			Content:  n.Message,
			Priority: priorityOf(n.Urgency),
			Category: categoryOf(n.Type),
		}},
	}
}

func priorityOf(u fridge.Urgency) conversation.Priority {
	switch u {
	case fridge.UrgencyHigh:
		return conversation.PriorityHigh
	case fridge.UrgencyMedium:
		return conversation.PriorityMedium
	default:
		return conversation.PriorityLow
	}
}

func categoryOf(kind string) conversation.CardCategory {
	switch kind {
	case fridge.TypeRecipe:
		return conversation.CategoryRecipe
	case fridge.TypeExpiring:
		return conversation.CategoryHealth
	default:
		return conversation.CategoryGeneral
	}
}
