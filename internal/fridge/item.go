// Package fridge turns fridge inventory into assistant prompts and local
// notifications, and provides the inventory stores that feed it.
package fridge

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the layout of Item.ExpiryDate.
const DateLayout = "2006-01-02"

// ExpiringWindow is the number of days ahead an item counts as expiring.
const ExpiringWindow = 3

// Item is one entry of the fridge inventory.
type Item struct {
	Name       string `yaml:"name" json:"name"`
	Category   string `yaml:"category" json:"category"`
	ExpiryDate string `yaml:"expiry_date,omitempty" json:"expiry_date,omitempty"`
	Quantity   int    `yaml:"quantity,omitempty" json:"quantity,omitempty"`
}

// Snapshot is the inventory as read at one point in time. The bridge only
// reads it.
type Snapshot []Item

// Names returns the item names in order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for _, it := range s {
		names = append(names, it.Name)
	}
	return names
}

// CategoryOf returns the item's category, "other" when blank.
func CategoryOf(it Item) string {
	c := strings.TrimSpace(it.Category)
	if c == "" {
		return "other"
	}
	return c
}

// ParseExpiry parses the item's expiry date in loc.
func ParseExpiry(it Item, loc *time.Location) (time.Time, bool) {
	if strings.TrimSpace(it.ExpiryDate) == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(it.ExpiryDate), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysUntilExpiry counts calendar days from now to the item's expiry date in
// now's location. Items without a parseable date report false.
func DaysUntilExpiry(it Item, now time.Time) (int, bool) {
	exp, ok := ParseExpiry(it, now.Location())
	if !ok {
		return 0, false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return int(math.Round(exp.Sub(today).Hours() / 24)), true
}

// ExpiringItems returns the items expiring within the next ExpiringWindow
// days. Items expiring today or already expired are not included.
func ExpiringItems(items []Item, now time.Time) []Item {
	var out []Item
	for _, it := range items {
		days, ok := DaysUntilExpiry(it, now)
		if ok && days > 0 && days <= ExpiringWindow {
			out = append(out, it)
		}
	}
	return out
}

type categoryCount struct {
	name  string
	count int
}

// countCategories counts items per category in first-appearance order.
func countCategories(items []Item) []categoryCount {
	index := make(map[string]int)
	var out []categoryCount
	for _, it := range items {
		c := CategoryOf(it)
		i, ok := index[c]
		if !ok {
			index[c] = len(out)
			out = append(out, categoryCount{name: c})
			i = len(out) - 1
		}
		out[i].count++
	}
	return out
}

func nonBlank(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func itemNames(items []Item) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return nonBlank(names)
}
