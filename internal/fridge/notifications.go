package fridge

import (
	"fmt"
	"strings"
	"time"
)

// Urgency grades a notification.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Rank orders urgencies; unknown values rank lowest.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	default:
		return 0
	}
}

// Notification types.
const (
	TypeExpiring = "expiring"
	TypeRecipe   = "recipe"
	TypeLowStock = "low-stock"
)

// Recipe is the payload of a recipe suggestion.
type Recipe struct {
	Name        string   `json:"name"`
	CookTime    int      `json:"cook_time"`
	Ingredients []string `json:"ingredients,omitempty"`
}

// Notification is a locally displayed alert. Data carries what the alert
// was derived from.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Urgency   Urgency   `json:"urgency"`
	CreatedAt time.Time `json:"created_at"`
	Data      any       `json:"data,omitempty"`
}

func notificationID(kind string, now time.Time) string {
	return fmt.Sprintf("%s-%d", kind, now.UnixMilli())
}

// ExpiringNotification alerts about items about to expire.
func ExpiringNotification(items []Item, now time.Time) Notification {
	n := Notification{
		ID:        notificationID(TypeExpiring, now),
		Type:      TypeExpiring,
		CreatedAt: now,
		Data:      append([]Item(nil), items...),
	}

	names := itemNames(items)
	switch len(names) {
	case 0:
		n.Title = "Nothing expiring"
		n.Message = "None of your items are about to expire."
		n.Urgency = UrgencyLow
		return n
	case 1:
		n.Title = "1 item expiring soon"
		n.Message = fmt.Sprintf("%s is about to expire. Use it soon!", names[0])
	default:
		n.Title = fmt.Sprintf("%d items expiring soon", len(names))
		n.Message = fmt.Sprintf("%s are about to expire. Use them soon!", joinAnd(names))
	}

	n.Urgency = UrgencyMedium
	for _, it := range items {
		if days, ok := DaysUntilExpiry(it, now); ok && days <= 1 {
			n.Urgency = UrgencyHigh
			break
		}
	}
	return n
}

// RecipeNotification suggests a recipe.
func RecipeNotification(r Recipe, now time.Time) Notification {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "a new recipe"
	}
	msg := fmt.Sprintf("Try %s tonight", name)
	if r.CookTime > 0 {
		msg += fmt.Sprintf(", ready in %d minutes", r.CookTime)
	}
	return Notification{
		ID:        notificationID(TypeRecipe, now),
		Type:      TypeRecipe,
		Title:     "Recipe suggestion",
		Message:   msg + ".",
		Urgency:   UrgencyLow,
		CreatedAt: now,
		Data:      r,
	}
}

// LowStockNotification warns that a category is running low.
func LowStockNotification(category string, now time.Time) Notification {
	c := strings.TrimSpace(category)
	if c == "" {
		c = "other"
	}
	return Notification{
		ID:        notificationID(TypeLowStock, now),
		Type:      TypeLowStock,
		Title:     "Running low",
		Message:   fmt.Sprintf("You're running low on %s. Add it to your shopping list.", c),
		Urgency:   UrgencyMedium,
		CreatedAt: now,
		Data:      c,
	}
}
