package fridge

import (
	"fmt"
	"strings"
	"time"
)

// PromptKind names one of the bridge prompts.
type PromptKind string

const (
	PromptAnalysis  PromptKind = "analysis"
	PromptRecipe    PromptKind = "recipe"
	PromptNutrition PromptKind = "nutrition"
	PromptStorage   PromptKind = "storage"
	PromptShopping  PromptKind = "shopping"
)

// PromptKinds lists the prompt kinds in menu order.
var PromptKinds = []PromptKind{PromptAnalysis, PromptRecipe, PromptNutrition, PromptStorage, PromptShopping}

// ParsePromptKind resolves a prompt kind name, case-insensitively.
func ParsePromptKind(name string) (PromptKind, error) {
	k := PromptKind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range PromptKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown prompt %q", name)
}

// Bridge binds the prompt and notification builders to a clock.
type Bridge struct {
	now func() time.Time
	// LowStockThreshold is the total quantity at or below which a category
	// counts as low. Zero disables low-stock notifications.
	LowStockThreshold int
}

// NewBridge returns a bridge on the wall clock. A nil now uses time.Now.
// Low-stock notifications stay off until LowStockThreshold is set.
func NewBridge(now func() time.Time) *Bridge {
	if now == nil {
		now = time.Now
	}
	return &Bridge{now: now}
}

// Now returns the bridge's current time.
func (b *Bridge) Now() time.Time { return b.now() }

// Expiring returns the items expiring within ExpiringWindow days.
func (b *Bridge) Expiring(items []Item) []Item { return ExpiringItems(items, b.now()) }

// Analysis builds the fridge analysis prompt.
func (b *Bridge) Analysis(items []Item) string { return AnalysisPrompt(items, b.now()) }

// Recipe asks for a recipe using the given ingredients.
func (b *Bridge) Recipe(ingredients []string) string { return RecipePrompt(ingredients) }

// Nutrition asks for a nutrition review of the items.
func (b *Bridge) Nutrition(items []Item) string { return NutritionPrompt(items) }

// Storage asks about the items currently expiring.
func (b *Bridge) Storage(items []Item) string { return StoragePrompt(b.Expiring(items)) }

// ShoppingList asks for a shopping list covering missing items.
func (b *Bridge) ShoppingList(current []Item, missing []string) string {
	return ShoppingListPrompt(current, missing)
}

// ExpiringNotification alerts about the given expiring items.
func (b *Bridge) ExpiringNotification(items []Item) Notification {
	return ExpiringNotification(items, b.now())
}

// RecipeNotification suggests a recipe.
func (b *Bridge) RecipeNotification(r Recipe) Notification {
	return RecipeNotification(r, b.now())
}

// LowStockNotification alerts that a category is running low.
func (b *Bridge) LowStockNotification(category string) Notification {
	return LowStockNotification(category, b.now())
}

// LowStockCategories returns the categories whose total quantity is at or
// below the threshold, in first-appearance order. Items without a quantity
// count as one.
func (b *Bridge) LowStockCategories(items []Item) []string {
	if b.LowStockThreshold <= 0 {
		return nil
	}
	totals := make(map[string]int)
	var order []string
	for _, it := range items {
		c := CategoryOf(it)
		if _, ok := totals[c]; !ok {
			order = append(order, c)
		}
		q := it.Quantity
		if q <= 0 {
			q = 1
		}
		totals[c] += q
	}
	var out []string
	for _, c := range order {
		if totals[c] <= b.LowStockThreshold {
			out = append(out, c)
		}
	}
	return out
}

// Notifications returns every alert the inventory currently warrants: one
// for expiring items when there are any, then one per low category.
func (b *Bridge) Notifications(items []Item) []Notification {
	now := b.now()
	var out []Notification
	if expiring := ExpiringItems(items, now); len(expiring) > 0 {
		out = append(out, ExpiringNotification(expiring, now))
	}
	for _, c := range b.LowStockCategories(items) {
		out = append(out, LowStockNotification(c, now))
	}
	return out
}

// Suggestions returns the bridge prompts offered as chips on proactive
// messages.
func (b *Bridge) Suggestions(items []Item) []string {
	now := b.now()
	out := []string{AnalysisPrompt(items, now)}
	if expiring := ExpiringItems(items, now); len(expiring) > 0 {
		out = append(out, RecipePrompt(itemNames(expiring)), StoragePrompt(expiring))
	} else {
		out = append(out, RecipePrompt(itemNames(items)))
	}
	return out
}

// Prompt builds the prompt of the given kind for the inventory. Recipe
// prompts use the expiring items when there are any and the whole inventory
// otherwise; missing only feeds the shopping list.
func (b *Bridge) Prompt(kind PromptKind, items []Item, missing []string) (string, error) {
	switch kind {
	case PromptAnalysis:
		return b.Analysis(items), nil
	case PromptRecipe:
		if expiring := b.Expiring(items); len(expiring) > 0 {
			return b.Recipe(itemNames(expiring)), nil
		}
		return b.Recipe(itemNames(items)), nil
	case PromptNutrition:
		return b.Nutrition(items), nil
	case PromptStorage:
		return b.Storage(items), nil
	case PromptShopping:
		return b.ShoppingList(items, missing), nil
	default:
		return "", fmt.Errorf("unknown prompt %q", kind)
	}
}
