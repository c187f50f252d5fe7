package fridge

import (
	"fmt"
	"strings"
	"time"
)

// AnalysisPrompt summarizes the fridge's freshness and asks for advice.
func AnalysisPrompt(items []Item, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I have %d %s in my fridge across %d %s.",
		len(items), plural(len(items), "item", "items"),
		len(countCategories(items)), plural(len(countCategories(items)), "category", "categories"))

	if names := itemNames(ExpiringItems(items, now)); len(names) > 0 {
		fmt.Fprintf(&b, " These are expiring in the next %d days: %s.", ExpiringWindow, strings.Join(names, ", "))
		b.WriteString(" Can you analyze my fridge and tell me how to use them up before they go bad?")
	} else {
		b.WriteString(" Nothing is about to expire, so everything looks fresh.")
		b.WriteString(" Can you analyze my fridge and suggest how to keep it that way?")
	}
	return b.String()
}

// RecipePrompt asks what can be cooked with the given ingredients.
func RecipePrompt(ingredients []string) string {
	names := nonBlank(ingredients)
	if len(names) == 0 {
		return "What can I cook with what I have in my kitchen right now? Please suggest a few simple recipes."
	}
	return fmt.Sprintf("What can I cook with %s? Please suggest a few recipes that use these ingredients.", joinAnd(names))
}

// NutritionPrompt asks for a nutrition review of the fridge by category.
func NutritionPrompt(items []Item) string {
	counts := countCategories(items)
	if len(counts) == 0 {
		return "My fridge is empty right now. What should I stock up on for a balanced diet?"
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", c.name, c.count))
	}
	return fmt.Sprintf("Here is what my fridge contains by category (%s). How balanced is this nutritionally, and what am I missing?",
		strings.Join(parts, ", "))
}

// StoragePrompt asks how to store the at-risk items, or for general storage
// tips when there are none.
func StoragePrompt(expiring []Item) string {
	names := itemNames(expiring)
	if len(names) == 0 {
		return "Can you give me some general tips for storing food so it stays fresh longer?"
	}
	return fmt.Sprintf("How should I store %s so they last longer? They are about to expire.", joinAnd(names))
}

// ShoppingListPrompt asks for a shopping list based on the current
// categories, naming missing ingredients when there are any.
func ShoppingListPrompt(current []Item, missing []string) string {
	var b strings.Builder
	counts := countCategories(current)
	if len(counts) == 0 {
		b.WriteString("My fridge is empty.")
	} else {
		cats := make([]string, 0, len(counts))
		for _, c := range counts {
			cats = append(cats, c.name)
		}
		fmt.Fprintf(&b, "My fridge currently has %s.", strings.Join(cats, ", "))
	}
	if need := nonBlank(missing); len(need) > 0 {
		fmt.Fprintf(&b, " I need to buy %s.", joinAnd(need))
	}
	b.WriteString(" Can you put together a shopping list for the week?")
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func joinAnd(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
