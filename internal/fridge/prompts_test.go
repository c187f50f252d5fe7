package fridge

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var today = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func sampleFridge() []Item {
	return []Item{
		{Name: "Milk", Category: "dairy", ExpiryDate: "2026-10-21"},
		{Name: "Spinach", Category: "vegetables", ExpiryDate: "2026-10-20"},
		{Name: "Cheddar", Category: "dairy", ExpiryDate: "2026-11-30"},
		{Name: "Eggs", Category: "protein"},
		{Name: "Yogurt", Category: "dairy", ExpiryDate: "2026-10-19"},
		{Name: "Ham", Category: "", ExpiryDate: "not a date"},
	}
}

func TestDaysUntilExpiry(t *testing.T) {
	tests := []struct {
		name   string
		expiry string
		days   int
		ok     bool
	}{
		{"tomorrow", "2026-10-20", 1, true},
		{"today", "2026-10-19", 0, true},
		{"past", "2026-10-10", -9, true},
		{"across month", "2026-11-02", 14, true},
		{"blank", "", 0, false},
		{"garbage", "soon", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := DaysUntilExpiry(Item{Name: "x", ExpiryDate: tt.expiry}, today)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.days, days)
		})
	}
}

func TestDaysUntilExpiryUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 23:00 UTC on the 19th is already the 20th in UTC+10.
	now := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC).In(loc)
	days, ok := DaysUntilExpiry(Item{ExpiryDate: "2026-10-21"}, now)
	assert.True(t, ok)
	assert.Equal(t, 1, days)
}

func TestExpiringItems(t *testing.T) {
	got := Snapshot(ExpiringItems(sampleFridge(), today)).Names()
	if diff := cmp.Diff([]string{"Milk", "Spinach"}, got); diff != "" {
		t.Errorf("ExpiringItems mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, ExpiringItems(nil, today))
}

func TestAnalysisPrompt(t *testing.T) {
	t.Run("empty fridge is all clear", func(t *testing.T) {
		p := AnalysisPrompt(nil, today)
		assert.NotEmpty(t, p)
		assert.Contains(t, p, "0 items")
		assert.Contains(t, p, "everything looks fresh")
	})

	t.Run("names expiring item", func(t *testing.T) {
		items := []Item{
			{Name: "Basil", Category: "herbs", ExpiryDate: "2026-10-21"},
			{Name: "Rice", Category: "grains"},
		}
		p := AnalysisPrompt(items, today)
		assert.Contains(t, p, "Basil")
		assert.Contains(t, p, "2 items")
		assert.Contains(t, p, "2 categories")
		assert.NotContains(t, p, "Rice")
	})

	t.Run("counts blank category as other", func(t *testing.T) {
		p := AnalysisPrompt(sampleFridge(), today)
		assert.Contains(t, p, "6 items")
		assert.Contains(t, p, "4 categories")
		assert.Contains(t, p, "Milk, Spinach")
	})
}

func TestRecipePrompt(t *testing.T) {
	assert.Equal(t, "What can I cook with eggs, spinach and feta? Please suggest a few recipes that use these ingredients.",
		RecipePrompt([]string{"eggs", "spinach", "feta"}))
	assert.Contains(t, RecipePrompt([]string{"rice"}), "cook with rice?")
	assert.NotEmpty(t, RecipePrompt(nil))
	assert.Equal(t, RecipePrompt(nil), RecipePrompt([]string{"  ", ""}))
}

func TestNutritionPrompt(t *testing.T) {
	p := NutritionPrompt(sampleFridge())
	assert.Contains(t, p, "dairy: 3, vegetables: 1, protein: 1, other: 1")
	assert.NotEmpty(t, NutritionPrompt(nil))
}

func TestStoragePrompt(t *testing.T) {
	generic := StoragePrompt(nil)
	assert.Contains(t, generic, "general tips")

	p := StoragePrompt([]Item{{Name: "Milk"}})
	assert.Contains(t, p, "Milk")
	assert.NotEqual(t, generic, p)
}

func TestShoppingListPrompt(t *testing.T) {
	p := ShoppingListPrompt(sampleFridge(), nil)
	assert.Contains(t, p, "dairy, vegetables, protein, other")
	assert.NotContains(t, p, "need to buy")

	p = ShoppingListPrompt(sampleFridge(), []string{"flour", "butter"})
	assert.Contains(t, p, "I need to buy flour and butter.")

	assert.NotEmpty(t, ShoppingListPrompt(nil, nil))
}

func TestPromptsAreTotal(t *testing.T) {
	inputs := [][]Item{nil, {}, {{}}, {{Name: " ", Category: " ", ExpiryDate: "2026-10-20"}}, sampleFridge()}
	for _, items := range inputs {
		assert.NotEmpty(t, AnalysisPrompt(items, today))
		assert.NotEmpty(t, RecipePrompt(Snapshot(items).Names()))
		assert.NotEmpty(t, NutritionPrompt(items))
		assert.NotEmpty(t, StoragePrompt(items))
		assert.NotEmpty(t, ShoppingListPrompt(items, Snapshot(items).Names()))
	}
}
