package fridge

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiringNotification(t *testing.T) {
	t.Run("high when something expires tomorrow", func(t *testing.T) {
		items := ExpiringItems(sampleFridge(), today)
		n := ExpiringNotification(items, today)
		assert.Equal(t, fmt.Sprintf("expiring-%d", today.UnixMilli()), n.ID)
		assert.Equal(t, TypeExpiring, n.Type)
		assert.Equal(t, UrgencyHigh, n.Urgency)
		assert.Equal(t, "2 items expiring soon", n.Title)
		assert.Contains(t, n.Message, "Milk and Spinach")
		assert.Equal(t, today, n.CreatedAt)
		assert.Equal(t, items, n.Data)
	})

	t.Run("medium otherwise", func(t *testing.T) {
		n := ExpiringNotification([]Item{{Name: "Milk", ExpiryDate: "2026-10-22"}}, today)
		assert.Equal(t, UrgencyMedium, n.Urgency)
		assert.Equal(t, "1 item expiring soon", n.Title)
	})

	t.Run("low when empty", func(t *testing.T) {
		n := ExpiringNotification(nil, today)
		assert.Equal(t, UrgencyLow, n.Urgency)
		assert.NotEmpty(t, n.Message)
	})
}

func TestRecipeNotification(t *testing.T) {
	r := Recipe{Name: "Spinach omelette", CookTime: 15, Ingredients: []string{"eggs", "spinach"}}
	n := RecipeNotification(r, today)
	assert.Equal(t, fmt.Sprintf("recipe-%d", today.UnixMilli()), n.ID)
	assert.Equal(t, "Try Spinach omelette tonight, ready in 15 minutes.", n.Message)
	assert.Equal(t, UrgencyLow, n.Urgency)
	assert.Equal(t, r, n.Data)

	assert.Contains(t, RecipeNotification(Recipe{}, today).Message, "a new recipe")
}

func TestLowStockNotification(t *testing.T) {
	n := LowStockNotification("dairy", today)
	assert.Equal(t, fmt.Sprintf("low-stock-%d", today.UnixMilli()), n.ID)
	assert.Contains(t, n.Message, "dairy")
	assert.Equal(t, UrgencyMedium, n.Urgency)
	assert.Contains(t, LowStockNotification("", today).Message, "other")
}

func TestUrgencyRank(t *testing.T) {
	assert.Greater(t, UrgencyHigh.Rank(), UrgencyMedium.Rank())
	assert.Greater(t, UrgencyMedium.Rank(), UrgencyLow.Rank())
	assert.Zero(t, Urgency("urgent-ish").Rank())
}

func TestBridgeUsesItsClock(t *testing.T) {
	b := NewBridge(func() time.Time { return today })
	assert.Equal(t, today, b.Now())
	assert.Equal(t, AnalysisPrompt(sampleFridge(), today), b.Analysis(sampleFridge()))
	assert.Equal(t, StoragePrompt(ExpiringItems(sampleFridge(), today)), b.Storage(sampleFridge()))
	assert.Equal(t, RecipePrompt([]string{"a"}), b.Recipe([]string{"a"}))
	assert.Equal(t, NutritionPrompt(sampleFridge()), b.Nutrition(sampleFridge()))
	assert.Equal(t, ShoppingListPrompt(nil, []string{"x"}), b.ShoppingList(nil, []string{"x"}))
	assert.Equal(t, today, b.RecipeNotification(Recipe{Name: "Soup"}).CreatedAt)
	assert.Equal(t, today, b.LowStockNotification("dairy").CreatedAt)
	assert.Equal(t, today, b.ExpiringNotification(nil).CreatedAt)
}

func TestBridgeNotifications(t *testing.T) {
	b := NewBridge(func() time.Time { return today })
	items := []Item{
		{Name: "Milk", Category: "dairy", ExpiryDate: "2026-10-20", Quantity: 2},
		{Name: "Apples", Category: "fruit", Quantity: 1},
		{Name: "Carrots", Category: "vegetables", Quantity: 5},
	}

	got := b.Notifications(items)
	require.Len(t, got, 1, "low-stock alerts are off by default")
	assert.Equal(t, TypeExpiring, got[0].Type)

	b.LowStockThreshold = 1
	got = b.Notifications(items)
	require.Len(t, got, 2)
	assert.Equal(t, TypeExpiring, got[0].Type)
	assert.Equal(t, TypeLowStock, got[1].Type)
	assert.Equal(t, "fruit", got[1].Data)

	b.LowStockThreshold = 0
	got = b.Notifications(items)
	require.Len(t, got, 1)
	assert.Equal(t, TypeExpiring, got[0].Type)

	assert.Empty(t, b.Notifications(nil))
}

func TestBridgeSuggestions(t *testing.T) {
	b := NewBridge(func() time.Time { return today })

	s := b.Suggestions(sampleFridge())
	require.Len(t, s, 3)
	assert.Contains(t, s[1], "Milk and Spinach")
	assert.Contains(t, s[2], "store")

	s = b.Suggestions(nil)
	require.Len(t, s, 2)
	for _, p := range s {
		assert.NotEmpty(t, p)
	}
}

func TestBridgePrompt(t *testing.T) {
	b := NewBridge(func() time.Time { return today })
	items := sampleFridge()

	for _, kind := range PromptKinds {
		got, err := b.Prompt(kind, items, []string{"bread"})
		require.NoError(t, err, kind)
		assert.NotEmpty(t, got, kind)
	}

	recipe, err := b.Prompt(PromptRecipe, items, nil)
	require.NoError(t, err)
	assert.Equal(t, RecipePrompt([]string{"Milk", "Spinach"}), recipe)

	shopping, err := b.Prompt(PromptShopping, items, []string{"bread"})
	require.NoError(t, err)
	assert.Contains(t, shopping, "I need to buy bread")

	_, err = b.Prompt("dessert", items, nil)
	assert.Error(t, err)

	kind, err := ParsePromptKind(" Storage ")
	require.NoError(t, err)
	assert.Equal(t, PromptStorage, kind)
	_, err = ParsePromptKind("")
	assert.Error(t, err)
}
