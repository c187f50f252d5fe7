// Package reply provides the reply sources the assistant talks to: a canned
// offline mock and a Gemini-backed source.
package reply

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fridgechat/internal/conversation"
	"fridgechat/internal/logging"
	"fridgechat/internal/usage"
)

// ErrInjected is returned by Mock when a failure was requested.
var ErrInjected = errors.New("injected reply failure")

// DefaultMockLatency mimics a backend round trip.
const DefaultMockLatency = 800 * time.Millisecond

type cannedReply struct {
	keywords []string
	message  conversation.Message
}

// Mock answers from a table of canned cooking replies matched by keyword.
// Latency and failures are controllable for tests and demos.
type Mock struct {
	mu       sync.Mutex
	latency  time.Duration
	failNext int
	err      error
	calls    []string
}

// NewMock returns a mock with the given simulated latency.
func NewMock(latency time.Duration) *Mock {
	return &Mock{latency: latency}
}

// SetLatency changes the simulated latency.
func (m *Mock) SetLatency(d time.Duration) {
	m.mu.Lock()
	m.latency = d
	m.mu.Unlock()
}

// FailNext makes the next n replies fail with err (ErrInjected when nil).
func (m *Mock) FailNext(n int, err error) {
	if err == nil {
		err = ErrInjected
	}
	m.mu.Lock()
	m.failNext = n
	m.err = err
	m.mu.Unlock()
}

// Calls returns the texts the mock was asked to answer.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Reply implements conversation.ReplySource.
func (m *Mock) Reply(ctx context.Context, history []conversation.Message, text string) (conversation.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	latency := m.latency
	var err error
	if m.failNext > 0 {
		m.failNext--
		err = m.err
	}
	m.mu.Unlock()

	if latency > 0 {
		t := time.NewTimer(latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return conversation.Message{}, ctx.Err()
		}
	}
	if err != nil {
		return conversation.Message{}, err
	}

	msg := match(text)
	usage.Record(ctx, "canned", "mock", usage.EstimateTokens(text), usage.EstimateTokens(msg.Text))
	logging.Reply("mock reply for %q (history=%d)", truncate(text, 40), len(history))
	return msg, nil
}

func match(text string) conversation.Message {
	lower := strings.ToLower(text)
	for _, c := range canned {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.message.Clone()
			}
		}
	}
	return fallback.Clone()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

var canned = []cannedReply{
	{
		keywords: []string{"store", "storing", "storage", "last longer"},
		message: conversation.Message{
			Text: "Storage makes a big difference to how long food lasts.\n\n" +
				"Keep dairy on a middle shelf rather than in the door, wrap herbs in a damp towel, and store leftovers in airtight containers.",
			Suggestions: []string{"How long do leftovers keep?", "What shouldn't go in the fridge?"},
		},
	},
	{
		keywords: []string{"shopping", "buy", "grocer"},
		message: conversation.Message{
			Text: "Here's a shopping list built around what you already have.\n\n" +
				"- Fresh vegetables for the week\n- A protein you're low on\n- Whole grains such as rice or oats\n\n" +
				"Check your pantry before you go so you don't double up.",
			Suggestions: []string{"Make it budget friendly", "Add snacks"},
		},
	},
	{
		keywords: []string{"breakfast", "morning"},
		message: conversation.Message{
			Text: "Here are a few quick breakfast ideas that use what most fridges have on hand.\n\n" +
				"**Spinach and feta omelette**: whisk two eggs, fold in a handful of spinach and crumbled feta, and cook for 4 minutes.\n\n" +
				"**Overnight oats**: mix oats with yogurt and milk the night before, then top with fruit in the morning.",
			Suggestions: []string{"How do I make the omelette fluffier?", "Something sweet instead?", "High-protein options"},
			Cards: []conversation.Card{
				{Title: "Protein boost", Content: "Two eggs give you about 12g of protein.", Category: conversation.CategoryNutrition, Priority: conversation.PriorityMedium},
			},
		},
	},
	{
		keywords: []string{"expir", "use them up", "go bad", "analy"},
		message: conversation.Message{
			Text: "Let's rescue the items that are about to expire.\n\n" +
				"Dairy close to its date works well in sauces, pancakes and smoothies. Leafy greens can be wilted into pasta or blended into pesto.\n\n" +
				"Anything you can't use in the next day can usually be frozen. Label it with today's date first.",
			Suggestions: []string{"Give me a recipe for them", "How do I freeze dairy?", "Make a shopping list"},
			Cards: []conversation.Card{
				{Title: "Use first", Content: "Cook the items expiring tomorrow today.", Category: conversation.CategoryHealth, Priority: conversation.PriorityHigh},
				{Title: "Freezer tip", Content: "Freeze greens flat in bags so they thaw fast.", Category: conversation.CategoryGeneral, Priority: conversation.PriorityLow},
			},
		},
	},
	{
		keywords: []string{"cook with", "recipe", "dinner", "lunch"},
		message: conversation.Message{
			Text: "Here's a simple one-pan dish you can make with those ingredients.\n\n" +
				"1. Sauté garlic and onion in olive oil.\n2. Add your vegetables and cook until tender.\n3. Stir in eggs or cheese and season to taste.\n\n" +
				"It takes about 20 minutes and serves two.",
			Suggestions: []string{"Make it vegetarian", "What can I serve with it?", "Something faster"},
			Cards: []conversation.Card{
				{Title: "One-pan skillet", Content: "Ready in 20 minutes.", Category: conversation.CategoryRecipe, Emoji: "🍳"},
			},
		},
	},
	{
		keywords: []string{"nutrition", "balanced", "healthy", "protein"},
		message: conversation.Message{
			Text: "Your fridge covers the basics, but a balanced week needs a bit more variety.\n\n" +
				"Aim for vegetables at every meal, a protein source at lunch and dinner, and whole grains for steady energy.",
			Suggestions: []string{"What vegetables should I add?", "Plan my meals for the week"},
			Cards: []conversation.Card{
				{Title: "Balance check", Content: "Vegetables look light this week.", Category: conversation.CategoryNutrition, Priority: conversation.PriorityMedium},
				{Title: "Keep going", Content: "Small swaps add up.", Category: conversation.CategoryMotivation},
			},
		},
	},
}

var fallback = conversation.Message{
	Text:        "I'm your cooking assistant. Ask me for recipe ideas, help using up what's in your fridge, or storage and nutrition tips.",
	Suggestions: []string{"Breakfast ideas", "What can I cook for dinner?", "Analyze my fridge"},
}
