package ui

import (
	"strings"

	"fridgechat/internal/conversation"

	"github.com/charmbracelet/lipgloss"
)

// Treatment is the visual treatment of a card category.
type Treatment struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Emoji      string
}

var categoryTreatments = map[conversation.CardCategory]Treatment{
	conversation.CategoryNutrition:  {Background: lipgloss.Color("#e8f5e9"), Foreground: lipgloss.Color("#1b5e20"), Emoji: "🥗"},
	conversation.CategoryHealth:     {Background: lipgloss.Color("#fce4ec"), Foreground: lipgloss.Color("#880e4f"), Emoji: "❤️"},
	conversation.CategoryRecipe:     {Background: lipgloss.Color("#fff3e0"), Foreground: lipgloss.Color("#e65100"), Emoji: "🍳"},
	conversation.CategoryMotivation: {Background: lipgloss.Color("#ede7f6"), Foreground: lipgloss.Color("#4527a0"), Emoji: "💪"},
	conversation.CategoryGeneral:    {Background: lipgloss.Color("#e3f2fd"), Foreground: lipgloss.Color("#0d47a1"), Emoji: "💡"},
}

// CategoryTreatment maps a card category to its treatment. Empty and unknown
// categories get the general treatment.
func CategoryTreatment(category conversation.CardCategory) Treatment {
	if t, ok := categoryTreatments[category]; ok {
		return t
	}
	return categoryTreatments[conversation.CategoryGeneral]
}

// PriorityIndicator returns the glyph for a card priority, or "" when the
// priority is unset or unknown.
func PriorityIndicator(priority conversation.Priority) string {
	switch priority {
	case conversation.PriorityHigh:
		return "🔴"
	case conversation.PriorityMedium:
		return "🟡"
	case conversation.PriorityLow:
		return "🟢"
	default:
		return ""
	}
}

// RenderCard renders one card into a box of the given width.
func RenderCard(card conversation.Card, width int) string {
	t := CategoryTreatment(card.Category)
	glyph := t.Emoji
	if card.Emoji != "" {
		glyph = card.Emoji
	}

	header := []string{glyph}
	if title := strings.TrimSpace(card.Title); title != "" {
		header = append(header, lipgloss.NewStyle().Bold(true).Render(title))
	}
	if ind := PriorityIndicator(card.Priority); ind != "" {
		header = append(header, ind)
	}

	box := lipgloss.NewStyle().
		Background(t.Background).
		Foreground(t.Foreground).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Foreground).
		Padding(0, 1)
	if inner := width - 2*PanelBorderWidth; inner > 0 {
		box = box.Width(inner)
	}

	body := strings.Join(header, " ")
	if content := strings.TrimSpace(card.Content); content != "" {
		body += "\n" + content
	}
	return box.Render(body)
}

// RenderCards renders cards one under the other. No cards render as "".
func RenderCards(cards []conversation.Card, width int) string {
	if len(cards) == 0 {
		return ""
	}
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, RenderCard(c, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}
