// Package conversation holds the assistant conversation: the message log,
// turn-taking flags and the reveal controller that streams replies in.
// One Session is shared by every presentation surface; all mutation goes
// through its methods.
package conversation

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Priority is the presentational severity of a card.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// CardCategory drives the visual treatment of a card. Values outside the
// declared set are legal and render with the general treatment.
type CardCategory string

const (
	CategoryNutrition  CardCategory = "nutrition"
	CategoryHealth     CardCategory = "health"
	CategoryRecipe     CardCategory = "recipe"
	CategoryMotivation CardCategory = "motivation"
	CategoryGeneral    CardCategory = "general"
)

// Card is a structured attachment on an assistant message.
type Card struct {
	Title    string       `json:"title"`
	Content  string       `json:"content"`
	Emoji    string       `json:"emoji,omitempty"`
	Priority Priority     `json:"priority,omitempty"`
	Category CardCategory `json:"category,omitempty"`
}

// Message is one conversation entry. A message is never edited after it
// enters a session.
type Message struct {
	ID          int       `json:"id"`
	Role        Role      `json:"role"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Cards       []Card    `json:"cards,omitempty"`
	IsProactive bool      `json:"is_proactive,omitempty"`
}

// Clone returns a deep copy.
func (m Message) Clone() Message {
	out := m
	if m.Suggestions != nil {
		out.Suggestions = append([]string(nil), m.Suggestions...)
	}
	if m.Cards != nil {
		out.Cards = append([]Card(nil), m.Cards...)
	}
	return out
}

// IsAssistant reports whether the assistant authored the message.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}
