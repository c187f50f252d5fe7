package reply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fridgechat/internal/conversation"
	"fridgechat/internal/logging"
	"fridgechat/internal/usage"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// maxHistory bounds how many earlier messages are sent as context.
const maxHistory = 20

const systemPrompt = `You are a friendly cooking assistant inside a fridge app.
Answer in short paragraphs separated by blank lines.
Respond with a single JSON object:
{"text": string, "suggestions": [string], "cards": [{"title": string, "content": string, "emoji": string, "priority": "low"|"medium"|"high", "category": "nutrition"|"health"|"recipe"|"motivation"|"general"}]}
Offer at most 3 suggestions, each a short follow-up question the user might ask next.`

// generator is the slice of the genai client the source uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini answers with Google's Gemini models.
type Gemini struct {
	models generator
	model  string
}

// NewGemini creates a Gemini reply source.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{models: client.Models, model: model}, nil
}

// Name returns the source name.
func (g *Gemini) Name() string {
	return fmt.Sprintf("genai:%s", g.model)
}

// Reply implements conversation.ReplySource.
func (g *Gemini) Reply(ctx context.Context, history []conversation.Message, text string) (conversation.Message, error) {
	contents := buildContents(history, text)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.7),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return conversation.Message{}, errors.New("GenAI returned an empty response")
	}

	in, out := usage.EstimateTokens(text), usage.EstimateTokens(raw)
	if md := resp.UsageMetadata; md != nil {
		in, out = int(md.PromptTokenCount), int(md.CandidatesTokenCount)
	}
	usage.Record(ctx, g.model, "genai", in, out)

	msg := parseReply(raw)
	logging.Reply("gemini reply: %d chars, %d suggestions, %d cards", len(msg.Text), len(msg.Suggestions), len(msg.Cards))
	return msg, nil
}

// buildContents maps the log to Gemini turns. The last history entry is the
// user turn being answered; when it is missing text is appended instead.
func buildContents(history []conversation.Message, text string) []*genai.Content {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.IsAssistant() {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	n := len(history)
	if n == 0 || history[n-1].Role != conversation.RoleUser || history[n-1].Text != text {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}
	return contents
}

type wireReply struct {
	Text        string              `json:"text"`
	Suggestions []string            `json:"suggestions"`
	Cards       []conversation.Card `json:"cards"`
}

// parseReply decodes the JSON reply. Anything that does not decode is used
// verbatim as the message text.
func parseReply(raw string) conversation.Message {
	resp := strings.TrimSpace(raw)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var parsed wireReply
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil || strings.TrimSpace(parsed.Text) == "" {
		return conversation.Message{Text: strings.TrimSpace(raw)}
	}

	msg := conversation.Message{Text: parsed.Text}
	for _, s := range parsed.Suggestions {
		if s = strings.TrimSpace(s); s != "" {
			msg.Suggestions = append(msg.Suggestions, s)
		}
	}
	for _, c := range parsed.Cards {
		if strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Content) == "" {
			continue
		}
		msg.Cards = append(msg.Cards, c)
	}
	return msg
}
