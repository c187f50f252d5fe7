package reply

import (
	"context"
	"errors"
	"testing"
	"time"

	"fridgechat/internal/conversation"
	"fridgechat/internal/usage"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/genai"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, whose view worker starts in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func TestMockMatchesKeywords(t *testing.T) {
	m := NewMock(0)
	ctx := context.Background()

	msg, err := m.Reply(ctx, nil, "Breakfast ideas")
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "breakfast")
	assert.Len(t, msg.Suggestions, 3)
	assert.Contains(t, msg.Text, "\n\n", "canned replies reveal in several segments")

	msg, err = m.Reply(ctx, nil, "What can I cook with eggs and spinach?")
	require.NoError(t, err)
	require.NotEmpty(t, msg.Cards)
	assert.Equal(t, conversation.CategoryRecipe, msg.Cards[0].Category)

	msg, err = m.Reply(ctx, nil, "tell me a joke")
	require.NoError(t, err)
	assert.Equal(t, fallback.Text, msg.Text)

	assert.Equal(t, []string{"Breakfast ideas", "What can I cook with eggs and spinach?", "tell me a joke"}, m.Calls())
}

func TestMockRepliesAreIndependentCopies(t *testing.T) {
	m := NewMock(0)
	a, err := m.Reply(context.Background(), nil, "breakfast")
	require.NoError(t, err)
	a.Suggestions[0] = "changed"

	b, err := m.Reply(context.Background(), nil, "breakfast")
	require.NoError(t, err)
	assert.NotEqual(t, "changed", b.Suggestions[0])
}

func TestMockFailureInjection(t *testing.T) {
	m := NewMock(0)
	m.FailNext(1, nil)

	_, err := m.Reply(context.Background(), nil, "dinner")
	assert.ErrorIs(t, err, ErrInjected)

	_, err = m.Reply(context.Background(), nil, "dinner")
	assert.NoError(t, err)

	boom := errors.New("boom")
	m.FailNext(2, boom)
	for i := 0; i < 2; i++ {
		_, err = m.Reply(context.Background(), nil, "dinner")
		assert.ErrorIs(t, err, boom)
	}
}

func TestMockLatencyHonoursContext(t *testing.T) {
	m := NewMock(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := m.Reply(ctx, nil, "dinner")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	m.SetLatency(5 * time.Millisecond)
	_, err = m.Reply(context.Background(), nil, "dinner")
	assert.NoError(t, err)
}

func TestMockDrivesAssistant(t *testing.T) {
	s := conversation.NewSession()
	defer s.Close()
	m := NewMock(0)
	m.FailNext(1, nil)
	a := conversation.NewAssistant(s, m, conversation.AssistantConfig{})

	err := a.Send(context.Background(), "Breakfast ideas")
	require.Error(t, err)
	last, ok := s.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, conversation.DefaultFailureText, last.Text)
	assert.False(t, s.Typing())
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want conversation.Message
	}{
		{
			name: "json object",
			raw:  `{"text":"Try pancakes.\n\nUse the milk first.","suggestions":["More?"," "],"cards":[{"title":"Tip","content":"Milk expires soon","priority":"high","category":"health"},{}]}`,
			want: conversation.Message{
				Text:        "Try pancakes.\n\nUse the milk first.",
				Suggestions: []string{"More?"},
				Cards: []conversation.Card{
					{Title: "Tip", Content: "Milk expires soon", Priority: conversation.PriorityHigh, Category: conversation.CategoryHealth},
				},
			},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"text\":\"Hello\"}\n```",
			want: conversation.Message{Text: "Hello"},
		},
		{
			name: "plain text falls back",
			raw:  "  Just some text.  ",
			want: conversation.Message{Text: "Just some text."},
		},
		{
			name: "json without text falls back",
			raw:  `{"suggestions":["a"]}`,
			want: conversation.Message{Text: `{"suggestions":["a"]}`},
		},
		{
			name: "unknown category is kept as data",
			raw:  `{"text":"x","cards":[{"title":"T","content":"C","category":"mystery"}]}`,
			want: conversation.Message{Text: "x", Cards: []conversation.Card{{Title: "T", Content: "C", Category: "mystery"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseReply(tt.raw)); diff != "" {
				t.Errorf("parseReply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildContents(t *testing.T) {
	history := []conversation.Message{
		{ID: 1, Role: conversation.RoleAssistant, Text: "Welcome"},
		{ID: 2, Role: conversation.RoleUser, Text: "Dinner?"},
	}

	got := buildContents(history, "Dinner?")
	require.Len(t, got, 2)
	assert.Equal(t, genai.Role(genai.RoleModel), genai.Role(got[0].Role))
	assert.Equal(t, genai.Role(genai.RoleUser), genai.Role(got[1].Role))
	assert.Equal(t, "Dinner?", got[1].Parts[0].Text)

	got = buildContents(nil, "Hi")
	require.Len(t, got, 1)
	assert.Equal(t, "Hi", got[0].Parts[0].Text)

	long := make([]conversation.Message, 30)
	for i := range long {
		long[i] = conversation.Message{ID: i + 1, Role: conversation.RoleUser, Text: "q"}
	}
	assert.Len(t, buildContents(long, "q"), maxHistory)
}

type fakeGenerator struct {
	text   string
	err    error
	config *genai.GenerateContentConfig
	model  string
	usage  *genai.GenerateContentResponseUsageMetadata
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: f.text}}}},
		},
		UsageMetadata: f.usage,
	}, nil
}

func TestGeminiReply(t *testing.T) {
	gen := &fakeGenerator{text: `{"text":"Make soup.","suggestions":["Which soup?"]}`}
	g := &Gemini{models: gen, model: "test-model"}

	msg, err := g.Reply(context.Background(), nil, "Dinner?")
	require.NoError(t, err)
	assert.Equal(t, "Make soup.", msg.Text)
	assert.Equal(t, []string{"Which soup?"}, msg.Suggestions)
	assert.Equal(t, "test-model", gen.model)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	assert.Equal(t, "genai:test-model", g.Name())
}

func TestGeminiErrors(t *testing.T) {
	boom := errors.New("quota")
	g := &Gemini{models: &fakeGenerator{err: boom}, model: DefaultGeminiModel}
	_, err := g.Reply(context.Background(), nil, "Dinner?")
	assert.ErrorIs(t, err, boom)

	g = &Gemini{models: &fakeGenerator{text: "   "}, model: DefaultGeminiModel}
	_, err = g.Reply(context.Background(), nil, "Dinner?")
	assert.Error(t, err)

	_, err = NewGemini(context.Background(), "", "")
	assert.Error(t, err)
}

func TestRepliesRecordUsage(t *testing.T) {
	tracker := usage.NewTracker(usage.DefaultPath(t.TempDir()))
	defer tracker.Close()
	ctx := usage.WithSession(usage.NewContext(context.Background(), tracker), "sess-1")

	_, err := NewMock(0).Reply(ctx, nil, "Breakfast ideas")
	require.NoError(t, err)

	gen := &fakeGenerator{
		text:  `{"text":"Make soup."}`,
		usage: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 40, CandidatesTokenCount: 12},
	}
	_, err = (&Gemini{models: gen, model: "test-model"}).Reply(ctx, nil, "Dinner?")
	require.NoError(t, err)

	stats := tracker.Stats()
	assert.Equal(t, int64(2), stats.Total.Calls)
	assert.Equal(t, int64(2), stats.BySession["sess-1"].Calls)
	assert.Equal(t, int64(1), stats.ByProvider["mock"].Calls)
	assert.Equal(t, usage.TokenCounts{Calls: 1, Input: 40, Output: 12, Total: 52}, stats.ByModel["test-model"])
}
