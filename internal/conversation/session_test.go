package conversation

import (
	"strings"
	"testing"
	"time"

	"fridgechat/internal/reveal"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

const interval = 500 * time.Millisecond

func newTestSession(t *testing.T, opts ...Option) (*Session, *reveal.ManualClock) {
	t.Helper()
	clock := reveal.NewManualClock(epoch)
	base := []Option{
		WithClock(clock),
		WithNow(clock.Now),
		WithRevealInterval(interval),
		WithStrictContract(true),
	}
	s := NewSession(append(base, opts...)...)
	t.Cleanup(s.Close)
	return s, clock
}

func breakfastReply() Message {
	return Message{
		Text:        "Try overnight oats with berries.\n\nOr a veggie omelette with spinach.",
		Suggestions: []string{"Quick options", "High protein", "Vegan ideas"},
		Cards: []Card{
			{Title: "Protein", Content: "Eggs give you 6g each", Category: CategoryNutrition, Priority: PriorityMedium},
		},
	}
}

func TestBreakfastScenario(t *testing.T) {
	s, clock := newTestSession(t)

	require.True(t, s.SubmitUserMessage("Breakfast ideas"))
	assert.True(t, s.Typing())
	assert.False(t, s.Animating())

	s.ReceiveAssistantMessage(breakfastReply())
	assert.False(t, s.Typing())
	assert.True(t, s.Animating())

	clock.Advance(interval)
	assert.False(t, s.Animating())

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, 2, msgs[1].ID)

	st, ok := s.Reveal(2)
	require.True(t, ok)
	assert.Equal(t, msgs[1].Text, st.Text())

	require.True(t, s.ClickSuggestion(msgs[1].Suggestions[0]))
	msgs = s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, 3, msgs[2].ID)
	assert.Equal(t, "Quick options", msgs[2].Text)
	assert.Equal(t, RoleUser, msgs[2].Role)
}

func TestSubmitRejectsBlankText(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetDraft("   ")

	for _, text := range []string{"", "  ", "\n\t"} {
		assert.False(t, s.SubmitUserMessage(text))
	}
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "   ", s.Draft())
	assert.False(t, s.Typing())
}

func TestSubmitClearsDraft(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetDraft("Dinner ideas")

	require.True(t, s.SubmitUserMessage("Dinner ideas"))
	assert.Equal(t, "", s.Draft())
}

func TestSubmissionsRejectedWhileBusy(t *testing.T) {
	s, clock := newTestSession(t)

	require.True(t, s.SubmitUserMessage("first"))
	s.SetDraft("half typed")

	assert.False(t, s.SubmitUserMessage("second"), "typing must block submissions")
	assert.False(t, s.ClickSuggestion("chip"), "typing must block chips")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "half typed", s.Draft())

	s.ReceiveAssistantMessage(Message{Text: "A\n\nB\n\nC"})
	require.True(t, s.Animating())

	assert.False(t, s.SubmitUserMessage("third"), "animating must block submissions")
	assert.False(t, s.ClickSuggestion("chip"), "animating must block chips")
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "half typed", s.Draft())

	clock.Advance(2 * interval)
	assert.True(t, s.SubmitUserMessage("third"))
}

func TestIDsStrictlyIncrease(t *testing.T) {
	s, clock := newTestSession(t)

	for i := 0; i < 5; i++ {
		require.True(t, s.SubmitUserMessage("question"))
		s.SubmitUserMessage("ignored while typing")
		s.ReceiveAssistantMessage(Message{Text: "one\n\ntwo"})
		clock.Advance(interval)
	}
	s.ReceiveProactiveMessage(Message{Text: "Your milk expires tomorrow."})

	msgs := s.Messages()
	require.Len(t, msgs, 11)
	seen := make(map[int]bool)
	for i, m := range msgs {
		assert.False(t, seen[m.ID], "duplicate id %d", m.ID)
		seen[m.ID] = true
		if i > 0 {
			assert.Greater(t, m.ID, msgs[i-1].ID)
		}
	}
}

func TestRevealRoundTrip(t *testing.T) {
	s, clock := newTestSession(t)
	texts := []string{
		"Single paragraph.",
		"First.\n\nSecond.\n\n\nThird.",
		"**Bold** start\n\n- list\n- items\n\nEnd\n",
	}

	for _, text := range texts {
		require.True(t, s.SubmitUserMessage("q"))
		s.ReceiveAssistantMessage(Message{Text: text})
		clock.Advance(10 * interval)
	}

	for _, m := range s.Messages() {
		if m.Role != RoleAssistant {
			_, ok := s.Reveal(m.ID)
			assert.False(t, ok, "user messages are never animated")
			continue
		}
		st, ok := s.Reveal(m.ID)
		require.True(t, ok)
		assert.True(t, st.Done())
		assert.Equal(t, m.Text, strings.Join(st.Segments, ""))
	}
}

func TestRevealSegmentsOnlyGrow(t *testing.T) {
	s, clock := newTestSession(t)
	require.True(t, s.SubmitUserMessage("q"))
	s.ReceiveAssistantMessage(Message{Text: "a\n\nb\n\nc\n\nd"})

	prev := []string{}
	for i := 0; i < 4; i++ {
		st, _ := s.Reveal(2)
		require.GreaterOrEqual(t, len(st.Segments), len(prev))
		assert.Equal(t, prev, st.Segments[:len(prev)], "revealed segments are never reordered or removed")
		prev = st.Segments
		clock.Advance(interval)
	}
	assert.Len(t, prev, 4)
}

func TestAnimatingOnlyDuringReveal(t *testing.T) {
	s, clock := newTestSession(t)
	require.True(t, s.SubmitUserMessage("q"))
	assert.False(t, s.Animating(), "waiting for a reply is not animating")

	s.ReceiveAssistantMessage(Message{Text: "a\n\nb\n\nc"})
	for i := 0; i < 2; i++ {
		assert.True(t, s.Animating())
		clock.Advance(interval)
	}
	assert.False(t, s.Animating())
}

func TestSingleSegmentReplyIsNotAnimated(t *testing.T) {
	s, _ := newTestSession(t)
	require.True(t, s.SubmitUserMessage("q"))
	s.ReceiveAssistantMessage(Message{Text: "Boil pasta for 9 minutes."})

	assert.False(t, s.Animating())
	assert.False(t, s.Busy())
	st, ok := s.Reveal(2)
	require.True(t, ok)
	assert.True(t, st.Done())
}

func TestProactiveMessageQueuesBehindReveal(t *testing.T) {
	s, clock := newTestSession(t)
	require.True(t, s.SubmitUserMessage("q"))
	s.ReceiveAssistantMessage(Message{Text: "a\n\nb"})
	s.ReceiveProactiveMessage(Message{Text: "Heads up!\n\nYour yogurt expires soon."})

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.True(t, msgs[2].IsProactive)

	st, ok := s.Reveal(3)
	require.True(t, ok)
	assert.Empty(t, st.Segments, "proactive reveal waits for the active one")

	clock.Advance(interval)
	st, _ = s.Reveal(3)
	assert.Len(t, st.Segments, 1)
	assert.True(t, s.Animating())

	clock.Advance(interval)
	assert.False(t, s.Animating())
}

func TestProactiveDoesNotEndTurn(t *testing.T) {
	s, _ := newTestSession(t)
	require.True(t, s.SubmitUserMessage("q"))
	s.ReceiveProactiveMessage(Message{Text: "Milk expires tomorrow."})
	assert.True(t, s.Typing())
}

func TestFailReply(t *testing.T) {
	t.Run("without fallback", func(t *testing.T) {
		s, _ := newTestSession(t)
		require.True(t, s.SubmitUserMessage("q"))
		s.FailReply(nil)
		assert.False(t, s.Typing())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("with fallback", func(t *testing.T) {
		s, _ := newTestSession(t)
		require.True(t, s.SubmitUserMessage("q"))
		s.FailReply(&Message{Text: "Something went wrong."})
		assert.False(t, s.Typing())
		msgs := s.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, RoleAssistant, msgs[1].Role)
		assert.False(t, msgs[1].IsProactive)
	})
}

func TestContractViolation(t *testing.T) {
	t.Run("strict panics", func(t *testing.T) {
		s, _ := newTestSession(t)
		require.True(t, s.SubmitUserMessage("q"))
		assert.Panics(t, func() {
			s.ReceiveAssistantMessage(Message{ID: 1, Text: "dup"})
		})
	})

	t.Run("lenient ignores", func(t *testing.T) {
		s, _ := newTestSession(t, WithStrictContract(false))
		require.True(t, s.SubmitUserMessage("q"))
		s.ReceiveAssistantMessage(Message{ID: 1, Text: "dup"})
		assert.Equal(t, 1, s.Len())
		assert.True(t, s.Typing(), "ignored message leaves state untouched")
	})

	t.Run("explicit next id accepted", func(t *testing.T) {
		s, _ := newTestSession(t)
		require.True(t, s.SubmitUserMessage("q"))
		s.ReceiveAssistantMessage(Message{ID: 5, Text: "ok"})
		require.True(t, s.SubmitUserMessage("again"))
		msgs := s.Messages()
		assert.Equal(t, 6, msgs[2].ID)
	})
}

func TestMessagesAreCopies(t *testing.T) {
	s, _ := newTestSession(t)
	require.True(t, s.SubmitUserMessage("q"))
	reply := breakfastReply()
	s.ReceiveAssistantMessage(reply)
	reply.Suggestions[0] = "mutated by caller"

	msgs := s.Messages()
	msgs[1].Suggestions[1] = "mutated by reader"
	msgs[1].Cards[0].Title = "mutated"

	again := s.Messages()
	assert.Equal(t, []string{"Quick options", "High protein", "Vegan ideas"}, again[1].Suggestions)
	assert.Equal(t, "Protein", again[1].Cards[0].Title)
}

func TestSnapshotMatchesAccessors(t *testing.T) {
	s, clock := newTestSession(t)
	require.True(t, s.SubmitUserMessage("q"))
	s.ReceiveAssistantMessage(Message{Text: "a\n\nb"})
	s.SetDraft("next")

	snap := s.Snapshot()
	want := State{
		Messages:  s.Messages(),
		Typing:    s.Typing(),
		Animating: s.Animating(),
		Draft:     s.Draft(),
		Reveal:    map[int]reveal.State{2: {Segments: []string{"a\n\n"}, Total: 2}},
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(interval)
	assert.False(t, s.Snapshot().Animating)
}

func TestSubscribersSeeEveryKindOfChange(t *testing.T) {
	s, clock := newTestSession(t)
	ch := s.Subscribe()

	drain := func() (Change, bool) {
		select {
		case c := <-ch:
			return c, true
		default:
			return Change{}, false
		}
	}

	require.True(t, s.SubmitUserMessage("q"))
	c, ok := drain()
	require.True(t, ok)
	assert.Equal(t, ChangeUserMessage, c.Kind)

	s.ReceiveAssistantMessage(Message{Text: "a\n\nb"})
	_, ok = drain()
	require.True(t, ok, "receive must notify")
	_, ok = drain()
	assert.False(t, ok, "notifications coalesce into one pending slot")

	clock.Advance(interval)
	c, ok = drain()
	require.True(t, ok)
	assert.Equal(t, ChangeReveal, c.Kind)
	assert.Equal(t, 2, c.MessageID)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s, _ := newTestSession(t)
	a := s.Subscribe()
	b := s.Subscribe()
	require.Equal(t, 2, s.Subscribers())

	s.Unsubscribe(a)
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, s.Subscribers())

	s.SetDraft("x")
	c := <-b
	assert.Equal(t, ChangeDraft, c.Kind)
}

func TestCloseCancelsRevealAndSubscriptions(t *testing.T) {
	s, clock := newTestSession(t)
	ch := s.Subscribe()

	require.True(t, s.SubmitUserMessage("q"))
	<-ch
	s.ReceiveAssistantMessage(Message{Text: "a\n\nb\n\nc"})
	require.Equal(t, 1, clock.Pending())

	s.Close()
	assert.Equal(t, 0, clock.Pending(), "no dangling reveal timers after teardown")
	assert.False(t, s.Animating())

	for range ch {
	}

	clock.Advance(10 * interval)
	st, _ := s.Reveal(2)
	assert.Len(t, st.Segments, 1)

	assert.False(t, s.SubmitUserMessage("after close"))
	late := s.Subscribe()
	_, open := <-late
	assert.False(t, open, "subscribing to a closed session yields a closed channel")
	s.Close()
}
