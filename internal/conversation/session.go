package conversation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fridgechat/internal/logging"
	"fridgechat/internal/reveal"

	"github.com/google/uuid"
)

// ErrContractViolation marks a caller bug such as an assistant message whose
// id does not follow the log.
var ErrContractViolation = errors.New("conversation contract violation")

// State is a point-in-time copy of everything a surface renders.
type State struct {
	Messages  []Message
	Typing    bool
	Animating bool
	Draft     string
	Reveal    map[int]reveal.State
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock that schedules reveal ticks.
func WithClock(clock reveal.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithNow overrides the timestamp source.
func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRevealInterval sets the delay between revealed segments.
func WithRevealInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithStrictContract makes contract violations panic instead of being
// logged and ignored. Meant for development builds and tests.
func WithStrictContract(strict bool) Option {
	return func(s *Session) { s.strict = strict }
}

// Session is the single source of truth for one open chat. It is recreated
// per run and never persisted.
type Session struct {
	mu       sync.RWMutex
	id       string
	messages []Message
	lastID   int
	typing   bool
	draft    string
	closed   bool

	strict   bool
	interval time.Duration
	clock    reveal.Clock
	now      func() time.Time

	reveal   *reveal.Controller
	notifier notifier
	log      *logging.Logger
}

// NewSession creates an idle session with an empty log.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:  uuid.NewString(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reveal = reveal.NewController(s.interval, s.clock, s.onReveal)
	s.log = logging.Get(logging.CategorySession).With("session_id", s.id)
	s.log.Info("session created")
	return s
}

func (s *Session) onReveal(e reveal.Event) {
	s.log.Debug("reveal %s message=%d %d/%d", e.Kind, e.MessageID, e.Revealed, e.Total)
	s.notifier.publish(ChangeReveal, e.MessageID)
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// SubmitUserMessage appends a user turn. Blank text, or a submission while
// the assistant is typing or a reply is still revealing, is ignored without
// any state change. Reports whether the turn was accepted.
func (s *Session) SubmitUserMessage(text string) bool {
	s.mu.Lock()
	if s.closed || strings.TrimSpace(text) == "" || s.typing || s.animating() {
		s.mu.Unlock()
		return false
	}

	s.lastID++
	msg := Message{
		ID:        s.lastID,
		Role:      RoleUser,
		Text:      text,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, msg)
	s.draft = ""
	s.typing = true
	s.mu.Unlock()

	s.log.Info("user turn accepted message=%d", msg.ID)
	s.notifier.publish(ChangeUserMessage, msg.ID)
	return true
}

// ClickSuggestion submits a suggestion chip exactly like typed input.
func (s *Session) ClickSuggestion(text string) bool {
	return s.SubmitUserMessage(text)
}

// ReceiveAssistantMessage appends the reply to the pending user turn, clears
// the typing flag and starts its reveal.
func (s *Session) ReceiveAssistantMessage(msg Message) {
	msg.IsProactive = false
	s.appendAssistant(msg, true)
}

// ReceiveProactiveMessage appends a system-initiated assistant message. The
// typing flag is left alone; if another reply is revealing, this one waits.
func (s *Session) ReceiveProactiveMessage(msg Message) {
	msg.IsProactive = true
	s.appendAssistant(msg, false)
}

// FailReply signals that the reply source gave up on the pending turn. The
// typing flag is cleared and fallback, when not nil, is appended as an
// ordinary assistant message.
func (s *Session) FailReply(fallback *Message) {
	if fallback != nil {
		msg := *fallback
		msg.IsProactive = false
		s.appendAssistant(msg, true)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.typing = false
	s.mu.Unlock()

	s.log.Warn("reply failed without fallback")
	s.notifier.publish(ChangeReplyFailed, 0)
}

func (s *Session) appendAssistant(msg Message, endsTurn bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	switch {
	case msg.ID == 0:
		msg.ID = s.lastID + 1
	case msg.ID <= s.lastID:
		last := s.lastID
		s.mu.Unlock()
		s.violation(fmt.Errorf("%w: assistant message id %d does not follow %d", ErrContractViolation, msg.ID, last))
		return
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	msg.Role = RoleAssistant
	msg = msg.Clone()

	s.lastID = msg.ID
	s.messages = append(s.messages, msg)
	if endsTurn {
		s.typing = false
	}
	// Claimed before unlocking so no submission slips in between the
	// typing flag clearing and the reveal starting.
	s.reveal.Start(msg.ID, msg.Text)
	s.mu.Unlock()

	s.log.Info("assistant message=%d appended proactive=%v", msg.ID, msg.IsProactive)
	s.notifier.publish(ChangeAssistantMessage, msg.ID)
}

func (s *Session) violation(err error) {
	if s.strict {
		panic(err)
	}
	s.log.Warn("ignored: %v", err)
}

// SetDraft records the not-yet-submitted input text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	if s.closed || s.draft == text {
		s.mu.Unlock()
		return
	}
	s.draft = text
	s.mu.Unlock()

	s.notifier.publish(ChangeDraft, 0)
}

// animating is safe with or without s.mu held; the controller has its own
// lock and never calls back into the session while holding it.
func (s *Session) animating() bool {
	_, active := s.reveal.Active()
	return active
}

// Messages returns a copy of the log in append order.
func (s *Session) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the number of messages.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// LastAssistant returns the most recent assistant message.
func (s *Session) LastAssistant() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].IsAssistant() {
			return s.messages[i].Clone(), true
		}
	}
	return Message{}, false
}

// Typing reports whether a user turn is waiting for its reply.
func (s *Session) Typing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing
}

// Animating reports whether a reply is mid-reveal.
func (s *Session) Animating() bool {
	return s.animating()
}

// Busy reports whether submissions are currently rejected.
func (s *Session) Busy() bool {
	return s.Typing() || s.Animating()
}

// Draft returns the in-progress input text.
func (s *Session) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// Reveal returns the reveal progress of a message. Messages without reveal
// state render in full.
func (s *Session) Reveal(id int) (reveal.State, bool) {
	return s.reveal.State(id)
}

// Snapshot copies the complete renderable state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Messages:  make([]Message, len(s.messages)),
		Typing:    s.typing,
		Animating: s.animating(),
		Draft:     s.draft,
		Reveal:    s.reveal.States(),
	}
	for i, m := range s.messages {
		st.Messages[i] = m.Clone()
	}
	return st
}

// Subscribe registers for change notifications. The channel is closed when
// the session closes or on Unsubscribe.
func (s *Session) Subscribe() <-chan Change {
	return s.notifier.subscribe()
}

// Unsubscribe removes and closes a subscription.
func (s *Session) Unsubscribe(ch <-chan Change) {
	s.notifier.unsubscribe(ch)
}

// Subscribers returns the number of live subscriptions.
func (s *Session) Subscribers() int {
	return s.notifier.count()
}

// Close tears the session down: pending reveal ticks are cancelled and every
// subscription is closed. Further mutations are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.reveal.Close()
	s.notifier.close()
	s.log.Info("session closed")
}
