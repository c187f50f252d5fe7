package conversation

import (
	"context"
	"fmt"
	"time"

	"fridgechat/internal/logging"
)

// DefaultFailureText is shown when the reply source gives up on a turn.
const DefaultFailureText = "Sorry, I couldn't come up with an answer just now. Please try again in a moment."

// ReplySource produces the assistant's answer to a user turn. history
// includes the user message being answered as its last entry. The returned
// message needs no id; the session assigns one.
type ReplySource interface {
	Reply(ctx context.Context, history []Message, text string) (Message, error)
}

// ReplySourceFunc adapts a function to ReplySource.
type ReplySourceFunc func(ctx context.Context, history []Message, text string) (Message, error)

// Reply implements ReplySource.
func (f ReplySourceFunc) Reply(ctx context.Context, history []Message, text string) (Message, error) {
	return f(ctx, history, text)
}

// Assistant runs turns against a session: it submits the user message, waits
// for the reply source and hands the result back to the session.
type Assistant struct {
	session     *Session
	source      ReplySource
	timeout     time.Duration
	failureText string
}

// AssistantConfig configures an Assistant.
type AssistantConfig struct {
	// Timeout bounds a single reply. Zero means no limit beyond ctx.
	Timeout time.Duration
	// FailureText is appended as the assistant's reply when the source
	// fails. Empty uses DefaultFailureText.
	FailureText string
}

// NewAssistant binds a reply source to a session.
func NewAssistant(session *Session, source ReplySource, cfg AssistantConfig) *Assistant {
	if cfg.FailureText == "" {
		cfg.FailureText = DefaultFailureText
	}
	return &Assistant{
		session:     session,
		source:      source,
		timeout:     cfg.Timeout,
		failureText: cfg.FailureText,
	}
}

// Session returns the session this assistant drives.
func (a *Assistant) Session() *Session {
	return a.session
}

// Send runs one turn. A submission the session rejects is a silent no-op.
// When the reply source fails the session receives the failure fallback and
// the source error is returned.
func (a *Assistant) Send(ctx context.Context, text string) error {
	if !a.session.SubmitUserMessage(text) {
		return nil
	}
	return a.Answer(ctx, text)
}

// Suggest submits a suggestion chip; it behaves exactly like Send.
func (a *Assistant) Suggest(ctx context.Context, text string) error {
	if !a.session.ClickSuggestion(text) {
		return nil
	}
	return a.Answer(ctx, text)
}

// Answer fetches the reply to a user turn the session has already accepted.
// Callers that submit on the UI goroutine use it to wait for the reply
// elsewhere.
func (a *Assistant) Answer(ctx context.Context, text string) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategoryReply, "reply")
	msg, err := a.source.Reply(ctx, a.session.Messages(), text)
	timer.Stop()
	if err != nil {
		logging.ReplyError("reply source failed: %v", err)
		a.session.FailReply(&Message{Role: RoleAssistant, Text: a.failureText})
		return fmt.Errorf("reply source: %w", err)
	}

	msg.ID = 0
	a.session.ReceiveAssistantMessage(msg)
	return nil
}

// Announce delivers a system-initiated message.
func (a *Assistant) Announce(msg Message) {
	msg.ID = 0
	a.session.ReceiveProactiveMessage(msg)
}
