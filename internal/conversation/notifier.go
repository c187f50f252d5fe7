package conversation

import (
	"sync"
	"sync/atomic"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind int

const (
	ChangeUserMessage ChangeKind = iota
	ChangeAssistantMessage
	ChangeReplyFailed
	ChangeReveal
	ChangeDraft
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeUserMessage:
		return "user_message"
	case ChangeAssistantMessage:
		return "assistant_message"
	case ChangeReplyFailed:
		return "reply_failed"
	case ChangeReveal:
		return "reveal"
	case ChangeDraft:
		return "draft"
	default:
		return "unknown"
	}
}

// Change tells subscribers the session moved on. It is a hint: subscribers
// re-read the session rather than reconstructing state from changes.
type Change struct {
	Seq       uint64
	Kind      ChangeKind
	MessageID int
}

// notifier fans changes out to subscribers. Each subscriber channel holds at
// most one pending change; when it is full the newer change is dropped since
// the pending one already makes the subscriber re-read the latest state.
type notifier struct {
	mu          sync.RWMutex
	subscribers []chan Change
	sequence    atomic.Uint64
	closed      bool
}

func (n *notifier) subscribe() <-chan Change {
	ch := make(chan Change, 1)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		close(ch)
		return ch
	}
	n.subscribers = append(n.subscribers, ch)
	return ch
}

func (n *notifier) unsubscribe(ch <-chan Change) {
	if ch == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, sub := range n.subscribers {
		if (<-chan Change)(sub) == ch {
			n.subscribers = append(n.subscribers[:i], n.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

func (n *notifier) publish(kind ChangeKind, messageID int) {
	change := Change{Seq: n.sequence.Add(1), Kind: kind, MessageID: messageID}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, sub := range n.subscribers {
		select {
		case sub <- change:
		default:
		}
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for _, sub := range n.subscribers {
		close(sub)
	}
	n.subscribers = nil
}

func (n *notifier) count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}
