package reveal

import (
	"strings"
	"sync"
	"time"

	"fridgechat/internal/logging"
)

// DefaultInterval is the delay between two revealed segments.
const DefaultInterval = 600 * time.Millisecond

// EventKind describes what changed in the controller.
type EventKind int

const (
	EventQueued    EventKind = iota // Message is waiting for the current reveal to finish
	EventStarted                    // First segment revealed
	EventSegment                    // A further segment revealed
	EventCompleted                  // Every segment revealed
)

func (k EventKind) String() string {
	switch k {
	case EventQueued:
		return "queued"
	case EventStarted:
		return "started"
	case EventSegment:
		return "segment"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is passed to the change callback after every state change.
type Event struct {
	Kind      EventKind
	MessageID int
	Revealed  int
	Total     int
}

// State is the reveal progress of one message.
type State struct {
	Segments []string // revealed so far, in split order
	Total    int      // number of segments the message splits into
}

// Done reports whether every segment has been revealed.
func (s State) Done() bool {
	return len(s.Segments) == s.Total
}

// Text joins the revealed segments.
func (s State) Text() string {
	return strings.Join(s.Segments, "")
}

type progress struct {
	segments []string
	revealed int
}

// Controller reveals one message at a time. Messages started while another
// reveal is in flight wait in FIFO order.
type Controller struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	onChange func(Event)

	states map[int]*progress
	active int
	queue  []int
	timer  Timer
	closed bool
}

// NewController creates a controller. A nil clock uses the real clock and a
// non-positive interval uses DefaultInterval. onChange may be nil.
func NewController(interval time.Duration, clock Clock, onChange func(Event)) *Controller {
	if clock == nil {
		clock = RealClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{
		clock:    clock,
		interval: interval,
		onChange: onChange,
		states:   make(map[int]*progress),
	}
}

// Start claims a message for reveal. The first segment is revealed
// immediately unless another message is still revealing, in which case the
// message is queued with nothing revealed. Ids that already have reveal
// state are ignored so a message is never replayed. Ids must be positive.
func (c *Controller) Start(id int, text string) {
	if id <= 0 {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, seen := c.states[id]; seen {
		c.mu.Unlock()
		logging.RevealDebug("ignoring duplicate start for message %d", id)
		return
	}

	c.states[id] = &progress{segments: Split(text)}

	var events []Event
	if c.active != 0 {
		c.queue = append(c.queue, id)
		events = append(events, Event{Kind: EventQueued, MessageID: id, Total: len(c.states[id].segments)})
	} else {
		events = c.beginLocked(id)
	}
	c.mu.Unlock()

	c.emit(events)
}

// beginLocked reveals the first segment of id and either schedules the next
// tick or, for single-segment messages, completes and moves down the queue.
func (c *Controller) beginLocked(id int) []Event {
	var events []Event
	for {
		p := c.states[id]
		p.revealed = 1
		total := len(p.segments)
		events = append(events, Event{Kind: EventStarted, MessageID: id, Revealed: 1, Total: total})

		if total > 1 {
			c.active = id
			c.schedule(id)
			logging.RevealDebug("message %d revealing %d segments", id, total)
			return events
		}

		events = append(events, Event{Kind: EventCompleted, MessageID: id, Revealed: 1, Total: 1})
		next, ok := c.dequeueLocked()
		if !ok {
			return events
		}
		id = next
	}
}

func (c *Controller) schedule(id int) {
	c.timer = c.clock.AfterFunc(c.interval, func() { c.tick(id) })
}

func (c *Controller) tick(id int) {
	c.mu.Lock()
	if c.closed || c.active != id {
		c.mu.Unlock()
		return
	}

	p := c.states[id]
	p.revealed++
	total := len(p.segments)
	events := []Event{{Kind: EventSegment, MessageID: id, Revealed: p.revealed, Total: total}}

	if p.revealed < total {
		c.schedule(id)
	} else {
		c.active = 0
		c.timer = nil
		events = append(events, Event{Kind: EventCompleted, MessageID: id, Revealed: total, Total: total})
		if next, ok := c.dequeueLocked(); ok {
			events = append(events, c.beginLocked(next)...)
		}
	}
	c.mu.Unlock()

	c.emit(events)
}

func (c *Controller) dequeueLocked() (int, bool) {
	if len(c.queue) == 0 {
		return 0, false
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	return next, true
}

func (c *Controller) emit(events []Event) {
	if c.onChange == nil {
		return
	}
	for _, e := range events {
		c.onChange(e)
	}
}

// State returns the reveal progress of a message. The boolean is false for
// messages the controller never claimed; those render in full.
func (c *Controller) State(id int) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.states[id]
	if !ok {
		return State{}, false
	}
	return stateOf(p), true
}

// States returns the progress of every claimed message.
func (c *Controller) States() map[int]State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]State, len(c.states))
	for id, p := range c.states {
		out[id] = stateOf(p)
	}
	return out
}

func stateOf(p *progress) State {
	segs := make([]string, p.revealed)
	copy(segs, p.segments[:p.revealed])
	return State{Segments: segs, Total: len(p.segments)}
}

// Active returns the id of the message currently mid-reveal.
func (c *Controller) Active() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.active != 0
}

// Queued returns how many messages wait behind the active reveal.
func (c *Controller) Queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Close cancels the pending tick and refuses further scheduling. Reveal
// state already produced stays readable.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.active = 0
	c.queue = nil
}
