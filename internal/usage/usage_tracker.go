package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fridgechat/internal/logging"
)

// OperationChat is the operation replies are recorded under.
const OperationChat = "chat"

const autoSaveDelay = 5 * time.Second

type trackerKey struct{}

type sessionKey struct{}

// Tracker manages token usage recording and persistence.
type Tracker struct {
	mu       sync.Mutex
	data     UsageData
	filePath string
	dirty    bool
	timer    *time.Timer
}

// DefaultPath returns the usage file of a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".fridgechat", "usage.json")
}

// NewTracker creates a tracker persisted at path. A missing or corrupt file
// starts from empty totals.
func NewTracker(path string) *Tracker {
	t := &Tracker{filePath: path, data: emptyData()}
	if err := t.Load(); err != nil {
		logging.Get(logging.CategoryReply).Warn("usage data reset: %v", err)
	}
	return t
}

func emptyData() UsageData {
	return UsageData{
		Version: "1.0",
		Aggregate: AggregatedStats{
			ByProvider:  make(map[string]TokenCounts),
			ByModel:     make(map[string]TokenCounts),
			ByOperation: make(map[string]TokenCounts),
			BySession:   make(map[string]TokenCounts),
		},
	}
}

// Load reads the usage data from disk.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	loaded := emptyData()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse %s: %w", t.filePath, err)
	}
	// Ensure maps are initialized if file was empty/partial
	agg := &loaded.Aggregate
	for _, m := range []*map[string]TokenCounts{&agg.ByProvider, &agg.ByModel, &agg.ByOperation, &agg.BySession} {
		if *m == nil {
			*m = make(map[string]TokenCounts)
		}
	}
	t.data = loaded
	return nil
}

// Save writes the usage data to disk.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(t.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create usage directory: %w", err)
	}
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		return err
	}
	t.dirty = false
	return nil
}

// Track records one reply. The session id comes from ctx when set with
// WithSession.
func (t *Tracker) Track(ctx context.Context, model, provider string, input, output int, operation string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sessionID := "unknown"
	if id, ok := ctx.Value(sessionKey{}).(string); ok && id != "" {
		sessionID = id
	}

	agg := &t.data.Aggregate
	agg.Total.Add(input, output)
	addToMap(agg.ByProvider, provider, input, output)
	addToMap(agg.ByModel, model, input, output)
	addToMap(agg.ByOperation, operation, input, output)
	addToMap(agg.BySession, sessionID, input, output)

	// Debounced auto-save
	if !t.dirty {
		t.dirty = true
		t.timer = time.AfterFunc(autoSaveDelay, func() {
			if err := t.Save(); err != nil {
				logging.Get(logging.CategoryReply).Warn("usage autosave: %v", err)
			}
		})
	}
}

// Close cancels a pending autosave and writes outstanding usage.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if !t.dirty {
		return nil
	}
	return t.saveLocked()
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByProvider = copyTokenCountsMap(stats.ByProvider)
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByOperation = copyTokenCountsMap(stats.ByOperation)
	stats.BySession = copyTokenCountsMap(stats.BySession)
	return stats
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}

// Context Helpers

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// FromContext retrieves the tracker from the context.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}

// WithSession tags usage recorded under ctx with a conversation session.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// Record tracks a reply against the tracker in ctx, if any.
func Record(ctx context.Context, model, provider string, input, output int) {
	if t := FromContext(ctx); t != nil {
		t.Track(ctx, model, provider, input, output, OperationChat)
	}
}
