package fridge

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileInventory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fridge", "inventory.yaml")
	inv := NewFileInventory(path)

	snap, err := inv.Snapshot(ctx)
	require.NoError(t, err, "missing file is an empty fridge")
	assert.Empty(t, snap)

	require.NoError(t, inv.Add(ctx, Item{Name: "Milk", Category: "dairy", ExpiryDate: "2026-10-21", Quantity: 1}))
	require.NoError(t, inv.Add(ctx, Item{Name: "Eggs", Category: "protein", Quantity: 12}))
	require.NoError(t, inv.Add(ctx, Item{Name: "milk", Category: "dairy", Quantity: 2}))
	require.Error(t, inv.Add(ctx, Item{Name: " "}))

	snap, err = inv.Snapshot(ctx)
	require.NoError(t, err)
	want := Snapshot{
		{Name: "Eggs", Category: "protein", Quantity: 12},
		{Name: "milk", Category: "dairy", Quantity: 2},
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	removed, err := inv.Remove(ctx, "EGGS")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = inv.Remove(ctx, "Bacon")
	require.NoError(t, err)
	assert.False(t, removed)

	snap, err = inv.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"milk"}, snap.Names())
	assert.NoError(t, inv.Close())
}

func TestFileInventoryParsesHandWrittenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	content := `items:
  - name: Spinach
    category: vegetables
    expiry_date: "2026-10-20"
  - name: Butter
    category: dairy
    quantity: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	snap, err := NewFileInventory(path).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "2026-10-20", snap[0].ExpiryDate)
	assert.Equal(t, 1, snap[1].Quantity)
}

func TestFileInventoryMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items: [oops"), 0644))

	_, err := NewFileInventory(path).Snapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInventoryUnavailable)
}

func TestSQLiteInventory(t *testing.T) {
	ctx := context.Background()
	inv, err := OpenSQLiteInventory(filepath.Join(t.TempDir(), "fridge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { inv.Close() })

	snap, err := inv.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)

	require.NoError(t, inv.Add(ctx, Item{Name: "Milk", Category: "dairy", ExpiryDate: "2026-10-21", Quantity: 1}))
	require.NoError(t, inv.Add(ctx, Item{Name: "Eggs", Category: "protein", Quantity: 12}))
	require.NoError(t, inv.Add(ctx, Item{Name: "MILK", Category: "dairy", Quantity: 3}))
	require.Error(t, inv.Add(ctx, Item{}))

	snap, err = inv.Snapshot(ctx)
	require.NoError(t, err)
	want := Snapshot{
		{Name: "Eggs", Category: "protein", Quantity: 12},
		{Name: "MILK", Category: "dairy", Quantity: 3},
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	removed, err := inv.Remove(ctx, "Eggs")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = inv.Remove(ctx, "Eggs")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStaticInventoryReturnsCopy(t *testing.T) {
	inv := StaticInventory{{Name: "Milk"}}
	snap, err := inv.Snapshot(context.Background())
	require.NoError(t, err)
	snap[0].Name = "Cream"
	assert.Equal(t, "Milk", inv[0].Name)
}

func TestWatcherReportsSettledChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")
	other := filepath.Join(dir, "notes.txt")

	var calls atomic.Int32
	w, err := NewWatcher(path, 50*time.Millisecond, func(context.Context) { calls.Add(1) })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("items: []\n"), 0644))
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "a burst of writes is reported once")
	assert.GreaterOrEqual(t, w.Stats().Events, 1)

	cancel()
	require.NoError(t, <-done)
}
