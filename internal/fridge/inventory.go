package fridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fridgechat/internal/logging"

	"gopkg.in/yaml.v3"
)

// ErrInventoryUnavailable is returned when the inventory cannot be read.
var ErrInventoryUnavailable = errors.New("inventory unavailable")

// Inventory supplies fridge snapshots on demand.
type Inventory interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Store is an inventory that can also be edited.
type Store interface {
	Inventory
	Add(ctx context.Context, it Item) error
	Remove(ctx context.Context, name string) (bool, error)
	Close() error
}

// StaticInventory is a fixed snapshot.
type StaticInventory Snapshot

// Snapshot implements Inventory.
func (s StaticInventory) Snapshot(context.Context) (Snapshot, error) {
	return append(Snapshot(nil), s...), nil
}

type inventoryFile struct {
	Items []Item `yaml:"items"`
}

// FileInventory keeps the inventory in a YAML file. A missing file is an
// empty fridge.
type FileInventory struct {
	mu   sync.Mutex
	path string
}

// NewFileInventory returns an inventory backed by path.
func NewFileInventory(path string) *FileInventory {
	return &FileInventory{path: path}
}

// Path returns the backing file.
func (f *FileInventory) Path() string { return f.path }

// Snapshot implements Inventory.
func (f *FileInventory) Snapshot(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(ctx)
}

func (f *FileInventory) load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInventoryUnavailable, err)
	}

	var file inventoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInventoryUnavailable, f.path, err)
	}
	logging.InventoryDebug("loaded %d items from %s", len(file.Items), f.path)
	return Snapshot(file.Items), nil
}

func (f *FileInventory) save(items Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create inventory directory: %w", err)
	}
	data, err := yaml.Marshal(inventoryFile{Items: items})
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	return nil
}

// Add appends an item, replacing any item with the same name.
func (f *FileInventory) Add(ctx context.Context, it Item) error {
	if strings.TrimSpace(it.Name) == "" {
		return errors.New("item name is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load(ctx)
	if err != nil {
		return err
	}
	out := items[:0:0]
	for _, existing := range items {
		if !strings.EqualFold(existing.Name, it.Name) {
			out = append(out, existing)
		}
	}
	out = append(out, it)
	if err := f.save(out); err != nil {
		return err
	}
	logging.Inventory("added %s to %s", it.Name, f.path)
	return nil
}

// Remove deletes the item with the given name and reports whether it existed.
func (f *FileInventory) Remove(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load(ctx)
	if err != nil {
		return false, err
	}
	out := items[:0:0]
	for _, existing := range items {
		if !strings.EqualFold(existing.Name, name) {
			out = append(out, existing)
		}
	}
	if len(out) == len(items) {
		return false, nil
	}
	if err := f.save(out); err != nil {
		return false, err
	}
	logging.Inventory("removed %s from %s", name, f.path)
	return true, nil
}

// Close implements Store.
func (f *FileInventory) Close() error { return nil }
