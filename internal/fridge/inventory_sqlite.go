package fridge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fridgechat/internal/logging"

	_ "modernc.org/sqlite"
)

// SQLiteInventory keeps the inventory in a SQLite database.
type SQLiteInventory struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLiteInventory creates or opens the inventory database.
func OpenSQLiteInventory(dbPath string) (*SQLiteInventory, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)

	inv := &SQLiteInventory{db: db, dbPath: dbPath}
	if err := inv.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logging.Inventory("opened sqlite inventory %s", dbPath)
	return inv, nil
}

func (s *SQLiteInventory) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS items (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		category TEXT NOT NULL DEFAULT '',
		expiry_date TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database path.
func (s *SQLiteInventory) Path() string { return s.dbPath }

// Snapshot implements Inventory. Items come back in insertion order.
func (s *SQLiteInventory) Snapshot(ctx context.Context) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, category, expiry_date, quantity FROM items ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInventoryUnavailable, err)
	}
	defer rows.Close()

	items := Snapshot{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Name, &it.Category, &it.ExpiryDate, &it.Quantity); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInventoryUnavailable, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInventoryUnavailable, err)
	}
	return items, nil
}

// Add inserts an item, replacing any item with the same name.
func (s *SQLiteInventory) Add(ctx context.Context, it Item) error {
	if strings.TrimSpace(it.Name) == "" {
		return errors.New("item name is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE name = ?`, it.Name); err != nil {
		return fmt.Errorf("failed to replace item: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO items (name, category, expiry_date, quantity) VALUES (?, ?, ?, ?)`,
		it.Name, it.Category, it.ExpiryDate, it.Quantity); err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.Inventory("added %s to %s", it.Name, s.dbPath)
	return nil
}

// Remove deletes an item by name and reports whether it existed.
func (s *SQLiteInventory) Remove(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to remove item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the database.
func (s *SQLiteInventory) Close() error {
	return s.db.Close()
}
