// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package registry implements the durable code → content mapping and the
// audit-only user log, backed by SQLite.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no content is registered under the
// requested code.
var ErrNotFound = errors.New("content not found")

// Kind tells which Bot API method can relay a content item.
type Kind string

// Content kinds, recorded at ingestion time.
const (
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

// ContentItem is a single piece of gated content.
type ContentItem struct {
	Code         string
	FileID       string // opaque handle issued by Telegram
	Title        string
	Caption      string
	Kind         Kind
	RegisteredAt time.Time
}

// User is an audit record of someone who interacted with the bot. It is
// never consulted for authorization decisions.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	JoinedAt  time.Time
}

// DB is a handle to the registry database. It is safe for concurrent use;
// reads may run concurrently with writes and always observe whole records.
type DB struct {
	db *sql.DB

	// now acts as time.Now, but can be overridden in tests.
	now func() time.Time
}

// Open opens (creating if necessary) the registry database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("registry: open %q: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("registry: %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS content (
			code          TEXT PRIMARY KEY,
			file_id       TEXT NOT NULL,
			title         TEXT NOT NULL,
			caption       TEXT NOT NULL,
			kind          TEXT NOT NULL,
			registered_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY,
			username   TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			joined_at  INTEGER NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: create schema: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

// Upsert registers a content item, fully replacing any previous record with
// the same code. Codes are normalized to lowercase.
func (d *DB) Upsert(ctx context.Context, item ContentItem) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO content (code, file_id, title, caption, kind, registered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			file_id = excluded.file_id,
			title = excluded.title,
			caption = excluded.caption,
			kind = excluded.kind,
			registered_at = excluded.registered_at;
	`, strings.ToLower(item.Code), item.FileID, item.Title, item.Caption, string(item.Kind), d.now().UnixNano())
	if err != nil {
		return fmt.Errorf("registry: upsert %q: %w", item.Code, err)
	}
	return nil
}

// Get returns the content item registered under code, or [ErrNotFound].
func (d *DB) Get(ctx context.Context, code string) (ContentItem, error) {
	var (
		item         ContentItem
		kind         string
		registeredAt int64
	)
	err := d.db.QueryRowContext(ctx, `
		SELECT code, file_id, title, caption, kind, registered_at
		FROM content WHERE code = ?;
	`, strings.ToLower(code)).Scan(&item.Code, &item.FileID, &item.Title, &item.Caption, &kind, &registeredAt)
	if err == sql.ErrNoRows {
		return ContentItem{}, fmt.Errorf("registry: %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return ContentItem{}, fmt.Errorf("registry: get %q: %w", code, err)
	}
	item.Kind = Kind(kind)
	item.RegisteredAt = time.Unix(0, registeredAt).UTC()
	return item, nil
}

// List returns up to limit content items, most recently registered first.
func (d *DB) List(ctx context.Context, limit int) ([]ContentItem, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT code, file_id, title, caption, kind, registered_at
		FROM content ORDER BY registered_at DESC, code DESC LIMIT ?;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	defer rows.Close()

	var items []ContentItem
	for rows.Next() {
		var (
			item         ContentItem
			kind         string
			registeredAt int64
		)
		if err := rows.Scan(&item.Code, &item.FileID, &item.Title, &item.Caption, &kind, &registeredAt); err != nil {
			return nil, fmt.Errorf("registry: list: %w", err)
		}
		item.Kind = Kind(kind)
		item.RegisteredAt = time.Unix(0, registeredAt).UTC()
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpsertUser records that a user interacted with the bot. The join time is
// set on first contact and preserved afterwards.
func (d *DB) UpsertUser(ctx context.Context, u User) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO users (id, username, first_name, last_name, joined_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name;
	`, u.ID, u.Username, u.FirstName, u.LastName, d.now().UnixNano())
	if err != nil {
		return fmt.Errorf("registry: upsert user %d: %w", u.ID, err)
	}
	return nil
}

// GetUser returns the audit record of a user, or [ErrNotFound].
func (d *DB) GetUser(ctx context.Context, id int64) (User, error) {
	var (
		u        User
		joinedAt int64
	)
	err := d.db.QueryRowContext(ctx, `
		SELECT id, username, first_name, last_name, joined_at
		FROM users WHERE id = ?;
	`, id).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &joinedAt)
	if err == sql.ErrNoRows {
		return User{}, fmt.Errorf("registry: user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("registry: get user %d: %w", id, err)
	}
	u.JoinedAt = time.Unix(0, joinedAt).UTC()
	return u, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
