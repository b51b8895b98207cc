/*
 * Copyright 2026 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id        TEXT PRIMARY KEY,
	at        TEXT NOT NULL,
	client_id INTEGER NOT NULL,
	command   TEXT NOT NULL,
	argc      INTEGER NOT NULL,
	action    TEXT NOT NULL,
	note      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_events_at ON audit_events(at);
`

// Store persists events in a sqlite database. Filters and diagnostics
// commands may write from different host threads; writes retry briefly
// when sqlite reports the database busy.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a sqlite-backed store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore initializes the schema on an existing database handle. The
// store takes over the handle; Close closes it.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends one event.
func (s *Store) Record(ctx context.Context, ev Event) error {
	return retryOnBusy(func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO audit_events (id, at, client_id, command, argc, action, note)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.At.UTC().Format(time.RFC3339Nano), ev.ClientID,
			ev.Command, ev.Argc, string(ev.Action), ev.Note)
		return err
	})
}

// Recent returns up to n events, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, client_id, command, argc, action, note
		 FROM audit_events ORDER BY at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var at, action string
		if err := rows.Scan(&ev.ID, &at, &ev.ClientID, &ev.Command, &ev.Argc, &action, &ev.Note); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse audit timestamp %q: %w", at, err)
		}
		ev.Action = Action(action)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountByAction returns event counts keyed by action.
func (s *Store) CountByAction(ctx context.Context) (map[Action]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, COUNT(*) FROM audit_events GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("count audit events: %w", err)
	}
	defer rows.Close()

	out := make(map[Action]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scan audit count: %w", err)
		}
		out[Action(action)] = n
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// retryOnBusy retries op while sqlite reports contention. Any other error
// aborts immediately.
func retryOnBusy(op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isBusy(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(wrapped,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(25*time.Millisecond), 8))
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
