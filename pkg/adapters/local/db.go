// Package local implements the note and label ports on an on-device
// relational store (SQLite). The relationship columns are deliberately flat:
// comma-joined id strings mirroring the remote document shape, not a join
// table, so "all notes with label X" is an in-memory filter after a scan.
package local

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	label_ids   TEXT NOT NULL DEFAULT '',
	trashed     INTEGER NOT NULL DEFAULT 0,
	archived    INTEGER NOT NULL DEFAULT 0,
	trashed_at  INTEGER,
	reminder_at INTEGER
);
CREATE TABLE IF NOT EXISTS labels (
	id       TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name     TEXT NOT NULL DEFAULT '',
	note_ids TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id);
CREATE INDEX IF NOT EXISTS idx_labels_owner ON labels(owner_id);
`

// idSep joins the denormalized id columns.
const idSep = ","

// DB wraps the SQLite connection and the change notification shared by both
// stores. Every acknowledged local write notifies; an fsnotify watch on the
// database file catches writers from other processes, which is how the
// "continuously-updated query" contract is kept without driver hooks.
type DB struct {
	conn   *sql.DB
	path   string
	logger *slog.Logger
	cancel context.CancelFunc

	mu          sync.Mutex
	watchers    map[int]chan struct{}
	nextWatcher int

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// Open opens (or creates) the database, applies pragmas and schema, and
// starts the file watcher.
func Open(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	db := &DB{
		conn:     conn,
		path:     path,
		logger:   logger,
		cancel:   cancel,
		watchers: make(map[int]chan struct{}),
	}
	db.startFileWatch(ctx)
	return db, nil
}

// Close stops the watcher and closes the connection.
func (db *DB) Close() error {
	db.cancel()
	return db.conn.Close()
}

// changes registers a coalescing change signal, torn down when ctx ends.
func (db *DB) changes(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	db.mu.Lock()
	id := db.nextWatcher
	db.nextWatcher++
	db.watchers[id] = ch
	db.mu.Unlock()

	go func() {
		<-ctx.Done()
		db.mu.Lock()
		delete(db.watchers, id)
		close(ch)
		db.mu.Unlock()
	}()
	return ch
}

// notify wakes every registered observer. Non-blocking: an already-signalled
// observer coalesces.
func (db *DB) notify() {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, ch := range db.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// notifyDebounced coalesces bursts of filesystem events into one signal.
func (db *DB) notifyDebounced(delay time.Duration) {
	db.debounceMu.Lock()
	defer db.debounceMu.Unlock()
	if db.debounce != nil {
		db.debounce.Reset(delay)
		return
	}
	db.debounce = time.AfterFunc(delay, func() {
		db.debounceMu.Lock()
		db.debounce = nil
		db.debounceMu.Unlock()
		db.notify()
	})
}

// startFileWatch observes the database file for external writers. Failure
// to watch only degrades external-change detection; our own writes still
// notify directly.
func (db *DB) startFileWatch(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		db.logger.Error("file watch unavailable", "path", db.path, "error", err)
		return
	}
	if err := watcher.Add(filepath.Dir(db.path)); err != nil {
		db.logger.Error("file watch unavailable", "path", db.path, "error", err)
		_ = watcher.Close()
		return
	}

	base := filepath.Base(db.path)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				// The WAL and journal siblings change on every commit.
				if !strings.HasPrefix(filepath.Base(event.Name), base) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
					continue
				}
				db.notifyDebounced(50 * time.Millisecond)
			case werr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				db.logger.Error("fsnotify error", "error", werr)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		db.logger.Error("file watch stopped", "error", err)
	}))
}

// sendLatest delivers on a capacity-1 channel, displacing an unread older
// snapshot.
func sendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
