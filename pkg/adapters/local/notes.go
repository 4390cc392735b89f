package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/notelink/pkg/core"
)

const noteColumns = "id, owner_id, title, body, created_at, label_ids, trashed, archived, trashed_at, reminder_at"

// NoteStore implements core.NoteStore on the local notes table, scoped to
// one owner.
type NoteStore struct {
	db      *DB
	session core.Session
	logger  *slog.Logger
}

func NewNoteStore(db *DB, session core.Session, logger *slog.Logger) *NoteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NoteStore{db: db, session: session, logger: logger}
}

func (s *NoteStore) Get(ctx context.Context, id string) (core.Note, error) {
	row := s.db.conn.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ? AND owner_id = ?",
		id, s.session.OwnerID)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Note{}, core.ErrNotFound
	}
	if err != nil {
		return core.Note{}, fmt.Errorf("get note %s: %w", id, err)
	}
	return n, nil
}

func (s *NoteStore) Create(ctx context.Context, n core.Note) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.OwnerID == "" {
		n.OwnerID = s.session.OwnerID
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.conn.ExecContext(ctx,
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		n.ID, n.OwnerID, n.Title, n.Body, n.CreatedAt.Unix(), n.LabelIDs.Join(idSep),
		boolInt(n.Trashed), boolInt(n.Archived), unixPtr(n.TrashedAt), unixPtr(n.Reminder))
	if err != nil {
		if strings.Contains(err.Error(), "constraint") {
			return "", fmt.Errorf("create note %s: %w", n.ID, core.ErrWriteRejected)
		}
		return "", fmt.Errorf("create note %s: %w", n.ID, err)
	}
	s.db.notify()
	return n.ID, nil
}

// Update reads the current row inside a transaction, materializes the patch
// and writes the full row back. Per-row writes serialize on the database, so
// two patches to the same note cannot interleave column-wise.
func (s *NoteStore) Update(ctx context.Context, id string, patch core.NotePatch) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update note %s: %w", id, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ? AND owner_id = ?",
		id, s.session.OwnerID)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update note %s: %w", id, err)
	}

	n = patch.Apply(n)
	_, err = tx.ExecContext(ctx,
		`UPDATE notes SET title = ?, body = ?, label_ids = ?, trashed = ?, archived = ?, trashed_at = ?, reminder_at = ?
		 WHERE id = ? AND owner_id = ?`,
		n.Title, n.Body, n.LabelIDs.Join(idSep), boolInt(n.Trashed), boolInt(n.Archived),
		unixPtr(n.TrashedAt), unixPtr(n.Reminder), id, s.session.OwnerID)
	if err != nil {
		return fmt.Errorf("update note %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update note %s: %w", id, err)
	}
	s.db.notify()
	return nil
}

func (s *NoteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.conn.ExecContext(ctx,
		"DELETE FROM notes WHERE id = ? AND owner_id = ?", id, s.session.OwnerID)
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.ErrNotFound
	}
	s.db.notify()
	return nil
}

// ObserveAll emulates a continuously-updated query: the current result set
// is emitted on subscribe and re-queried after every change signal.
func (s *NoteStore) ObserveAll(ctx context.Context) (<-chan []core.Note, error) {
	out := make(chan []core.Note, 1)
	changes := s.db.changes(ctx)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		emit := func() {
			notes, err := s.list(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("note query failed", "error", err)
				}
				return
			}
			sendLatest(out, notes)
		}
		emit()
		for {
			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-changes:
				if !ok {
					return nil
				}
				emit()
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("note observer stopped", "error", err)
	}))
	return out, nil
}

func (s *NoteStore) list(ctx context.Context) ([]core.Note, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE owner_id = ? ORDER BY created_at DESC, id",
		s.session.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []core.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (core.Note, error) {
	var (
		n                   core.Note
		createdAt           int64
		labelIDs            string
		trashed, archived   int
		trashedAt, remindAt sql.NullInt64
	)
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Body, &createdAt, &labelIDs,
		&trashed, &archived, &trashedAt, &remindAt)
	if err != nil {
		return core.Note{}, err
	}
	n.CreatedAt = time.Unix(createdAt, 0).UTC()
	n.LabelIDs = core.ParseIDSet(labelIDs, idSep)
	n.Trashed = trashed != 0
	n.Archived = archived != 0
	n.TrashedAt = timePtr(trashedAt)
	n.Reminder = timePtr(remindAt)
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
