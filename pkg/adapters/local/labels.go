package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/notelink/pkg/core"
)

const labelColumns = "id, owner_id, name, note_ids"

// LabelStore implements core.LabelStore on the local labels table, scoped
// to one owner.
type LabelStore struct {
	db      *DB
	session core.Session
	logger  *slog.Logger
}

func NewLabelStore(db *DB, session core.Session, logger *slog.Logger) *LabelStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LabelStore{db: db, session: session, logger: logger}
}

func (s *LabelStore) Get(ctx context.Context, id string) (core.Label, error) {
	row := s.db.conn.QueryRowContext(ctx,
		"SELECT "+labelColumns+" FROM labels WHERE id = ? AND owner_id = ?",
		id, s.session.OwnerID)
	l, err := scanLabel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Label{}, core.ErrNotFound
	}
	if err != nil {
		return core.Label{}, fmt.Errorf("get label %s: %w", id, err)
	}
	return l, nil
}

func (s *LabelStore) Create(ctx context.Context, l core.Label) (string, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.OwnerID == "" {
		l.OwnerID = s.session.OwnerID
	}
	_, err := s.db.conn.ExecContext(ctx,
		"INSERT INTO labels ("+labelColumns+") VALUES (?, ?, ?, ?)",
		l.ID, l.OwnerID, l.Name, l.NoteIDs.Join(idSep))
	if err != nil {
		if strings.Contains(err.Error(), "constraint") {
			return "", fmt.Errorf("create label %s: %w", l.ID, core.ErrWriteRejected)
		}
		return "", fmt.Errorf("create label %s: %w", l.ID, err)
	}
	s.db.notify()
	return l.ID, nil
}

func (s *LabelStore) Update(ctx context.Context, id string, patch core.LabelPatch) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update label %s: %w", id, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+labelColumns+" FROM labels WHERE id = ? AND owner_id = ?",
		id, s.session.OwnerID)
	l, err := scanLabel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update label %s: %w", id, err)
	}

	l = patch.Apply(l)
	_, err = tx.ExecContext(ctx,
		"UPDATE labels SET name = ?, note_ids = ? WHERE id = ? AND owner_id = ?",
		l.Name, l.NoteIDs.Join(idSep), id, s.session.OwnerID)
	if err != nil {
		return fmt.Errorf("update label %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update label %s: %w", id, err)
	}
	s.db.notify()
	return nil
}

func (s *LabelStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.conn.ExecContext(ctx,
		"DELETE FROM labels WHERE id = ? AND owner_id = ?", id, s.session.OwnerID)
	if err != nil {
		return fmt.Errorf("delete label %s: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.ErrNotFound
	}
	s.db.notify()
	return nil
}

// ObserveAll emulates a continuously-updated query over the labels table.
func (s *LabelStore) ObserveAll(ctx context.Context) (<-chan []core.Label, error) {
	out := make(chan []core.Label, 1)
	changes := s.db.changes(ctx)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		emit := func() {
			labels, err := s.list(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("label query failed", "error", err)
				}
				return
			}
			sendLatest(out, labels)
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
		s.logger.Error("label observer stopped", "error", err)
	}))
	return out, nil
}

func (s *LabelStore) list(ctx context.Context) ([]core.Label, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		"SELECT "+labelColumns+" FROM labels WHERE owner_id = ? ORDER BY name, id",
		s.session.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []core.Label{}
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func scanLabel(row rowScanner) (core.Label, error) {
	var (
		l       core.Label
		noteIDs string
	)
	if err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &noteIDs); err != nil {
		return core.Label{}, err
	}
	l.NoteIDs = core.ParseIDSet(noteIDs, idSep)
	return l, nil
}
