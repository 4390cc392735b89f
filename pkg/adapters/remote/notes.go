package remote

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/notelink/pkg/core"
)

// NoteStore implements core.NoteStore against the remote notes collection.
type NoteStore struct {
	client  DocumentClient
	session core.Session
	logger  *slog.Logger
}

// NewNoteStore scopes a note store to one session's owner.
func NewNoteStore(client DocumentClient, session core.Session, logger *slog.Logger) *NoteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NoteStore{client: client, session: session, logger: logger}
}

func (s *NoteStore) Get(ctx context.Context, id string) (core.Note, error) {
	doc, err := s.client.Get(ctx, CollectionNotes, id)
	if err != nil {
		return core.Note{}, err
	}
	return decodeNote(doc)
}

func (s *NoteStore) Create(ctx context.Context, n core.Note) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.OwnerID == "" {
		n.OwnerID = s.session.OwnerID
	}
	if err := s.client.Set(ctx, CollectionNotes, n.ID, noteFields(n)); err != nil {
		return "", fmt.Errorf("create note %s: %w", n.ID, err)
	}
	return n.ID, nil
}

func (s *NoteStore) Update(ctx context.Context, id string, patch core.NotePatch) error {
	fields := notePatchFields(patch)
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.Update(ctx, CollectionNotes, id, fields); err != nil {
		return fmt.Errorf("update note %s: %w", id, err)
	}
	return nil
}

func (s *NoteStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, CollectionNotes, id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return nil
}

// ObserveAll maps the collection listener onto entity snapshots. Documents
// that fail to decode are skipped with a log line rather than poisoning the
// whole emission.
func (s *NoteStore) ObserveAll(ctx context.Context) (<-chan []core.Note, error) {
	docs, err := s.client.Listen(ctx, CollectionNotes, Filter{Field: fieldOwnerID, Equals: s.session.OwnerID})
	if err != nil {
		return nil, fmt.Errorf("listen notes: %w", err)
	}

	out := make(chan []core.Note, 1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for snap := range docs {
			notes := make([]core.Note, 0, len(snap))
			for _, doc := range snap {
				n, err := decodeNote(doc)
				if err != nil {
					s.logger.Error("skipping undecodable note", "id", doc.ID, "error", err)
					continue
				}
				notes = append(notes, n)
			}
			select {
			case out <- notes:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("note listener stopped", "error", err)
	}))
	return out, nil
}
