package remote

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/notelink/pkg/core"
)

// LabelStore implements core.LabelStore against the remote labels collection.
type LabelStore struct {
	client  DocumentClient
	session core.Session
	logger  *slog.Logger
}

// NewLabelStore scopes a label store to one session's owner.
func NewLabelStore(client DocumentClient, session core.Session, logger *slog.Logger) *LabelStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LabelStore{client: client, session: session, logger: logger}
}

func (s *LabelStore) Get(ctx context.Context, id string) (core.Label, error) {
	doc, err := s.client.Get(ctx, CollectionLabels, id)
	if err != nil {
		return core.Label{}, err
	}
	return decodeLabel(doc)
}

func (s *LabelStore) Create(ctx context.Context, l core.Label) (string, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.OwnerID == "" {
		l.OwnerID = s.session.OwnerID
	}
	if err := s.client.Set(ctx, CollectionLabels, l.ID, labelFields(l)); err != nil {
		return "", fmt.Errorf("create label %s: %w", l.ID, err)
	}
	return l.ID, nil
}

func (s *LabelStore) Update(ctx context.Context, id string, patch core.LabelPatch) error {
	fields := labelPatchFields(patch)
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.Update(ctx, CollectionLabels, id, fields); err != nil {
		return fmt.Errorf("update label %s: %w", id, err)
	}
	return nil
}

func (s *LabelStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, CollectionLabels, id); err != nil {
		return fmt.Errorf("delete label %s: %w", id, err)
	}
	return nil
}

// ObserveAll maps the collection listener onto entity snapshots.
func (s *LabelStore) ObserveAll(ctx context.Context) (<-chan []core.Label, error) {
	docs, err := s.client.Listen(ctx, CollectionLabels, Filter{Field: fieldOwnerID, Equals: s.session.OwnerID})
	if err != nil {
		return nil, fmt.Errorf("listen labels: %w", err)
	}

	out := make(chan []core.Label, 1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for snap := range docs {
			labels := make([]core.Label, 0, len(snap))
			for _, doc := range snap {
				l, err := decodeLabel(doc)
				if err != nil {
					s.logger.Error("skipping undecodable label", "id", doc.ID, "error", err)
					continue
				}
				labels = append(labels, l)
			}
			select {
			case out <- labels:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("label listener stopped", "error", err)
	}))
	return out, nil
}
