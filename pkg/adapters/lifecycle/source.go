package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notelink/pkg/core"
)

// Snapshot wraps one bridge emission as a lifecycle event.
type Snapshot[E core.Entity] struct {
	Items []E
}

func (s *Snapshot[E]) String() string {
	return fmt.Sprintf("snapshot of %d items", len(s.Items))
}

type snapshotSource[E core.Entity] struct {
	stream <-chan []E
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits bridge snapshots.
// It bridges the typed snapshot channel to the generic lifecycle Event
// interface so the stream can participate in supervised run groups.
func NewSource[E core.Entity](stream <-chan []E) lifecycle.Source {
	return &snapshotSource[E]{
		stream: stream,
		out:    make(chan lifecycle.Event),
	}
}

func (s *snapshotSource[E]) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *snapshotSource[E]) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case items, ok := <-s.stream:
				if !ok {
					return nil
				}
				select {
				case s.out <- &Snapshot[E]{Items: items}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
