// Package bridge holds the seam between the UI-facing state and the
// interchangeable backends. A Bridge owns exactly one active backend per
// entity type, forwards port operations to it unchanged, and republishes
// the active backend's ObserveAll stream as its own published state.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notelink/pkg/core"
)

// Bridge republishes one active backend. It implements core.Store itself,
// so consumers observe the bridge and never notice a backend switch beyond
// the content changing.
type Bridge[E core.Entity, P any] struct {
	name     string
	logger   *slog.Logger
	rootCtx  context.Context
	backends map[core.BackendKind]core.Store[E, P]

	mu     sync.RWMutex
	kind   core.BackendKind
	active core.Store[E, P]
	gen    int
	cancel context.CancelFunc

	snapMu sync.RWMutex
	byID   map[string]E
	list   []E

	subMu   sync.Mutex
	subs    map[int]chan []E
	nextSub int
}

// New builds a bridge over the given backends and subscribes to the initial
// kind. ctx bounds the bridge's whole subscription lifetime; cancelling it
// stops state propagation (in-flight backend writes are not retracted).
func New[E core.Entity, P any](ctx context.Context, name string, backends map[core.BackendKind]core.Store[E, P], initial core.BackendKind, logger *slog.Logger) (*Bridge[E, P], error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if _, ok := backends[initial]; !ok {
		return nil, fmt.Errorf("bridge %s: unknown backend %q", name, initial)
	}
	b := &Bridge[E, P]{
		name:     name,
		logger:   logger,
		rootCtx:  ctx,
		backends: backends,
		subs:     make(map[int]chan []E),
	}
	b.mu.Lock()
	b.resubscribeLocked(initial)
	b.mu.Unlock()
	return b, nil
}

// Kind returns the active backend kind.
func (b *Bridge[E, P]) Kind() core.BackendKind {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.kind
}

// SwitchBackend swaps the active backend and re-subscribes the published
// stream to it. The previous subscription is torn down first and its late
// emissions are discarded, so a stale snapshot never races the new one.
// This is a view change, not a data migration.
func (b *Bridge[E, P]) SwitchBackend(kind core.BackendKind) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.backends[kind]; !ok {
		return fmt.Errorf("bridge %s: unknown backend %q", b.name, kind)
	}
	if kind == b.kind {
		return nil
	}
	b.resubscribeLocked(kind)
	return nil
}

// resubscribeLocked tears down the current subscription, drops the cached
// snapshot and starts a listener on the new backend. Callers hold b.mu.
func (b *Bridge[E, P]) resubscribeLocked(kind core.BackendKind) {
	if b.cancel != nil {
		b.cancel()
	}
	b.gen++
	b.kind = kind
	b.active = b.backends[kind]

	// Drop the old backend's snapshot: lookups miss (and fall back to the
	// backend) rather than serve content from the previous view.
	b.snapMu.Lock()
	b.byID = nil
	b.list = nil
	b.snapMu.Unlock()

	subCtx, cancel := context.WithCancel(b.rootCtx)
	b.cancel = cancel

	gen := b.gen
	store := b.active
	lifecycle.Go(subCtx, func(ctx context.Context) error {
		ch, err := store.ObserveAll(ctx)
		if err != nil {
			return fmt.Errorf("bridge %s: observe %s: %w", b.name, kind, err)
		}
		for snap := range ch {
			b.publish(gen, snap)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		b.logger.Error("bridge subscription failed", "bridge", b.name, "backend", string(kind), "error", err)
	}))
}

// publish installs a fresh snapshot and fans it out. Emissions from a
// generation older than the current subscription are discarded.
func (b *Bridge[E, P]) publish(gen int, snap []E) {
	byID := make(map[string]E, len(snap))
	for _, e := range snap {
		byID[e.EntityID()] = e
	}

	// Holding b.mu across the install keeps a concurrent SwitchBackend
	// from clearing the snapshot between the generation check and the
	// write below.
	b.mu.RLock()
	if gen != b.gen {
		b.mu.RUnlock()
		b.logger.Debug("discarding stale emission", "bridge", b.name, "gen", gen)
		return
	}
	b.snapMu.Lock()
	b.byID = byID
	b.list = snap
	b.snapMu.Unlock()
	b.mu.RUnlock()

	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, ch := range b.subs {
		sendLatest(ch, snap)
	}
}

// sendLatest delivers snap on a capacity-1 channel, displacing an unread
// older snapshot. Slow consumers skip intermediate states instead of
// blocking the publisher.
func sendLatest[E any](ch chan []E, snap []E) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Cached looks up the last-published snapshot without touching the backend.
func (b *Bridge[E, P]) Cached(id string) (E, bool) {
	b.snapMu.RLock()
	defer b.snapMu.RUnlock()
	e, ok := b.byID[id]
	return e, ok
}

// Snapshot returns the last-published full entity set.
func (b *Bridge[E, P]) Snapshot() []E {
	b.snapMu.RLock()
	defer b.snapMu.RUnlock()
	return b.list
}

// ObserveAll returns the bridge's republished stream. The current snapshot
// (if any) is delivered immediately; afterwards every publication of the
// active backend is forwarded, coalescing to the latest for slow readers.
// The channel closes when ctx is cancelled.
func (b *Bridge[E, P]) ObserveAll(ctx context.Context) (<-chan []E, error) {
	ch := make(chan []E, 1)

	b.snapMu.RLock()
	current := b.list
	primed := b.byID != nil
	b.snapMu.RUnlock()

	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	if primed {
		sendLatest(ch, current)
	}
	b.subMu.Unlock()

	go func() {
		<-ctx.Done()
		b.subMu.Lock()
		delete(b.subs, id)
		close(ch)
		b.subMu.Unlock()
	}()
	return ch, nil
}

// Get forwards to the active backend.
func (b *Bridge[E, P]) Get(ctx context.Context, id string) (E, error) {
	return b.store().Get(ctx, id)
}

// Create forwards to the active backend.
func (b *Bridge[E, P]) Create(ctx context.Context, e E) (string, error) {
	return b.store().Create(ctx, e)
}

// Update forwards to the active backend.
func (b *Bridge[E, P]) Update(ctx context.Context, id string, patch P) error {
	return b.store().Update(ctx, id, patch)
}

// Delete forwards to the active backend.
func (b *Bridge[E, P]) Delete(ctx context.Context, id string) error {
	return b.store().Delete(ctx, id)
}

func (b *Bridge[E, P]) store() core.Store[E, P] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// Notes and Labels are the two bridges the system actually runs.
type (
	Notes  = Bridge[core.Note, core.NotePatch]
	Labels = Bridge[core.Label, core.LabelPatch]
)
