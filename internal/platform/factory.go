package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/notelink/pkg/adapters/local"
	"github.com/aretw0/notelink/pkg/adapters/remote"
	"github.com/aretw0/notelink/pkg/bridge"
	"github.com/aretw0/notelink/pkg/core"
)

// App is the wired system: one bridge per entity type and the relationship
// synchronizer on top. Its lifetime is the session's, login to logout.
type App struct {
	Session core.Session
	Notes   *bridge.Notes
	Labels  *bridge.Labels
	Sync    *core.Synchronizer

	closers []func() error
}

// New assembles the app. ctx bounds all subscriptions; cancelling it stops
// state propagation without retracting in-flight writes.
func New(ctx context.Context, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	session := core.Session{OwnerID: o.owner, SignedIn: time.Now()}
	if !session.Valid() {
		return nil, errors.New("owner id is required")
	}

	app := &App{Session: session}

	client := o.client
	if client == nil && o.gatewayURL != "" {
		gc, err := remote.DialGateway(ctx, o.gatewayURL, o.logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, gc.Close)
		client = gc
	}
	if client != nil {
		o.noteStores[core.BackendRemote] = remote.NewNoteStore(client, session, o.logger)
		o.labelStores[core.BackendRemote] = remote.NewLabelStore(client, session, o.logger)
	}

	if o.localPath != "" {
		db, err := local.Open(o.localPath, o.logger)
		if err != nil {
			app.close()
			return nil, err
		}
		app.closers = append(app.closers, db.Close)
		o.noteStores[core.BackendLocal] = local.NewNoteStore(db, session, o.logger)
		o.labelStores[core.BackendLocal] = local.NewLabelStore(db, session, o.logger)
	}

	if len(o.noteStores) == 0 {
		return nil, errors.New("no backend configured")
	}

	initial := o.initial
	if initial == "" {
		initial = core.BackendLocal
		if _, ok := o.noteStores[core.BackendRemote]; ok {
			initial = core.BackendRemote
		}
	}

	notes, err := bridge.New(ctx, "notes", o.noteStores, initial, o.logger)
	if err != nil {
		app.close()
		return nil, err
	}
	labels, err := bridge.New(ctx, "labels", o.labelStores, initial, o.logger)
	if err != nil {
		app.close()
		return nil, err
	}

	app.Notes = notes
	app.Labels = labels
	app.Sync = core.NewSynchronizer(notes, labels, session, o.logger)
	return app, nil
}

// SwitchBackend swaps the active backend of both bridges.
func (a *App) SwitchBackend(kind core.BackendKind) error {
	if err := a.Notes.SwitchBackend(kind); err != nil {
		return fmt.Errorf("switch notes: %w", err)
	}
	if err := a.Labels.SwitchBackend(kind); err != nil {
		return fmt.Errorf("switch labels: %w", err)
	}
	return nil
}

// ObserveNotes exposes the note bridge's republished stream.
func (a *App) ObserveNotes(ctx context.Context) (<-chan []core.Note, error) {
	return a.Notes.ObserveAll(ctx)
}

// ObserveLabels exposes the label bridge's republished stream.
func (a *App) ObserveLabels(ctx context.Context) (<-chan []core.Label, error) {
	return a.Labels.ObserveAll(ctx)
}

// Close releases backend resources. Subscriptions end with the ctx passed
// to New.
func (a *App) Close() error {
	return a.close()
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
