package notelink

import (
	"context"
	"log/slog"

	"github.com/aretw0/notelink/internal/platform"
	"github.com/aretw0/notelink/pkg/adapters/remote"
	"github.com/aretw0/notelink/pkg/core"
)

// --- Types ---

// Domain aliases, so most callers only import this package.
type (
	Note         = core.Note
	Label        = core.Label
	NotePatch    = core.NotePatch
	LabelPatch   = core.LabelPatch
	IDSet        = core.IDSet
	Session      = core.Session
	Synchronizer = core.Synchronizer
	BackendKind  = core.BackendKind

	// App is the wired system returned by New.
	App = platform.App

	// DocumentClient is the remote document-store boundary, exposed for
	// custom gateways and test fakes.
	DocumentClient = remote.DocumentClient
)

// The two built-in backends.
const (
	BackendRemote = core.BackendRemote
	BackendLocal  = core.BackendLocal
)

// Common errors.
var (
	ErrNotFound           = core.ErrNotFound
	ErrBackendUnavailable = core.ErrBackendUnavailable
	ErrWriteRejected      = core.ErrWriteRejected
)

// NewIDSet builds an id set from the given ids.
func NewIDSet(ids ...string) IDSet {
	return core.NewIDSet(ids...)
}

// --- Configuration ---

// Option defines a functional option for configuring the app.
type Option = platform.Option

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithOwner scopes the session to one user id.
func WithOwner(ownerID string) Option {
	return platform.WithOwner(ownerID)
}

// WithGateway enables the remote backend by dialing the sync gateway.
func WithGateway(url string) Option {
	return platform.WithGateway(url)
}

// WithDocumentClient injects a ready document client for the remote backend.
func WithDocumentClient(c DocumentClient) Option {
	return platform.WithDocumentClient(c)
}

// WithLocalStore enables the local backend on the SQLite file at path.
func WithLocalStore(path string) Option {
	return platform.WithLocalStore(path)
}

// WithInitialBackend selects the backend active at startup.
func WithInitialBackend(kind BackendKind) Option {
	return platform.WithInitialBackend(kind)
}

// WithNoteBackend registers a custom note store under the given kind.
func WithNoteBackend(kind BackendKind, store core.NoteStore) Option {
	return platform.WithNoteBackend(kind, store)
}

// WithLabelBackend registers a custom label store under the given kind.
func WithLabelBackend(kind BackendKind, store core.LabelStore) Option {
	return platform.WithLabelBackend(kind, store)
}

// --- Factory ---

// New assembles bridges and synchronizer for one session.
func New(ctx context.Context, opts ...Option) (*App, error) {
	return platform.New(ctx, opts...)
}
