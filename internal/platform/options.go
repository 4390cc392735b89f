package platform

import (
	"log/slog"

	"github.com/aretw0/notelink/pkg/adapters/remote"
	"github.com/aretw0/notelink/pkg/core"
)

// options holds the internal configuration for the notelink app.
type options struct {
	logger      *slog.Logger
	owner       string
	gatewayURL  string
	localPath   string
	initial     core.BackendKind
	client      remote.DocumentClient
	noteStores  map[core.BackendKind]core.NoteStore
	labelStores map[core.BackendKind]core.LabelStore
}

// Option defines a functional option for configuring the app.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		noteStores:  make(map[core.BackendKind]core.NoteStore),
		labelStores: make(map[core.BackendKind]core.LabelStore),
	}
}

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithOwner scopes the session to one user id. Required: there is no
// global "current user" fallback.
func WithOwner(ownerID string) Option {
	return func(o *options) {
		o.owner = ownerID
	}
}

// WithGateway enables the remote backend by dialing the sync gateway at url.
func WithGateway(url string) Option {
	return func(o *options) {
		o.gatewayURL = url
	}
}

// WithDocumentClient injects a ready document client for the remote backend
// (e.g. a fake in tests), skipping the gateway dial.
func WithDocumentClient(c remote.DocumentClient) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithLocalStore enables the local backend on the SQLite file at path.
func WithLocalStore(path string) Option {
	return func(o *options) {
		o.localPath = path
	}
}

// WithInitialBackend selects the backend that is active at startup.
// Defaults to remote when configured, local otherwise.
func WithInitialBackend(kind core.BackendKind) Option {
	return func(o *options) {
		o.initial = kind
	}
}

// WithNoteBackend registers a custom note store under the given kind.
func WithNoteBackend(kind core.BackendKind, store core.NoteStore) Option {
	return func(o *options) {
		o.noteStores[kind] = store
	}
}

// WithLabelBackend registers a custom label store under the given kind.
func WithLabelBackend(kind core.BackendKind, store core.LabelStore) Option {
	return func(o *options) {
		o.labelStores[kind] = store
	}
}
