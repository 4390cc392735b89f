package core

import "context"

// Entity is anything the stores can persist.
type Entity interface {
	EntityID() string
}

// BackendKind names one of the interchangeable persistence backends.
type BackendKind string

const (
	BackendRemote BackendKind = "remote"
	BackendLocal  BackendKind = "local"
)

// Store defines the contract every backend implements per entity type.
// Adhering to this interface keeps the core independent of the underlying
// storage mechanism (remote document collection, local SQL, in-memory mock).
type Store[E Entity, P any] interface {
	// Get retrieves an entity by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (E, error)

	// ObserveAll returns a continuously-updated view of the full entity
	// set: the current snapshot is emitted promptly on subscribe and
	// re-emitted after every acknowledged change, from whatever writer.
	// Duplicate emissions are possible and must be tolerated. The channel
	// closes when ctx is cancelled.
	ObserveAll(ctx context.Context) (<-chan []E, error)

	// Create persists a new entity and returns its id. A blank id is
	// filled in by the store.
	Create(ctx context.Context, e E) (string, error)

	// Update applies a partial update. Nil patch fields are untouched.
	Update(ctx context.Context, id string, patch P) error

	// Delete removes an entity by id.
	Delete(ctx context.Context, id string) error
}

// NoteStore and LabelStore are the two port contracts of the system.
type (
	NoteStore  = Store[Note, NotePatch]
	LabelStore = Store[Label, LabelPatch]
)

// NotesGateway is what the Synchronizer needs from the note side: the port
// operations plus the bridge's synchronous snapshot access.
type NotesGateway interface {
	NoteStore

	// Cached looks the entity up in the last-published snapshot without
	// touching the backend.
	Cached(id string) (Note, bool)

	// Snapshot returns the last-published full entity set.
	Snapshot() []Note
}

// LabelsGateway is the label-side counterpart of NotesGateway.
type LabelsGateway interface {
	LabelStore
	Cached(id string) (Label, bool)
	Snapshot() []Label
}
