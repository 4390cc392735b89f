// Package remote implements the note and label ports against a remote,
// listener-capable document collection. The collection itself is an external
// collaborator reached through DocumentClient; this package owns the
// real-time subscriptions and the mapping between documents and entities.
package remote

import "context"

// Collection names used in the document store.
const (
	CollectionNotes  = "notes"
	CollectionLabels = "labels"
)

// Document is a raw record in a remote collection.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Filter restricts a listener to documents whose field equals the value.
// The stores use it to scope listeners to one owner.
type Filter struct {
	Field  string `json:"field"`
	Equals any    `json:"equals"`
}

// DocumentClient is the consumed surface of the remote document store.
// Implementations translate their failure modes into the core sentinels:
// core.ErrNotFound, core.ErrBackendUnavailable, core.ErrWriteRejected.
type DocumentClient interface {
	// Get fetches a single document.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Set writes the full document, creating it if absent.
	Set(ctx context.Context, collection, id string, fields map[string]any) error

	// Update merges the given fields into an existing document. A nil
	// field value clears that field.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes a document.
	Delete(ctx context.Context, collection, id string) error

	// Listen emits the full matching result set on every change in the
	// collection, starting with the current state. The channel closes
	// when ctx is cancelled or the connection is lost.
	Listen(ctx context.Context, collection string, filter Filter) (<-chan []Document, error)
}
