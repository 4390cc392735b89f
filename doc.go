// Package notelink is the composition root for the note/label
// synchronization core.
//
// It connects the domain layer (entities, ports, the relationship
// synchronizer) with the interchangeable persistence adapters using the
// Hexagonal Architecture pattern.
//
// Philosophy:
//
// Notes and labels form a denormalized many-to-many relationship: each note
// lists its label ids and each label lists its note ids, with no
// cross-collection transactions. notelink keeps the two directions in
// agreement through ordered, read-before-write composite operations, and
// propagates push-based backend changes into an observable, UI-facing state.
//
// Features:
//
//   - **Hexagonal Architecture**: core domain is isolated from persistence details.
//   - **Swappable Backends**: a remote, listener-driven document store and a
//     local SQLite cache behind the same port, switchable at runtime.
//   - **Reactive State**: every backend change re-publishes the full current
//     set through the bridges; consumers never poll.
//   - **Relationship Synchronizer**: attach/detach/delete operations that
//     bound the window of one-sided edges and self-heal drift.
//
// Usage:
//
//	app, err := notelink.New(ctx,
//		notelink.WithOwner("user-1"),
//		notelink.WithLocalStore("./notes.db"),
//		notelink.WithLogger(logger),
//	)
//
//	err = app.Sync.AttachLabelsToNotes(ctx, noteIDs, addLabels, removeLabels, "")
package notelink
