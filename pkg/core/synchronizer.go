package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Synchronizer orchestrates the composite operations that must touch both
// the note side and the label side of the relationship. Every composite
// operation re-reads current state per entity before computing the next
// state, so overlapping calls converge instead of clobbering each other.
//
// Writes already committed are never rolled back: a partial failure leaves
// at worst a one-sided edge, which the next composite call repairs.
type Synchronizer struct {
	notes   NotesGateway
	labels  LabelsGateway
	session Session
	logger  *slog.Logger
	newID   func() string
}

// NewSynchronizer wires the two gateways under one session scope.
func NewSynchronizer(notes NotesGateway, labels LabelsGateway, session Session, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synchronizer{
		notes:   notes,
		labels:  labels,
		session: session,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// AttachLabelsToNotes applies a label selection to a set of notes: every id
// in add ends up attached to every note, every id in remove ends up
// detached. A non-empty newLabelName first creates that label and treats it
// as part of add, so no note ever references a label that does not exist.
//
// The note side is always written before the label side, so a mid-failure
// state is at worst "note declares label, label does not yet declare note",
// which is visible on the note's own view and self-heals on the next pass.
func (s *Synchronizer) AttachLabelsToNotes(ctx context.Context, noteIDs, add, remove IDSet, newLabelName string) error {
	add = add.Clone()
	remove = remove.Clone()

	if newLabelName != "" {
		id, err := s.labels.Create(ctx, Label{
			ID:      s.newID(),
			OwnerID: s.session.OwnerID,
			Name:    newLabelName,
			NoteIDs: NewIDSet(),
		})
		if err != nil {
			return fmt.Errorf("create label %q: %w", newLabelName, err)
		}
		add.Add(id)
	}

	// Labels whose membership may change: the explicit selection, whatever
	// the notes currently declare, and any label already claiming one of
	// the notes (catches one-sided label->note drift).
	touched := add.Clone()
	touched.AddAll(remove)
	for _, l := range s.labels.Snapshot() {
		for noteID := range noteIDs {
			if l.NoteIDs.Has(noteID) {
				touched.Add(l.ID)
				break
			}
		}
	}

	var errs []error

	// Note side first.
	applied := make(map[string]IDSet, noteIDs.Len())
	for _, noteID := range noteIDs.Sorted() {
		n, err := s.readNote(ctx, noteID)
		if errors.Is(err, ErrNotFound) {
			s.logger.Debug("note deleted concurrently, skipping", "op", "attach", "note", noteID)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("read note %s: %w", noteID, err))
			continue
		}
		touched.AddAll(n.LabelIDs)

		next := n.LabelIDs.Clone()
		next.RemoveAll(remove)
		next.AddAll(add)
		if !next.Equal(n.LabelIDs) {
			if err := s.notes.Update(ctx, noteID, NotePatch{LabelIDs: &next}); err != nil {
				s.logger.Error("note-side write failed", "op", "attach", "note", noteID, "error", err)
				errs = append(errs, fmt.Errorf("update note %s: %w", noteID, err))
				continue
			}
		}
		applied[noteID] = next
	}

	// Label side second, recomputed against the post-write note state.
	for _, labelID := range touched.Sorted() {
		l, err := s.readLabel(ctx, labelID)
		if errors.Is(err, ErrNotFound) {
			s.logger.Debug("label deleted concurrently, skipping", "op", "attach", "label", labelID)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("read label %s: %w", labelID, err))
			continue
		}

		next := l.NoteIDs.Clone()
		for noteID, labelIDs := range applied {
			if labelIDs.Has(labelID) {
				next.Add(noteID)
			} else {
				next.Remove(noteID)
			}
		}
		if next.Equal(l.NoteIDs) {
			continue
		}
		if err := s.labels.Update(ctx, labelID, LabelPatch{NoteIDs: &next}); err != nil {
			s.logger.Error("label-side write failed", "op", "attach", "label", labelID, "error", err)
			errs = append(errs, fmt.Errorf("update label %s: %w", labelID, err))
		}
	}

	return errors.Join(errs...)
}

// DeleteLabel detaches labelID from every note referencing it, then deletes
// the label entity. The label is only deleted once every note-side removal
// succeeded, so no live note ever points at a label id that is gone.
func (s *Synchronizer) DeleteLabel(ctx context.Context, labelID string) error {
	refs := NewIDSet()
	l, err := s.readLabel(ctx, labelID)
	switch {
	case err == nil:
		refs = l.NoteIDs.Clone()
	case errors.Is(err, ErrNotFound):
		// The label side may already be gone; notes can still reference it.
	default:
		return fmt.Errorf("read label %s: %w", labelID, err)
	}

	// The label's own noteIds can be stale. Scan the note snapshot for
	// one-sided references as well.
	for _, n := range s.notes.Snapshot() {
		if n.LabelIDs.Has(labelID) {
			refs.Add(n.ID)
		}
	}

	var errs []error
	for _, noteID := range refs.Sorted() {
		n, err := s.readNote(ctx, noteID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("read note %s: %w", noteID, err))
			continue
		}
		if !n.LabelIDs.Has(labelID) {
			continue
		}
		next := n.LabelIDs.Clone()
		next.Remove(labelID)
		if err := s.notes.Update(ctx, noteID, NotePatch{LabelIDs: &next}); err != nil {
			s.logger.Error("note-side detach failed", "op", "deleteLabel", "note", noteID, "label", labelID, "error", err)
			errs = append(errs, fmt.Errorf("update note %s: %w", noteID, err))
		}
	}
	if len(errs) > 0 {
		// Keep the label alive while any note may still reference it.
		return errors.Join(errs...)
	}

	if err := s.labels.Delete(ctx, labelID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete label %s: %w", labelID, err)
	}
	return nil
}

// DeleteNote deletes the note entity, then prunes its id from every label
// that lists it. The note is deleted first: a label briefly listing a dead
// note id is lazily-pruned garbage that readers filter out, whereas the
// reverse order could show a live note with a dangling label.
func (s *Synchronizer) DeleteNote(ctx context.Context, noteID string) error {
	labelIDs := NewIDSet()
	n, err := s.readNote(ctx, noteID)
	switch {
	case err == nil:
		labelIDs = n.LabelIDs.Clone()
	case errors.Is(err, ErrNotFound):
	default:
		return fmt.Errorf("read note %s: %w", noteID, err)
	}
	for _, l := range s.labels.Snapshot() {
		if l.NoteIDs.Has(noteID) {
			labelIDs.Add(l.ID)
		}
	}

	if err := s.notes.Delete(ctx, noteID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete note %s: %w", noteID, err)
	}

	var errs []error
	for _, labelID := range labelIDs.Sorted() {
		l, err := s.readLabel(ctx, labelID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("read label %s: %w", labelID, err))
			continue
		}
		// Re-verify before writing: a label updated since our scan must
		// not have the stale membership re-applied.
		if !l.NoteIDs.Has(noteID) {
			continue
		}
		next := l.NoteIDs.Clone()
		next.Remove(noteID)
		if err := s.labels.Update(ctx, labelID, LabelPatch{NoteIDs: &next}); err != nil {
			s.logger.Error("label-side prune failed", "op", "deleteNote", "note", noteID, "label", labelID, "error", err)
			errs = append(errs, fmt.Errorf("update label %s: %w", labelID, err))
		}
	}
	return errors.Join(errs...)
}

// readNote prefers the bridge's published snapshot and falls back to the
// backend when the id is not cached yet.
func (s *Synchronizer) readNote(ctx context.Context, id string) (Note, error) {
	if n, ok := s.notes.Cached(id); ok {
		return n, nil
	}
	return s.notes.Get(ctx, id)
}

func (s *Synchronizer) readLabel(ctx context.Context, id string) (Label, error) {
	if l, ok := s.labels.Cached(id); ok {
		return l, nil
	}
	return s.labels.Get(ctx, id)
}
