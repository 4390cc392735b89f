package remote

import (
	"fmt"
	"time"

	"github.com/aretw0/notelink/pkg/core"
)

// Field names mirror the document shape of the remote store.
const (
	fieldOwnerID   = "ownerId"
	fieldTitle     = "title"
	fieldBody      = "body"
	fieldCreatedAt = "createdAt"
	fieldLabelIDs  = "labelIds"
	fieldTrashed   = "trashed"
	fieldArchived  = "archived"
	fieldTrashedAt = "trashedAt"
	fieldReminder  = "reminderAt"
	fieldName      = "name"
	fieldNoteIDs   = "noteIds"
)

// Timestamps travel as unix seconds.

func noteFields(n core.Note) map[string]any {
	f := map[string]any{
		fieldOwnerID:   n.OwnerID,
		fieldTitle:     n.Title,
		fieldBody:      n.Body,
		fieldCreatedAt: n.CreatedAt.Unix(),
		fieldLabelIDs:  n.LabelIDs.Sorted(),
		fieldTrashed:   n.Trashed,
		fieldArchived:  n.Archived,
	}
	if n.TrashedAt != nil {
		f[fieldTrashedAt] = n.TrashedAt.Unix()
	}
	if n.Reminder != nil {
		f[fieldReminder] = n.Reminder.Unix()
	}
	return f
}

func notePatchFields(p core.NotePatch) map[string]any {
	f := map[string]any{}
	if p.Title != nil {
		f[fieldTitle] = *p.Title
	}
	if p.Body != nil {
		f[fieldBody] = *p.Body
	}
	if p.LabelIDs != nil {
		f[fieldLabelIDs] = p.LabelIDs.Sorted()
	}
	if p.Trashed != nil {
		f[fieldTrashed] = *p.Trashed
	}
	if p.Archived != nil {
		f[fieldArchived] = *p.Archived
	}
	if p.ClearTrashedAt {
		f[fieldTrashedAt] = nil
	} else if p.TrashedAt != nil {
		f[fieldTrashedAt] = p.TrashedAt.Unix()
	}
	if p.ClearReminder {
		f[fieldReminder] = nil
	} else if p.Reminder != nil {
		f[fieldReminder] = p.Reminder.Unix()
	}
	return f
}

func decodeNote(doc Document) (core.Note, error) {
	if doc.ID == "" {
		return core.Note{}, fmt.Errorf("note document without id")
	}
	n := core.Note{
		ID:       doc.ID,
		OwnerID:  asString(doc.Fields[fieldOwnerID]),
		Title:    asString(doc.Fields[fieldTitle]),
		Body:     asString(doc.Fields[fieldBody]),
		LabelIDs: asIDSet(doc.Fields[fieldLabelIDs]),
		Trashed:  asBool(doc.Fields[fieldTrashed]),
		Archived: asBool(doc.Fields[fieldArchived]),
	}
	n.CreatedAt = time.Unix(asInt64(doc.Fields[fieldCreatedAt]), 0).UTC()
	n.TrashedAt = asTimePtr(doc.Fields[fieldTrashedAt])
	n.Reminder = asTimePtr(doc.Fields[fieldReminder])
	return n, nil
}

func labelFields(l core.Label) map[string]any {
	return map[string]any{
		fieldOwnerID: l.OwnerID,
		fieldName:    l.Name,
		fieldNoteIDs: l.NoteIDs.Sorted(),
	}
}

func labelPatchFields(p core.LabelPatch) map[string]any {
	f := map[string]any{}
	if p.Name != nil {
		f[fieldName] = *p.Name
	}
	if p.NoteIDs != nil {
		f[fieldNoteIDs] = p.NoteIDs.Sorted()
	}
	return f
}

func decodeLabel(doc Document) (core.Label, error) {
	if doc.ID == "" {
		return core.Label{}, fmt.Errorf("label document without id")
	}
	return core.Label{
		ID:      doc.ID,
		OwnerID: asString(doc.Fields[fieldOwnerID]),
		Name:    asString(doc.Fields[fieldName]),
		NoteIDs: asIDSet(doc.Fields[fieldNoteIDs]),
	}, nil
}

// Field values arrive through JSON, so numbers come back as float64 and
// arrays as []any. The helpers below normalize both directions.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asTimePtr(v any) *time.Time {
	if v == nil {
		return nil
	}
	secs := asInt64(v)
	if secs == 0 {
		return nil
	}
	t := time.Unix(secs, 0).UTC()
	return &t
}

func asIDSet(v any) core.IDSet {
	switch ids := v.(type) {
	case []string:
		return core.NewIDSet(ids...)
	case []any:
		s := core.NewIDSet()
		for _, id := range ids {
			s.Add(asString(id))
		}
		return s
	}
	return core.NewIDSet()
}
