package core

import "time"

// Note is the central entity of the domain.
// Its ID is stable: assigned once at creation and never regenerated.
type Note struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	LabelIDs  IDSet      `json:"labelIds"`
	Trashed   bool       `json:"trashed"`
	Archived  bool       `json:"archived"`
	TrashedAt *time.Time `json:"trashedAt,omitempty"`
	Reminder  *time.Time `json:"reminderAt,omitempty"`
}

// EntityID implements Entity.
func (n Note) EntityID() string { return n.ID }

// NotePatch describes a partial update to a Note.
// Nil fields are left untouched by the backend.
type NotePatch struct {
	Title    *string
	Body     *string
	LabelIDs *IDSet
	Trashed  *bool
	Archived *bool

	// Optional timestamps need an explicit clear, since a nil pointer
	// already means "don't touch".
	TrashedAt      *time.Time
	ClearTrashedAt bool
	Reminder       *time.Time
	ClearReminder  bool
}

// Apply returns a copy of n with the patch applied.
// Backends that hold full rows (the local store) use this to materialize
// a partial update.
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Body != nil {
		n.Body = *p.Body
	}
	if p.LabelIDs != nil {
		n.LabelIDs = p.LabelIDs.Clone()
	}
	if p.Trashed != nil {
		n.Trashed = *p.Trashed
	}
	if p.Archived != nil {
		n.Archived = *p.Archived
	}
	if p.ClearTrashedAt {
		n.TrashedAt = nil
	} else if p.TrashedAt != nil {
		t := *p.TrashedAt
		n.TrashedAt = &t
	}
	if p.ClearReminder {
		n.Reminder = nil
	} else if p.Reminder != nil {
		t := *p.Reminder
		n.Reminder = &t
	}
	return n
}
