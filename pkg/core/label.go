package core

// Label groups notes. The relationship to notes is denormalized: the label
// lists its note ids and each note lists its label ids. The Synchronizer
// keeps the two directions in agreement.
type Label struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Name    string `json:"name"`
	NoteIDs IDSet  `json:"noteIds"`
}

// EntityID implements Entity.
func (l Label) EntityID() string { return l.ID }

// LabelPatch describes a partial update to a Label.
type LabelPatch struct {
	Name    *string
	NoteIDs *IDSet
}

// Apply returns a copy of l with the patch applied.
func (p LabelPatch) Apply(l Label) Label {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.NoteIDs != nil {
		l.NoteIDs = p.NoteIDs.Clone()
	}
	return l
}
