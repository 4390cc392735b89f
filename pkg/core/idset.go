package core

import (
	"encoding/json"
	"sort"
	"strings"
)

// IDSet is an unordered set of entity identifiers.
// It serializes as a sorted JSON array, and joins to a flat separator-delimited
// string for the local store's denormalized columns.
type IDSet map[string]struct{}

// NewIDSet builds a set from the given ids. Empty ids are ignored.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// ParseIDSet splits a separator-joined string back into a set.
// The empty string yields an empty set.
func ParseIDSet(joined, sep string) IDSet {
	if joined == "" {
		return NewIDSet()
	}
	return NewIDSet(strings.Split(joined, sep)...)
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int { return len(s) }

// Add inserts id into the set. No-op for the empty id.
func (s IDSet) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

// Remove deletes id from the set.
func (s IDSet) Remove(id string) {
	delete(s, id)
}

// AddAll inserts every id of other.
func (s IDSet) AddAll(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// RemoveAll deletes every id of other.
func (s IDSet) RemoveAll(other IDSet) {
	for id := range other {
		delete(s, id)
	}
}

// Clone returns an independent copy. Cloning nil yields an empty set, so
// callers can mutate the result unconditionally.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold exactly the same ids.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Join flattens the set to a separator-delimited string (sorted).
func (s IDSet) Join(sep string) string {
	return strings.Join(s.Sorted(), sep)
}

// MarshalJSON encodes the set as a sorted array of ids.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of ids.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
