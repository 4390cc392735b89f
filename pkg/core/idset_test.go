package core

import (
	"encoding/json"
	"testing"
)

func TestIDSet_Basics(t *testing.T) {
	s := NewIDSet("b", "a", "", "a")
	if s.Len() != 2 {
		t.Fatalf("expected 2 ids, got %d", s.Len())
	}
	if !s.Has("a") || !s.Has("b") {
		t.Error("missing expected ids")
	}

	s.Add("c")
	s.Remove("b")
	if got := s.Join(","); got != "a,c" {
		t.Errorf("expected 'a,c', got %q", got)
	}
}

func TestIDSet_CloneIsIndependent(t *testing.T) {
	s := NewIDSet("a")
	c := s.Clone()
	c.Add("b")
	if s.Has("b") {
		t.Error("mutating the clone changed the original")
	}

	// Cloning nil must yield a usable set.
	var nilSet IDSet
	c = nilSet.Clone()
	c.Add("x")
	if !c.Has("x") {
		t.Error("clone of nil set is not usable")
	}
}

func TestIDSet_Equal(t *testing.T) {
	cases := []struct {
		name string
		a, b IDSet
		want bool
	}{
		{"both empty", NewIDSet(), NewIDSet(), true},
		{"same", NewIDSet("x", "y"), NewIDSet("y", "x"), true},
		{"subset", NewIDSet("x"), NewIDSet("x", "y"), false},
		{"disjoint", NewIDSet("x"), NewIDSet("y"), false},
		{"nil vs empty", nil, NewIDSet(), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Equal = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIDSet_ParseRoundTrip(t *testing.T) {
	if got := ParseIDSet("", ",").Len(); got != 0 {
		t.Errorf("empty string should parse to empty set, got %d ids", got)
	}
	s := ParseIDSet("n1,n2,n3", ",")
	if s.Len() != 3 || !s.Has("n2") {
		t.Errorf("unexpected parse result: %v", s.Sorted())
	}
	if got := s.Join(","); got != "n1,n2,n3" {
		t.Errorf("round trip mismatch: %q", got)
	}
}

func TestIDSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewIDSet("b", "a"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["a","b"]` {
		t.Errorf("expected sorted array, got %s", data)
	}

	var s IDSet
	if err := json.Unmarshal([]byte(`["x","y"]`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !s.Equal(NewIDSet("x", "y")) {
		t.Errorf("unexpected set: %v", s.Sorted())
	}
}
