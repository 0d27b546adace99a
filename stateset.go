package automaton

import (
	"iter"
	"slices"
	"strings"
)

// StateSet is a set of states. The zero value is not usable; a nil *StateSet reads as empty.
type StateSet struct {
	inner map[State]struct{}
}

func NewStateSet(states ...State) *StateSet {
	s := &StateSet{
		inner: make(map[State]struct{}, len(states)),
	}
	s.Add(states...)
	return s
}

func (s *StateSet) Add(states ...State) {
	for _, state := range states {
		s.inner[state] = struct{}{}
	}
}

func (s *StateSet) Contains(state State) bool {
	if s == nil {
		return false
	}
	_, ok := s.inner[state]
	return ok
}

func (s *StateSet) Size() int {
	if s == nil {
		return 0
	}
	return len(s.inner)
}

// GetArray returns the members sorted by Compare.
func (s *StateSet) GetArray() []State {
	if s == nil {
		return []State{}
	}
	keys := make([]State, 0, len(s.inner))
	for k := range s.inner {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, Compare)
	return keys
}

// All iterates over the members in Compare order.
func (s *StateSet) All() iter.Seq[State] {
	return slices.Values(s.GetArray())
}

func (s *StateSet) Equal(other *StateSet) bool {
	if s.Size() != other.Size() {
		return false
	}
	if s.Size() == 0 {
		return true
	}
	for k := range s.inner {
		if !other.Contains(k) {
			return false
		}
	}
	return true
}

// Intersects reports whether both sets share a member.
func (s *StateSet) Intersects(other *StateSet) bool {
	if s.Size() == 0 || other.Size() == 0 {
		return false
	}
	if s.Size() > other.Size() {
		s, other = other, s
	}
	for k := range s.inner {
		if other.Contains(k) {
			return true
		}
	}
	return false
}

func (s *StateSet) String() string {
	b := new(strings.Builder)
	b.WriteByte('{')
	for i, state := range s.GetArray() {
		if i > 0 {
			b.WriteString(", ")
		}
		state.writeTo(b)
	}
	b.WriteByte('}')
	return b.String()
}
