package automaton

import (
	"cmp"
	"slices"
	"strings"
	"unique"
)

// StateKind tells how a State is built.
type StateKind uint8

const (
	// LabelState is a plain label such as 0 or "q1".
	LabelState StateKind = iota + 1
	// SetState is a set of states, as produced by determinization.
	SetState
	// PairState is a pair of states, as produced by the product construction.
	PairState
)

// A set is stored as a chain of cells sorted by Compare: head is the smallest member and tail the
// set of the remaining ones (zero at the end of the chain). The empty set is a cell with a zero head.
type stateNode struct {
	kind  StateKind
	label any
	head  State
	tail  State
}

// State identifies a state of an automaton. A State is a plain label, a set of States or a pair of
// States, nested to any depth. States are interned: two States built from the same structure are
// equal with ==, and comparing or hashing them costs the same whatever their depth.
//
// The zero State is invalid.
type State struct {
	h unique.Handle[stateNode]
}

// NewLabel returns the plain state labelled v. v must be comparable; a State is returned as is.
func NewLabel(v any) (State, error) {
	if s, ok := v.(State); ok {
		if !s.IsValid() {
			return State{}, checkKey(v)
		}
		return s, nil
	}
	if err := checkKey(v); err != nil {
		return State{}, err
	}
	return State{h: unique.Make(stateNode{kind: LabelState, label: v})}, nil
}

// Label is like NewLabel but panics when v is not comparable.
func Label(v any) State {
	s, err := NewLabel(v)
	if err != nil {
		panic(err)
	}
	return s
}

// Labels returns one plain state per value.
func Labels(vs ...any) []State {
	states := make([]State, len(vs))
	for i, v := range vs {
		states[i] = Label(v)
	}
	return states
}

// SetOf returns the set of the given states. Order and duplicates do not matter. It panics on an
// invalid member.
func SetOf(states ...State) State {
	members := slices.Clone(states)
	for _, s := range members {
		mustBeValid(s)
	}
	slices.SortFunc(members, Compare)
	members = slices.Compact(members)

	if len(members) == 0 {
		return State{h: unique.Make(stateNode{kind: SetState})}
	}
	var tail State
	for i := len(members) - 1; i >= 0; i-- {
		tail = State{h: unique.Make(stateNode{kind: SetState, head: members[i], tail: tail})}
	}
	return tail
}

// PairOf returns the ordered pair (first, second). It panics on an invalid component.
func PairOf(first, second State) State {
	mustBeValid(first)
	mustBeValid(second)
	return State{h: unique.Make(stateNode{kind: PairState, head: first, tail: second})}
}

func mustBeValid(s State) {
	if !s.IsValid() {
		panic(checkKey(s))
	}
}

// IsValid returns false for the zero State.
func (s State) IsValid() bool {
	return s != State{}
}

// Kind returns how the state is built, or 0 for the zero State.
func (s State) Kind() StateKind {
	if !s.IsValid() {
		return 0
	}
	return s.h.Value().kind
}

// Value returns the label of a plain state, nil otherwise.
func (s State) Value() any {
	if s.Kind() != LabelState {
		return nil
	}
	return s.h.Value().label
}

// Members returns the members of a set state in Compare order, nil for other kinds.
func (s State) Members() []State {
	if s.Kind() != SetState {
		return nil
	}
	members := make([]State, 0)
	for cur := s; cur.IsValid(); {
		n := cur.h.Value()
		if !n.head.IsValid() {
			break
		}
		members = append(members, n.head)
		cur = n.tail
	}
	return members
}

// Pair returns both components of a pair state.
func (s State) Pair() (State, State, bool) {
	if s.Kind() != PairState {
		return State{}, State{}, false
	}
	n := s.h.Value()
	return n.head, n.tail, true
}

func (s State) String() string {
	b := new(strings.Builder)
	s.writeTo(b)
	return b.String()
}

func (s State) writeTo(b *strings.Builder) {
	switch s.Kind() {
	case LabelState:
		b.WriteString(formatLabel(s.Value()))
	case SetState:
		b.WriteByte('{')
		for i, m := range s.Members() {
			if i > 0 {
				b.WriteString(", ")
			}
			m.writeTo(b)
		}
		b.WriteByte('}')
	case PairState:
		first, second, _ := s.Pair()
		b.WriteByte('(')
		first.writeTo(b)
		b.WriteString(", ")
		second.writeTo(b)
		b.WriteByte(')')
	default:
		b.WriteString("<invalid>")
	}
}

// MaxInt returns the greatest int label found anywhere inside the state.
func (s State) MaxInt() (int, bool) {
	return s.extremeInt(func(a, b int) bool { return a > b })
}

// MinInt returns the smallest int label found anywhere inside the state.
func (s State) MinInt() (int, bool) {
	return s.extremeInt(func(a, b int) bool { return a < b })
}

func (s State) extremeInt(better func(a, b int) bool) (int, bool) {
	switch s.Kind() {
	case LabelState:
		v, ok := s.Value().(int)
		return v, ok
	case SetState, PairState:
		var children []State
		if s.Kind() == SetState {
			children = s.Members()
		} else {
			first, second, _ := s.Pair()
			children = []State{first, second}
		}
		result, found := 0, false
		for _, c := range children {
			if v, ok := c.extremeInt(better); ok && (!found || better(v, result)) {
				result, found = v, true
			}
		}
		return result, found
	}
	return 0, false
}

// translate shifts every int label inside the state by n.
func (s State) translate(n int) State {
	switch s.Kind() {
	case LabelState:
		if v, ok := s.Value().(int); ok {
			return Label(v + n)
		}
		return s
	case SetState:
		members := s.Members()
		for i, m := range members {
			members[i] = m.translate(n)
		}
		return SetOf(members...)
	case PairState:
		first, second, _ := s.Pair()
		return PairOf(first.translate(n), second.translate(n))
	}
	return s
}

// Compare is a total order over states: plain states first (ordered by CompareSymbols on their
// labels), then sets (ordered member by member), then pairs (ordered component by component).
func Compare(a, b State) int {
	if a == b {
		return 0
	}
	ka, kb := a.Kind(), b.Kind()
	if ka != kb {
		return cmp.Compare(ka, kb)
	}

	switch ka {
	case LabelState:
		return CompareSymbols(a.Value(), b.Value())
	case PairState:
		na, nb := a.h.Value(), b.h.Value()
		if c := Compare(na.head, nb.head); c != 0 {
			return c
		}
		return Compare(na.tail, nb.tail)
	case SetState:
		for {
			var na, nb stateNode
			if a.IsValid() {
				na = a.h.Value()
			}
			if b.IsValid() {
				nb = b.h.Value()
			}
			endA, endB := !na.head.IsValid(), !nb.head.IsValid()
			switch {
			case endA && endB:
				return 0
			case endA:
				return -1
			case endB:
				return 1
			}
			if c := Compare(na.head, nb.head); c != 0 {
				return c
			}
			a, b = na.tail, nb.tail
		}
	}
	return 0
}
