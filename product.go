package automaton

import (
	"fmt"
)

var _ Hashable = &IntPair{}

// IntPair is a pair of state indices, the key of a product state while it is being built.
type IntPair struct {
	n1 int
	n2 int
}

func (p *IntPair) Hash() uint64 {
	return mixPair(p.n1, p.n2)
}

func (p *IntPair) Equals(other Hashable) bool {
	o, ok := other.(*IntPair)
	return ok && p.n1 == o.n1 && p.n2 == o.n2
}

// Union returns a deterministic complete automaton accepting the words accepted by a1 or by a2.
// Its states are PairOf(s1, s2) for the states s1 of a1 and s2 of a2, after both have been
// determinized and completed when needed.
func Union(a1, a2 *Automaton) (*Automaton, error) {
	return product("union", a1, a2, func(accept1, accept2 bool) bool {
		return accept1 || accept2
	})
}

// Intersection returns a deterministic complete automaton accepting the words accepted by both
// a1 and a2. See Union for the shape of the result.
func Intersection(a1, a2 *Automaton) (*Automaton, error) {
	return product("intersection", a1, a2, func(accept1, accept2 bool) bool {
		return accept1 && accept2
	})
}

func (a *Automaton) UnionInPlace(other *Automaton) error {
	b, err := Union(a, other)
	if err != nil {
		return err
	}
	a.replace(b)
	return nil
}

func (a *Automaton) IntersectionInPlace(other *Automaton) error {
	b, err := Intersection(a, other)
	if err != nil {
		return err
	}
	a.replace(b)
	return nil
}

// sameAlphabet checks that a1 and a2 have the same symbols and the same epsilon symbols.
func sameAlphabet(a1, a2 *Automaton) bool {
	if len(a1.symbols) != len(a2.symbols) || a1.epsilons.Count() != a2.epsilons.Count() {
		return false
	}
	for k, s := range a1.symbols {
		j, ok := a2.symbolIndex[s]
		if !ok || a1.isEpsilon(k) != a2.isEpsilon(j) {
			return false
		}
	}
	return true
}

// totalDeterministic returns a, determinized and completed when needed.
func totalDeterministic(a *Automaton) (*Automaton, error) {
	if a.needsDeterminize() {
		b, err := Determinize(a)
		if err != nil && !isUnrecognizable(err) {
			return nil, err
		}
		a = b
	}
	if !a.IsComplete() {
		a = Complete(a)
	}
	return a, nil
}

func product(op string, a1, a2 *Automaton, accept func(accept1, accept2 bool) bool) (*Automaton, error) {
	if !sameAlphabet(a1, a2) {
		return nil, fmt.Errorf("%s: %w: %v and %v", op, ErrAlphabetMismatch, a1.Alphabet(), a2.Alphabet())
	}

	var err error
	if a1, err = totalDeterministic(a1); err != nil {
		return nil, err
	}
	if a2, err = totalDeterministic(a2); err != nil {
		return nil, err
	}

	result := a1.derive()
	// symbol k of a1 is symbols2[k] in a2
	symbols2 := make([]int, len(a1.symbols))
	for k, s := range a1.symbols {
		symbols2[k] = a2.symbolIndex[s]
	}

	pairs := NewHashMap[int](WithCapacity(len(a1.states) + len(a2.states)))
	worklist := make([]*IntPair, 0)

	register := func(s1, s2 int) int {
		key := &IntPair{n1: s1, n2: s2}
		if id, ok := pairs.Get(key); ok {
			return id
		}
		id := result.stateID(PairOf(a1.states[s1], a2.states[s2]))
		pairs.Set(key, id)
		worklist = append(worklist, key)
		if accept(a1.isAccept.Test(uint(s1)), a2.isAccept.Test(uint(s2))) {
			result.isAccept.Set(uint(id))
		}
		return id
	}

	i1, _ := a1.initial.NextSet(0)
	i2, _ := a2.initial.NextSet(0)
	result.initial.Set(uint(register(int(i1), int(i2))))

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]
		from, _ := pairs.Get(current)
		for k := range a1.symbols {
			if a1.isEpsilon(k) {
				continue
			}
			d1, _ := a1.succ(current.n1, k).NextSet(0)
			d2, _ := a2.succ(current.n2, symbols2[k]).NextSet(0)
			result.addTransitionIndex(from, k, register(int(d1), int(d2)))
		}
	}

	result.flags = deterministicKnown | deterministicValue | completeKnown | completeValue
	a1.logger.Debug(op, "states", len(result.states), "transitions", result.numTransitions)
	return result, nil
}
