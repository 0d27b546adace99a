package automaton

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Determinize returns a deterministic automaton recognizing the same language, built by the subset
// construction. Each state of the result is the set (SetOf) of the states of a it stands for; the
// initial state is the epsilon closure of the initial states of a. Empty subsets are never
// created, so the result is usually not complete.
//
// When no state of the result is final, the result is returned together with an error wrapping
// ErrUnrecognizable.
// Worst case complexity: exponential in number of states.
func Determinize(a *Automaton) (*Automaton, error) {
	b := a.derive()

	subsets := NewHashMap[int](WithCapacity(len(a.states)))
	worklist := make([]*FrozenIntSet, 0)

	register := func(bits *bitset.BitSet) int {
		key := NewFrozenIntSet(bits, -1)
		if id, ok := subsets.Get(key); ok {
			return id
		}
		id := b.stateID(a.subsetState(key))
		key.state = id
		subsets.Set(key, id)
		worklist = append(worklist, key)
		if bits.IntersectionCardinality(a.isAccept) > 0 {
			b.isAccept.Set(uint(id))
		}
		return id
	}

	initial := register(a.closure(a.initial.Clone()))
	b.initial.Set(uint(initial))

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]
		for k := range a.symbols {
			if a.isEpsilon(k) {
				continue
			}
			next := a.closure(a.step(current.bits, k))
			if next.None() {
				continue
			}
			b.addTransitionIndex(current.State(), k, register(next))
		}
	}

	b.flags = deterministicKnown | deterministicValue
	a.logger.Debug("determinize", "subsets", subsets.Size(), "transitions", b.numTransitions)

	if b.isAccept.None() {
		return b, fmt.Errorf("determinize %d states: %w", len(a.states), ErrUnrecognizable)
	}
	return b, nil
}

func (a *Automaton) subsetState(subset *FrozenIntSet) State {
	members := make([]State, 0, subset.Size())
	for _, i := range subset.GetArray() {
		members = append(members, a.states[i])
	}
	return SetOf(members...)
}

// DeterminizeInPlace replaces a by Determinize(a). On error a is left untouched.
func (a *Automaton) DeterminizeInPlace() error {
	b, err := Determinize(a)
	if err != nil {
		return err
	}
	a.replace(b)
	return nil
}

// needsDeterminize tells whether a must go through the subset construction before being used as a
// total deterministic automaton.
func (a *Automaton) needsDeterminize() bool {
	return a.initial.Count() != 1 || !a.IsDeterministic()
}

// Complete returns a copy of a where every state has a transition with every non-epsilon symbol.
// Missing transitions go to a new sink state, labelled by the smallest unused integer above every
// integer label of a, which loops on itself. An automaton that is already complete is copied
// unchanged.
func Complete(a *Automaton) *Automaton {
	b := a.Clone()
	if b.IsComplete() {
		return b
	}

	sink := b.stateID(Label(a.nextID()))
	for s := range b.states {
		for k := range b.symbols {
			if !b.isEpsilon(k) && b.succ(s, k) == nil {
				b.addTransitionIndex(s, k, sink)
			}
		}
	}

	b.invalidate()
	b.flags |= completeKnown | completeValue
	a.logger.Debug("complete", "sink", b.states[sink], "transitions", b.numTransitions)
	return b
}

func (a *Automaton) CompleteInPlace() {
	a.replace(Complete(a))
}

// Complement returns a deterministic complete automaton accepting exactly the words over the
// non-epsilon symbols of a that a rejects.
func Complement(a *Automaton) *Automaton {
	b := a
	if a.needsDeterminize() {
		// an empty language is a valid operand
		b, _ = Determinize(a)
	}
	b = Complete(b)

	for s := range b.states {
		b.isAccept.SetTo(uint(s), !b.isAccept.Test(uint(s)))
	}
	a.logger.Debug("complement", "states", len(b.states), "finals", b.isAccept.Count())
	return b
}

func (a *Automaton) ComplementInPlace() {
	a.replace(Complement(a))
}

// reachable returns the states reachable from the initial states, epsilon transitions included.
func (a *Automaton) reachable() *bitset.BitSet {
	seen := a.initial.Clone()
	worklist := make([]int, 0, seen.Count())
	for s, ok := seen.NextSet(0); ok; s, ok = seen.NextSet(s + 1) {
		worklist = append(worklist, int(s))
	}
	for len(worklist) > 0 {
		s := worklist[0]
		worklist = worklist[1:]
		for _, dest := range a.transitions[s] {
			if dest == nil {
				continue
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				if !seen.Test(d) {
					seen.Set(d)
					worklist = append(worklist, int(d))
				}
			}
		}
	}
	return seen
}

// coReachable returns the states from which a final state can be reached.
func (a *Automaton) coReachable() *bitset.BitSet {
	return Mirror(a).reachable()
}

// restrict returns the sub-automaton made of the states in keep.
func (a *Automaton) restrict(keep *bitset.BitSet) *Automaton {
	b := a.derive()
	index := make([]int, len(a.states))
	for s := range a.states {
		if !keep.Test(uint(s)) {
			index[s] = -1
			continue
		}
		index[s] = b.stateID(a.states[s])
		b.initial.SetTo(uint(index[s]), a.initial.Test(uint(s)))
		b.isAccept.SetTo(uint(index[s]), a.isAccept.Test(uint(s)))
	}
	for s, row := range a.transitions {
		if index[s] < 0 {
			continue
		}
		for k, dest := range row {
			if dest == nil {
				continue
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				if index[d] >= 0 {
					b.addTransitionIndex(index[s], k, index[d])
				}
			}
		}
	}
	return b
}

// RemoveUnreachableStates returns a copy of a without the states that cannot be reached from an
// initial state.
func RemoveUnreachableStates(a *Automaton) *Automaton {
	return a.restrict(a.reachable())
}

// RemoveDeadStates returns a copy of a keeping only the states that are reachable from an
// initial state and from which a final state is reachable. The result is not complete.
func RemoveDeadStates(a *Automaton) *Automaton {
	live := a.reachable()
	live.InPlaceIntersection(a.coReachable())
	return a.restrict(live)
}

// IsEmpty returns true if the given automaton accepts no word.
func IsEmpty(a *Automaton) bool {
	return a.reachable().IntersectionCardinality(a.isAccept) == 0
}

// IsTotal returns true if the given automaton accepts every word over its non-epsilon symbols.
func IsTotal(a *Automaton) bool {
	return IsEmpty(Complement(a))
}

// IsFinite returns true if the given automaton accepts finitely many words.
func IsFinite(a *Automaton) bool {
	b := RemoveDeadStates(RemoveEpsilonTransitions(a))

	const (
		unvisited = iota
		onPath
		done
	)
	color := make([]int, len(b.states))

	type frame struct {
		state int
		next  []int
	}
	successors := func(s int) []int {
		var next []int
		for _, dest := range b.transitions[s] {
			if dest == nil {
				continue
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				next = append(next, int(d))
			}
		}
		return next
	}

	// Iterative depth-first search; a back edge means a loop between live states.
	for root := range b.states {
		if color[root] != unvisited {
			continue
		}
		color[root] = onPath
		stack := []frame{{state: root, next: successors(root)}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if len(top.next) == 0 {
				color[top.state] = done
				stack = stack[:len(stack)-1]
				continue
			}
			d := top.next[0]
			top.next = top.next[1:]
			switch color[d] {
			case onPath:
				return false
			case unvisited:
				color[d] = onPath
				stack = append(stack, frame{state: d, next: successors(d)})
			}
		}
	}
	return true
}

// RemoveEpsilonTransitions returns an automaton without any transition labelled by an epsilon
// symbol and recognizing the same language. States are kept; a state becomes final when a final
// state is in its epsilon closure. The epsilon marks stay on the alphabet.
func RemoveEpsilonTransitions(a *Automaton) *Automaton {
	if a.epsilons.None() {
		return a.Clone()
	}

	b := a.derive()
	for s, state := range a.states {
		b.stateID(state)
		b.initial.SetTo(uint(s), a.initial.Test(uint(s)))
	}
	for s := range a.states {
		from := bitset.New(uint(len(a.states)))
		from.Set(uint(s))
		from = a.closure(from)
		if from.IntersectionCardinality(a.isAccept) > 0 {
			b.isAccept.Set(uint(s))
		}
		for k := range a.symbols {
			if a.isEpsilon(k) {
				continue
			}
			dest := a.closure(a.step(from, k))
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				b.addTransitionIndex(s, k, int(d))
			}
		}
	}
	a.logger.Debug("remove epsilon transitions", "states", len(b.states), "transitions", b.numTransitions)
	return b
}

func (a *Automaton) RemoveEpsilonTransitionsInPlace() {
	a.replace(RemoveEpsilonTransitions(a))
}

func (a *Automaton) sortedStates(bits *bitset.BitSet) []int {
	indices := make([]int, 0, bits.Count())
	for s, ok := bits.NextSet(0); ok; s, ok = bits.NextSet(s + 1) {
		indices = append(indices, int(s))
	}
	slices.SortFunc(indices, func(x, y int) int {
		return Compare(a.states[x], a.states[y])
	})
	return indices
}

func (a *Automaton) sortedSymbols() []int {
	indices := make([]int, len(a.symbols))
	for k := range indices {
		indices[k] = k
	}
	slices.SortFunc(indices, func(x, y int) int {
		return CompareSymbols(a.symbols[x], a.symbols[y])
	})
	return indices
}

// Renumber returns a copy of a whose states are the integers 0 to n-1. Numbers are given in
// breadth-first order from the initial states, visiting states and symbols in sorted order; the
// states that cannot be reached are numbered last, in sorted order. The numbering only depends on
// the structure of a.
func Renumber(a *Automaton) *Automaton {
	number := make([]int, len(a.states))
	for s := range number {
		number[s] = -1
	}
	order := make([]int, 0, len(a.states))
	visit := func(s int) {
		if number[s] < 0 {
			number[s] = len(order)
			order = append(order, s)
		}
	}

	symbols := a.sortedSymbols()
	for _, s := range a.sortedStates(a.initial) {
		visit(s)
	}
	for i := 0; i < len(order); i++ {
		s := order[i]
		for _, k := range symbols {
			if dest := a.succ(s, k); dest != nil {
				for _, d := range a.sortedStates(dest) {
					visit(d)
				}
			}
		}
	}
	all := bitset.New(uint(len(a.states)))
	for s := range a.states {
		all.Set(uint(s))
	}
	for _, s := range a.sortedStates(all) {
		visit(s)
	}

	return a.relabel(func(s int) State {
		return Label(number[s])
	})
}

func (a *Automaton) RenumberInPlace() {
	a.replace(Renumber(a))
}

// relabel substitutes every state by its image; states with the same image are merged.
func (a *Automaton) relabel(image func(s int) State) *Automaton {
	b := a.derive()
	index := make([]int, len(a.states))
	for s := range a.states {
		index[s] = b.stateID(image(s))
	}
	for s := range a.states {
		if a.initial.Test(uint(s)) {
			b.initial.Set(uint(index[s]))
		}
		if a.isAccept.Test(uint(s)) {
			b.isAccept.Set(uint(index[s]))
		}
		for k, dest := range a.transitions[s] {
			if dest == nil {
				continue
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				b.addTransitionIndex(index[s], k, index[d])
			}
		}
	}
	return b
}

// Translate returns a copy of a where every integer label, at any depth inside the states, is
// shifted by n.
func Translate(a *Automaton, n int) *Automaton {
	return a.relabel(func(s int) State {
		return a.states[s].translate(n)
	})
}

// MapStates substitutes every state s by f(s). States with the same image are merged. Nothing is
// built if f returns an invalid state.
func MapStates(a *Automaton, f func(State) State) (*Automaton, error) {
	images := make([]State, len(a.states))
	for s, state := range a.states {
		images[s] = f(state)
		if !images[s].IsValid() {
			return nil, fmt.Errorf("image of %s: %w", state, checkKey(images[s]))
		}
	}
	return a.relabel(func(s int) State {
		return images[s]
	}), nil
}

// MergeStates returns a copy of a where the given states are replaced by a single new state,
// labelled by the integer after MaxID (0 without integer labels). The new state is initial (final) if one of the merged
// states is.
func MergeStates(a *Automaton, states ...State) *Automaton {
	merged := Label(a.nextID())
	group := NewStateSet(states...)
	return a.relabel(func(s int) State {
		if group.Contains(a.states[s]) {
			return merged
		}
		return a.states[s]
	})
}

// languageEpsilon glues the operands of Concatenate and Repeat. It is removed from the result.
type languageEpsilon struct{}

func (languageEpsilon) String() string {
	return "ε"
}

// withoutSymbol returns a copy of a whose alphabet no longer holds symbol. a must have no
// transition labelled by symbol.
func (a *Automaton) withoutSymbol(symbol Symbol) *Automaton {
	drop, ok := a.lookupSymbol(symbol)
	if !ok {
		return a
	}

	b := NewAutomaton(WithLogger(a.logger), WithStateCapacity(len(a.states), len(a.symbols)))
	index := make([]int, len(a.symbols))
	for k, s := range a.symbols {
		if k == drop {
			index[k] = -1
			continue
		}
		index[k] = b.symbolID(s)
		if a.isEpsilon(k) {
			b.epsilons.Set(uint(index[k]))
		}
	}
	for s, state := range a.states {
		b.stateID(state)
		b.initial.SetTo(uint(s), a.initial.Test(uint(s)))
		b.isAccept.SetTo(uint(s), a.isAccept.Test(uint(s)))
	}
	for s, row := range a.transitions {
		for k, dest := range row {
			if dest == nil || index[k] < 0 {
				continue
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				b.addTransitionIndex(s, index[k], int(d))
			}
		}
	}
	return b
}

// tagged copies every part of operand into a, the states becoming PairOf(tag, state). It
// returns the index in a of every state of operand.
func (a *Automaton) tagged(tag State, operand *Automaton) []int {
	symbols := make([]int, len(operand.symbols))
	for k, s := range operand.symbols {
		symbols[k] = a.symbolID(s)
		if operand.isEpsilon(k) {
			a.epsilons.Set(uint(symbols[k]))
		}
	}
	index := make([]int, len(operand.states))
	for s, state := range operand.states {
		index[s] = a.stateID(PairOf(tag, state))
	}
	for s, row := range operand.transitions {
		for k, dest := range row {
			if dest == nil {
				continue
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				a.addTransitionIndex(index[s], symbols[k], index[d])
			}
		}
	}
	return index
}

// glue links every state of exits to every state of entries with languageEpsilon. from and to
// translate the bit positions into indices of a.
func (a *Automaton) glue(from, to []int, exits, entries *bitset.BitSet) {
	k := a.symbolID(languageEpsilon{})
	for s, ok := exits.NextSet(0); ok; s, ok = exits.NextSet(s + 1) {
		for d, ok := entries.NextSet(0); ok; d, ok = entries.NextSet(d + 1) {
			a.addTransitionIndex(from[s], k, to[d])
		}
	}
}

// sealed removes the glue transitions and the glue symbol.
func (a *Automaton) sealed() *Automaton {
	return RemoveEpsilonTransitions(a).withoutSymbol(languageEpsilon{})
}

// Concatenate returns an automaton accepting the words made of a word of the first automaton,
// followed by a word of the second one, and so on. The states of the result are
// PairOf(Label(i), s) for the state s of the i-th automaton. With no argument the result accepts
// only the empty word.
func Concatenate(automata ...*Automaton) *Automaton {
	if len(automata) == 0 {
		return defaultAutomata.MakeEmptyString()
	}

	result := NewAutomaton(WithLogger(automata[0].logger))
	result.epsilons.Set(uint(result.symbolID(languageEpsilon{})))

	var prev []int
	var prevA *Automaton
	for i, a := range automata {
		index := result.tagged(Label(i), a)
		if i == 0 {
			for s, ok := a.initial.NextSet(0); ok; s, ok = a.initial.NextSet(s + 1) {
				result.initial.Set(uint(index[s]))
			}
		} else {
			result.glue(prev, index, prevA.isAccept, a.initial)
		}
		prev, prevA = index, a
	}
	for s, ok := prevA.isAccept.NextSet(0); ok; s, ok = prevA.isAccept.NextSet(s + 1) {
		result.isAccept.Set(uint(prev[s]))
	}
	return result.sealed()
}

// Repeat returns an automaton accepting the concatenations of zero or more words of a. The states
// of the result are PairOf(Label(1), s) for the states s of a, plus Label(0), which is the
// only initial state.
func Repeat(a *Automaton) *Automaton {
	result := NewAutomaton(WithLogger(a.logger))
	result.epsilons.Set(uint(result.symbolID(languageEpsilon{})))
	hub := result.stateID(Label(0))
	result.initial.Set(uint(hub))
	result.isAccept.Set(uint(hub))

	index := result.tagged(Label(1), a)
	hubs := []int{hub}
	one := bitset.New(1).Set(0)
	result.glue(hubs, index, one, a.initial)
	result.glue(index, hubs, a.isAccept, one)
	return result.sealed()
}

// isUnrecognizable reports whether err only says that a determinization produced no final
// state.
func isUnrecognizable(err error) bool {
	return errors.Is(err, ErrUnrecognizable)
}
