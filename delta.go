package automaton

import (
	"github.com/bits-and-blooms/bitset"
)

type deltaOptions struct {
	from           []State
	fromSet        bool
	ignoreEpsilons bool
}

type DeltaOption func(*deltaOptions)

// From starts Delta, DeltaStar and WordIsRecognized from the given states instead of the initial
// states. States the automaton does not have are ignored.
func From(states ...State) DeltaOption {
	return func(o *deltaOptions) {
		o.from = states
		o.fromSet = true
	}
}

// IgnoreEpsilons treats epsilon symbols as ordinary ones.
func IgnoreEpsilons() DeltaOption {
	return func(o *deltaOptions) {
		o.ignoreEpsilons = true
	}
}

func (a *Automaton) deltaOptions(opts []DeltaOption) (*bitset.BitSet, bool) {
	o := &deltaOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if !o.fromSet {
		return a.initial.Clone(), o.ignoreEpsilons
	}
	return a.indexSet(o.from), o.ignoreEpsilons
}

// step returns the states reached from states by exactly one transition labelled by symbol k.
func (a *Automaton) step(states *bitset.BitSet, k int) *bitset.BitSet {
	result := bitset.New(uint(len(a.states)))
	for s, ok := states.NextSet(0); ok; s, ok = states.NextSet(s + 1) {
		if dest := a.succ(int(s), k); dest != nil {
			result.InPlaceUnion(dest)
		}
	}
	return result
}

// closure adds to states, in place, every state reachable through epsilon transitions.
func (a *Automaton) closure(states *bitset.BitSet) *bitset.BitSet {
	if a.epsilons.None() {
		return states
	}

	worklist := make([]uint, 0, states.Count())
	for s, ok := states.NextSet(0); ok; s, ok = states.NextSet(s + 1) {
		worklist = append(worklist, s)
	}
	for len(worklist) > 0 {
		s := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for k, ok := a.epsilons.NextSet(0); ok; k, ok = a.epsilons.NextSet(k + 1) {
			dest := a.succ(int(s), int(k))
			if dest == nil {
				continue
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				if !states.Test(d) {
					states.Set(d)
					worklist = append(worklist, d)
				}
			}
		}
	}
	return states
}

// deltaIndex is Delta on bitsets. The input set is consumed.
func (a *Automaton) deltaIndex(symbol Symbol, states *bitset.BitSet, ignoreEpsilons bool) *bitset.BitSet {
	k, ok := a.lookupSymbol(symbol)
	if ignoreEpsilons {
		if !ok {
			return bitset.New(uint(len(a.states)))
		}
		return a.step(states, k)
	}

	states = a.closure(states)
	if ok && a.isEpsilon(k) {
		return states
	}
	if !ok {
		return bitset.New(uint(len(a.states)))
	}
	return a.closure(a.step(states, k))
}

// EpsilonClosure returns the smallest superset of states closed under epsilon transitions.
func (a *Automaton) EpsilonClosure(states *StateSet) *StateSet {
	return a.toStateSet(a.closure(a.indexSet(states.GetArray())))
}

// Delta returns the states reached by reading symbol from the initial states.
//
// When symbol is an epsilon symbol the result is the epsilon closure of the starting states.
// Otherwise it is the set of states reached by a path made of exactly one transition labelled by
// symbol and any number of epsilon transitions. A symbol outside the alphabet reaches nothing.
func (a *Automaton) Delta(symbol Symbol, opts ...DeltaOption) *StateSet {
	states, ignoreEpsilons := a.deltaOptions(opts)
	return a.toStateSet(a.deltaIndex(symbol, states, ignoreEpsilons))
}

// DeltaStar folds Delta over word. For an empty word it returns the epsilon closure of the
// starting states.
func (a *Automaton) DeltaStar(word []Symbol, opts ...DeltaOption) *StateSet {
	states, ignoreEpsilons := a.deltaOptions(opts)
	return a.toStateSet(a.deltaStarIndex(word, states, ignoreEpsilons))
}

func (a *Automaton) deltaStarIndex(word []Symbol, states *bitset.BitSet, ignoreEpsilons bool) *bitset.BitSet {
	if !ignoreEpsilons {
		states = a.closure(states)
	}
	for _, symbol := range word {
		if states.None() {
			break
		}
		states = a.deltaIndex(symbol, states, ignoreEpsilons)
	}
	return states
}

// WordIsRecognized returns true if reading word leads to a final state. Epsilon symbols inside
// word are neutral unless IgnoreEpsilons is given.
func (a *Automaton) WordIsRecognized(word []Symbol, opts ...DeltaOption) bool {
	states, ignoreEpsilons := a.deltaOptions(opts)
	return a.deltaStarIndex(word, states, ignoreEpsilons).IntersectionCardinality(a.isAccept) > 0
}

// Word returns the runes of s as a word.
func Word(s string) []Symbol {
	word := make([]Symbol, 0, len(s))
	for _, r := range s {
		word = append(word, r)
	}
	return word
}

// Strings returns each element of ss as a symbol, for automata whose symbols are strings.
func Strings(ss ...string) []Symbol {
	word := make([]Symbol, len(ss))
	for i, s := range ss {
		word[i] = s
	}
	return word
}
