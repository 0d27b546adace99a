package automaton

import (
	"github.com/bits-and-blooms/bitset"
)

// RunAutomaton is a deterministic automaton flattened into a transition table, for matching many
// words against the same language. States are numbered 0 to GetSize()-1 with Renumber, the initial
// state being 0.
type RunAutomaton struct {
	symbols     map[Symbol]int
	epsilons    map[Symbol]struct{}
	accept      *bitset.BitSet
	transitions []int
	size        int
	initial     int
}

// NewRunAutomaton determinizes a when needed and builds its table. Epsilon symbols read by Run
// are skipped.
func NewRunAutomaton(a *Automaton) *RunAutomaton {
	if a.needsDeterminize() {
		a, _ = Determinize(a)
	}
	a = Renumber(a)

	r := &RunAutomaton{
		symbols:     make(map[Symbol]int, len(a.symbols)),
		epsilons:    make(map[Symbol]struct{}),
		accept:      a.isAccept.Clone(),
		transitions: make([]int, len(a.states)*len(a.symbols)),
		size:        len(a.states),
		initial:     -1,
	}
	for k, s := range a.symbols {
		r.symbols[s] = k
		if a.isEpsilon(k) {
			r.epsilons[s] = struct{}{}
		}
	}
	for i := range r.transitions {
		r.transitions[i] = -1
	}
	for s, row := range a.transitions {
		for k, dest := range row {
			if dest == nil {
				continue
			}
			d, _ := dest.NextSet(0)
			r.transitions[s*len(a.symbols)+k] = int(d)
		}
	}
	if i, ok := a.initial.NextSet(0); ok {
		r.initial = int(i)
	}
	return r
}

// Initial returns the initial state, -1 when there is none.
func (r *RunAutomaton) Initial() int {
	return r.initial
}

// GetSize Returns number of states in automaton.
func (r *RunAutomaton) GetSize() int {
	return r.size
}

// IsAccept Returns acceptance status for given state.
func (r *RunAutomaton) IsAccept(state int) bool {
	return state >= 0 && r.accept.Test(uint(state))
}

// Step Returns the state obtained by reading the given symbol from the given state, or -1 if
// reading the symbol makes it impossible to ever match.
func (r *RunAutomaton) Step(state int, symbol Symbol) int {
	if state < 0 || checkKey(symbol) != nil {
		return -1
	}
	k, ok := r.symbols[symbol]
	if !ok {
		return -1
	}
	return r.transitions[state*len(r.symbols)+k]
}

// Run Returns true if the given word is accepted by this automaton.
func (r *RunAutomaton) Run(word []Symbol) bool {
	p := r.initial
	for _, symbol := range word {
		if checkKey(symbol) != nil {
			return false
		}
		if _, ok := r.epsilons[symbol]; ok {
			continue
		}
		p = r.Step(p, symbol)
		if p == -1 {
			return false
		}
	}
	return r.IsAccept(p)
}

// RunString Returns true if s, read rune by rune, is accepted by this automaton.
func (r *RunAutomaton) RunString(s string) bool {
	return r.Run(Word(s))
}
