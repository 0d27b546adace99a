// Package automaton implements finite automata with epsilon transitions over arbitrary comparable
// symbols, and the usual algebra on them: epsilon closure, determinization, completion,
// minimization, union, intersection, complement and compilation of regular expressions.
//
// States are State values: plain labels, sets of states or pairs of states, nested without limit.
// Every operation returns a new automaton; the *InPlace methods compute the same result and then
// replace the receiver, so a failing call never leaves a half-updated automaton behind.
package automaton

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Automaton is the 6-tuple <A, E, Q, I, F, T>: an alphabet A, the epsilon symbols E ⊆ A, the states
// Q, the initial states I ⊆ Q, the final states F ⊆ Q and the transitions T ⊆ Q × A × Q.
//
// Symbols and states are numbered in insertion order; every set of them is a bitset over those
// numbers. Adding a transition adds its states and its symbol when they are missing.
type Automaton struct {
	symbols     []Symbol
	symbolIndex map[Symbol]int
	epsilons    *bitset.BitSet

	states     []State
	stateIndex map[State]int
	initial    *bitset.BitSet
	isAccept   *bitset.BitSet

	// transitions[state][symbol] holds the destinations, nil when there are none.
	transitions    [][]*bitset.BitSet
	numTransitions int

	flags  flagCache
	logger *slog.Logger
}

// Transition is the triple (From, Symbol, To).
type Transition struct {
	From   State
	Symbol Symbol
	To     State
}

func (t Transition) String() string {
	return fmt.Sprintf("(%s, %s, %s)", t.From, FormatSymbol(t.Symbol), t.To)
}

// Definition lists the parts of an automaton for FromDefinition. Everything is optional: states
// and symbols used by transitions are added automatically.
type Definition struct {
	Alphabet    []Symbol
	Epsilons    []Symbol
	States      []State
	Initials    []State
	Finals      []State
	Transitions []Transition
}

// flagCache memoizes IsDeterministic and IsComplete until the next mutation.
type flagCache uint8

const (
	deterministicKnown flagCache = 1 << iota
	deterministicValue
	completeKnown
	completeValue
)

type options struct {
	logger     *slog.Logger
	numStates  int
	numSymbols int
}

type Option func(*options)

// WithLogger sets the logger that traces the operations run on the automaton and on the automata
// derived from it. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStateCapacity preallocates room for numStates states and numSymbols symbols.
func WithStateCapacity(numStates, numSymbols int) Option {
	return func(o *options) {
		o.numStates = numStates
		o.numSymbols = numSymbols
	}
}

// NewAutomaton returns an automaton without symbols or states.
func NewAutomaton(opts ...Option) *Automaton {
	o := &options{numStates: 2, numSymbols: 2}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	return &Automaton{
		symbols:     make([]Symbol, 0, o.numSymbols),
		symbolIndex: make(map[Symbol]int, o.numSymbols),
		epsilons:    bitset.New(uint(o.numSymbols)),
		states:      make([]State, 0, o.numStates),
		stateIndex:  make(map[State]int, o.numStates),
		initial:     bitset.New(uint(o.numStates)),
		isAccept:    bitset.New(uint(o.numStates)),
		transitions: make([][]*bitset.BitSet, 0, o.numStates),
		logger:      o.logger,
	}
}

// FromDefinition builds an automaton from explicit lists. Nothing is built when one of the
// symbols or states is invalid.
func FromDefinition(def Definition, opts ...Option) (*Automaton, error) {
	a := NewAutomaton(opts...)
	if err := a.AddSymbols(def.Alphabet...); err != nil {
		return nil, err
	}
	if err := a.AddEpsilonSymbols(def.Epsilons...); err != nil {
		return nil, err
	}
	if err := a.AddStates(def.States...); err != nil {
		return nil, err
	}
	if err := a.AddTransitions(def.Transitions...); err != nil {
		return nil, err
	}
	if err := a.AddInitials(def.Initials...); err != nil {
		return nil, err
	}
	if err := a.AddFinals(def.Finals...); err != nil {
		return nil, err
	}
	return a, nil
}

// derive returns an empty automaton sharing the alphabet, the epsilon symbols and the logger of a.
// Symbol numbers are preserved, so transitions can be copied by index.
func (a *Automaton) derive() *Automaton {
	b := NewAutomaton(WithLogger(a.logger), WithStateCapacity(len(a.states), len(a.symbols)))
	b.symbols = append(b.symbols, a.symbols...)
	for k, v := range a.symbolIndex {
		b.symbolIndex[k] = v
	}
	b.epsilons = a.epsilons.Clone()
	return b
}

// Clone returns a deep copy.
func (a *Automaton) Clone() *Automaton {
	b := a.derive()
	b.states = append(b.states, a.states...)
	for k, v := range a.stateIndex {
		b.stateIndex[k] = v
	}
	b.initial = a.initial.Clone()
	b.isAccept = a.isAccept.Clone()
	b.transitions = make([][]*bitset.BitSet, len(a.transitions))
	for s, row := range a.transitions {
		b.transitions[s] = make([]*bitset.BitSet, len(row))
		for k, dest := range row {
			if dest != nil {
				b.transitions[s][k] = dest.Clone()
			}
		}
	}
	b.numTransitions = a.numTransitions
	b.flags = a.flags
	return b
}

// replace is the second half of every in-place operation.
func (a *Automaton) replace(b *Automaton) {
	*a = *b
}

func (a *Automaton) invalidate() {
	a.flags = 0
}

func (a *Automaton) symbolID(s Symbol) int {
	if k, ok := a.symbolIndex[s]; ok {
		return k
	}
	k := len(a.symbols)
	a.symbols = append(a.symbols, s)
	a.symbolIndex[s] = k
	return k
}

// lookupSymbol never panics, even on values that are not comparable.
func (a *Automaton) lookupSymbol(s Symbol) (int, bool) {
	if checkKey(s) != nil {
		return 0, false
	}
	k, ok := a.symbolIndex[s]
	return k, ok
}

func (a *Automaton) stateID(s State) int {
	if i, ok := a.stateIndex[s]; ok {
		return i
	}
	i := len(a.states)
	a.states = append(a.states, s)
	a.stateIndex[s] = i
	a.transitions = append(a.transitions, nil)
	return i
}

func (a *Automaton) isEpsilon(k int) bool {
	return a.epsilons.Test(uint(k))
}

func (a *Automaton) succ(state, symbol int) *bitset.BitSet {
	row := a.transitions[state]
	if symbol >= len(row) {
		return nil
	}
	return row[symbol]
}

func (a *Automaton) addTransitionIndex(from, symbol, to int) {
	row := grow(a.transitions[from], symbol+1)
	a.transitions[from] = row
	if row[symbol] == nil {
		row[symbol] = bitset.New(uint(len(a.states)))
	}
	if !row[symbol].Test(uint(to)) {
		row[symbol].Set(uint(to))
		a.numTransitions++
	}
}

func grow[T any](s []T, size int) []T {
	if len(s) >= size {
		return s
	}
	return append(s, make([]T, size-len(s))...)
}

func checkStates(states []State) error {
	for _, s := range states {
		if !s.IsValid() {
			return checkKey(s)
		}
	}
	return nil
}

func checkSymbols(symbols []Symbol) error {
	for _, s := range symbols {
		if err := checkKey(s); err != nil {
			return err
		}
	}
	return nil
}

// AddSymbol adds a symbol to the alphabet.
func (a *Automaton) AddSymbol(s Symbol) error {
	return a.AddSymbols(s)
}

func (a *Automaton) AddSymbols(symbols ...Symbol) error {
	if err := checkSymbols(symbols); err != nil {
		return err
	}
	for _, s := range symbols {
		a.symbolID(s)
	}
	a.invalidate()
	return nil
}

// AddEpsilonSymbol adds s to the alphabet and marks it as epsilon.
func (a *Automaton) AddEpsilonSymbol(s Symbol) error {
	return a.AddEpsilonSymbols(s)
}

func (a *Automaton) AddEpsilonSymbols(symbols ...Symbol) error {
	if err := checkSymbols(symbols); err != nil {
		return err
	}
	for _, s := range symbols {
		a.epsilons.Set(uint(a.symbolID(s)))
	}
	a.invalidate()
	return nil
}

// RemoveEpsilonSymbols clears the epsilon marks. The symbols stay in the alphabet and their
// transitions become ordinary ones.
func (a *Automaton) RemoveEpsilonSymbols() {
	a.epsilons.ClearAll()
	a.invalidate()
}

func (a *Automaton) AddState(s State) error {
	return a.AddStates(s)
}

func (a *Automaton) AddStates(states ...State) error {
	if err := checkStates(states); err != nil {
		return err
	}
	for _, s := range states {
		a.stateID(s)
	}
	a.invalidate()
	return nil
}

// AddInitial marks s as initial, adding it to the states if needed.
func (a *Automaton) AddInitial(s State) error {
	return a.AddInitials(s)
}

func (a *Automaton) AddInitials(states ...State) error {
	if err := checkStates(states); err != nil {
		return err
	}
	for _, s := range states {
		a.initial.Set(uint(a.stateID(s)))
	}
	a.invalidate()
	return nil
}

// AddFinal marks s as final, adding it to the states if needed.
func (a *Automaton) AddFinal(s State) error {
	return a.AddFinals(s)
}

func (a *Automaton) AddFinals(states ...State) error {
	if err := checkStates(states); err != nil {
		return err
	}
	for _, s := range states {
		a.isAccept.Set(uint(a.stateID(s)))
	}
	a.invalidate()
	return nil
}

// ClearInitials unmarks every initial state. The states are kept.
func (a *Automaton) ClearInitials() {
	a.initial.ClearAll()
	a.invalidate()
}

// ClearFinals unmarks every final state. The states are kept.
func (a *Automaton) ClearFinals() {
	a.isAccept.ClearAll()
	a.invalidate()
}

// SetAccept sets or clears s as a final state.
func (a *Automaton) SetAccept(s State, accept bool) error {
	if !s.IsValid() {
		return checkKey(s)
	}
	a.isAccept.SetTo(uint(a.stateID(s)), accept)
	a.invalidate()
	return nil
}

// AddTransition adds (from, symbol, to). Missing states and symbol are added first.
func (a *Automaton) AddTransition(from State, symbol Symbol, to State) error {
	return a.AddTransitions(Transition{From: from, Symbol: symbol, To: to})
}

// AddTransitions adds every transition, or none of them if one is invalid.
func (a *Automaton) AddTransitions(transitions ...Transition) error {
	for _, t := range transitions {
		if !t.From.IsValid() || !t.To.IsValid() {
			return fmt.Errorf("transition %v: %w", t, checkKey(State{}))
		}
		if err := checkKey(t.Symbol); err != nil {
			return fmt.Errorf("transition %v: %w", t, err)
		}
	}
	for _, t := range transitions {
		from := a.stateID(t.From)
		to := a.stateID(t.To)
		a.addTransitionIndex(from, a.symbolID(t.Symbol), to)
	}
	a.invalidate()
	return nil
}

// RemoveTransition removes (from, symbol, to) if present. The states and the symbol are kept.
func (a *Automaton) RemoveTransition(from State, symbol Symbol, to State) error {
	t := Transition{From: from, Symbol: symbol, To: to}
	if !from.IsValid() || !to.IsValid() {
		return fmt.Errorf("transition %v: %w", t, checkKey(State{}))
	}
	if err := checkKey(symbol); err != nil {
		return fmt.Errorf("transition %v: %w", t, err)
	}
	i, ok := a.stateIndex[from]
	j, ok2 := a.stateIndex[to]
	k, ok3 := a.symbolIndex[symbol]
	if !ok || !ok2 || !ok3 {
		return nil
	}
	dests := a.succ(i, k)
	if dests == nil || !dests.Test(uint(j)) {
		return nil
	}
	dests.Clear(uint(j))
	if dests.None() {
		a.transitions[i][k] = nil
	}
	a.numTransitions--
	a.invalidate()
	return nil
}

// Alphabet returns the symbols, epsilon ones included, sorted by CompareSymbols.
func (a *Automaton) Alphabet() []Symbol {
	alphabet := slices.Clone(a.symbols)
	slices.SortFunc(alphabet, CompareSymbols)
	return alphabet
}

// Epsilons returns the epsilon symbols sorted by CompareSymbols.
func (a *Automaton) Epsilons() []Symbol {
	epsilons := make([]Symbol, 0, a.epsilons.Count())
	for k, ok := a.epsilons.NextSet(0); ok; k, ok = a.epsilons.NextSet(k + 1) {
		epsilons = append(epsilons, a.symbols[k])
	}
	slices.SortFunc(epsilons, CompareSymbols)
	return epsilons
}

func (a *Automaton) HasSymbol(s Symbol) bool {
	_, ok := a.lookupSymbol(s)
	return ok
}

func (a *Automaton) IsEpsilon(s Symbol) bool {
	k, ok := a.lookupSymbol(s)
	return ok && a.isEpsilon(k)
}

// HasEpsilons reports whether some symbol is marked as epsilon.
func (a *Automaton) HasEpsilons() bool {
	return a.epsilons.Any()
}

func (a *Automaton) toStateSet(bits *bitset.BitSet) *StateSet {
	set := NewStateSet()
	for i, ok := bits.NextSet(0); ok; i, ok = bits.NextSet(i + 1) {
		set.Add(a.states[i])
	}
	return set
}

// indexSet returns the bitset of the given states, ignoring those the automaton does not have.
func (a *Automaton) indexSet(states []State) *bitset.BitSet {
	bits := bitset.New(uint(len(a.states)))
	for _, s := range states {
		if i, ok := a.stateIndex[s]; ok {
			bits.Set(uint(i))
		}
	}
	return bits
}

func (a *Automaton) States() *StateSet {
	return NewStateSet(a.states...)
}

func (a *Automaton) Initials() *StateSet {
	return a.toStateSet(a.initial)
}

func (a *Automaton) Finals() *StateSet {
	return a.toStateSet(a.isAccept)
}

func (a *Automaton) HasState(s State) bool {
	_, ok := a.stateIndex[s]
	return ok
}

func (a *Automaton) IsInitial(s State) bool {
	i, ok := a.stateIndex[s]
	return ok && a.initial.Test(uint(i))
}

// IsAccept returns true if s is a final state.
func (a *Automaton) IsAccept(s State) bool {
	i, ok := a.stateIndex[s]
	return ok && a.isAccept.Test(uint(i))
}

// Transitions returns every transition triple, sorted by origin, symbol and destination.
func (a *Automaton) Transitions() []Transition {
	transitions := make([]Transition, 0, a.numTransitions)
	for s, row := range a.transitions {
		for k, dest := range row {
			if dest == nil {
				continue
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				transitions = append(transitions, Transition{From: a.states[s], Symbol: a.symbols[k], To: a.states[d]})
			}
		}
	}
	slices.SortFunc(transitions, func(x, y Transition) int {
		if c := Compare(x.From, y.From); c != 0 {
			return c
		}
		if c := CompareSymbols(x.Symbol, y.Symbol); c != 0 {
			return c
		}
		return Compare(x.To, y.To)
	})
	return transitions
}

// GetNumStates How many states this automaton has.
func (a *Automaton) GetNumStates() int {
	return len(a.states)
}

// GetNumTransitions How many transition triples this automaton has.
func (a *Automaton) GetNumTransitions() int {
	return a.numTransitions
}

// MaxID returns the greatest int label found inside the states.
func (a *Automaton) MaxID() (int, bool) {
	return a.extremeID(State.MaxInt, func(x, y int) bool { return x > y })
}

// MinID returns the smallest int label found inside the states.
func (a *Automaton) MinID() (int, bool) {
	return a.extremeID(State.MinInt, func(x, y int) bool { return x < y })
}

func (a *Automaton) extremeID(extract func(State) (int, bool), better func(x, y int) bool) (int, bool) {
	result, found := 0, false
	for _, s := range a.states {
		if v, ok := extract(s); ok && (!found || better(v, result)) {
			result, found = v, true
		}
	}
	return result, found
}

// nextID returns an int label that no state uses.
func (a *Automaton) nextID() int {
	if m, ok := a.MaxID(); ok {
		return m + 1
	}
	return 0
}

// IsDeterministic returns true if there is at most one initial state, no transition labelled by an
// epsilon symbol and at most one transition leaving each state with each symbol.
func (a *Automaton) IsDeterministic() bool {
	if a.flags&deterministicKnown == 0 {
		a.flags |= deterministicKnown
		if a.computeDeterministic() {
			a.flags |= deterministicValue
		}
	}
	return a.flags&deterministicValue != 0
}

func (a *Automaton) computeDeterministic() bool {
	if a.initial.Count() > 1 {
		return false
	}
	for _, row := range a.transitions {
		for k, dest := range row {
			if dest == nil {
				continue
			}
			if a.isEpsilon(k) || dest.Count() > 1 {
				return false
			}
		}
	}
	return true
}

// IsComplete returns true if every state has a transition with every non-epsilon symbol.
func (a *Automaton) IsComplete() bool {
	if a.flags&completeKnown == 0 {
		a.flags |= completeKnown
		if a.computeComplete() {
			a.flags |= completeValue
		}
	}
	return a.flags&completeValue != 0
}

func (a *Automaton) computeComplete() bool {
	for s := range a.states {
		for k := range a.symbols {
			if !a.isEpsilon(k) && a.succ(s, k) == nil {
				return false
			}
		}
	}
	return true
}

// Equal tests whether both automata have the same alphabet, epsilon symbols, states, initial
// states, final states and transitions. It does not compare languages.
func (a *Automaton) Equal(b *Automaton) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if len(a.symbols) != len(b.symbols) || len(a.states) != len(b.states) ||
		a.numTransitions != b.numTransitions {
		return false
	}

	symbols := make([]int, len(a.symbols))
	for k, s := range a.symbols {
		j, ok := b.symbolIndex[s]
		if !ok || a.isEpsilon(k) != b.isEpsilon(j) {
			return false
		}
		symbols[k] = j
	}

	states := make([]int, len(a.states))
	for i, s := range a.states {
		j, ok := b.stateIndex[s]
		if !ok || a.initial.Test(uint(i)) != b.initial.Test(uint(j)) ||
			a.isAccept.Test(uint(i)) != b.isAccept.Test(uint(j)) {
			return false
		}
		states[i] = j
	}

	for i, row := range a.transitions {
		for k, dest := range row {
			if dest == nil {
				continue
			}
			other := b.succ(states[i], symbols[k])
			if other == nil || other.Count() != dest.Count() {
				return false
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				if !other.Test(uint(states[d])) {
					return false
				}
			}
		}
	}
	return true
}

func (a *Automaton) String() string {
	return fmt.Sprintf("automaton(alphabet=%d, states=%d, initials=%v, finals=%v, transitions=%d)",
		len(a.symbols), len(a.states), a.Initials(), a.Finals(), a.numTransitions)
}
