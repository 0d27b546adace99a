package automaton

// Automata builds small automata. Every state is an integer label starting at 0, which is the
// only initial state.
type Automata struct {
}

var defaultAutomata = &Automata{}

// MakeEmpty
// Returns a new (deterministic) automaton with the empty language.
func (*Automata) MakeEmpty() *Automaton {
	a := NewAutomaton()
	a.initial.Set(uint(a.stateID(Label(0))))
	return a
}

// MakeEmptyString
// Returns a new (deterministic) automaton that accepts only the empty word.
func (*Automata) MakeEmptyString() *Automaton {
	a := NewAutomaton()
	s := a.stateID(Label(0))
	a.initial.Set(uint(s))
	a.isAccept.Set(uint(s))
	return a
}

// MakeSymbol
// Returns a new (deterministic) automaton that accepts the single word made of symbol.
func (m *Automata) MakeSymbol(symbol Symbol) (*Automaton, error) {
	return m.MakeWord([]Symbol{symbol})
}

// MakeWord
// Returns a new (deterministic) automaton that accepts only word.
func (*Automata) MakeWord(word []Symbol) (*Automaton, error) {
	if err := checkSymbols(word); err != nil {
		return nil, err
	}
	a := NewAutomaton(WithStateCapacity(len(word)+1, len(word)))
	a.initial.Set(uint(a.stateID(Label(0))))
	for i, symbol := range word {
		a.addTransitionIndex(i, a.symbolID(symbol), a.stateID(Label(i+1)))
	}
	a.isAccept.Set(uint(len(word)))
	return a, nil
}

// MakeString
// Returns a new (deterministic) automaton that accepts only s, read rune by rune.
func (m *Automata) MakeString(s string) *Automaton {
	a, _ := m.MakeWord(Word(s))
	return a
}

// MakeAnyString
// Returns a new (deterministic) automaton that accepts all words over alphabet.
func (*Automata) MakeAnyString(alphabet ...Symbol) (*Automaton, error) {
	if err := checkSymbols(alphabet); err != nil {
		return nil, err
	}
	a := NewAutomaton()
	s := a.stateID(Label(0))
	a.initial.Set(uint(s))
	a.isAccept.Set(uint(s))
	for _, symbol := range alphabet {
		a.addTransitionIndex(s, a.symbolID(symbol), s)
	}
	return a, nil
}

// MakeAnySymbol
// Returns a new (deterministic) automaton that accepts every word made of one symbol of alphabet.
func (*Automata) MakeAnySymbol(alphabet ...Symbol) (*Automaton, error) {
	if err := checkSymbols(alphabet); err != nil {
		return nil, err
	}
	a := NewAutomaton()
	a.initial.Set(uint(a.stateID(Label(0))))
	end := a.stateID(Label(1))
	a.isAccept.Set(uint(end))
	for _, symbol := range alphabet {
		a.addTransitionIndex(0, a.symbolID(symbol), end)
	}
	return a, nil
}
