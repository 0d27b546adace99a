package automaton

// Run returns true if a accepts s, read rune by rune.
func Run(a *Automaton, s string) bool {
	return a.WordIsRecognized(Word(s))
}

// RunWord returns true if a accepts word. A deterministic automaton is walked state by state;
// other automata go through DeltaStar.
func RunWord(a *Automaton, word []Symbol) bool {
	if !a.IsDeterministic() || a.HasEpsilons() {
		return a.WordIsRecognized(word)
	}

	state, ok := a.initial.NextSet(0)
	if !ok {
		return false
	}
	for _, symbol := range word {
		k, ok := a.lookupSymbol(symbol)
		if !ok {
			return false
		}
		dest := a.succ(int(state), k)
		if dest == nil {
			return false
		}
		state, _ = dest.NextSet(0)
	}
	return a.isAccept.Test(state)
}
