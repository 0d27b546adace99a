package automaton

// Mirror returns the automaton recognizing the reversed words: initial and final states are
// swapped and every transition (q1, c, q2) becomes (q2, c, q1).
func Mirror(a *Automaton) *Automaton {
	b := a.derive()
	for _, state := range a.states {
		b.stateID(state)
	}
	b.initial = a.isAccept.Clone()
	b.isAccept = a.initial.Clone()

	for s, row := range a.transitions {
		for k, dest := range row {
			if dest == nil {
				continue
			}
			for d, ok := dest.NextSet(0); ok; d, ok = dest.NextSet(d + 1) {
				b.addTransitionIndex(int(d), k, s)
			}
		}
	}
	return b
}

func (a *Automaton) MirrorInPlace() {
	a.replace(Mirror(a))
}

// Minimize returns the minimal deterministic automaton recognizing the language of a, computed as
// Determinize(Mirror(Determinize(Mirror(a)))). The states of the result are sets of sets of sets
// of states of a; Renumber gives them plain numbers.
//
// Every state of a must be reachable from an initial state, otherwise the result is not
// guaranteed to be minimal. RemoveUnreachableStates can be used first.
//
// When a accepts no word the result is returned together with an error wrapping
// ErrUnrecognizable.
func Minimize(a *Automaton) (*Automaton, error) {
	// the first pass only fails on an empty language, which the second pass reports as well
	reversed, _ := Determinize(Mirror(a))
	b, err := Determinize(Mirror(reversed))
	a.logger.Debug("minimize", "from", len(a.states), "to", len(b.states))
	return b, err
}

// MinimizeInPlace replaces a by Minimize(a). On error a is left untouched.
func (a *Automaton) MinimizeInPlace() error {
	b, err := Minimize(a)
	if err != nil {
		return err
	}
	a.replace(b)
	return nil
}
