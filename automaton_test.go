package automaton

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// t3 builds a transition between plain states.
func t3(from any, symbol Symbol, to any) Transition {
	return Transition{From: Label(from), Symbol: symbol, To: Label(to)}
}

func mustDefinition(t *testing.T, def Definition) *Automaton {
	t.Helper()
	a, err := FromDefinition(def)
	require.NoError(t, err)
	return a
}

func states(vs ...any) *StateSet {
	return NewStateSet(Labels(vs...)...)
}

func TestFromDefinition(t *testing.T) {
	a := mustDefinition(t, Definition{
		Alphabet:    []Symbol{"d"},
		States:      Labels(4),
		Initials:    Labels(0, 2),
		Finals:      Labels(1, 3),
		Transitions: []Transition{t3(0, "a", 0), t3(0, "b", 1), t3(1, "c", 1)},
	})

	assert.Equal(t, Strings("a", "b", "c", "d"), a.Alphabet())
	assert.True(t, a.States().Equal(states(0, 1, 2, 3, 4)))
	assert.True(t, a.Initials().Equal(states(0, 2)))
	assert.True(t, a.Finals().Equal(states(1, 3)))
	assert.Equal(t, []Transition{t3(0, "a", 0), t3(0, "b", 1), t3(1, "c", 1)}, a.Transitions())
	assert.Equal(t, 5, a.GetNumStates())
	assert.Equal(t, 3, a.GetNumTransitions())

	b := mustDefinition(t, Definition{
		Transitions: []Transition{
			{From: PairOf(Label(1), Label(2)), Symbol: "a", To: PairOf(Label(1), Label(3))},
			{From: PairOf(Label(1), Label(2)), Symbol: "b", To: PairOf(Label(4), Label(5))},
			{From: PairOf(Label(4), Label(5)), Symbol: "a", To: PairOf(Label(1), Label(3))},
		},
	})
	assert.True(t, b.States().Equal(NewStateSet(
		PairOf(Label(1), Label(2)), PairOf(Label(4), Label(5)), PairOf(Label(1), Label(3)),
	)))
	assert.True(t, b.Initials().Equal(NewStateSet()))
}

func TestFromDefinitionInvalid(t *testing.T) {
	_, err := FromDefinition(Definition{Alphabet: []Symbol{"a", []int{1}}})
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = FromDefinition(Definition{Transitions: []Transition{{From: Label(0), Symbol: "a"}}})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestInvalidKeyLeavesAutomatonUntouched(t *testing.T) {
	a := mustDefinition(t, Definition{
		Initials:    Labels(0),
		Finals:      Labels(1),
		Transitions: []Transition{t3(0, "a", 1)},
	})
	before := a.Clone()

	assert.ErrorIs(t, a.AddSymbol([]int{1, 2, 5}), ErrInvalidKey)
	assert.ErrorIs(t, a.AddSymbols("z", map[string]int{}), ErrInvalidKey)
	assert.ErrorIs(t, a.AddEpsilonSymbol([]int{1, 2, 5}), ErrInvalidKey)
	assert.ErrorIs(t, a.AddState(State{}), ErrInvalidKey)
	assert.ErrorIs(t, a.AddStates(Label(7), State{}), ErrInvalidKey)
	assert.ErrorIs(t, a.AddInitials(Label(7), State{}), ErrInvalidKey)
	assert.ErrorIs(t, a.AddFinal(State{}), ErrInvalidKey)
	assert.ErrorIs(t, a.SetAccept(State{}, true), ErrInvalidKey)
	assert.ErrorIs(t, a.AddTransition(Label(0), nil, Label(1)), ErrInvalidKey)
	assert.ErrorIs(t, a.AddTransitions(t3(5, "b", 6), Transition{From: Label(0), Symbol: []byte("x"), To: Label(1)}), ErrInvalidKey)

	assert.True(t, before.Equal(a))
	assert.False(t, a.HasSymbol("z"))
	assert.False(t, a.HasState(Label(7)))
	assert.False(t, a.HasSymbol([]int{1}))
}

func TestMutators(t *testing.T) {
	a := NewAutomaton()
	assert.True(t, a.States().Equal(NewStateSet()))

	require.NoError(t, a.AddInitial(Label(2)))
	assert.True(t, a.States().Equal(states(2)))
	assert.True(t, a.IsInitial(Label(2)))

	require.NoError(t, a.AddFinals(Labels(1, 2, 3)...))
	assert.True(t, a.States().Equal(states(1, 2, 3)))
	assert.True(t, a.Finals().Equal(states(1, 2, 3)))

	require.NoError(t, a.SetAccept(Label(2), false))
	assert.False(t, a.IsAccept(Label(2)))
	assert.True(t, a.IsAccept(Label(3)))

	require.NoError(t, a.AddState(PairOf(Label(1), Label(3))))
	assert.True(t, a.HasState(PairOf(Label(1), Label(3))))
	assert.False(t, a.HasState(Label(4)))

	require.NoError(t, a.AddSymbols("a", "c"))
	assert.True(t, a.HasSymbol("a"))
	assert.False(t, a.HasSymbol("b"))

	require.NoError(t, a.AddTransition(Label(1), "a", Label(2)))
	require.NoError(t, a.AddTransition(Label(1), "a", Label(2)))
	assert.Equal(t, 1, a.GetNumTransitions())
	assert.Equal(t, []Transition{t3(1, "a", 2)}, a.Transitions())
}

func TestEpsilonSymbols(t *testing.T) {
	a := NewAutomaton()
	assert.False(t, a.HasEpsilons())
	assert.Empty(t, a.Epsilons())

	require.NoError(t, a.AddEpsilonSymbols("1", "0"))
	assert.True(t, a.HasEpsilons())
	assert.Equal(t, Strings("0", "1"), a.Alphabet())
	assert.Equal(t, Strings("0", "1"), a.Epsilons())
	assert.True(t, a.IsEpsilon("0"))
	assert.False(t, a.IsEpsilon("a"))

	a.RemoveEpsilonSymbols()
	assert.Equal(t, Strings("0", "1"), a.Alphabet())
	assert.Empty(t, a.Epsilons())
	assert.False(t, a.HasEpsilons())
}

func TestEqualAndClone(t *testing.T) {
	def := Definition{
		Alphabet: []Symbol{"c"},
		Epsilons: []Symbol{"0"},
		States:   Labels(5),
		Initials: Labels(0, 1),
		Finals:   Labels(3, 4),
		Transitions: []Transition{
			t3(0, "a", 1), t3(1, "b", 2), t3(2, "b", 2), t3(2, "a", 3), t3(3, "a", 4),
		},
	}
	a := mustDefinition(t, def)

	b := a.Clone()
	assert.NotSame(t, a, b)
	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(mustDefinition(t, def)))

	withoutC := def
	withoutC.Alphabet = nil
	assert.False(t, a.Equal(mustDefinition(t, withoutC)))

	otherFinals := def
	otherFinals.Finals = Labels(3)
	assert.False(t, a.Equal(mustDefinition(t, otherFinals)))

	// the clone is independent
	require.NoError(t, b.AddTransition(Label(4), "c", Label(5)))
	assert.False(t, a.Equal(b))
	assert.Equal(t, 5, a.GetNumTransitions())

	assert.False(t, a.Equal(nil))
	assert.True(t, a.Equal(a))
}

func TestEqualIgnoresInsertionOrder(t *testing.T) {
	a := mustDefinition(t, Definition{
		Initials:    Labels(0),
		Transitions: []Transition{t3(0, "a", 1), t3(1, "b", 0)},
	})
	b := mustDefinition(t, Definition{
		Alphabet:    []Symbol{"b", "a"},
		States:      Labels(1, 0),
		Initials:    Labels(0),
		Transitions: []Transition{t3(1, "b", 0), t3(0, "a", 1)},
	})
	assert.True(t, a.Equal(b))
}

func TestMaxMinID(t *testing.T) {
	b := mustDefinition(t, Definition{
		Transitions: []Transition{
			{From: PairOf(SetOf(Labels(-1, 11)...), Label(2)), Symbol: "a", To: PairOf(Label(1), Label(9))},
			{From: PairOf(SetOf(Labels(-1, 11)...), Label(2)), Symbol: "b", To: PairOf(Label(4), Label(5))},
			{From: PairOf(Label(4), Label(5)), Symbol: "a", To: PairOf(Label(1), Label(9))},
		},
	})
	maxID, ok := b.MaxID()
	require.True(t, ok)
	assert.Equal(t, 11, maxID)
	minID, ok := b.MinID()
	require.True(t, ok)
	assert.Equal(t, -1, minID)

	_, ok = NewAutomaton().MaxID()
	assert.False(t, ok)
	assert.Equal(t, 0, NewAutomaton().nextID())
	assert.Equal(t, 12, b.nextID())
}

func TestIsDeterministic(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want bool
	}{
		{
			name: "empty",
			want: true,
		},
		{
			name: "one successor per symbol",
			def:  Definition{Initials: Labels(0), Transitions: []Transition{t3(0, "a", 1), t3(0, "b", 0)}},
			want: true,
		},
		{
			name: "two initial states",
			def:  Definition{Initials: Labels(0, 1), Transitions: []Transition{t3(0, "a", 1)}},
			want: false,
		},
		{
			name: "two successors",
			def:  Definition{Initials: Labels(0), Transitions: []Transition{t3(0, "a", 1), t3(0, "a", 2)}},
			want: false,
		},
		{
			name: "epsilon transition",
			def: Definition{
				Epsilons:    []Symbol{"0"},
				Initials:    Labels(0),
				Transitions: []Transition{t3(0, "0", 1)},
			},
			want: false,
		},
		{
			name: "unused epsilon symbol",
			def: Definition{
				Epsilons:    []Symbol{"0"},
				Initials:    Labels(0),
				Transitions: []Transition{t3(0, "a", 1)},
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustDefinition(t, tt.def)
			assert.Equal(t, tt.want, a.IsDeterministic())
		})
	}
}

func TestFlagsAreRecomputedAfterMutation(t *testing.T) {
	a := mustDefinition(t, Definition{
		Initials:    Labels(0),
		Transitions: []Transition{t3(0, "a", 0)},
	})
	assert.True(t, a.IsDeterministic())
	assert.True(t, a.IsComplete())

	require.NoError(t, a.AddTransition(Label(0), "a", Label(1)))
	assert.False(t, a.IsDeterministic())
	assert.False(t, a.IsComplete())
}

func TestAddFinalInvalidatesFlags(t *testing.T) {
	a := mustDefinition(t, Definition{
		Initials:    Labels(0),
		Transitions: []Transition{t3(0, "a", 0)},
	})
	assert.True(t, a.IsComplete())

	require.NoError(t, a.AddFinal(Label(7)))
	assert.False(t, a.IsComplete())

	c := Complete(a)
	assert.Equal(t, 3, c.GetNumStates())
	assert.True(t, c.IsComplete())
	assert.NotEmpty(t, c.Delta("a", From(Label(7))).GetArray())
}

func TestRemoveTransition(t *testing.T) {
	a := mustDefinition(t, Definition{
		Initials:    Labels(0),
		Finals:      Labels(1),
		Transitions: []Transition{t3(0, "a", 0), t3(0, "a", 1)},
	})
	assert.False(t, a.IsDeterministic())

	require.NoError(t, a.RemoveTransition(Label(0), "a", Label(1)))
	assert.Equal(t, 1, a.GetNumTransitions())
	assert.Equal(t, []Transition{t3(0, "a", 0)}, a.Transitions())
	assert.True(t, a.HasState(Label(1)))
	assert.True(t, a.IsDeterministic())

	// unknown transitions are ignored
	require.NoError(t, a.RemoveTransition(Label(0), "a", Label(1)))
	require.NoError(t, a.RemoveTransition(Label(9), "z", Label(0)))
	assert.Equal(t, 1, a.GetNumTransitions())

	assert.True(t, a.IsComplete())
	require.NoError(t, a.RemoveTransition(Label(0), "a", Label(0)))
	assert.Equal(t, 0, a.GetNumTransitions())
	assert.Empty(t, a.Transitions())
	assert.False(t, a.IsComplete())
	assert.Equal(t, 3, Complete(a).GetNumStates())
}

func TestRemoveTransitionInvalid(t *testing.T) {
	a := mustDefinition(t, Definition{Initials: Labels(0), Transitions: []Transition{t3(0, "a", 1)}})
	assert.ErrorIs(t, a.RemoveTransition(State{}, "a", Label(1)), ErrInvalidKey)
	assert.ErrorIs(t, a.RemoveTransition(Label(0), []int{1}, Label(1)), ErrInvalidKey)
	assert.Equal(t, 1, a.GetNumTransitions())
}

func TestClearInitialsAndFinals(t *testing.T) {
	a := mustDefinition(t, Definition{
		Initials:    Labels(0, 1),
		Finals:      Labels(1),
		Transitions: []Transition{t3(0, "a", 1)},
	})
	assert.False(t, a.IsDeterministic())

	a.ClearInitials()
	assert.Equal(t, 0, a.Initials().Size())
	assert.True(t, a.HasState(Label(0)))
	assert.True(t, a.IsDeterministic())

	require.NoError(t, a.AddInitial(Label(0)))
	assert.True(t, a.WordIsRecognized(Strings("a")))

	a.ClearFinals()
	assert.Equal(t, 0, a.Finals().Size())
	assert.False(t, a.WordIsRecognized(Strings("a")))
	assert.Equal(t, 2, a.GetNumStates())
}

func TestIsComplete(t *testing.T) {
	a := mustDefinition(t, Definition{
		Epsilons:    []Symbol{"0"},
		Initials:    Labels(0),
		Transitions: []Transition{t3(0, "a", 1), t3(0, "b", 1), t3(1, "a", 0)},
	})
	assert.False(t, a.IsComplete())

	require.NoError(t, a.AddTransition(Label(1), "b", Label(1)))
	assert.True(t, a.IsComplete(), "epsilon symbols do not need transitions")
}

func TestTransitionString(t *testing.T) {
	assert.Equal(t, `(0, a, (1, "q"))`, Transition{From: Label(0), Symbol: 'a', To: PairOf(Label(1), Label("q"))}.String())

	a := mustDefinition(t, Definition{Initials: Labels(0), Finals: Labels(1), Transitions: []Transition{t3(0, "a", 1)}})
	assert.Equal(t, "automaton(alphabet=1, states=2, initials={0}, finals={1}, transitions=1)", a.String())
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a, err := FromDefinition(Definition{
		Initials:    Labels(0),
		Finals:      Labels(1),
		Transitions: []Transition{t3(0, "a", 1), t3(0, "a", 2)},
	}, WithLogger(logger))
	require.NoError(t, err)

	_, err = Determinize(a)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=determinize")
}
