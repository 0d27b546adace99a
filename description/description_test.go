package description

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geange/automaton/v2"
)

const twoAutomataXML = `
<list_of_automata>

<automaton>
    <alphabet>   <c>a</c><c>b</c>   </alphabet>
    <states> <s>1</s><s>2</s><s>3</s> </states>
    <initials>   <s>1</s>   </initials>
    <finals>   <s>2</s><s>3</s>   </finals>
    <transitions>
        <t> <o>1</o><c>a</c><e>2</e> </t>
        <t> <o>2</o><c>b</c><e>3</e> </t>
    </transitions>
</automaton>

<automaton>
    <epsilons>   <c>0</c>   </epsilons>
    <initials>   <s>1</s>   </initials>
    <finals>   <s>1</s>   </finals>
    <transitions>
        <t> <o>1</o><c>a</c><e>2</e> </t>
        <t> <o>2</o><c>0</c><e>1</e> </t>
    </transitions>
</automaton>

</list_of_automata>
`

const scenarioYAML = `
automata:
  - name: epsilons
    epsilons: ["0"]
    initials: [0]
    finals: [3]
    transitions:
      - {origin: 0, symbol: "0", end: 1}
      - {origin: 1, symbol: a, end: 2}
      - {origin: 1, symbol: b, end: 3}
      - {origin: 2, symbol: "0", end: 3}
      - {origin: 3, symbol: b, end: 2}
      - {origin: 3, symbol: a, end: 0}
`

func TestLoadXML(t *testing.T) {
	automata, err := LoadXML(strings.NewReader(twoAutomataXML))
	require.NoError(t, err)
	require.Len(t, automata, 2)

	first, second := automata[0], automata[1]

	assert.Equal(t, []automaton.Symbol{"a", "b"}, first.Alphabet())
	assert.True(t, first.States().Equal(automaton.NewStateSet(automaton.Labels(1, 2, 3)...)))
	assert.True(t, first.Initials().Equal(automaton.NewStateSet(automaton.Label(1))))
	assert.True(t, first.Finals().Equal(automaton.NewStateSet(automaton.Labels(2, 3)...)))
	assert.True(t, first.WordIsRecognized(automaton.Strings("a", "b")))
	assert.False(t, first.WordIsRecognized(automaton.Strings("b")))

	assert.Equal(t, []automaton.Symbol{"0"}, second.Epsilons())
	assert.True(t, second.WordIsRecognized(automaton.Strings("a", "a")))
	assert.True(t, second.WordIsRecognized(nil))
}

func TestLoadYAML(t *testing.T) {
	automata, err := LoadYAML(strings.NewReader(scenarioYAML))
	require.NoError(t, err)
	require.Len(t, automata, 1)

	a := automata[0]
	assert.True(t, a.IsEpsilon("0"))
	assert.True(t, a.WordIsRecognized(automaton.Strings("b", "a", "a")))
	assert.False(t, a.WordIsRecognized(automaton.Strings("b", "0", "a")))
}

func TestLoadYAMLEmpty(t *testing.T) {
	automata, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, automata)
}

func TestLoadMalformed(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("automata: [1, 2"))
	assert.Error(t, err)

	_, err = LoadXML(strings.NewReader("<list_of_automata>"))
	assert.Error(t, err)
}

func TestParseState(t *testing.T) {
	assert.Equal(t, automaton.Label(12), ParseState(" 12 "))
	assert.Equal(t, automaton.Label("q1"), ParseState("q1"))
	assert.Equal(t, "12", FormatState(automaton.Label(12)))
	assert.Equal(t, "q1", FormatState(automaton.Label("q1")))
	assert.Equal(t, "{1, 2}", FormatState(automaton.SetOf(automaton.Labels(1, 2)...)))

	// string labels that look like something else keep their identity
	for _, label := range []string{"12", " q ", `"q"`, "-3"} {
		s := automaton.Label(label)
		assert.Equal(t, s, ParseState(FormatState(s)), "label %q", label)
	}
	assert.Equal(t, `"12"`, FormatState(automaton.Label("12")))
}

func TestNumericStringLabelsRoundTrip(t *testing.T) {
	a := automaton.NewAutomaton()
	require.NoError(t, a.AddInitial(automaton.Label("12")))
	require.NoError(t, a.AddFinal(automaton.Label(12)))
	require.NoError(t, a.AddTransition(automaton.Label("12"), "a", automaton.Label(12)))

	for name, write := range map[string]func(io.Writer, ...*automaton.Automaton) error{"YAML": WriteYAML, "XML": WriteXML} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, write(&buf, a))
			load := LoadYAML
			if name == "XML" {
				load = LoadXML
			}
			loaded, err := load(&buf)
			require.NoError(t, err)
			require.Len(t, loaded, 1)
			assert.Equal(t, 2, loaded[0].GetNumStates())
			assert.True(t, loaded[0].IsInitial(automaton.Label("12")))
			assert.True(t, loaded[0].IsAccept(automaton.Label(12)))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	automata, err := LoadXML(strings.NewReader(twoAutomataXML))
	require.NoError(t, err)

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteYAML(&buf, automata...))
		loaded, err := LoadYAML(&buf)
		require.NoError(t, err)
		require.Len(t, loaded, len(automata))
		for i := range automata {
			assert.True(t, automata[i].Equal(loaded[i]), "automaton %d", i)
		}
	})

	t.Run("XML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteXML(&buf, automata...))
		loaded, err := LoadXML(&buf)
		require.NoError(t, err)
		require.Len(t, loaded, len(automata))
		for i := range automata {
			assert.True(t, automata[i].Equal(loaded[i]), "automaton %d", i)
		}
	})
}

func TestDescribe(t *testing.T) {
	a, err := automaton.FromDefinition(automaton.Definition{
		Initials: automaton.Labels(0),
		Finals:   automaton.Labels(1),
		Transitions: []automaton.Transition{
			{From: automaton.Label(1), Symbol: "b", To: automaton.Label(0)},
			{From: automaton.Label(0), Symbol: "a", To: automaton.Label(1)},
		},
	})
	require.NoError(t, err)

	want := Description{
		Alphabet: []string{"a", "b"},
		Epsilons: []string{},
		States:   []string{"0", "1"},
		Initials: []string{"0"},
		Finals:   []string{"1"},
		Transitions: []Transition{
			{Origin: "0", Symbol: "a", End: "1"},
			{Origin: "1", Symbol: "b", End: "0"},
		},
	}
	if diff := cmp.Diff(want, Describe(a)); diff != "" {
		t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
	}
}

func TestFiles(t *testing.T) {
	automata, err := LoadYAML(strings.NewReader(scenarioYAML))
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"out.yaml", "out.yml", "out.xml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveFile(path, automata...))
		loaded, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.True(t, automata[0].Equal(loaded[0]), name)
	}

	err = SaveFile(filepath.Join(dir, "out.json"), automata...)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0o644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
