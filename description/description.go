// Package description loads and saves automata as YAML or XML documents.
//
// A document holds a list of automata. Each automaton lists its alphabet, its epsilon symbols,
// its states, its initial and final states and its transitions. Symbols are read as strings;
// states are read as integers when they parse as such, as strings otherwise.
package description

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/geange/automaton/v2"
)

// ErrUnknownFormat is returned by LoadFile and SaveFile for file names without a known extension.
var ErrUnknownFormat = errors.New("description: unknown file format")

// Document is a list of automata. The XML layout is
//
//	<list_of_automata>
//	  <automaton>
//	    <alphabet><c>a</c></alphabet>
//	    <epsilons><c>0</c></epsilons>
//	    <states><s>1</s></states>
//	    <initials><s>1</s></initials>
//	    <finals><s>1</s></finals>
//	    <transitions><t><o>1</o><c>a</c><e>1</e></t></transitions>
//	  </automaton>
//	</list_of_automata>
type Document struct {
	XMLName  xml.Name      `yaml:"-" xml:"list_of_automata"`
	Automata []Description `yaml:"automata" xml:"automaton"`
}

// Description is one automaton of a Document.
type Description struct {
	Name        string       `yaml:"name,omitempty" xml:"name,attr,omitempty"`
	Alphabet    []string     `yaml:"alphabet,omitempty" xml:"alphabet>c"`
	Epsilons    []string     `yaml:"epsilons,omitempty" xml:"epsilons>c"`
	States      []string     `yaml:"states,omitempty" xml:"states>s"`
	Initials    []string     `yaml:"initials,omitempty" xml:"initials>s"`
	Finals      []string     `yaml:"finals,omitempty" xml:"finals>s"`
	Transitions []Transition `yaml:"transitions,omitempty" xml:"transitions>t"`
}

// Transition is an (origin, symbol, end) triple.
type Transition struct {
	Origin string `yaml:"origin" xml:"o"`
	Symbol string `yaml:"symbol" xml:"c"`
	End    string `yaml:"end" xml:"e"`
}

// ParseState returns the state named s: an integer label when s is an integer, the unquoted string
// label when s is a Go quoted string, a string label otherwise.
func ParseState(s string) automaton.State {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return automaton.Label(n)
	}
	if strings.HasPrefix(s, `"`) {
		if u, err := strconv.Unquote(s); err == nil {
			return automaton.Label(u)
		}
	}
	return automaton.Label(s)
}

// FormatState is the inverse of ParseState for plain labels. A string label that would read back
// as something else, such as "12", is quoted. Composite states are written with State.String and
// read back as string labels.
func FormatState(s automaton.State) string {
	switch v := s.Value().(type) {
	case int:
		return strconv.Itoa(v)
	case string:
		if ParseState(v) != s {
			return strconv.Quote(v)
		}
		return v
	}
	return s.String()
}

func parseStates(names []string) []automaton.State {
	states := make([]automaton.State, len(names))
	for i, name := range names {
		states[i] = ParseState(name)
	}
	return states
}

func parseSymbols(names []string) []automaton.Symbol {
	symbols := make([]automaton.Symbol, len(names))
	for i, name := range names {
		symbols[i] = strings.TrimSpace(name)
	}
	return symbols
}

// Build returns the automaton described by d.
func (d Description) Build(opts ...automaton.Option) (*automaton.Automaton, error) {
	transitions := make([]automaton.Transition, len(d.Transitions))
	for i, t := range d.Transitions {
		transitions[i] = automaton.Transition{
			From:   ParseState(t.Origin),
			Symbol: strings.TrimSpace(t.Symbol),
			To:     ParseState(t.End),
		}
	}
	return automaton.FromDefinition(automaton.Definition{
		Alphabet:    parseSymbols(d.Alphabet),
		Epsilons:    parseSymbols(d.Epsilons),
		States:      parseStates(d.States),
		Initials:    parseStates(d.Initials),
		Finals:      parseStates(d.Finals),
		Transitions: transitions,
	}, opts...)
}

func formatStates(set *automaton.StateSet) []string {
	names := make([]string, 0, set.Size())
	for s := range set.All() {
		names = append(names, FormatState(s))
	}
	return names
}

func formatSymbols(symbols []automaton.Symbol) []string {
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = automaton.FormatSymbol(s)
	}
	return names
}

// Describe returns the description of a.
func Describe(a *automaton.Automaton) Description {
	d := Description{
		Alphabet: formatSymbols(a.Alphabet()),
		Epsilons: formatSymbols(a.Epsilons()),
		States:   formatStates(a.States()),
		Initials: formatStates(a.Initials()),
		Finals:   formatStates(a.Finals()),
	}
	for _, t := range a.Transitions() {
		d.Transitions = append(d.Transitions, Transition{
			Origin: FormatState(t.From),
			Symbol: automaton.FormatSymbol(t.Symbol),
			End:    FormatState(t.To),
		})
	}
	return d
}

func (doc *Document) build(opts []automaton.Option) ([]*automaton.Automaton, error) {
	automata := make([]*automaton.Automaton, 0, len(doc.Automata))
	for i, d := range doc.Automata {
		a, err := d.Build(opts...)
		if err != nil {
			return nil, fmt.Errorf("description: automaton %d: %w", i, err)
		}
		automata = append(automata, a)
	}
	return automata, nil
}

func describeAll(automata []*automaton.Automaton) *Document {
	doc := &Document{}
	for _, a := range automata {
		doc.Automata = append(doc.Automata, Describe(a))
	}
	return doc
}

// LoadYAML reads every automaton of a YAML document.
func LoadYAML(r io.Reader, opts ...automaton.Option) ([]*automaton.Automaton, error) {
	doc := &Document{}
	if err := yaml.NewDecoder(r).Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("description: decode yaml: %w", err)
	}
	return doc.build(opts)
}

// LoadXML reads every automaton of an XML document.
func LoadXML(r io.Reader, opts ...automaton.Option) ([]*automaton.Automaton, error) {
	doc := &Document{}
	if err := xml.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("description: decode xml: %w", err)
	}
	return doc.build(opts)
}

// WriteYAML writes automata as a YAML document.
func WriteYAML(w io.Writer, automata ...*automaton.Automaton) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(describeAll(automata)); err != nil {
		return fmt.Errorf("description: encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteXML writes automata as an XML document.
func WriteXML(w io.Writer, automata ...*automaton.Automaton) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(describeAll(automata)); err != nil {
		return fmt.Errorf("description: encode xml: %w", err)
	}
	return enc.Close()
}

// LoadFile reads a document, choosing the format from the extension: .yaml, .yml or .xml.
func LoadFile(path string, opts ...automaton.Option) ([]*automaton.Automaton, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f, opts...)
	case ".xml":
		return LoadXML(f, opts...)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// SaveFile writes automata to path, choosing the format from the extension like LoadFile.
func SaveFile(path string, automata ...*automaton.Automaton) error {
	var write func(io.Writer, ...*automaton.Automaton) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		write = WriteYAML
	case ".xml":
		write = WriteXML
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("description: %w", err)
	}
	if err := write(f, automata...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
