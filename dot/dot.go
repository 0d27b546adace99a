// Package dot renders automata in the Graphviz DOT language.
package dot

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/geange/automaton/v2"
)

// String returns the DOT description of a. title is drawn above the graph when not empty.
//
// States are numbered from 1 in sorted order and drawn with their own label. Initial states are
// diamonds, other states ovals; final states get a double border. Every transition is an edge
// labelled by its symbol.
func String(a *automaton.Automaton, title string) string {
	var sb strings.Builder

	states := a.States().GetArray()
	ids := make(map[automaton.State]int, len(states))
	for i, s := range states {
		ids[s] = i + 1
	}

	sb.WriteString("digraph G {\n")
	if title != "" {
		sb.WriteString("\tlabelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("\tlabel=%s;\n", strconv.Quote(title)))
	}

	for _, t := range a.Transitions() {
		sb.WriteString(fmt.Sprintf("\t%d->%d [label=%s];\n",
			ids[t.From], ids[t.To], strconv.Quote(automaton.FormatSymbol(t.Symbol))))
	}

	for _, s := range states {
		shape := "oval"
		if a.IsInitial(s) {
			shape = "diamond"
		}
		peripheries := ""
		if a.IsAccept(s) {
			peripheries = ", peripheries=2"
		}
		sb.WriteString(fmt.Sprintf("\t%d [margin=0.0, shape=%s%s, label=%s];\n",
			ids[s], shape, peripheries, strconv.Quote(s.String())))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// Write writes the DOT description of a to w.
func Write(w io.Writer, a *automaton.Automaton, title string) error {
	if _, err := io.WriteString(w, String(a, title)); err != nil {
		return fmt.Errorf("dot: %w", err)
	}
	return nil
}
