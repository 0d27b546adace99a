package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/geange/automaton/v2"
)

// parseExpression reads an expression in the infix form, or in the prefix form written in YAML.
// Symbols are one-letter strings unless runes is set, so that the result can be combined with
// automata loaded from a description.
func parseExpression(s string, prefix, runes bool) (*automaton.RegExp, error) {
	if !prefix {
		if runes {
			return automaton.NewRegExp(s)
		}
		return automaton.NewRegExp(s, automaton.WithStringSymbols())
	}

	var tree any
	if err := yaml.Unmarshal([]byte(s), &tree); err != nil {
		return nil, fmt.Errorf("read prefix expression: %w", err)
	}
	return automaton.ParseExpression(tree)
}

// splitWord turns a command line word into symbols: its letters, or its comma separated parts.
func splitWord(w string, symbols bool) []automaton.Symbol {
	if symbols {
		if w == "" {
			return nil
		}
		return automaton.Strings(strings.Split(w, ",")...)
	}
	word := make([]automaton.Symbol, 0, len(w))
	for _, r := range w {
		word = append(word, string(r))
	}
	return word
}
