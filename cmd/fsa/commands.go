package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geange/automaton/v2"
)

type unaryOp func(a *automaton.Automaton) (*automaton.Automaton, error)

type binaryOp func(a1, a2 *automaton.Automaton) (*automaton.Automaton, error)

func determinize(a *automaton.Automaton) (*automaton.Automaton, error) {
	return automaton.Determinize(a)
}

func minimize(a *automaton.Automaton) (*automaton.Automaton, error) {
	m, err := automaton.Minimize(automaton.RemoveUnreachableStates(a))
	if err != nil {
		return m, err
	}
	return automaton.Renumber(m), nil
}

func complete(a *automaton.Automaton) (*automaton.Automaton, error) {
	return automaton.Complete(a), nil
}

func complement(a *automaton.Automaton) (*automaton.Automaton, error) {
	return automaton.Complement(a), nil
}

func mirror(a *automaton.Automaton) (*automaton.Automaton, error) {
	return automaton.Mirror(a), nil
}

func renumber(a *automaton.Automaton) (*automaton.Automaton, error) {
	return automaton.Renumber(a), nil
}

func trim(a *automaton.Automaton) (*automaton.Automaton, error) {
	return automaton.RemoveDeadStates(a), nil
}

// emit prints the automaton anyway when the only problem is an empty language.
func (o *rootOptions) emit(cmd *cobra.Command, a *automaton.Automaton, err error) error {
	if err != nil && !errors.Is(err, automaton.ErrUnrecognizable) {
		return err
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", err)
	}
	return o.write(cmd.OutOrStdout(), a)
}

func newUnaryCmd(opts *rootOptions, name, short string, op unaryOp) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(args[0])
			if err != nil {
				return err
			}
			result, err := op(a)
			return opts.emit(cmd, result, err)
		},
	}
}

func newBinaryCmd(opts *rootOptions, name, short string, op binaryOp) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <file> <file>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a1, err := opts.load(args[0])
			if err != nil {
				return err
			}
			a2, err := opts.load(args[1])
			if err != nil {
				return err
			}
			result, err := op(a1, a2)
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), result)
		},
	}
}

func newRegexCmd(opts *rootOptions) *cobra.Command {
	var prefix, nfa, runes bool

	cmd := &cobra.Command{
		Use:   "regex <expression>",
		Short: "Compile a regular expression into a minimal automaton",
		Long: `Compiles a regular expression. The infix form accepts juxtaposition, '|', '*', '+', '?',
parentheses and '\' escapes. With --prefix the expression is read as YAML in the prefix form,
for example '[".", [a, b, ["*", [c]]]]'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseExpression(args[0], prefix, runes)
			if err != nil {
				return err
			}
			logger := automaton.WithLogger(opts.logger())
			if nfa {
				a, err := r.ToNFA(logger)
				if err != nil {
					return err
				}
				return opts.write(cmd.OutOrStdout(), a)
			}
			a, err := r.ToAutomaton(logger)
			return opts.emit(cmd, a, err)
		},
	}
	cmd.Flags().BoolVar(&prefix, "prefix", false, "Read the expression in the prefix form")
	cmd.Flags().BoolVar(&nfa, "nfa", false, "Print the automaton before minimization")
	cmd.Flags().BoolVar(&runes, "runes", false, "Use runes as symbols instead of one-letter strings")
	return cmd
}

func newAcceptsCmd(opts *rootOptions) *cobra.Command {
	var symbols bool

	cmd := &cobra.Command{
		Use:   "accepts <file> <word>...",
		Short: "Tell whether an automaton accepts words",
		Long: `Prints one line per word: the word, then true or false. A word is read letter by letter,
or with --symbols as a comma separated list of symbols.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(args[0])
			if err != nil {
				return err
			}
			for _, w := range args[1:] {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", w, a.WordIsRecognized(splitWord(w, symbols)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&symbols, "symbols", false, "Read words as comma separated symbols")
	return cmd
}
