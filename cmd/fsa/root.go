package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/geange/automaton/v2"
	"github.com/geange/automaton/v2/description"
	"github.com/geange/automaton/v2/dot"
)

type rootOptions struct {
	format  string
	title   string
	index   int
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "fsa",
		Short:         "fsa builds and transforms finite automata",
		Long:          `fsa loads automata from YAML or XML descriptions, or compiles them from regular expressions, and prints the result of an operation as DOT, YAML or XML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "dot", "Output format: dot, yaml or xml")
	rootCmd.PersistentFlags().StringVar(&opts.title, "title", "", "Title of the DOT graph")
	rootCmd.PersistentFlags().IntVar(&opts.index, "index", 0, "Which automaton of a description file to use")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Trace the operations on stderr")

	rootCmd.AddCommand(
		newRegexCmd(opts),
		newUnaryCmd(opts, "determinize", "Determinize an automaton by the subset construction", determinize),
		newUnaryCmd(opts, "minimize", "Minimize an automaton", minimize),
		newUnaryCmd(opts, "complete", "Add a sink state so every state reads every symbol", complete),
		newUnaryCmd(opts, "complement", "Complement an automaton", complement),
		newUnaryCmd(opts, "mirror", "Reverse every transition and swap initial and final states", mirror),
		newUnaryCmd(opts, "renumber", "Number the states from 0", renumber),
		newUnaryCmd(opts, "trim", "Remove the states that do not lead from an initial to a final state", trim),
		newBinaryCmd(opts, "union", "Product automaton accepting the words of either automaton", automaton.Union),
		newBinaryCmd(opts, "intersect", "Product automaton accepting the words of both automata", automaton.Intersection),
		newAcceptsCmd(opts),
	)
	return rootCmd
}

func (o *rootOptions) logger() *slog.Logger {
	if !o.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// load returns the automaton selected by --index in the description file at path.
func (o *rootOptions) load(path string) (*automaton.Automaton, error) {
	automata, err := description.LoadFile(path, automaton.WithLogger(o.logger()))
	if err != nil {
		return nil, err
	}
	if o.index < 0 || o.index >= len(automata) {
		return nil, fmt.Errorf("%s holds %d automata, no automaton at index %d", path, len(automata), o.index)
	}
	return automata[o.index], nil
}

func (o *rootOptions) write(w io.Writer, a *automaton.Automaton) error {
	switch o.format {
	case "dot":
		return dot.Write(w, a, o.title)
	case "yaml":
		return description.WriteYAML(w, a)
	case "xml":
		if err := description.WriteXML(w, a); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	return fmt.Errorf("unknown output format %q", o.format)
}
