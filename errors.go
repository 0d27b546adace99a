package automaton

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned when a state or a symbol cannot be used as a map key:
	// slices, maps, funcs, nil and the zero State.
	ErrInvalidKey = errors.New("automaton: key is not comparable")

	// ErrAlphabetMismatch is returned by binary operations on automata whose alphabets or
	// epsilon symbols differ.
	ErrAlphabetMismatch = errors.New("automaton: alphabets differ")

	// ErrMalformedExpression is wrapped by every *MalformedExpressionError.
	ErrMalformedExpression = errors.New("automaton: malformed expression")

	// ErrUnrecognizable is returned together with a determinized automaton that has no final
	// state. The automaton is still usable; the error only tells that it accepts nothing.
	ErrUnrecognizable = errors.New("automaton: no final state after determinization")
)

// MalformedExpressionError reports the subexpression the regular expression compiler could not
// classify.
type MalformedExpressionError struct {
	Expr   any
	Reason string
}

func (e *MalformedExpressionError) Error() string {
	return fmt.Sprintf("%s: %s in %v", ErrMalformedExpression, e.Reason, e.Expr)
}

func (e *MalformedExpressionError) Unwrap() error {
	return ErrMalformedExpression
}

func malformed(expr any, reason string) error {
	return &MalformedExpressionError{Expr: expr, Reason: reason}
}
