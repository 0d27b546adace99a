package automaton

import (
	"fmt"
	"io"
	"strings"
)

type Kind int

const (
	REGEXP_SYMBOL        = Kind(iota) // A single symbol
	REGEXP_CONCATENATION              // A sequence of expressions
	REGEXP_UNION                      // The union of expressions
	REGEXP_REPEAT                     // An expression that repeats zero or more times
)

// Operator tags of the prefix form read by ParseExpression.
const (
	TagConcatenation = "."
	TagUnion         = "+"
	TagRepeat        = "*"
)

func (k Kind) String() string {
	switch k {
	case REGEXP_SYMBOL:
		return "symbol"
	case REGEXP_CONCATENATION:
		return "concatenation"
	case REGEXP_UNION:
		return "union"
	case REGEXP_REPEAT:
		return "repeat"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// RegExp is a regular expression tree over arbitrary symbols.
type RegExp struct {
	kind   Kind
	symbol Symbol
	exps   []*RegExp

	originalString []rune
	pos            int
	newSymbol      func(rune) Symbol
}

func (r *RegExp) Kind() Kind {
	return r.kind
}

// Symbol returns the symbol of a REGEXP_SYMBOL node.
func (r *RegExp) Symbol() Symbol {
	return r.symbol
}

// Operands returns the subexpressions of an operator node.
func (r *RegExp) Operands() []*RegExp {
	return r.exps
}

func MakeSymbolExp(symbol Symbol) *RegExp {
	return &RegExp{kind: REGEXP_SYMBOL, symbol: symbol}
}

// MakeConcatenation returns the concatenation of exps. Without operand it denotes the empty word.
func MakeConcatenation(exps ...*RegExp) *RegExp {
	return &RegExp{kind: REGEXP_CONCATENATION, exps: exps}
}

// MakeUnion returns the union of exps. Without operand it denotes the empty language.
func MakeUnion(exps ...*RegExp) *RegExp {
	return &RegExp{kind: REGEXP_UNION, exps: exps}
}

func MakeRepeat(exp *RegExp) *RegExp {
	return &RegExp{kind: REGEXP_REPEAT, exps: []*RegExp{exp}}
}

// ParseExpression reads the prefix form of a regular expression. A node is either a leaf, any
// comparable value that is not a []any, or a two element list []any{tag, []any{operands...}}
// where tag is TagConcatenation, TagUnion or TagRepeat. Concatenation and union take at least
// one operand, repeat exactly one.
func ParseExpression(expr any) (*RegExp, error) {
	node, ok := expr.([]any)
	if !ok {
		if err := checkKey(expr); err != nil {
			return nil, malformed(expr, "leaf is not comparable")
		}
		return MakeSymbolExp(expr), nil
	}

	if len(node) != 2 {
		return nil, malformed(expr, fmt.Sprintf("operator node has %d elements, want 2", len(node)))
	}
	tag, ok := node[0].(string)
	if !ok {
		return nil, malformed(expr, fmt.Sprintf("operator tag %v is not a string", node[0]))
	}
	list, ok := node[1].([]any)
	if !ok {
		return nil, malformed(expr, fmt.Sprintf("operator %q is not followed by an operand list", tag))
	}

	switch tag {
	case TagConcatenation, TagUnion:
		if len(list) == 0 {
			return nil, malformed(expr, fmt.Sprintf("operator %q has no operand", tag))
		}
	case TagRepeat:
		if len(list) != 1 {
			return nil, malformed(expr, fmt.Sprintf("operator %q has %d operands, want 1", tag, len(list)))
		}
	default:
		return nil, malformed(expr, fmt.Sprintf("unknown operator %q", tag))
	}

	exps := make([]*RegExp, 0, len(list))
	for _, operand := range list {
		e, err := ParseExpression(operand)
		if err != nil {
			return nil, err
		}
		exps = append(exps, e)
	}

	switch tag {
	case TagConcatenation:
		return MakeConcatenation(exps...), nil
	case TagUnion:
		return MakeUnion(exps...), nil
	default:
		return MakeRepeat(exps[0]), nil
	}
}

// Expression returns r in the prefix form read by ParseExpression.
func (r *RegExp) Expression() any {
	if r.kind == REGEXP_SYMBOL {
		return r.symbol
	}
	tag := TagConcatenation
	switch r.kind {
	case REGEXP_UNION:
		tag = TagUnion
	case REGEXP_REPEAT:
		tag = TagRepeat
	}
	operands := make([]any, len(r.exps))
	for i, e := range r.exps {
		operands[i] = e.Expression()
	}
	return []any{tag, operands}
}

type regExpOption struct {
	newSymbol func(rune) Symbol
}

type RegExpOption func(*regExpOption)

// WithStringSymbols makes NewRegExp produce one-rune strings instead of runes, to match automata
// loaded from a description.
func WithStringSymbols() RegExpOption {
	return func(o *regExpOption) {
		o.newSymbol = func(c rune) Symbol {
			return string(c)
		}
	}
}

// NewRegExp parses the infix form: juxtaposition concatenates, '|' separates alternatives, '*'
// repeats zero or more times, '+' one or more times, '?' at most once, parentheses group and '\'
// escapes the next rune. "()" denotes the empty word. Symbols are runes.
func NewRegExp(s string, options ...RegExpOption) (*RegExp, error) {
	opts := &regExpOption{
		newSymbol: func(c rune) Symbol {
			return c
		},
	}
	for _, fn := range options {
		fn(opts)
	}

	exp := &RegExp{
		originalString: []rune(s),
		newSymbol:      opts.newSymbol,
	}

	var e *RegExp
	var err error
	if len(s) == 0 {
		e = MakeConcatenation()
	} else {
		e, err = exp.parseUnionExp()
		if err != nil {
			return nil, err
		}
		if exp.pos < len(exp.originalString) {
			return nil, exp.syntaxError("end-of-string expected")
		}
	}
	return e, nil
}

func (r *RegExp) syntaxError(reason string) error {
	return malformed(string(r.originalString), fmt.Sprintf("%s at position %d", reason, r.pos))
}

func (r *RegExp) more() bool {
	return r.pos < len(r.originalString)
}

func (r *RegExp) peek(s string) bool {
	return r.more() && strings.ContainsRune(s, r.originalString[r.pos])
}

func (r *RegExp) match(c rune) bool {
	if r.pos >= len(r.originalString) {
		return false
	}
	if r.originalString[r.pos] == c {
		r.pos++
		return true
	}
	return false
}

func (r *RegExp) next() (rune, error) {
	if !r.more() {
		return 0, io.EOF
	}
	ch := r.originalString[r.pos]
	r.pos++
	return ch, nil
}

func (r *RegExp) parseUnionExp() (*RegExp, error) {
	e, err := r.parseConcatExp()
	if err != nil {
		return nil, err
	}
	if !r.peek("|") {
		return e, nil
	}
	exps := []*RegExp{e}
	for r.match('|') {
		e2, err := r.parseConcatExp()
		if err != nil {
			return nil, err
		}
		exps = append(exps, e2)
	}
	return MakeUnion(exps...), nil
}

func (r *RegExp) parseConcatExp() (*RegExp, error) {
	exps := make([]*RegExp, 0)
	for r.more() && !r.peek(")|") {
		e, err := r.parseRepeatExp()
		if err != nil {
			return nil, err
		}
		exps = append(exps, e)
	}
	if len(exps) == 1 {
		return exps[0], nil
	}
	return MakeConcatenation(exps...), nil
}

func (r *RegExp) parseRepeatExp() (*RegExp, error) {
	e, err := r.parseSimpleExp()
	if err != nil {
		return nil, err
	}

	for r.peek("?*+") {
		if r.match('?') {
			e = MakeUnion(e, MakeConcatenation())
		} else if r.match('*') {
			e = MakeRepeat(e)
		} else if r.match('+') {
			e = MakeConcatenation(e, MakeRepeat(e))
		}
	}
	return e, nil
}

func (r *RegExp) parseSimpleExp() (*RegExp, error) {
	if r.match('(') {
		if r.match(')') {
			return MakeConcatenation(), nil
		}
		e, err := r.parseUnionExp()
		if err != nil {
			return nil, err
		}
		if !r.match(')') {
			return nil, r.syntaxError("expected ')'")
		}
		return e, nil
	}
	if r.peek("*+?") {
		return nil, r.syntaxError("nothing to repeat")
	}

	r.match('\\')
	c, err := r.next()
	if err != nil {
		return nil, r.syntaxError("unexpected end of expression")
	}
	return MakeSymbolExp(r.newSymbol(c)), nil
}

// String renders r in the infix form read by NewRegExp.
func (r *RegExp) String() string {
	b := new(strings.Builder)
	r.writeTo(b, false)
	return b.String()
}

func (r *RegExp) writeTo(b *strings.Builder, group bool) {
	switch r.kind {
	case REGEXP_SYMBOL:
		s := FormatSymbol(r.symbol)
		if len([]rune(s)) == 1 && strings.ContainsAny(s, `()|*+?\`) {
			b.WriteByte('\\')
		}
		b.WriteString(s)
	case REGEXP_CONCATENATION:
		if len(r.exps) == 0 {
			b.WriteString("()")
			return
		}
		if group && len(r.exps) > 1 {
			b.WriteByte('(')
		}
		for _, e := range r.exps {
			e.writeTo(b, e.kind == REGEXP_UNION)
		}
		if group && len(r.exps) > 1 {
			b.WriteByte(')')
		}
	case REGEXP_UNION:
		if group {
			b.WriteByte('(')
		}
		for i, e := range r.exps {
			if i > 0 {
				b.WriteByte('|')
			}
			e.writeTo(b, false)
		}
		if group {
			b.WriteByte(')')
		}
	case REGEXP_REPEAT:
		e := r.exps[0]
		e.writeTo(b, e.kind != REGEXP_SYMBOL)
		b.WriteByte('*')
	}
}

// operatorEpsilon labels the transitions glueing the parts of a compiled expression; one value
// per operator.
type operatorEpsilon string

func (o operatorEpsilon) String() string {
	return "ε" + string(o)
}

const (
	concatenationEpsilon = operatorEpsilon(TagConcatenation)
	unionEpsilon         = operatorEpsilon(TagUnion)
	repeatEpsilon        = operatorEpsilon(TagRepeat)
)

type compiler struct {
	a    *Automaton
	next int
}

func (c *compiler) fresh() State {
	s := Label(c.next)
	c.next++
	return s
}

func (c *compiler) link(from State, symbol Symbol, to State) {
	c.a.addTransitionIndex(c.a.stateID(from), c.a.symbolID(symbol), c.a.stateID(to))
}

// compile adds the transitions of r starting from current and returns the exit states.
func (c *compiler) compile(r *RegExp, current State) ([]State, error) {
	switch r.kind {
	case REGEXP_SYMBOL:
		if err := checkKey(r.symbol); err != nil {
			return nil, malformed(r.symbol, "leaf is not comparable")
		}
		to := c.fresh()
		c.link(current, r.symbol, to)
		return []State{to}, nil

	case REGEXP_CONCATENATION:
		exits := []State{current}
		for _, e := range r.exps {
			var entry State
			if len(exits) == 1 {
				entry = exits[0]
			} else {
				entry = c.fresh()
				for _, x := range exits {
					c.link(x, concatenationEpsilon, entry)
				}
			}
			var err error
			if exits, err = c.compile(e, entry); err != nil {
				return nil, err
			}
		}
		return exits, nil

	case REGEXP_UNION:
		exits := make([]State, 0, len(r.exps))
		for _, e := range r.exps {
			entry := c.fresh()
			c.link(current, unionEpsilon, entry)
			branch, err := c.compile(e, entry)
			if err != nil {
				return nil, err
			}
			exits = append(exits, branch...)
		}
		return exits, nil

	case REGEXP_REPEAT:
		if len(r.exps) != 1 {
			return nil, malformed(r.Expression(), fmt.Sprintf("repeat has %d operands, want 1", len(r.exps)))
		}
		loop := c.fresh()
		c.link(current, repeatEpsilon, loop)
		exits, err := c.compile(r.exps[0], loop)
		if err != nil {
			return nil, err
		}
		for _, x := range exits {
			c.link(x, repeatEpsilon, loop)
		}
		return []State{loop}, nil
	}
	return nil, malformed(r.Expression(), fmt.Sprintf("unknown kind %s", r.kind))
}

// ToNFA compiles r into an automaton with epsilon transitions. The initial state is 0; every
// operator glues its parts with its own epsilon symbol.
func (r *RegExp) ToNFA(opts ...Option) (*Automaton, error) {
	a := NewAutomaton(opts...)
	for _, eps := range []operatorEpsilon{concatenationEpsilon, unionEpsilon, repeatEpsilon} {
		a.epsilons.Set(uint(a.symbolID(eps)))
	}
	start := Label(0)
	a.initial.Set(uint(a.stateID(start)))

	c := &compiler{a: a, next: a.nextID()}
	exits, err := c.compile(r, start)
	if err != nil {
		return nil, err
	}
	for _, x := range exits {
		a.isAccept.Set(uint(a.stateID(x)))
	}
	a.invalidate()
	a.logger.Debug("compile expression", "states", len(a.states), "transitions", a.numTransitions)
	return a, nil
}

// ToAutomaton compiles r, minimizes the result and numbers its states from 0. The operator epsilon
// symbols do not appear in the result, so it can be combined with automata built by hand over the
// same symbols. An expression denoting the empty language yields an error wrapping
// ErrUnrecognizable together with the automaton.
func (r *RegExp) ToAutomaton(opts ...Option) (*Automaton, error) {
	nfa, err := r.ToNFA(opts...)
	if err != nil {
		return nil, err
	}
	m, err := Minimize(nfa)
	for _, eps := range []operatorEpsilon{concatenationEpsilon, unionEpsilon, repeatEpsilon} {
		m = m.withoutSymbol(eps)
	}
	m = Renumber(m)
	m.logger.Debug("expression to automaton", "expression", r.String(), "states", len(m.states))
	return m, err
}

// ExpressionToAutomaton parses the prefix form of an expression (see ParseExpression) and compiles
// it with ToAutomaton.
func ExpressionToAutomaton(expr any, opts ...Option) (*Automaton, error) {
	r, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	return r.ToAutomaton(opts...)
}
