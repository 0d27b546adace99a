package automaton

import (
	"cmp"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Symbol is a letter of an alphabet. Any comparable value can be a symbol: runes, strings, ints,
// comparable structs. Whether a symbol behaves as epsilon is a property of the automaton, not of
// the value.
type Symbol = any

// checkKey reports whether v can be stored in a map without panicking.
func checkKey(v any) error {
	if v == nil {
		return fmt.Errorf("%w: nil", ErrInvalidKey)
	}
	if s, ok := v.(State); ok && !s.IsValid() {
		return fmt.Errorf("%w: zero State", ErrInvalidKey)
	}
	if !reflect.ValueOf(v).Comparable() {
		return fmt.Errorf("%w: %T", ErrInvalidKey, v)
	}
	return nil
}

const (
	classInt = iota
	classUint
	classFloat
	classString
	classState
	classOther
)

func valueClass(v any) (int, reflect.Value) {
	if _, ok := v.(State); ok {
		return classState, reflect.Value{}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return classInt, rv
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return classUint, rv
	case reflect.Float32, reflect.Float64:
		return classFloat, rv
	case reflect.String:
		return classString, rv
	default:
		return classOther, rv
	}
}

// CompareSymbols is a total order over comparable values: signed integers, unsigned integers,
// floats, strings, States, then everything else, each group ordered by value. Values of different
// types holding the same number are ordered by type name.
func CompareSymbols(a, b Symbol) int {
	ca, va := valueClass(a)
	cb, vb := valueClass(b)
	if ca != cb {
		return cmp.Compare(ca, cb)
	}

	c := 0
	switch ca {
	case classInt:
		c = cmp.Compare(va.Int(), vb.Int())
	case classUint:
		c = cmp.Compare(va.Uint(), vb.Uint())
	case classFloat:
		c = cmp.Compare(va.Float(), vb.Float())
	case classString:
		c = strings.Compare(va.String(), vb.String())
	case classState:
		return Compare(a.(State), b.(State))
	}
	if c != 0 {
		return c
	}
	if c = strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b)); c != 0 {
		return c
	}
	if ca == classOther {
		return strings.Compare(fmt.Sprintf("%#v", a), fmt.Sprintf("%#v", b))
	}
	return 0
}

// FormatSymbol renders a symbol for humans. Runes are printed as characters.
func FormatSymbol(s Symbol) string {
	switch v := s.(type) {
	case rune:
		return string(v)
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatLabel(v any) string {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case string:
		return strconv.Quote(x)
	case rune:
		return strconv.QuoteRune(x)
	default:
		return fmt.Sprint(x)
	}
}
