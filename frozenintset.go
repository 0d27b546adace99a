package automaton

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
)

var _ Hashable = &FrozenIntSet{}

// FrozenIntSet is an immutable set of state indices used as a key while determinizing. The hash is
// the sum of the mixed members, so it does not depend on insertion order.
type FrozenIntSet struct {
	values   []int
	state    int
	hashCode uint64
	bits     *bitset.BitSet
}

// NewFrozenIntSet freezes the members of bits. state is the index the set stands for in the
// automaton under construction, -1 while unknown.
func NewFrozenIntSet(bits *bitset.BitSet, state int) *FrozenIntSet {
	values := make([]int, 0, bits.Count())
	hashCode := uint64(0)
	for i, ok := bits.NextSet(0); ok; i, ok = bits.NextSet(i + 1) {
		values = append(values, int(i))
		hashCode += mix(int(i))
	}
	return &FrozenIntSet{
		values:   values,
		state:    state,
		hashCode: hashCode + uint64(len(values)),
		bits:     bits,
	}
}

func (f *FrozenIntSet) Hash() uint64 {
	return f.hashCode
}

// Equals compares members only; the state index is not part of the key.
func (f *FrozenIntSet) Equals(other Hashable) bool {
	o, ok := other.(*FrozenIntSet)
	if !ok || f == nil || o == nil {
		return ok && f == o
	}
	return f.hashCode == o.hashCode && slices.Equal(f.values, o.values)
}

func (f *FrozenIntSet) GetArray() []int {
	return f.values
}

func (f *FrozenIntSet) Size() int {
	return len(f.values)
}

func (f *FrozenIntSet) State() int {
	return f.state
}
