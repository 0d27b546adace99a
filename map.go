package automaton

// Hashable is a key of a HashMap. Keys that are Equals must have the same Hash.
type Hashable interface {
	Hash() uint64
	Equals(other Hashable) bool
}

// maxLoad is the number of entries per bucket above which a HashMap doubles its buckets.
const maxLoad = 0.75

// HashMap is a chained hash table for keys that carry their own hash, such as the frozen state
// sets of the subset construction: hashing them through a Go map would mean building a string
// per lookup. It only grows; the constructions that use it never forget a state.
type HashMap[T any] struct {
	buckets []*entry[T]
	size    int
	mask    uint64
}

type entry[T any] struct {
	key   Hashable
	value T
	next  *entry[T]
}

type optionsHashMap struct {
	capacity int
}

type OptionsHashMap func(hashMap *optionsHashMap)

// WithCapacity sets the initial number of buckets, rounded up to a power of two.
func WithCapacity(capacity int) OptionsHashMap {
	return func(hashMap *optionsHashMap) {
		hashMap.capacity = capacity
	}
}

func NewHashMap[T any](options ...OptionsHashMap) *HashMap[T] {
	opt := &optionsHashMap{capacity: 1}
	for _, o := range options {
		o(opt)
	}

	buckets := 1
	for buckets < opt.capacity {
		buckets <<= 1
	}
	return &HashMap[T]{
		buckets: make([]*entry[T], buckets),
		mask:    uint64(buckets - 1),
	}
}

func (m *HashMap[T]) find(key Hashable) *entry[T] {
	for e := m.buckets[key.Hash()&m.mask]; e != nil; e = e.next {
		if e.key.Equals(key) {
			return e
		}
	}
	return nil
}

// Set inserts or replaces the value of key.
func (m *HashMap[T]) Set(key Hashable, value T) {
	if e := m.find(key); e != nil {
		e.value = value
		return
	}

	index := key.Hash() & m.mask
	m.buckets[index] = &entry[T]{key: key, value: value, next: m.buckets[index]}
	m.size++

	if float64(m.size) > maxLoad*float64(len(m.buckets)) {
		m.grow()
	}
}

func (m *HashMap[T]) Get(key Hashable) (T, bool) {
	if e := m.find(key); e != nil {
		return e.value, true
	}
	var zero T
	return zero, false
}

// grow doubles the buckets and relinks the existing entries.
func (m *HashMap[T]) grow() {
	buckets := make([]*entry[T], len(m.buckets)<<1)
	mask := uint64(len(buckets) - 1)

	for _, head := range m.buckets {
		for e := head; e != nil; {
			next := e.next
			index := e.key.Hash() & mask
			e.next = buckets[index]
			buckets[index] = e
			e = next
		}
	}

	m.buckets = buckets
	m.mask = mask
}

func (m *HashMap[T]) Size() int {
	return m.size
}
