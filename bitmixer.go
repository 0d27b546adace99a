package automaton

const (
	// Golden ratio bit mixer.
	PHI_C64 = uint64(0x9e3779b97f4a7c15)
)

func mix(key int) uint64 {
	return uint64(uint32(mix32(key)))
}

// Final mixing step of MurmurHash3, 32 bits.
func mix32(v int) int {
	k := uint32(v)
	k = (k ^ (k >> 16)) * 0x85ebca6b
	k = (k ^ (k >> 13)) * 0xc2b2ae35
	return int(k ^ (k >> 16))
}

// mixPair hashes an ordered pair of ints.
func mixPair(a, b int) uint64 {
	return mix(a)*PHI_C64 + mix(b)
}
