package engine

// RNG is an xorshift64 stream carried inside game state, so that reducers
// stay referentially transparent: advancing the stream returns a new value
// rather than mutating in place.
type RNG uint64

// NewRNG seeds a stream. xorshift can't start at 0.
func NewRNG(seed uint64) RNG {
	if seed == 0 {
		seed = 1
	}
	return RNG(seed)
}

// Next advances the stream one step.
func (r RNG) Next() (RNG, uint64) {
	x := uint64(r)
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	return RNG(x), x
}

// IntN draws a value in [0, n).
func (r RNG) IntN(n int) (RNG, int) {
	next, v := r.Next()
	return next, int(v % uint64(n))
}

// Shuffle runs a Fisher-Yates pass over n elements using the given swap.
func (r RNG) Shuffle(n int, swap func(i, j int)) RNG {
	for i := n - 1; i > 0; i-- {
		var j int
		r, j = r.IntN(i + 1)
		swap(i, j)
	}
	return r
}
