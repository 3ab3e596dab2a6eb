package quiz

import "math/rand/v2"

// Shuffler produces random permutations from a fixed source.
// A nil source means the global math/rand/v2 generator.
type Shuffler struct {
	rng *rand.Rand
}

// NewShuffler returns a Shuffler drawing from rng.
func NewShuffler(rng *rand.Rand) *Shuffler {
	return &Shuffler{rng: rng}
}

func (s *Shuffler) intN(n int) int {
	if s == nil || s.rng == nil {
		return rand.IntN(n)
	}
	return s.rng.IntN(n)
}

// Shuffle returns a permuted copy of items. The input is never modified.
func Shuffle[T any](items []T) []T {
	return ShuffleWith[T](nil, items)
}

// ShuffleWith is Shuffle using the given Shuffler as the randomness source.
func ShuffleWith[T any](s *Shuffler, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	// Fisher-Yates
	for i := len(out) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
