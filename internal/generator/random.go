package generator

import (
	"math/rand"
	"sync"
)

// RandomSource is the randomness used by every generator. *rand.Rand
// satisfies it.
type RandomSource interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewSeededSource returns a source that is safe for concurrent use. The same
// seed always yields the same sequence.
func NewSeededSource(seed int64) RandomSource {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *lockedSource) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}

// sample draws k distinct elements of pool without replacement.
func sample(rng RandomSource, pool []string, k int) []string {
	work := append([]string(nil), pool...)
	if k > len(work) {
		k = len(work)
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k]
}
