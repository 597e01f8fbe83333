package service

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random is the randomness the store and caption service draw from.
// *rand.Rand from math/rand/v2 satisfies it; tests pass a seeded one.
type Random interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// lockedRandom serialises access to a *rand.Rand, which is not safe for concurrent use.
type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandom returns a goroutine-safe Random seeded from the clock.
func NewRandom() Random {
	seed := uint64(time.Now().UnixNano())
	return &lockedRandom{r: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// NewSeededRandom returns a goroutine-safe deterministic Random.
func NewSeededRandom(seed uint64) Random {
	return &lockedRandom{r: rand.New(rand.NewPCG(seed, seed))}
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRandom) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
