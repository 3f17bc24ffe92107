package game

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync"
	"time"
)

// Random is the only source of chance the engine consults.
type Random interface {
	Float64() float64
}

// NewSeed returns a crypto-random seed, falling back to the clock.
func NewSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) &^ (1 << 63))
}

// NewRandom returns a seeded source safe for use from several goroutines.
func NewRandom(seed int64) Random {
	return &lockedRand{rand: mathrand.New(mathrand.NewSource(seed))}
}

type lockedRand struct {
	mu   sync.Mutex
	rand *mathrand.Rand
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

func uniform(rng Random, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func chance(rng Random, p float64) bool {
	return rng.Float64() < p
}

func pickIndex(rng Random, n int) int {
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
