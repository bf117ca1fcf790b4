package janken

import (
	"math/rand"
	"sync"
	"time"
)

// Generator draws uniformly random hands from an injectable source.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator backed by src. Seeded sources make rounds reproducible; a nil
// source is seeded from the clock.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(src)}
}

// NewSeededGenerator is shorthand for NewGenerator(rand.NewSource(seed)).
func NewSeededGenerator(seed int64) *Generator {
	return NewGenerator(rand.NewSource(seed))
}

// Generate returns a random hand. It is safe for concurrent use.
func (g *Generator) Generate() Hand {
	if g == nil || g.rng == nil {
		return RandomHand()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return Hand(g.rng.Intn(NumHands))
}

// RandomHand returns a random hand from the process-wide source.
func RandomHand() Hand {
	return Hand(rand.Intn(NumHands))
}
