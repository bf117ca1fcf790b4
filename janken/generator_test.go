package janken

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGeneratorDeterministic ensures two generators with the same seed agree.
func TestGeneratorDeterministic(t *testing.T) {
	a := NewSeededGenerator(42)
	b := NewGenerator(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}

// TestGeneratorCoversAllHands draws enough hands to see every kind, all of them valid.
func TestGeneratorCoversAllHands(t *testing.T) {
	g := NewSeededGenerator(7)
	counts := map[Hand]int{}
	for i := 0; i < 3000; i++ {
		h := g.Generate()
		assert.True(t, h.Valid())
		counts[h]++
	}
	for _, h := range Hands {
		assert.Greater(t, counts[h], 800, "hand %s drawn too rarely", h)
	}
}

// TestGeneratorConcurrent exercises the generator from many goroutines.
func TestGeneratorConcurrent(t *testing.T) {
	g := NewSeededGenerator(1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.True(t, g.Generate().Valid())
			}
		}()
	}
	wg.Wait()
}

// TestRandomHand uses the process-wide source and a nil generator.
func TestRandomHand(t *testing.T) {
	var g *Generator
	for i := 0; i < 50; i++ {
		assert.True(t, RandomHand().Valid())
		assert.True(t, g.Generate().Valid())
	}
}

// TestNewGeneratorNilSource seeds itself instead of panicking.
func TestNewGeneratorNilSource(t *testing.T) {
	g := NewGenerator(nil)
	for i := 0; i < 10; i++ {
		assert.True(t, g.Generate().Valid())
	}
}
