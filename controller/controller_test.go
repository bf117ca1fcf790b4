package controller

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/janken/images"
	"github.com/nvr-ai/janken/janken"
	"github.com/nvr-ai/janken/models/postprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDetector returns fixed detections.
type MockDetector struct {
	detections []postprocess.Result
	err        error
	calls      int
}

func (m *MockDetector) Detect(ctx context.Context, img image.Image) ([]postprocess.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.detections, nil
}

// FixedGenerator always throws the same hand.
type FixedGenerator janken.Hand

func (f FixedGenerator) Generate() janken.Hand {
	return janken.Hand(f)
}

// SequenceGenerator throws the given hands in order, then repeats the last one.
type SequenceGenerator struct {
	hands []janken.Hand
	next  int
}

func (s *SequenceGenerator) Generate() janken.Hand {
	h := s.hands[min(s.next, len(s.hands)-1)]
	s.next++
	return h
}

func detection(class int, score float32) postprocess.Result {
	return postprocess.Result{Box: images.RectFromLTWH(0, 0, 10, 10), Score: score, Class: class}
}

// TestPlay resolves the detected hands against the generated one.
func TestPlay(t *testing.T) {
	tests := []struct {
		name       string
		detections []postprocess.Result
		opponent   janken.Hand
		players    janken.HandSet
		verdict    janken.Verdict
	}{
		{
			name:       "rock loses to paper",
			detections: []postprocess.Result{detection(0, 0.9)},
			opponent:   janken.Paper,
			players:    janken.NewHandSet(janken.Rock),
			verdict:    janken.Opponent,
		},
		{
			name:       "duplicate hands collapse",
			detections: []postprocess.Result{detection(2, 0.9), detection(2, 0.8)},
			opponent:   janken.Paper,
			players:    janken.NewHandSet(janken.Scissors),
			verdict:    janken.Player,
		},
		{
			name:       "all three hands tie",
			detections: []postprocess.Result{detection(0, 0.9), detection(1, 0.8)},
			opponent:   janken.Scissors,
			players:    janken.NewHandSet(janken.Rock, janken.Paper),
			verdict:    janken.Tie,
		},
		{
			name:     "nobody plays",
			opponent: janken.Rock,
			players:  janken.HandSet(0),
			verdict:  janken.Tie,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := &MockDetector{detections: tt.detections}
			c := New(detector, FixedGenerator(tt.opponent))

			round, err := c.Play(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)))
			require.NoError(t, err)
			assert.Equal(t, 1, detector.calls)
			assert.Equal(t, tt.players, round.Players)
			assert.Equal(t, tt.opponent, round.Opponent)
			assert.Equal(t, tt.verdict, round.Verdict)
			assert.ElementsMatch(t, tt.detections, round.Detections)
			assert.NotNil(t, round.Detections)
			assert.NotEqual(t, uuid.Nil, round.ID)
		})
	}
}

// TestPlayDetectorError wraps the detector failure.
func TestPlayDetectorError(t *testing.T) {
	boom := errors.New("boom")
	c := New(&MockDetector{err: boom}, FixedGenerator(janken.Rock))

	_, err := c.Play(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, boom)

	_, err = New(nil, nil).Play(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.Error(t, err)
}

// TestRoundIDsAreUnique gives every round its own ID.
func TestRoundIDsAreUnique(t *testing.T) {
	c := New(nil, FixedGenerator(janken.Rock))
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 100; i++ {
		round := c.PlayHands(janken.NewHandSet(janken.Paper))
		assert.False(t, seen[round.ID])
		seen[round.ID] = true
	}
}

// TestSimulate deals one generated hand per player, then one to the opponent.
func TestSimulate(t *testing.T) {
	gen := &SequenceGenerator{hands: []janken.Hand{janken.Rock, janken.Rock, janken.Scissors}}
	c := New(nil, gen)

	round, hands, err := c.Simulate(2)
	require.NoError(t, err)
	assert.Equal(t, []janken.Hand{janken.Rock, janken.Rock}, hands)
	assert.Equal(t, janken.NewHandSet(janken.Rock), round.Players)
	assert.Equal(t, janken.Scissors, round.Opponent)
	assert.Equal(t, janken.Player, round.Verdict)
	assert.Empty(t, round.Detections)

	_, _, err = c.Simulate(-1)
	assert.Error(t, err)
}

// TestSimulateSeeded agrees with Resolve for many random rounds.
func TestSimulateSeeded(t *testing.T) {
	c := New(nil, janken.NewSeededGenerator(7))
	for i := 0; i < 200; i++ {
		round, hands, err := c.Simulate(i % 5)
		require.NoError(t, err)
		assert.Equal(t, janken.NewHandSet(hands...), round.Players)
		assert.Equal(t, janken.Resolve(round.Players, round.Opponent), round.Verdict)
	}
}

// TestRoundJSON encodes hands and verdicts by name.
func TestRoundJSON(t *testing.T) {
	c := New(nil, FixedGenerator(janken.Paper))
	c.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	round := c.PlayDetections([]postprocess.Result{detection(0, 0.5)})
	data, err := json.Marshal(round)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{"rock"}, decoded["players"])
	assert.Equal(t, "paper", decoded["opponent"])
	assert.Equal(t, "opponent", decoded["verdict"])
	assert.Equal(t, "2024-01-02T03:04:05Z", decoded["timestamp"])
	assert.Equal(t, round.ID.String(), decoded["id"])
	assert.Len(t, decoded["detections"], 1)
}

// TestRoundJSONWithoutDetections encodes an empty detection list rather than null.
func TestRoundJSONWithoutDetections(t *testing.T) {
	c := New(&MockDetector{}, FixedGenerator(janken.Rock))

	round, err := c.Play(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)

	data, err := json.Marshal(round)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"detections":[]`)
	assert.Equal(t, janken.Tie, round.Verdict)
}

// TestDetect returns detections without drawing an opponent hand.
func TestDetect(t *testing.T) {
	gen := &SequenceGenerator{hands: []janken.Hand{janken.Paper}}
	c := New(&MockDetector{detections: []postprocess.Result{detection(1, 0.7)}}, gen)

	got, err := c.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 0, gen.next)
}
