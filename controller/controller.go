// Package controller - Plays rock-paper-scissors rounds between detected hands and a generated
// opponent.
package controller

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/janken/janken"
	"github.com/nvr-ai/janken/models/postprocess"
)

// Detector is an interface for a hand detector.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]postprocess.Result, error)
}

// HandGenerator produces the opponent's hand.
type HandGenerator interface {
	Generate() janken.Hand
}

// Round is the outcome of one game.
type Round struct {
	ID         uuid.UUID            `json:"id"`
	Timestamp  time.Time            `json:"timestamp"`
	Detections []postprocess.Result `json:"detections"`
	Players    janken.HandSet       `json:"players"`
	Opponent   janken.Hand          `json:"opponent"`
	Verdict    janken.Verdict       `json:"verdict"`
}

// String summarizes the round for logs.
func (r Round) String() string {
	return fmt.Sprintf("players=%s opponent=%s verdict=%s", r.Players, r.Opponent, r.Verdict)
}

// Controller routes images through the detector and resolves each round.
type Controller struct {
	detector  Detector
	generator HandGenerator
	now       func() time.Time
}

// New creates a controller.
//
// Arguments:
//   - detector: The hand detector, may be nil when only PlayHands and Simulate are used.
//   - generator: The opponent, a random generator when nil.
//
// Returns:
//   - *Controller: The controller.
func New(detector Detector, generator HandGenerator) *Controller {
	if generator == nil {
		generator = janken.NewGenerator(nil)
	}
	return &Controller{
		detector:  detector,
		generator: generator,
		now:       time.Now,
	}
}

// Play detects the players' hands in img and resolves them against a generated hand.
//
// Arguments:
//   - ctx: The context for the detection.
//   - img: The image showing the players' hands.
//
// Returns:
//   - *Round: The round.
//   - error: An error if detection fails.
func (c *Controller) Play(ctx context.Context, img image.Image) (*Round, error) {
	detections, err := c.Detect(ctx, img)
	if err != nil {
		return nil, err
	}
	return c.PlayDetections(detections), nil
}

// Detect returns the hands detected in img without playing a round.
func (c *Controller) Detect(ctx context.Context, img image.Image) ([]postprocess.Result, error) {
	if c.detector == nil {
		return nil, errors.New("detector not configured")
	}
	detections, err := c.detector.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("failed to detect hands: %w", err)
	}
	return detections, nil
}

// PlayDetections resolves a round from detections that were already computed.
func (c *Controller) PlayDetections(detections []postprocess.Result) *Round {
	round := c.PlayHands(janken.HandsFromDetections(detections))
	if len(detections) > 0 {
		round.Detections = detections
	}
	return round
}

// PlayHands resolves a round for the given player hands.
func (c *Controller) PlayHands(players janken.HandSet) *Round {
	opponent := c.generator.Generate()
	return &Round{
		ID:         uuid.New(),
		Timestamp:  c.now(),
		Detections: []postprocess.Result{},
		Players:    players,
		Opponent:   opponent,
		Verdict:    janken.Resolve(players, opponent),
	}
}

// Simulate plays a round where n players each throw a generated hand.
//
// Arguments:
//   - n: The number of players.
//
// Returns:
//   - *Round: The round.
//   - []janken.Hand: The hand of every player, in order.
//   - error: An error if n is negative.
func (c *Controller) Simulate(n int) (*Round, []janken.Hand, error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("number of players must be >= 0, got %d", n)
	}
	hands := make([]janken.Hand, n)
	for i := range hands {
		hands[i] = c.generator.Generate()
	}
	return c.PlayHands(janken.NewHandSet(hands...)), hands, nil
}
