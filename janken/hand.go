package janken

import (
	"fmt"
	"strings"
)

// Hand is one of the three rock-paper-scissors hands. Its value matches the class index the
// hand detector emits.
type Hand int

const (
	// Rock is a closed fist.
	Rock Hand = iota
	// Paper is an open hand.
	Paper
	// Scissors is two extended fingers.
	Scissors
)

// NumHands is the number of valid hands.
const NumHands = 3

// Hands lists every valid hand in class index order.
var Hands = [NumHands]Hand{Rock, Paper, Scissors}

var handNames = [NumHands]string{"rock", "paper", "scissors"}

// Valid reports whether h is one of Rock, Paper or Scissors.
func (h Hand) Valid() bool {
	return h >= Rock && h <= Scissors
}

// String returns the lower-case name of the hand.
func (h Hand) String() string {
	if !h.Valid() {
		return fmt.Sprintf("hand(%d)", int(h))
	}
	return handNames[h]
}

// MarshalText encodes the hand by name.
func (h Hand) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("invalid hand %d", int(h))
	}
	return []byte(h.String()), nil
}

// UnmarshalText decodes a hand from its name.
func (h *Hand) UnmarshalText(text []byte) error {
	parsed, err := ParseHand(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHand parses a hand name, ignoring case and surrounding whitespace.
func ParseHand(s string) (Hand, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, h := range Hands {
		if handNames[h] == name {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown hand %q", s)
}

// HandFromClass maps a detector class index to a hand. Class indices outside the three hands
// report false.
func HandFromClass(class int) (Hand, bool) {
	h := Hand(class)
	return h, h.Valid()
}
