package janken

import (
	"encoding/json"
	"strings"

	"github.com/nvr-ai/janken/models/postprocess"
)

// HandSet is a set of hands. The zero value is the empty set.
type HandSet uint8

// NewHandSet builds a set from the given hands, ignoring invalid ones.
func NewHandSet(hands ...Hand) HandSet {
	var s HandSet
	for _, h := range hands {
		s = s.Add(h)
	}
	return s
}

// HandsFromDetections collects the distinct hands among the detections of one frame.
// Detections whose class is not a hand are skipped.
func HandsFromDetections(detections []postprocess.Result) HandSet {
	var s HandSet
	for _, d := range detections {
		if h, ok := HandFromClass(d.Class); ok {
			s = s.Add(h)
		}
	}
	return s
}

// Add returns s with h added.
func (s HandSet) Add(h Hand) HandSet {
	if !h.Valid() {
		return s
	}
	return s | 1<<uint(h)
}

// Contains reports whether h is in s.
func (s HandSet) Contains(h Hand) bool {
	return h.Valid() && s&(1<<uint(h)) != 0
}

// Union returns the hands present in either set.
func (s HandSet) Union(o HandSet) HandSet {
	return s | o
}

// Without returns s with h removed.
func (s HandSet) Without(h Hand) HandSet {
	if !h.Valid() {
		return s
	}
	return s &^ (1 << uint(h))
}

// Len returns the number of distinct hands in s.
func (s HandSet) Len() int {
	n := 0
	for _, h := range Hands {
		if s.Contains(h) {
			n++
		}
	}
	return n
}

// Empty reports whether s holds no hands.
func (s HandSet) Empty() bool {
	return s == 0
}

// Hands returns the members of s in class index order.
func (s HandSet) Hands() []Hand {
	hands := make([]Hand, 0, NumHands)
	for _, h := range Hands {
		if s.Contains(h) {
			hands = append(hands, h)
		}
	}
	return hands
}

// String renders the set as "{rock, paper}".
func (s HandSet) String() string {
	names := make([]string, 0, NumHands)
	for _, h := range s.Hands() {
		names = append(names, h.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// MarshalJSON encodes the set as a list of hand names, e.g. ["rock","paper"].
func (s HandSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Hands())
}

// UnmarshalJSON decodes a list of hand names. Duplicates collapse.
func (s *HandSet) UnmarshalJSON(data []byte) error {
	var hands []Hand
	if err := json.Unmarshal(data, &hands); err != nil {
		return err
	}
	*s = NewHandSet(hands...)
	return nil
}
