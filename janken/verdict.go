package janken

import "fmt"

// Verdict is the outcome of a round. It does not say which player won, only whether the
// players collectively won, the opponent won, or nobody did.
type Verdict int

const (
	// Tie means nobody won the round.
	Tie Verdict = iota
	// Player means the players won the round.
	Player
	// Opponent means the opponent won the round.
	Opponent
)

var verdictNames = [...]string{"tie", "player", "opponent"}

// String returns "tie", "player" or "opponent".
func (v Verdict) String() string {
	if v < Tie || v > Opponent {
		return fmt.Sprintf("verdict(%d)", int(v))
	}
	return verdictNames[v]
}

// MarshalText encodes the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) {
	if v < Tie || v > Opponent {
		return nil, fmt.Errorf("invalid verdict %d", int(v))
	}
	return []byte(v.String()), nil
}

// Invert swaps Player and Opponent and leaves Tie alone.
func (v Verdict) Invert() Verdict {
	switch v {
	case Player:
		return Opponent
	case Opponent:
		return Player
	default:
		return v
	}
}
