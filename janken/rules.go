package janken

// beats is indexed by the winning hand.
var beats = [NumHands]Hand{
	Rock:     Scissors,
	Paper:    Rock,
	Scissors: Paper,
}

// Beats returns the hand that h defeats. An invalid hand is returned unchanged.
func Beats(h Hand) Hand {
	if !h.Valid() {
		return h
	}
	return beats[h]
}

// Outcome returns the one-vs-one verdict when a player shows player and the opponent shows
// opponent. Invalid hands tie.
func Outcome(player, opponent Hand) Verdict {
	switch {
	case !player.Valid() || !opponent.Valid() || player == opponent:
		return Tie
	case Beats(player) == opponent:
		return Player
	default:
		return Opponent
	}
}
