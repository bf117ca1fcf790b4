package janken

// Resolve decides a round between the hands shown by the players and the opponent's hand.
//
// The players and the opponent are pooled into one set. With exactly two distinct hands the
// players showed a single hand different from the opponent's, and the rule table decides.
// With one hand everybody showed the same thing, and with three hands the players covered
// both other hands; both cases are a tie. No player hands at all is also a tie.
//
// Arguments:
//   - players: The distinct hands detected among the players.
//   - opponent: The opponent's hand.
//
// Returns:
//   - Verdict: Tie, Player or Opponent. Resolve never fails.
func Resolve(players HandSet, opponent Hand) Verdict {
	if players.Empty() || !opponent.Valid() {
		return Tie
	}

	all := players.Add(opponent)
	if all.Len() != 2 {
		return Tie
	}

	differing := all.Without(opponent).Hands()
	return Outcome(differing[0], opponent)
}
