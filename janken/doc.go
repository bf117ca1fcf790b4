// Package janken resolves rock-paper-scissors rounds between any number of players and a
// single opponent.
//
// A round is decided by the set of hands shown, not by who showed them: players who show the
// same hand collapse into one entry of a HandSet. When the players and the opponent together
// show exactly two distinct hands the round is decided by the rule table; when they show one
// or all three hands the round is a tie.
//
// Everything in this package is pure and safe for concurrent use, including Generator.
package janken
