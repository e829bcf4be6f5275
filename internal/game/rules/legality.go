package rules

import "github.com/tanfree/tan-server-go/internal/deck"

const (
	// HandSize is the number of cards hands are dealt and refilled to.
	HandSize = 8
	// MaxPairs is the most attack pairs a table may hold in one round.
	MaxPairs = 8
)

// CheckPhase refuses an action attempted outside the phase that permits it.
func CheckPhase(got, want Phase) *Rejection {
	if got != want {
		return Reject(WrongPhase, "action requires phase %s, game is in %s", want, got)
	}
	return nil
}

// CheckDefend validates a defend card against the targeted attack card.
// A rejected card is not spent.
func CheckDefend(defend, attack deck.Card, trump deck.Suit) *Rejection {
	if !Beats(defend, attack, trump) {
		return Reject(IllegalDefend, "%s cannot beat %s (trump %s)", defend, attack, trump)
	}
	return nil
}

// CheckAddAttack validates an extra attack card introduced mid-round.
//
// The table may not grow past MaxPairs, the number of undefended pairs may
// never exceed the defender's current hand size (otherwise the defender could
// not possibly answer every pair), and the card's rank must already appear on
// the table among attack or defend cards.
func CheckAddAttack(card deck.Card, tableRanks []deck.Rank, pairs, undefended, defenderHand int) *Rejection {
	if pairs >= MaxPairs {
		return Reject(TableFull, "table already holds %d pairs", pairs)
	}
	if undefended+1 > defenderHand {
		return Reject(TableFull, "defender holds %d cards against %d open attacks", defenderHand, undefended+1)
	}
	for _, r := range tableRanks {
		if r == card.Rank {
			return nil
		}
	}
	return Reject(IllegalAddRank, "rank %s is not on the table", card.Rank)
}
