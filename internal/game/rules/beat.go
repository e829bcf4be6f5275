package rules

import "github.com/tanfree/tan-server-go/internal/deck"

// Beats reports whether defend answers attack under trump.
//
// Same suit: the higher rank wins. Different suits: defend wins iff it is
// trump, regardless of rank. Trump against trump falls into the same-suit
// comparison, so a trump attack can only be answered by a higher trump.
func Beats(defend, attack deck.Card, trump deck.Suit) bool {
	if defend.Suit == attack.Suit {
		return defend.Rank.Value() > attack.Rank.Value()
	}
	return defend.Suit == trump
}
