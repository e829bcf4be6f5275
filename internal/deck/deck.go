package deck

import "math/rand"

// Size is the number of cards in a full Tấn deck: 4 suits by 9 ranks.
const Size = 36

// New returns the full 36-card deck in deterministic suit-then-rank order.
func New() []Card {
	cards := make([]Card, 0, Size)
	for s := Spades; s <= Clubs; s++ {
		for r := Six; r <= Ace; r++ {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	return cards
}

// Shuffle returns a uniformly shuffled copy of cards. The input slice is not
// mutated. The random source is supplied by the caller so deals can be
// reproduced under test.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deck is an ordered pile of cards consumed from the front.
type Deck struct {
	Cards []Card `json:"cards"`
}

// Len reports how many cards remain.
func (d *Deck) Len() int {
	return len(d.Cards)
}

// Draw removes and returns the next card. ok is false on an empty deck.
func (d *Deck) Draw() (c Card, ok bool) {
	if len(d.Cards) == 0 {
		return Card{}, false
	}
	c = d.Cards[0]
	d.Cards = d.Cards[1:]
	return c, true
}

// PushFront reinserts a card at the draw end of the deck. Used for the trump
// card, which stays drawable after its suit is revealed.
func (d *Deck) PushFront(c Card) {
	d.Cards = append([]Card{c}, d.Cards...)
}

// Clone returns a deep copy of the deck.
func (d *Deck) Clone() Deck {
	out := make([]Card, len(d.Cards))
	copy(out, d.Cards)
	return Deck{Cards: out}
}
