package deck

import "fmt"

// Suit is one of the four French suits.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitSymbols = map[Suit]string{
	Spades:   "♠",
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
}

func (s Suit) String() string {
	if sym, ok := suitSymbols[s]; ok {
		return sym
	}
	return fmt.Sprintf("SUIT_%d", int(s))
}

// Rank runs from Six (low) to Ace (high). The Tấn deck drops 2 through 5,
// leaving 9 ranks per suit.
type Rank int

const (
	Six Rank = iota
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankNames = map[Rank]string{
	Six:   "6",
	Seven: "7",
	Eight: "8",
	Nine:  "9",
	Ten:   "10",
	Jack:  "J",
	Queen: "Q",
	King:  "K",
	Ace:   "A",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RANK_%d", int(r))
}

// Value returns the total-order index used for all rank comparisons.
func (r Rank) Value() int {
	return int(r)
}

// Card is a single playing card. Two cards are equal iff suit and rank match.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// String returns the canonical display key for the card, e.g. "Q♥".
// It doubles as the stable identity used for hand lookups.
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}
