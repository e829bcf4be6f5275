package game

import (
	"github.com/tanfree/tan-server-go/internal/deck"
	"github.com/tanfree/tan-server-go/internal/game/rules"
)

// Player holds one participant's seat and hand. Hand order is stable for
// display; the rules themselves treat the hand as a set.
type Player struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Hand []deck.Card `json:"hand"`
}

// AttackPair is one attack card and its possibly pending answer.
type AttackPair struct {
	Attack   deck.Card  `json:"attack"`
	Defend   *deck.Card `json:"defend,omitempty"`
	Attacker int        `json:"attacker"`
}

// Defended reports whether the pair has been answered.
func (p AttackPair) Defended() bool {
	return p.Defend != nil
}

// Options are the rule-variant knobs for a game.
type Options struct {
	// AttackersOnly restricts add-attacks to the current attacker. This is
	// the source variant and the default; the folk rule admits any
	// non-defending player.
	AttackersOnly bool `json:"attackersOnly"`
}

// DefaultOptions returns the source-variant rule set.
func DefaultOptions() Options {
	return Options{AttackersOnly: true}
}

// GameState is the single serializable snapshot of a game. Actions never
// mutate a snapshot in place: each applies to a clone and the caller swaps in
// the result only when validation succeeds.
type GameState struct {
	Players  []Player     `json:"players"`
	Deck     deck.Deck    `json:"deck"`
	Trump    deck.Suit    `json:"trump"`
	Table    []AttackPair `json:"table"`
	Attacker int          `json:"attacker"`
	Defender int          `json:"defender"`
	Phase    rules.Phase  `json:"phase"`
	// MaxAdds is how many further attack pairs the current round can accept,
	// bounded by the defender's hand and the table cap.
	MaxAdds int `json:"maxAdds"`
	// Discards keeps every card beaten out of play so the 36-card
	// conservation invariant stays checkable on import.
	Discards []deck.Card `json:"discards"`
	Round    int         `json:"round"`
	// Winners holds the indices of all players who emptied their hand when
	// the game finished. Ties are possible and expected.
	Winners []int   `json:"winners,omitempty"`
	Options Options `json:"options"`
}

// Clone returns a deep copy of the snapshot.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		hand := make([]deck.Card, len(p.Hand))
		copy(hand, p.Hand)
		out.Players[i] = Player{ID: p.ID, Name: p.Name, Hand: hand}
	}
	out.Deck = s.Deck.Clone()
	out.Table = make([]AttackPair, len(s.Table))
	for i, pair := range s.Table {
		cp := pair
		if pair.Defend != nil {
			d := *pair.Defend
			cp.Defend = &d
		}
		out.Table[i] = cp
	}
	out.Discards = make([]deck.Card, len(s.Discards))
	copy(out.Discards, s.Discards)
	if s.Winners != nil {
		out.Winners = make([]int, len(s.Winners))
		copy(out.Winners, s.Winners)
	}
	return &out
}

// HandSize returns the number of cards player idx holds.
func (s *GameState) HandSize(idx int) int {
	return len(s.Players[idx].Hand)
}

// handIndex locates card in player idx's hand, or -1.
func (s *GameState) handIndex(idx int, card deck.Card) int {
	for i, c := range s.Players[idx].Hand {
		if c == card {
			return i
		}
	}
	return -1
}

// removeFromHand takes card out of player idx's hand. The caller must have
// located it first.
func (s *GameState) removeFromHand(idx int, card deck.Card) {
	hand := s.Players[idx].Hand
	for i, c := range hand {
		if c == card {
			s.Players[idx].Hand = append(hand[:i], hand[i+1:]...)
			return
		}
	}
}

// undefendedCount returns how many table pairs still await an answer.
func (s *GameState) undefendedCount() int {
	n := 0
	for _, p := range s.Table {
		if !p.Defended() {
			n++
		}
	}
	return n
}

// tableRanks returns every rank currently on the table, attack and defend
// cards alike.
func (s *GameState) tableRanks() []deck.Rank {
	ranks := make([]deck.Rank, 0, len(s.Table)*2)
	for _, p := range s.Table {
		ranks = append(ranks, p.Attack.Rank)
		if p.Defend != nil {
			ranks = append(ranks, p.Defend.Rank)
		}
	}
	return ranks
}

// recomputeMaxAdds refreshes the round's remaining attack budget.
func (s *GameState) recomputeMaxAdds() {
	budget := rules.MaxPairs - len(s.Table)
	if hand := s.HandSize(s.Defender); hand < budget {
		budget = hand
	}
	if budget < 0 {
		budget = 0
	}
	s.MaxAdds = budget
}
