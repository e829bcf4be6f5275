package game

import (
	"fmt"
	"math/rand"

	"github.com/tanfree/tan-server-go/internal/deck"
	"github.com/tanfree/tan-server-go/internal/game/rules"
)

// NewGame deals a fresh game for 2..4 players. The random source drives the
// shuffle only, so a fixed seed reproduces the deal exactly.
func NewGame(numPlayers int, opts Options, rng *rand.Rand) (*GameState, error) {
	if numPlayers < 2 || numPlayers > 4 {
		return nil, fmt.Errorf("game supports 2 to 4 players, got %d", numPlayers)
	}

	shuffled := deck.Shuffle(deck.New(), rng)
	state := &GameState{
		Players:  make([]Player, numPlayers),
		Deck:     deck.Deck{Cards: shuffled},
		Phase:    rules.PhaseAttack,
		Discards: []deck.Card{},
		Table:    []AttackPair{},
		Round:    1,
		Options:  opts,
	}

	for i := range state.Players {
		state.Players[i] = Player{
			ID:   fmt.Sprintf("p%d", i),
			Name: fmt.Sprintf("Player %d", i+1),
			Hand: make([]deck.Card, 0, rules.HandSize),
		}
	}

	// One round-robin pass of 8: purely positional from the shuffled deck.
	for round := 0; round < rules.HandSize; round++ {
		for i := range state.Players {
			card, _ := state.Deck.Draw()
			state.Players[i].Hand = append(state.Players[i].Hand, card)
		}
	}

	// The next card fixes the trump suit for the whole game, then goes back
	// to the draw end of the deck: it stays in play.
	trumpCard, _ := state.Deck.Draw()
	state.Trump = trumpCard.Suit
	state.Deck.PushFront(trumpCard)

	state.Attacker = firstAttacker(state.Players, state.Trump)
	state.Defender = (state.Attacker + 1) % numPlayers

	return state, nil
}

// firstAttacker picks the holder of the lowest trump in hand, scanning seats
// in order so the choice is deterministic for a fixed deal. If nobody holds
// trump, seat 0 opens.
func firstAttacker(players []Player, trump deck.Suit) int {
	attacker := 0
	best := -1
	for i, p := range players {
		for _, c := range p.Hand {
			if c.Suit != trump {
				continue
			}
			if best == -1 || c.Rank.Value() < best {
				best = c.Rank.Value()
				attacker = i
			}
		}
	}
	return attacker
}

// Attack opens a round. Only the current attacker may act, only in the attack
// phase, and only with a card from their own hand.
func (s *GameState) Attack(player int, card deck.Card) (*GameState, string, *rules.Rejection) {
	if rej := rules.CheckPhase(s.Phase, rules.PhaseAttack); rej != nil {
		return nil, "", rej
	}
	if player != s.Attacker {
		return nil, "", rules.Reject(rules.WrongActor, "player %d is not the attacker", player)
	}
	if s.handIndex(player, card) < 0 {
		return nil, "", rules.Reject(rules.CardNotOwned, "player %d does not hold %s", player, card)
	}

	next := s.Clone()
	next.removeFromHand(player, card)
	next.Table = append(next.Table, AttackPair{Attack: card, Attacker: player})
	next.Phase = rules.PhaseDefend
	next.recomputeMaxAdds()

	event := fmt.Sprintf("%s attacks with %s", next.Players[player].Name, card)
	return next, event, nil
}

// Defend answers one specific undefended pair. When every pair on the table
// is answered the round resolves: the table is discarded, roles rotate to the
// old defender, and hands refill.
func (s *GameState) Defend(player, pairIndex int, card deck.Card) (*GameState, string, *rules.Rejection) {
	if rej := rules.CheckPhase(s.Phase, rules.PhaseDefend); rej != nil {
		return nil, "", rej
	}
	if player != s.Defender {
		return nil, "", rules.Reject(rules.WrongActor, "player %d is not the defender", player)
	}
	if pairIndex < 0 || pairIndex >= len(s.Table) {
		return nil, "", rules.Reject(rules.IllegalDefend, "no attack pair at index %d", pairIndex)
	}
	if s.Table[pairIndex].Defended() {
		return nil, "", rules.Reject(rules.IllegalDefend, "pair %d is already defended", pairIndex)
	}
	if s.handIndex(player, card) < 0 {
		return nil, "", rules.Reject(rules.CardNotOwned, "player %d does not hold %s", player, card)
	}
	if rej := rules.CheckDefend(card, s.Table[pairIndex].Attack, s.Trump); rej != nil {
		return nil, "", rej
	}

	next := s.Clone()
	next.removeFromHand(player, card)
	defendCard := card
	next.Table[pairIndex].Defend = &defendCard

	event := fmt.Sprintf("%s beats %s with %s", next.Players[player].Name, next.Table[pairIndex].Attack, card)
	if next.undefendedCount() == 0 {
		next.resolveRound()
		event += "; round defended"
	}
	return next, event, nil
}

// AddAttack throws an extra attack card into the current round. Its rank must
// already be on the table, and the defender must still be able to answer
// every open pair. Eligibility depends on the AttackersOnly variant.
func (s *GameState) AddAttack(player int, card deck.Card) (*GameState, string, *rules.Rejection) {
	if rej := rules.CheckPhase(s.Phase, rules.PhaseDefend); rej != nil {
		return nil, "", rej
	}
	if player == s.Defender {
		return nil, "", rules.Reject(rules.WrongActor, "the defender cannot add attacks")
	}
	if s.Options.AttackersOnly && player != s.Attacker {
		return nil, "", rules.Reject(rules.WrongActor, "player %d is not the attacker", player)
	}
	if player < 0 || player >= len(s.Players) {
		return nil, "", rules.Reject(rules.WrongActor, "no player %d", player)
	}
	if s.handIndex(player, card) < 0 {
		return nil, "", rules.Reject(rules.CardNotOwned, "player %d does not hold %s", player, card)
	}
	if rej := rules.CheckAddAttack(card, s.tableRanks(), len(s.Table), s.undefendedCount(), s.HandSize(s.Defender)); rej != nil {
		return nil, "", rej
	}

	next := s.Clone()
	next.removeFromHand(player, card)
	next.Table = append(next.Table, AttackPair{Attack: card, Attacker: player})
	next.recomputeMaxAdds()

	event := fmt.Sprintf("%s adds %s to the attack", next.Players[player].Name, card)
	return next, event, nil
}

// Take forfeits the round: the defender picks up every card on the table,
// defended or not. The attacker keeps the role and hands refill.
func (s *GameState) Take(player int) (*GameState, string, *rules.Rejection) {
	if rej := rules.CheckPhase(s.Phase, rules.PhaseDefend); rej != nil {
		return nil, "", rej
	}
	if player != s.Defender {
		return nil, "", rules.Reject(rules.WrongActor, "player %d is not the defender", player)
	}

	next := s.Clone()
	taken := 0
	for _, pair := range next.Table {
		next.Players[player].Hand = append(next.Players[player].Hand, pair.Attack)
		taken++
		if pair.Defend != nil {
			next.Players[player].Hand = append(next.Players[player].Hand, *pair.Defend)
			taken++
		}
	}
	next.Table = []AttackPair{}
	next.Phase = rules.PhaseCleanup

	// Attacker is unchanged; the same seat defends the next round.
	next.Defender = (next.Attacker + 1) % len(next.Players)
	next.refill()
	next.finishRound()

	event := fmt.Sprintf("%s takes %d cards", next.Players[player].Name, taken)
	return next, event, nil
}

// resolveRound discards a fully defended table and rotates roles: the
// successful defender attacks next.
func (s *GameState) resolveRound() {
	s.Phase = rules.PhaseCleanup
	for _, pair := range s.Table {
		s.Discards = append(s.Discards, pair.Attack)
		if pair.Defend != nil {
			s.Discards = append(s.Discards, *pair.Defend)
		}
	}
	s.Table = []AttackPair{}
	s.Attacker = s.Defender
	s.Defender = (s.Attacker + 1) % len(s.Players)
	s.refill()
	s.finishRound()
}

// refill tops every hand back up to HandSize, one clockwise pass starting at
// the new attacker. The order is a fairness rule: the attacker draws first
// and gets priority on a shrinking deck.
func (s *GameState) refill() {
	n := len(s.Players)
	for off := 0; off < n; off++ {
		idx := (s.Attacker + off) % n
		for len(s.Players[idx].Hand) < rules.HandSize {
			card, ok := s.Deck.Draw()
			if !ok {
				return
			}
			s.Players[idx].Hand = append(s.Players[idx].Hand, card)
		}
	}
}

// finishRound closes the cleanup stage: either the game terminates or the
// next round opens. The game ends only when a hand and the deck are empty at
// the same time; every player satisfying that is a winner.
func (s *GameState) finishRound() {
	s.Round++
	s.MaxAdds = 0
	if s.Deck.Len() == 0 {
		var winners []int
		for i := range s.Players {
			if len(s.Players[i].Hand) == 0 {
				winners = append(winners, i)
			}
		}
		if len(winners) > 0 {
			s.Winners = winners
			s.Phase = rules.PhaseFinished
			return
		}
	}
	s.Phase = rules.PhaseAttack
}
