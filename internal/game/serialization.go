package game

import (
	"encoding/json"
	"fmt"

	"github.com/tanfree/tan-server-go/internal/deck"
	"github.com/tanfree/tan-server-go/internal/game/rules"
)

// MarshalState serializes the snapshot to JSON. The encoding is lossless:
// deck order, hand order, table order, phase and indices all survive a round
// trip.
func (s *GameState) MarshalState() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	return data, nil
}

// ParseState reconstructs a snapshot from its JSON form. Imports arrive from
// other sessions and are validated structurally and against the 36-card
// conservation invariant before being accepted; failures come back as
// MalformedImport and leave the caller's current state untouched.
func ParseState(data []byte) (*GameState, *rules.Rejection) {
	var state GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, rules.Reject(rules.MalformedImport, "not a valid game state: %v", err)
	}
	if rej := ValidateState(&state); rej != nil {
		return nil, rej
	}
	return &state, nil
}

// ValidateState runs the structural and conservation checks an import must
// pass.
func ValidateState(s *GameState) *rules.Rejection {
	if len(s.Players) < 2 || len(s.Players) > 4 {
		return rules.Reject(rules.MalformedImport, "state has %d players, want 2 to 4", len(s.Players))
	}
	if !s.Phase.Valid() {
		return rules.Reject(rules.MalformedImport, "unknown phase %d", int(s.Phase))
	}
	if len(s.Table) > rules.MaxPairs {
		return rules.Reject(rules.MalformedImport, "table holds %d pairs, cap is %d", len(s.Table), rules.MaxPairs)
	}
	if s.Phase != rules.PhaseFinished {
		n := len(s.Players)
		if s.Attacker < 0 || s.Attacker >= n || s.Defender < 0 || s.Defender >= n {
			return rules.Reject(rules.MalformedImport, "attacker %d / defender %d out of range", s.Attacker, s.Defender)
		}
		if s.Attacker == s.Defender {
			return rules.Reject(rules.MalformedImport, "attacker and defender are both player %d", s.Attacker)
		}
	}
	return validateConservation(s)
}

// validateConservation checks that the multiset of cards across deck, hands,
// table and discards is exactly the full 36-card deck: no duplicates, no
// losses.
func validateConservation(s *GameState) *rules.Rejection {
	seen := make(map[deck.Card]int, deck.Size)

	for _, c := range s.Deck.Cards {
		seen[c]++
	}
	for _, p := range s.Players {
		for _, c := range p.Hand {
			seen[c]++
		}
	}
	for _, pair := range s.Table {
		seen[pair.Attack]++
		if pair.Defend != nil {
			seen[*pair.Defend]++
		}
	}
	for _, c := range s.Discards {
		seen[c]++
	}

	for _, c := range deck.New() {
		switch seen[c] {
		case 1:
		case 0:
			return rules.Reject(rules.MalformedImport, "card %s is missing", c)
		default:
			return rules.Reject(rules.MalformedImport, "card %s appears %d times", c, seen[c])
		}
	}
	if total := len(seen); total != deck.Size {
		return rules.Reject(rules.MalformedImport, "state holds %d distinct cards, want %d", total, deck.Size)
	}
	return nil
}

// ValidateRoundTrip checks that a snapshot survives serialization without
// loss by re-parsing its own encoding and comparing.
func ValidateRoundTrip(s *GameState) error {
	data, err := s.MarshalState()
	if err != nil {
		return err
	}
	parsed, rej := ParseState(data)
	if rej != nil {
		return fmt.Errorf("re-parse failed: %w", rej)
	}
	reencoded, err := parsed.MarshalState()
	if err != nil {
		return err
	}
	if string(data) != string(reencoded) {
		return fmt.Errorf("round trip mismatch:\n%s\n%s", data, reencoded)
	}
	return nil
}
