package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanfree/tan-server-go/internal/deck"
	"github.com/tanfree/tan-server-go/internal/game/rules"
)

func card(r deck.Rank, s deck.Suit) deck.Card {
	return deck.Card{Suit: s, Rank: r}
}

func mustNewGame(t *testing.T, players int, seed int64) *GameState {
	t.Helper()
	state, err := NewGame(players, DefaultOptions(), rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return state
}

// testPlayers builds seats the way NewGame names them.
func testPlayers(hands ...[]deck.Card) []Player {
	players := make([]Player, len(hands))
	for i, h := range hands {
		players[i] = Player{
			ID:   "p" + string(rune('0'+i)),
			Name: "Player " + string(rune('1'+i)),
			Hand: h,
		}
	}
	return players
}

// tableFixture is a hand-built 3-player mid-game position with spade trump.
// Seat 0 attacks, seat 1 defends and holds neither clubs nor trump.
func tableFixture() *GameState {
	s := &GameState{
		Players: testPlayers(
			[]deck.Card{card(deck.Six, deck.Clubs), card(deck.Seven, deck.Diamonds), card(deck.Seven, deck.Clubs), card(deck.Eight, deck.Hearts)},
			[]deck.Card{card(deck.Nine, deck.Diamonds), card(deck.Ten, deck.Hearts), card(deck.King, deck.Diamonds), card(deck.Eight, deck.Diamonds)},
			[]deck.Card{card(deck.Queen, deck.Hearts), card(deck.Jack, deck.Diamonds)},
		),
		Deck:     deck.Deck{Cards: []deck.Card{card(deck.Six, deck.Diamonds), card(deck.Six, deck.Hearts), card(deck.Nine, deck.Clubs)}},
		Trump:    deck.Spades,
		Table:    []AttackPair{},
		Attacker: 0,
		Defender: 1,
		Phase:    rules.PhaseAttack,
		Discards: []deck.Card{},
		Round:    1,
		Options:  DefaultOptions(),
	}
	return s
}

func TestNewGameDeal(t *testing.T) {
	for _, players := range []int{2, 3, 4} {
		state := mustNewGame(t, players, 11)

		for i := range state.Players {
			assert.Len(t, state.Players[i].Hand, rules.HandSize)
		}
		// Trump card went back to the deck, so nothing is lost.
		assert.Equal(t, deck.Size-players*rules.HandSize, state.Deck.Len())
		assert.Equal(t, rules.PhaseAttack, state.Phase)
		assert.NotEqual(t, state.Attacker, state.Defender)
		assert.Equal(t, (state.Attacker+1)%players, state.Defender)
		assert.Empty(t, state.Table)
		require.Nil(t, ValidateState(state))
	}
}

func TestNewGameTrumpCardStaysDrawable(t *testing.T) {
	state := mustNewGame(t, 2, 3)
	// The reinserted trump card sits at the draw end and carries the trump
	// suit.
	next := state.Deck.Cards[0]
	assert.Equal(t, state.Trump, next.Suit)
}

func TestNewGameRejectsBadPlayerCount(t *testing.T) {
	for _, players := range []int{0, 1, 5} {
		_, err := NewGame(players, DefaultOptions(), rand.New(rand.NewSource(1)))
		assert.Error(t, err)
	}
}

func TestFirstAttackerDeterministic(t *testing.T) {
	first := mustNewGame(t, 3, 99)
	for i := 0; i < 5; i++ {
		again := mustNewGame(t, 3, 99)
		require.Equal(t, first.Attacker, again.Attacker)
		require.Equal(t, first.Trump, again.Trump)
	}

	// The chosen attacker holds the lowest trump dealt to any hand.
	lowest := -1
	seat := 0
	for i, p := range first.Players {
		for _, c := range p.Hand {
			if c.Suit == first.Trump && (lowest == -1 || c.Rank.Value() < lowest) {
				lowest = c.Rank.Value()
				seat = i
			}
		}
	}
	if lowest != -1 {
		assert.Equal(t, seat, first.Attacker)
	} else {
		assert.Equal(t, 0, first.Attacker)
	}
}

func TestFirstAttackerDefaultsToSeatZero(t *testing.T) {
	players := testPlayers(
		[]deck.Card{card(deck.Ace, deck.Hearts)},
		[]deck.Card{card(deck.King, deck.Diamonds)},
	)
	assert.Equal(t, 0, firstAttacker(players, deck.Spades))
}

func TestAttackValidations(t *testing.T) {
	s := tableFixture()

	_, _, rej := s.Attack(1, card(deck.Nine, deck.Diamonds))
	require.NotNil(t, rej)
	assert.Equal(t, rules.WrongActor, rej.Code)

	_, _, rej = s.Attack(0, card(deck.Ace, deck.Spades))
	require.NotNil(t, rej)
	assert.Equal(t, rules.CardNotOwned, rej.Code)

	_, _, rej = s.Take(1)
	require.NotNil(t, rej)
	assert.Equal(t, rules.WrongPhase, rej.Code)

	// Rejections never touch the snapshot.
	assert.Equal(t, tableFixture(), s)
}

func TestAttackOpensRound(t *testing.T) {
	s := tableFixture()

	next, event, rej := s.Attack(0, card(deck.Six, deck.Clubs))
	require.Nil(t, rej)
	assert.Contains(t, event, "6♣")

	assert.Equal(t, rules.PhaseDefend, next.Phase)
	require.Len(t, next.Table, 1)
	assert.Equal(t, card(deck.Six, deck.Clubs), next.Table[0].Attack)
	assert.False(t, next.Table[0].Defended())
	assert.Len(t, next.Players[0].Hand, 3)
	// maxAdds = min(defender hand, table budget)
	assert.Equal(t, 4, next.MaxAdds)

	// The prior snapshot is untouched (copy-on-write).
	assert.Equal(t, tableFixture(), s)
}

// Defender holds neither clubs nor trump: every defend is refused, take picks
// up exactly the attack card, and the refill runs attacker first.
func TestTakeAfterUndefendableAttack(t *testing.T) {
	s := tableFixture()

	s, _, rej := s.Attack(0, card(deck.Six, deck.Clubs))
	require.Nil(t, rej)

	for _, c := range s.Players[1].Hand {
		_, _, rej := s.Defend(1, 0, c)
		require.NotNil(t, rej, "defend with %s should be refused", c)
		assert.Equal(t, rules.IllegalDefend, rej.Code)
	}

	next, event, rej := s.Take(1)
	require.Nil(t, rej)
	assert.Contains(t, event, "takes 1")

	// Hand grows by exactly the one attack card.
	assert.Len(t, next.Players[1].Hand, 5)
	assert.Contains(t, next.Players[1].Hand, card(deck.Six, deck.Clubs))
	assert.Empty(t, next.Table)

	// Attacker keeps the role, the same seat defends again.
	assert.Equal(t, 0, next.Attacker)
	assert.Equal(t, 1, next.Defender)
	assert.Equal(t, rules.PhaseAttack, next.Phase)

	// Refill: attacker drew all three remaining deck cards before anyone
	// else got a turn.
	assert.Len(t, next.Players[0].Hand, 6)
	assert.Equal(t, 0, next.Deck.Len())
}

func TestAddAttackAndTake(t *testing.T) {
	s := tableFixture()

	s, _, rej := s.Attack(0, card(deck.Seven, deck.Diamonds))
	require.Nil(t, rej)

	// Same suit, higher rank: accepted.
	s, event, rej := s.Defend(1, 0, card(deck.Nine, deck.Diamonds))
	require.Nil(t, rej)
	assert.Contains(t, event, "beats")
	assert.True(t, s.Table[0].Defended())
	assert.Equal(t, rules.PhaseDefend, s.Phase)

	// Rank 7 is on the table, so 7♣ may be added.
	s, _, rej = s.AddAttack(0, card(deck.Seven, deck.Clubs))
	require.Nil(t, rej)
	require.Len(t, s.Table, 2)
	assert.False(t, s.Table[1].Defended())

	// A rank that never appeared is refused.
	_, _, rej = s.AddAttack(0, card(deck.Eight, deck.Hearts))
	require.NotNil(t, rej)
	assert.Equal(t, rules.IllegalAddRank, rej.Code)

	// Taking clears both pairs, defended or not, into the defender's hand.
	handBefore := len(s.Players[1].Hand)
	next, _, rej := s.Take(1)
	require.Nil(t, rej)
	assert.Len(t, next.Players[1].Hand, handBefore+3)
	assert.Contains(t, next.Players[1].Hand, card(deck.Seven, deck.Diamonds))
	assert.Contains(t, next.Players[1].Hand, card(deck.Nine, deck.Diamonds))
	assert.Contains(t, next.Players[1].Hand, card(deck.Seven, deck.Clubs))
	assert.Empty(t, next.Table)
	assert.Empty(t, next.Discards)
}

func TestFullDefenseResolvesRound(t *testing.T) {
	s := tableFixture()

	s, _, rej := s.Attack(0, card(deck.Seven, deck.Diamonds))
	require.Nil(t, rej)

	next, event, rej := s.Defend(1, 0, card(deck.Nine, deck.Diamonds))
	require.Nil(t, rej)
	assert.Contains(t, event, "round defended")

	// Both table cards are out of play for good.
	assert.Empty(t, next.Table)
	assert.ElementsMatch(t, []deck.Card{card(deck.Seven, deck.Diamonds), card(deck.Nine, deck.Diamonds)}, next.Discards)

	// Roles rotate: the successful defender attacks next.
	assert.Equal(t, 1, next.Attacker)
	assert.Equal(t, 2, next.Defender)
	assert.Equal(t, rules.PhaseAttack, next.Phase)

	// Refill starts at the new attacker: seat 1 drew all three remaining
	// deck cards before seat 2 saw any.
	assert.Len(t, next.Players[1].Hand, 6)
	assert.Len(t, next.Players[2].Hand, 2)
	assert.Equal(t, 0, next.Deck.Len())
}

func TestDefendValidations(t *testing.T) {
	s := tableFixture()
	s, _, rej := s.Attack(0, card(deck.Six, deck.Clubs))
	require.Nil(t, rej)

	_, _, rej = s.Defend(2, 0, card(deck.Queen, deck.Hearts))
	require.NotNil(t, rej)
	assert.Equal(t, rules.WrongActor, rej.Code)

	_, _, rej = s.Defend(1, 5, card(deck.Nine, deck.Diamonds))
	require.NotNil(t, rej)
	assert.Equal(t, rules.IllegalDefend, rej.Code)

	_, _, rej = s.Defend(1, 0, card(deck.Ace, deck.Spades))
	require.NotNil(t, rej)
	assert.Equal(t, rules.CardNotOwned, rej.Code)
}

func TestAddAttackEligibilityVariant(t *testing.T) {
	restricted := tableFixture()
	restricted, _, rej := restricted.Attack(0, card(deck.Seven, deck.Diamonds))
	require.Nil(t, rej)

	// Source variant: only the attacker may add.
	_, _, rej = restricted.AddAttack(2, card(deck.Jack, deck.Diamonds))
	require.NotNil(t, rej)
	assert.Equal(t, rules.WrongActor, rej.Code)

	// Folk variant: any non-defending player may add a present rank.
	open := tableFixture()
	open.Options.AttackersOnly = false
	open.Players[2].Hand = append(open.Players[2].Hand, card(deck.Seven, deck.Hearts))
	open, _, rej = open.Attack(0, card(deck.Seven, deck.Diamonds))
	require.Nil(t, rej)

	open, _, rej = open.AddAttack(2, card(deck.Seven, deck.Hearts))
	require.Nil(t, rej)
	assert.Len(t, open.Table, 2)

	// The defender can never add, variant or not.
	_, _, rej = open.AddAttack(1, card(deck.Nine, deck.Diamonds))
	require.NotNil(t, rej)
	assert.Equal(t, rules.WrongActor, rej.Code)
}

func TestAddAttackDefenderHandBound(t *testing.T) {
	s := tableFixture()
	// Defender down to one card.
	s.Players[1].Hand = []deck.Card{card(deck.Nine, deck.Diamonds)}
	s, _, rej := s.Attack(0, card(deck.Seven, deck.Diamonds))
	require.Nil(t, rej)

	// One undefended pair against a one-card hand: no room for another.
	_, _, rej = s.AddAttack(0, card(deck.Seven, deck.Clubs))
	require.NotNil(t, rej)
	assert.Equal(t, rules.TableFull, rej.Code)
}

func TestTerminationRequiresEmptyDeck(t *testing.T) {
	s := tableFixture()
	// Defender's last card answers the attack; the deck still holds cards,
	// so the game must continue and the hand refills.
	s.Players[1].Hand = []deck.Card{card(deck.Nine, deck.Diamonds)}
	s, _, rej := s.Attack(0, card(deck.Seven, deck.Diamonds))
	require.Nil(t, rej)
	next, _, rej := s.Defend(1, 0, card(deck.Nine, deck.Diamonds))
	require.Nil(t, rej)

	assert.Equal(t, rules.PhaseAttack, next.Phase)
	assert.Empty(t, next.Winners)
	assert.NotEmpty(t, next.Players[1].Hand)
}

func TestTerminationOnEmptyHandAndDeck(t *testing.T) {
	s := tableFixture()
	s.Deck = deck.Deck{Cards: []deck.Card{}}
	s.Players[1].Hand = []deck.Card{card(deck.Nine, deck.Diamonds)}
	s, _, rej := s.Attack(0, card(deck.Seven, deck.Diamonds))
	require.Nil(t, rej)
	next, _, rej := s.Defend(1, 0, card(deck.Nine, deck.Diamonds))
	require.Nil(t, rej)

	assert.Equal(t, rules.PhaseFinished, next.Phase)
	assert.Equal(t, []int{1}, next.Winners)

	// The finished game accepts nothing further.
	_, _, rej = next.Attack(next.Attacker, card(deck.Ace, deck.Spades))
	require.NotNil(t, rej)
	assert.Equal(t, rules.WrongPhase, rej.Code)
}

func TestTerminationTiesAllowed(t *testing.T) {
	s := tableFixture()
	s.Deck = deck.Deck{Cards: []deck.Card{}}
	s.Players[0].Hand = []deck.Card{card(deck.Seven, deck.Diamonds)}
	s.Players[1].Hand = []deck.Card{card(deck.Nine, deck.Diamonds)}
	s, _, rej := s.Attack(0, card(deck.Seven, deck.Diamonds))
	require.Nil(t, rej)
	next, _, rej := s.Defend(1, 0, card(deck.Nine, deck.Diamonds))
	require.Nil(t, rej)

	assert.Equal(t, rules.PhaseFinished, next.Phase)
	assert.Equal(t, []int{0, 1}, next.Winners)
}

// playout drives a full seeded game with a naive policy, checking the
// conservation invariant after every accepted action.
func playout(t *testing.T, players int, seed int64) {
	t.Helper()
	state := mustNewGame(t, players, seed)

	for steps := 0; state.Phase != rules.PhaseFinished; steps++ {
		require.Less(t, steps, 2000, "game did not terminate")

		var next *GameState
		var rej *rules.Rejection

		switch state.Phase {
		case rules.PhaseAttack:
			next, _, rej = state.Attack(state.Attacker, state.Players[state.Attacker].Hand[0])
			require.Nil(t, rej)
		case rules.PhaseDefend:
			pair := -1
			for i, p := range state.Table {
				if !p.Defended() {
					pair = i
					break
				}
			}
			require.GreaterOrEqual(t, pair, 0)
			for _, c := range state.Players[state.Defender].Hand {
				if rules.Beats(c, state.Table[pair].Attack, state.Trump) {
					next, _, rej = state.Defend(state.Defender, pair, c)
					require.Nil(t, rej)
					break
				}
			}
			if next == nil {
				next, _, rej = state.Take(state.Defender)
				require.Nil(t, rej)
			}
		default:
			t.Fatalf("unexpected phase %s between actions", state.Phase)
		}

		state = next
		require.Nil(t, ValidateState(state), "conservation broken at step %d", steps)
	}

	assert.NotEmpty(t, state.Winners)
	assert.Equal(t, 0, state.Deck.Len())
	for _, w := range state.Winners {
		assert.Empty(t, state.Players[w].Hand)
	}
}

// Refill draws a hand up to exactly HandSize and no further while the deck
// lasts.
func TestRefillCapsAtHandSize(t *testing.T) {
	s := tableFixture()
	s.Deck = deck.Deck{Cards: deck.Shuffle(deck.New(), rand.New(rand.NewSource(5)))[:20]}

	s, _, rej := s.Attack(0, card(deck.Seven, deck.Diamonds))
	require.Nil(t, rej)
	next, _, rej := s.Defend(1, 0, card(deck.Nine, deck.Diamonds))
	require.Nil(t, rej)

	for i := range next.Players {
		assert.Len(t, next.Players[i].Hand, rules.HandSize)
	}
}

// A hand oversized by a take is never trimmed; refill just skips it.
func TestRefillLeavesOversizedHandAlone(t *testing.T) {
	s := tableFixture()
	for r := deck.Six; r <= deck.Jack; r++ {
		s.Players[1].Hand = append(s.Players[1].Hand, card(r, deck.Spades))
	}
	handBefore := len(s.Players[1].Hand) // 10 cards

	s, _, rej := s.Attack(0, card(deck.Six, deck.Clubs))
	require.Nil(t, rej)
	next, _, rej := s.Take(1)
	require.Nil(t, rej)

	assert.Len(t, next.Players[1].Hand, handBefore+1)
}

func TestPlayoutConservation(t *testing.T) {
	for _, players := range []int{2, 3, 4} {
		for seed := int64(1); seed <= 5; seed++ {
			playout(t, players, seed)
		}
	}
}
