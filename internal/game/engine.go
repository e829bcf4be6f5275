package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tanfree/tan-server-go/internal/deck"
	"github.com/tanfree/tan-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// DefaultLogCapacity bounds each game's activity log.
const DefaultLogCapacity = 64

// ActionType names the player actions the engine accepts.
type ActionType string

const (
	ActionAttack    ActionType = "attack"
	ActionDefend    ActionType = "defend"
	ActionAddAttack ActionType = "add_attack"
	ActionTake      ActionType = "take"
)

// Action is one player input as received from the presentation layer.
type Action struct {
	Type   ActionType `json:"type"`
	Player int        `json:"player"`
	Card   *deck.Card `json:"card,omitempty"`
	// Pair is the table index targeted by a defend.
	Pair int `json:"pair"`
}

// session pairs a game's current snapshot with its activity log.
type session struct {
	state *GameState
	log   *eventLog
}

// Engine owns the live games. It is the single writer: one action is
// validated and fully applied before the next is considered, and a snapshot
// is only replaced by the result of a successful validation. Racing inputs
// lose by evaluating against the newer state and failing validation
// naturally.
type Engine struct {
	mu       sync.Mutex
	sessions map[string]*session
	logger   *zap.Logger
	opts     Options
	logCap   int
	now      func() time.Time
}

// NewEngine creates an engine applying opts to every new game.
func NewEngine(logger *zap.Logger, opts Options, logCapacity int) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if logCapacity <= 0 {
		logCapacity = DefaultLogCapacity
	}
	return &Engine{
		sessions: make(map[string]*session),
		logger:   logger,
		opts:     opts,
		logCap:   logCapacity,
		now:      time.Now,
	}
}

// Create deals a new game and returns its ID plus the opening snapshot.
// A non-zero seed reproduces the deal; zero seeds from the clock.
func (e *Engine) Create(numPlayers int, seed int64) (string, *GameState, error) {
	if seed == 0 {
		seed = e.now().UnixNano()
	}
	state, err := NewGame(numPlayers, e.opts, rand.New(rand.NewSource(seed)))
	if err != nil {
		return "", nil, err
	}

	id := uuid.NewString()
	sess := &session{state: state, log: newEventLog(e.logCap)}
	sess.log.add(fmt.Sprintf("new game: %d players, trump %s", numPlayers, state.Trump), e.now())

	e.mu.Lock()
	e.sessions[id] = sess
	e.mu.Unlock()

	e.logger.Info("game created",
		zap.String("game_id", id),
		zap.Int("players", numPlayers),
		zap.String("trump", state.Trump.String()),
		zap.Int("attacker", state.Attacker),
	)
	return id, state.Clone(), nil
}

// Snapshot returns a copy of a game's current state.
func (e *Engine) Snapshot(id string) (*GameState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no game %s", id)
	}
	return sess.state.Clone(), nil
}

// Events returns a game's activity log, most recent first.
func (e *Engine) Events(id string) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no game %s", id)
	}
	return sess.log.all(), nil
}

// Apply validates one action against a game's current snapshot. On success
// the snapshot is replaced and the new state returned with the event text; on
// rejection the prior state is preserved untouched and the rejection is
// returned as the error.
func (e *Engine) Apply(id string, act Action) (*GameState, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, ok := e.sessions[id]
	if !ok {
		return nil, "", fmt.Errorf("no game %s", id)
	}

	next, event, rej := applyAction(sess.state, act)
	if rej != nil {
		e.logger.Debug("action rejected",
			zap.String("game_id", id),
			zap.String("action", string(act.Type)),
			zap.Int("player", act.Player),
			zap.String("reason", string(rej.Code)),
		)
		return nil, "", rej
	}

	sess.state = next
	sess.log.add(event, e.now())
	e.logger.Info("action applied",
		zap.String("game_id", id),
		zap.String("action", string(act.Type)),
		zap.Int("player", act.Player),
		zap.String("phase", next.Phase.String()),
	)
	return next.Clone(), event, nil
}

// applyAction dispatches one action onto the pure state transforms.
func applyAction(state *GameState, act Action) (*GameState, string, *rules.Rejection) {
	switch act.Type {
	case ActionAttack:
		if act.Card == nil {
			return nil, "", rules.Reject(rules.CardNotOwned, "attack requires a card")
		}
		return state.Attack(act.Player, *act.Card)
	case ActionDefend:
		if act.Card == nil {
			return nil, "", rules.Reject(rules.CardNotOwned, "defend requires a card")
		}
		return state.Defend(act.Player, act.Pair, *act.Card)
	case ActionAddAttack:
		if act.Card == nil {
			return nil, "", rules.Reject(rules.CardNotOwned, "add-attack requires a card")
		}
		return state.AddAttack(act.Player, *act.Card)
	case ActionTake:
		return state.Take(act.Player)
	default:
		return nil, "", rules.Reject(rules.WrongPhase, "unknown action %q", act.Type)
	}
}

// Export serializes a game's current snapshot for transfer to another
// session.
func (e *Engine) Export(id string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no game %s", id)
	}
	return sess.state.MarshalState()
}

// Import installs a serialized snapshot as a new game. Malformed or
// conservation-violating input is refused without touching any existing game.
func (e *Engine) Import(data []byte) (string, *GameState, error) {
	state, rej := ParseState(data)
	if rej != nil {
		e.logger.Warn("import rejected", zap.String("reason", rej.Message))
		return "", nil, rej
	}

	id := uuid.NewString()
	sess := &session{state: state, log: newEventLog(e.logCap)}
	sess.log.add("game imported", e.now())

	e.mu.Lock()
	e.sessions[id] = sess
	e.mu.Unlock()

	e.logger.Info("game imported", zap.String("game_id", id), zap.String("phase", state.Phase.String()))
	return id, state.Clone(), nil
}
