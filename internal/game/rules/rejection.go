package rules

import "fmt"

// Reason identifies why an action was refused. Every reason is recoverable:
// the caller is informed and the prior game state is left untouched.
type Reason string

const (
	// WrongActor: the acting player is not the attacker/defender required by
	// the action.
	WrongActor Reason = "WRONG_ACTOR"
	// WrongPhase: the action is not permitted in the current phase.
	WrongPhase Reason = "WRONG_PHASE"
	// CardNotOwned: the referenced card is not in the acting player's hand.
	CardNotOwned Reason = "CARD_NOT_OWNED"
	// IllegalDefend: the defend card does not beat the targeted attack card.
	IllegalDefend Reason = "ILLEGAL_DEFEND"
	// IllegalAddRank: the add-attack card's rank is not already on the table.
	IllegalAddRank Reason = "ILLEGAL_ADD_RANK"
	// TableFull: the table already holds the maximum permitted pairs, or the
	// defender could not possibly answer another one.
	TableFull Reason = "TABLE_FULL"
	// MalformedImport: an imported snapshot failed structural or card
	// conservation validation.
	MalformedImport Reason = "MALFORMED_IMPORT"
)

// Rejection is a refused player action. It implements error but is never
// fatal; the engine returns it alongside an unchanged state.
type Rejection struct {
	Code    Reason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// Reject builds a Rejection with a formatted message.
func Reject(code Reason, format string, args ...any) *Rejection {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}
