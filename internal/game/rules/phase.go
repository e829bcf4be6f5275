package rules

import "fmt"

// Phase represents the stage a Tấn game is in between actions.
type Phase int

const (
	// PhaseAttack waits for the attacker to open a round.
	PhaseAttack Phase = iota
	// PhaseDefend waits for the defender to answer (or take), with add-attacks
	// allowed in between.
	PhaseDefend
	// PhaseCleanup is the transient stage while a round is resolved; it is
	// never observable across an action boundary.
	PhaseCleanup
	// PhaseFinished is terminal; no further actions are accepted.
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseAttack:   "ATTACK",
	PhaseDefend:   "DEFEND",
	PhaseCleanup:  "CLEANUP",
	PhaseFinished: "FINISHED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	_, ok := phaseNames[p]
	return ok
}
