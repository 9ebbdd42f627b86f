package game

import "fmt"

// PhaseKind enumerates the mutually exclusive resolution phases. The
// game is always in exactly one phase; every non-Idle phase must
// resolve back to Idle (or chain into another phase) before the turn
// can advance.
type PhaseKind int

const (
	// PhaseIdle is the normal turn: the active player draws, plays or
	// scuttles.
	PhaseIdle PhaseKind = iota
	// PhaseAwaitingCounter: a one-off is pending and the opponent may
	// counter it with a Two or allow it to resolve.
	PhaseAwaitingCounter
	// PhaseAwaitingThreeSelection: a resolved Three lets its player
	// reclaim one card from the discard pile.
	PhaseAwaitingThreeSelection
	// PhaseAwaitingFourSelection: a resolved Four forces the opponent
	// to discard cards from hand until Remaining is satisfied.
	PhaseAwaitingFourSelection
	// PhaseAwaitingFiveDiscard: a resolved Five requires its player to
	// discard one hand card before drawing.
	PhaseAwaitingFiveDiscard
	// PhaseAwaitingSevenReveal: a resolved Seven revealed deck cards
	// the active player must play or discard one at a time.
	PhaseAwaitingSevenReveal
	// PhaseAwaitingStalemateResponse: a stalemate was requested and the
	// opponent must accept or reject it.
	PhaseAwaitingStalemateResponse
	// PhaseGameOver is terminal.
	PhaseGameOver
)

var phaseKindNames = map[PhaseKind]string{
	PhaseIdle:                      "IDLE",
	PhaseAwaitingCounter:           "AWAITING_COUNTER",
	PhaseAwaitingThreeSelection:    "AWAITING_THREE_SELECTION",
	PhaseAwaitingFourSelection:     "AWAITING_FOUR_SELECTION",
	PhaseAwaitingFiveDiscard:       "AWAITING_FIVE_DISCARD",
	PhaseAwaitingSevenReveal:       "AWAITING_SEVEN_REVEAL",
	PhaseAwaitingStalemateResponse: "AWAITING_STALEMATE_RESPONSE",
	PhaseGameOver:                  "GAME_OVER",
}

func (k PhaseKind) String() string {
	if name, ok := phaseKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(k))
}

// Phase is the tagged union of the resolution phases. Kind selects
// which payload fields are meaningful; everything else is zero.
type Phase struct {
	Kind PhaseKind `json:"kind"`

	// Responder is the player who must act in any non-Idle,
	// non-terminal phase. It may differ from the active player, e.g.
	// the opponent answering a counter window.
	Responder int `json:"responder"`

	// Pending one-off payload. OneOffCard is carried through chained
	// selection phases (Three/Four/Five) so the card reaches the
	// discard pile only once its effect fully resolves.
	OneOffCard   string `json:"one_off_card,omitempty"`
	OneOffPlayer int    `json:"one_off_player,omitempty"`
	OneOffTarget string `json:"one_off_target,omitempty"`
	OneOffSource Source `json:"one_off_source,omitempty"`

	// Remaining is the number of discards still owed in
	// PhaseAwaitingFourSelection.
	Remaining int `json:"remaining,omitempty"`

	// RequestedBy is the player who asked for the stalemate.
	RequestedBy int `json:"requested_by,omitempty"`

	// Terminal payload. Winner is NoPlayer on a draw.
	Winner int  `json:"winner,omitempty"`
	Draw   bool `json:"draw,omitempty"`
}

// Idle reports whether the phase is the normal-turn phase.
func (p Phase) Idle() bool {
	return p.Kind == PhaseIdle
}

// Terminal reports whether the game has ended.
func (p Phase) Terminal() bool {
	return p.Kind == PhaseGameOver
}

func idlePhase() Phase {
	return Phase{Kind: PhaseIdle}
}

func wonPhase(winner int) Phase {
	return Phase{Kind: PhaseGameOver, Winner: winner}
}

func drawnPhase() Phase {
	return Phase{Kind: PhaseGameOver, Winner: NoPlayer, Draw: true}
}
