package game

import "fmt"

// ActionType enumerates every kind of move a player can submit.
type ActionType string

const (
	ActionDraw              ActionType = "DRAW"
	ActionPoints            ActionType = "POINTS"
	ActionOneOff            ActionType = "ONE_OFF"
	ActionFaceCard          ActionType = "FACE_CARD"
	ActionJack              ActionType = "JACK"
	ActionScuttle           ActionType = "SCUTTLE"
	ActionCounter           ActionType = "COUNTER"
	ActionResolve           ActionType = "RESOLVE"
	ActionSelectFromDiscard ActionType = "SELECT_FROM_DISCARD"
	ActionDiscardFromHand   ActionType = "DISCARD_FROM_HAND"
	ActionDiscardRevealed   ActionType = "DISCARD_REVEALED"
	ActionRequestStalemate  ActionType = "REQUEST_STALEMATE"
	ActionAcceptStalemate   ActionType = "ACCEPT_STALEMATE"
	ActionRejectStalemate   ActionType = "REJECT_STALEMATE"
	ActionConcede           ActionType = "CONCEDE"
	ActionPass              ActionType = "PASS"
)

// Source records where the card used by an action comes from.
type Source string

const (
	SourceNone    Source = ""
	SourceHand    Source = "HAND"
	SourceDeck    Source = "DECK"
	SourceDiscard Source = "DISCARD"
)

// Action is one candidate move. Actions are ephemeral: they are
// recomputed on every legality query, and ID is only the action's index
// in the legal list that produced it. Submitting an action against any
// other state is rejected.
type Action struct {
	ID       int        `json:"id"`
	Type     ActionType `json:"type"`
	PlayedBy int        `json:"played_by"`
	Source   Source     `json:"source,omitempty"`
	CardID   string     `json:"card_id,omitempty"`
	TargetID string     `json:"target_id,omitempty"`
}

// same reports whether two actions describe the identical move,
// ignoring the phase-local ID.
func (a Action) same(b Action) bool {
	return a.Type == b.Type &&
		a.PlayedBy == b.PlayedBy &&
		a.Source == b.Source &&
		a.CardID == b.CardID &&
		a.TargetID == b.TargetID
}

// needsCard reports whether the action type requires a card id.
func (t ActionType) needsCard() bool {
	switch t {
	case ActionPoints, ActionOneOff, ActionFaceCard, ActionJack,
		ActionScuttle, ActionCounter, ActionSelectFromDiscard,
		ActionDiscardFromHand, ActionDiscardRevealed:
		return true
	}
	return false
}

// needsTarget reports whether the action type requires a target id.
func (t ActionType) needsTarget() bool {
	switch t {
	case ActionJack, ActionScuttle, ActionCounter:
		return true
	}
	return false
}

// Label renders the action for a human, resolving card ids against the
// given state.
func (a Action) Label(s *GameState) string {
	display := func(id string) string {
		if card, ok := s.Cards[id]; ok {
			return card.String()
		}
		return "?"
	}
	switch a.Type {
	case ActionDraw:
		return "Draw a card from the deck"
	case ActionPoints:
		return fmt.Sprintf("Play %s for points", display(a.CardID))
	case ActionOneOff:
		if a.TargetID != "" {
			return fmt.Sprintf("Play %s as a one-off targeting %s", display(a.CardID), display(a.TargetID))
		}
		return fmt.Sprintf("Play %s as a one-off", display(a.CardID))
	case ActionFaceCard:
		return fmt.Sprintf("Play %s as a face card", display(a.CardID))
	case ActionJack:
		return fmt.Sprintf("Play %s on %s", display(a.CardID), display(a.TargetID))
	case ActionScuttle:
		return fmt.Sprintf("Scuttle %s with %s", display(a.TargetID), display(a.CardID))
	case ActionCounter:
		return fmt.Sprintf("Counter %s with %s", display(a.TargetID), display(a.CardID))
	case ActionResolve:
		return "Allow the one-off to resolve"
	case ActionSelectFromDiscard:
		return fmt.Sprintf("Take %s from the discard pile", display(a.CardID))
	case ActionDiscardFromHand:
		return fmt.Sprintf("Discard %s", display(a.CardID))
	case ActionDiscardRevealed:
		return fmt.Sprintf("Discard revealed %s", display(a.CardID))
	case ActionRequestStalemate:
		return "Request a stalemate"
	case ActionAcceptStalemate:
		return "Accept the stalemate request"
	case ActionRejectStalemate:
		return "Reject the stalemate request"
	case ActionConcede:
		return "Concede the game"
	case ActionPass:
		return "Pass"
	}
	return string(a.Type)
}
