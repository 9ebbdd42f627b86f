package game

import (
	"fmt"
	"testing"
)

// stateBuilder assembles scenario states directly. Cards enter the
// arena as they are placed, so a built state may hold fewer than 52
// cards; the full-deck invariant is exercised by the playthrough test.
type stateBuilder struct {
	t *testing.T
	s *GameState
	n int
}

func newStateBuilder(t *testing.T) *stateBuilder {
	t.Helper()
	return &stateBuilder{
		t: t,
		s: &GameState{
			Cards:               make(map[string]*Card),
			ReplayLocks:         make(map[string]int),
			StalemateDeniedTurn: [2]int{-1, -1},
		},
	}
}

func (b *stateBuilder) add(suit Suit, rank Rank) *Card {
	b.n++
	card := &Card{
		ID:       fmt.Sprintf("card-%02d", b.n),
		Suit:     suit,
		Rank:     rank,
		PlayedBy: NoPlayer,
	}
	b.s.Cards[card.ID] = card
	return card
}

func (b *stateBuilder) hand(player int, suit Suit, rank Rank) string {
	card := b.add(suit, rank)
	b.s.Hands[player] = append(b.s.Hands[player], card.ID)
	return card.ID
}

func (b *stateBuilder) points(player int, suit Suit, rank Rank) string {
	card := b.add(suit, rank)
	card.PlayedBy = player
	card.Purpose = PurposePoints
	b.s.Fields[player] = append(b.s.Fields[player], card.ID)
	return card.ID
}

func (b *stateBuilder) face(player int, suit Suit, rank Rank) string {
	card := b.add(suit, rank)
	card.PlayedBy = player
	card.Purpose = PurposeFaceCard
	b.s.Fields[player] = append(b.s.Fields[player], card.ID)
	return card.ID
}

// jackOn attaches a fresh Jack played by player to the host card.
func (b *stateBuilder) jackOn(player int, suit Suit, hostID string) string {
	jack := b.add(suit, RankJack)
	jack.PlayedBy = player
	jack.Purpose = PurposeJack
	host := b.s.card(hostID)
	host.Attachments = append(host.Attachments, jack.ID)
	return jack.ID
}

func (b *stateBuilder) deck(suit Suit, rank Rank) string {
	card := b.add(suit, rank)
	b.s.Deck = append(b.s.Deck, card.ID)
	return card.ID
}

func (b *stateBuilder) discard(suit Suit, rank Rank) string {
	card := b.add(suit, rank)
	b.s.Discard = append(b.s.Discard, card.ID)
	return card.ID
}

func (b *stateBuilder) state() *GameState {
	return b.s
}

// findAction locates the unique legal action matching the filter, or
// fails the test.
func findAction(t *testing.T, s *GameState, match func(Action) bool) Action {
	t.Helper()
	var found []Action
	for _, action := range LegalActions(s) {
		if match(action) {
			found = append(found, action)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly one matching action, found %d", len(found))
	}
	return found[0]
}

func hasAction(s *GameState, match func(Action) bool) bool {
	for _, action := range LegalActions(s) {
		if match(action) {
			return true
		}
	}
	return false
}

// mustApply applies the action and fails the test on rejection.
func mustApply(t *testing.T, s *GameState, action Action) *GameState {
	t.Helper()
	next, _, err := Apply(s, action)
	if err != nil {
		t.Fatalf("apply %s: %v", action.Type, err)
	}
	return next
}

// byType matches actions on type alone.
func byType(actionType ActionType) func(Action) bool {
	return func(a Action) bool { return a.Type == actionType }
}

// byCard matches actions on type and card.
func byCard(actionType ActionType, cardID string) func(Action) bool {
	return func(a Action) bool { return a.Type == actionType && a.CardID == cardID }
}

// byTarget matches actions on type, card and target.
func byTarget(actionType ActionType, cardID, targetID string) func(Action) bool {
	return func(a Action) bool {
		return a.Type == actionType && a.CardID == cardID && a.TargetID == targetID
	}
}
