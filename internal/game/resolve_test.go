package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRejectsActionsNotInLegalSet(t *testing.T) {
	b := newStateBuilder(t)
	five := b.hand(0, SuitClubs, RankFive)
	s := b.state()

	_, _, err := Apply(s, Action{Type: ActionPoints, PlayedBy: 1, Source: SourceHand, CardID: five})
	require.ErrorIs(t, err, ErrIllegalAction)

	_, _, err = Apply(s, Action{Type: ActionPoints, PlayedBy: 0})
	require.ErrorIs(t, err, ErrMalformedAction)
}

func TestApplyNeverMutatesInput(t *testing.T) {
	b := newStateBuilder(t)
	b.hand(0, SuitClubs, RankFive)
	s := b.state()
	before := s.Checksum()

	mustApply(t, s, findAction(t, s, byType(ActionPoints)))
	assert.Equal(t, before, s.Checksum())
}

func TestPointsPlayMovesCardAndAdvancesTurn(t *testing.T) {
	b := newStateBuilder(t)
	five := b.hand(0, SuitClubs, RankFive)
	s := b.state()

	next := mustApply(t, s, findAction(t, s, byType(ActionPoints)))
	assert.Contains(t, next.Fields[0], five)
	assert.Empty(t, next.Hands[0])
	assert.Equal(t, 5, next.Score(0))
	assert.Equal(t, 1, next.ActivePlayer)
	assert.Equal(t, PurposePoints, next.card(five).Purpose)
}

func TestScuttleConsumesBothCards(t *testing.T) {
	b := newStateBuilder(t)
	attacker := b.hand(0, SuitSpades, RankSeven)
	defender := b.points(1, SuitHearts, RankFive)
	rider := b.jackOn(0, SuitClubs, defender)
	s := b.state()

	// The Jack flipped control to player 0, so the card is no longer an
	// opposing point card and cannot be scuttled.
	require.False(t, hasAction(s, byTarget(ActionScuttle, attacker, defender)))

	// Re-steal it back for player 1 and scuttle for real.
	rider2 := b.jackOn(1, SuitDiamonds, defender)
	next := mustApply(t, s, findAction(t, s, byTarget(ActionScuttle, attacker, defender)))

	assert.ElementsMatch(t, []string{defender, rider, rider2, attacker}, next.Discard)
	assert.Empty(t, next.Fields[1])
	assert.Empty(t, next.Hands[0])
	assert.Equal(t, NoPlayer, next.card(defender).PlayedBy)
	assert.Empty(t, next.card(defender).Attachments)
}

func TestCounteredOneOffRoundTrip(t *testing.T) {
	b := newStateBuilder(t)
	ace := b.hand(0, SuitSpades, RankAce)
	two := b.hand(1, SuitClubs, RankTwo)
	victim := b.points(1, SuitHearts, RankFive)
	s := b.state()

	pending := mustApply(t, s, findAction(t, s, byCard(ActionOneOff, ace)))
	require.Equal(t, PhaseAwaitingCounter, pending.Phase.Kind)

	next := mustApply(t, pending, findAction(t, pending, byType(ActionCounter)))
	assert.True(t, next.Phase.Idle())
	assert.ElementsMatch(t, []string{ace, two}, next.Discard)
	assert.Contains(t, next.Fields[1], victim, "the countered Ace never fires")
	assert.Equal(t, 1, next.ActivePlayer)
}

func TestAceScrapsAllPointCards(t *testing.T) {
	b := newStateBuilder(t)
	ace := b.hand(0, SuitSpades, RankAce)
	victim := b.points(1, SuitHearts, RankFive)
	king := b.face(1, SuitHearts, RankKing)
	s := b.state()

	s = mustApply(t, s, findAction(t, s, byCard(ActionOneOff, ace)))
	next := mustApply(t, s, findAction(t, s, byType(ActionResolve)))

	assert.ElementsMatch(t, []string{victim, ace}, next.Discard)
	assert.Contains(t, next.Fields[1], king, "face cards survive an Ace")
	assert.Equal(t, 0, next.Score(1))
}

func TestTwoScrapsTargetedRoyal(t *testing.T) {
	b := newStateBuilder(t)
	two := b.hand(0, SuitClubs, RankTwo)
	king := b.face(1, SuitHearts, RankKing)
	s := b.state()

	s = mustApply(t, s, findAction(t, s, byTarget(ActionOneOff, two, king)))
	next := mustApply(t, s, findAction(t, s, byType(ActionResolve)))

	assert.ElementsMatch(t, []string{king, two}, next.Discard)
	assert.Equal(t, BaseTarget, next.TargetScore(1))
}

func TestFourForcesTwoDiscards(t *testing.T) {
	b := newStateBuilder(t)
	four := b.hand(0, SuitClubs, RankFour)
	keep := b.hand(1, SuitHearts, RankKing)
	d1 := b.hand(1, SuitHearts, RankFive)
	d2 := b.hand(1, SuitHearts, RankSix)
	s := b.state()

	s = mustApply(t, s, findAction(t, s, byCard(ActionOneOff, four)))
	s = mustApply(t, s, findAction(t, s, byType(ActionResolve)))
	require.Equal(t, PhaseAwaitingFourSelection, s.Phase.Kind)
	require.Equal(t, 2, s.Phase.Remaining)

	s = mustApply(t, s, findAction(t, s, byCard(ActionDiscardFromHand, d1)))
	require.Equal(t, PhaseAwaitingFourSelection, s.Phase.Kind, "one discard still owed")

	s = mustApply(t, s, findAction(t, s, byCard(ActionDiscardFromHand, d2)))
	assert.True(t, s.Phase.Idle())
	assert.ElementsMatch(t, []string{d1, d2, four}, s.Discard)
	assert.Equal(t, []string{keep}, s.Hands[1])
	assert.Equal(t, 1, s.ActivePlayer)
}

func TestFiveDiscardsOneThenDrawsThree(t *testing.T) {
	b := newStateBuilder(t)
	five := b.hand(0, SuitClubs, RankFive)
	chaff := b.hand(0, SuitHearts, RankTwo)
	for rank := RankAce; rank <= RankFour; rank++ {
		b.deck(SuitSpades, rank)
	}
	s := b.state()

	s = mustApply(t, s, findAction(t, s, byCard(ActionOneOff, five)))
	s = mustApply(t, s, findAction(t, s, byType(ActionResolve)))
	require.Equal(t, PhaseAwaitingFiveDiscard, s.Phase.Kind)

	s = mustApply(t, s, findAction(t, s, byCard(ActionDiscardFromHand, chaff)))
	assert.True(t, s.Phase.Idle())
	assert.Len(t, s.Hands[0], 3)
	assert.Len(t, s.Deck, 1)
	assert.ElementsMatch(t, []string{chaff, five}, s.Discard)
}

func TestSixScrapsFaceCardsAndStolenHosts(t *testing.T) {
	b := newStateBuilder(t)
	six := b.hand(0, SuitClubs, RankSix)
	queen := b.face(1, SuitHearts, RankQueen)
	host := b.points(0, SuitHearts, RankTen)
	rider := b.jackOn(1, SuitDiamonds, host)
	safe := b.points(1, SuitSpades, RankFour)
	s := b.state()

	// The opposing Queen does not shield against an untargeted Six.
	s = mustApply(t, s, findAction(t, s, byCard(ActionOneOff, six)))
	s = mustApply(t, s, findAction(t, s, byType(ActionResolve)))

	assert.ElementsMatch(t, []string{queen, host, rider, six}, s.Discard)
	assert.Equal(t, []string{safe}, s.Fields[1])
	assert.Empty(t, s.Fields[0])
}

func TestSevenRevealPlayOneDiscardOther(t *testing.T) {
	b := newStateBuilder(t)
	seven := b.hand(0, SuitClubs, RankSeven)
	bottom := b.deck(SuitHearts, RankJack)
	top := b.deck(SuitSpades, RankNine)
	s := b.state()

	s = mustApply(t, s, findAction(t, s, byCard(ActionOneOff, seven)))
	s = mustApply(t, s, findAction(t, s, byType(ActionResolve)))
	require.Equal(t, PhaseAwaitingSevenReveal, s.Phase.Kind)
	require.ElementsMatch(t, []string{top, bottom}, s.PendingSeven)
	require.Empty(t, s.Deck)

	// The Nine has no target, so points is its play; the Jack has no
	// target at all and must be discarded.
	s = mustApply(t, s, findAction(t, s, byCard(ActionPoints, top)))
	require.Equal(t, PhaseAwaitingSevenReveal, s.Phase.Kind)
	require.Equal(t, 0, s.ActivePlayer, "the turn holds until the reveal is resolved")

	s = mustApply(t, s, findAction(t, s, byCard(ActionDiscardRevealed, bottom)))
	assert.True(t, s.Phase.Idle())
	assert.Empty(t, s.PendingSeven)
	assert.Equal(t, 1, s.ActivePlayer)
	assert.Contains(t, s.Fields[0], top)
	assert.Contains(t, s.Discard, bottom)
}

func TestKingLowersTargetAndWins(t *testing.T) {
	b := newStateBuilder(t)
	b.face(0, SuitClubs, RankKing)
	ten := b.hand(0, SuitSpades, RankTen)
	b.points(0, SuitHearts, RankFour)
	s := b.state()

	require.Equal(t, 14, s.TargetScore(0))

	next := mustApply(t, s, findAction(t, s, byCard(ActionPoints, ten)))
	require.True(t, next.Phase.Terminal())
	assert.Equal(t, 0, next.Phase.Winner)
	assert.False(t, next.Phase.Draw)
	assert.Empty(t, LegalActions(next))
}

func TestJackStealsPointsForController(t *testing.T) {
	b := newStateBuilder(t)
	jack := b.hand(0, SuitClubs, RankJack)
	point := b.points(1, SuitHearts, RankTen)
	s := b.state()

	next := mustApply(t, s, findAction(t, s, byTarget(ActionJack, jack, point)))
	assert.Equal(t, 10, next.Score(0))
	assert.Equal(t, 0, next.Score(1))
	assert.Contains(t, next.Fields[1], point, "the stolen card stays on its owner's field")
}

func TestConcedeEndsGameForOpponent(t *testing.T) {
	b := newStateBuilder(t)
	b.hand(0, SuitClubs, RankFive)
	s := b.state()

	next := mustApply(t, s, findAction(t, s, byType(ActionConcede)))
	require.True(t, next.Phase.Terminal())
	assert.Equal(t, 1, next.Phase.Winner)
}

func TestThreeConsecutivePassesDraw(t *testing.T) {
	b := newStateBuilder(t)
	s := b.state()

	s = mustApply(t, s, findAction(t, s, byType(ActionPass)))
	require.False(t, s.Phase.Terminal())
	s = mustApply(t, s, findAction(t, s, byType(ActionPass)))
	require.False(t, s.Phase.Terminal())
	s = mustApply(t, s, findAction(t, s, byType(ActionPass)))
	require.True(t, s.Phase.Terminal())
	assert.True(t, s.Phase.Draw)
	assert.Equal(t, NoPlayer, s.Phase.Winner)
}

func TestAcceptedStalemateIsADraw(t *testing.T) {
	b := newStateBuilder(t)
	b.hand(0, SuitClubs, RankFive)
	s := b.state()

	s = mustApply(t, s, findAction(t, s, byType(ActionRequestStalemate)))
	next := mustApply(t, s, findAction(t, s, byType(ActionAcceptStalemate)))
	require.True(t, next.Phase.Terminal())
	assert.True(t, next.Phase.Draw)
}

// TestRandomPlaythroughInvariants drives full games with random legal
// actions and checks the structural invariants after every step.
func TestRandomPlaythroughInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s := NewGame(NewShuffledDeck(rng))

		for step := 0; step < 600 && !s.Phase.Terminal(); step++ {
			actions := LegalActions(s)
			require.NotEmpty(t, actions, "seed %d step %d: no legal actions in a live game", seed, step)

			// Skip concessions and stalemate offers unless forced, so
			// games actually play out.
			playable := actions[:0:0]
			for _, action := range actions {
				if action.Type == ActionConcede || action.Type == ActionRequestStalemate {
					continue
				}
				playable = append(playable, action)
			}
			if len(playable) == 0 {
				playable = actions
			}

			next, eff, err := Apply(s, playable[rng.Intn(len(playable))])
			require.NoError(t, err, "seed %d step %d", seed, step)
			require.NotNil(t, eff)
			require.NotEmpty(t, eff.Description)
			require.Equal(t, DeckSize, next.CardCount(), "seed %d step %d: card count drifted", seed, step)
			s = next
		}
	}
}
