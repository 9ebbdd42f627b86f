package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameDeal(t *testing.T) {
	s := NewGame(NewDeck())
	assert.Len(t, s.Hands[0], FirstPlayerDeal)
	assert.Len(t, s.Hands[1], DealerDeal)
	assert.Len(t, s.Deck, DeckSize-FirstPlayerDeal-DealerDeal)
	assert.Equal(t, DeckSize, s.CardCount())
	assert.Equal(t, 0, s.ActivePlayer)
	assert.True(t, s.Phase.Idle())
}

func TestSeededDecksReproduce(t *testing.T) {
	suitsAndRanks := func(cards []*Card) []string {
		out := make([]string, len(cards))
		for i, card := range cards {
			out[i] = card.String()
		}
		return out
	}
	first := NewShuffledDeck(rand.New(rand.NewSource(42)))
	second := NewShuffledDeck(rand.New(rand.NewSource(42)))
	third := NewShuffledDeck(rand.New(rand.NewSource(43)))
	assert.Equal(t, suitsAndRanks(first), suitsAndRanks(second))
	assert.NotEqual(t, suitsAndRanks(first), suitsAndRanks(third))
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewGame(NewDeck())
	clone := s.Clone()
	require.Equal(t, s.Checksum(), clone.Checksum())

	clone.Hands[0] = clone.Hands[0][:len(clone.Hands[0])-1]
	clone.card(s.Hands[1][0]).Purpose = PurposePoints
	clone.ReplayLocks["x"] = 3

	assert.Len(t, s.Hands[0], FirstPlayerDeal)
	assert.Equal(t, PurposeNone, s.card(s.Hands[1][0]).Purpose)
	assert.Empty(t, s.ReplayLocks)
	assert.NotEqual(t, s.Checksum(), clone.Checksum())
}

func TestChecksumIgnoresHandOrder(t *testing.T) {
	s := NewGame(NewDeck())
	shuffled := s.Clone()
	hand := shuffled.Hands[0]
	hand[0], hand[len(hand)-1] = hand[len(hand)-1], hand[0]
	assert.Equal(t, s.Checksum(), shuffled.Checksum())
}

func TestViewRedactsOpponentHand(t *testing.T) {
	b := newStateBuilder(t)
	b.hand(0, SuitClubs, RankFive)
	b.hand(1, SuitHearts, RankKing)
	b.hand(1, SuitHearts, RankTwo)
	s := b.state()

	view := s.View(0)
	assert.Len(t, view.Players[0].Hand, 1)
	assert.Nil(t, view.Players[1].Hand)
	assert.Equal(t, 2, view.Players[1].HandSize)

	t.Run("glasses Eight exposes the opponent", func(t *testing.T) {
		b.face(0, SuitSpades, RankEight)
		view := s.View(0)
		assert.Len(t, view.Players[1].Hand, 2)

		// Visibility is one-way: player 1 still sees nothing.
		assert.Nil(t, s.View(1).Players[0].Hand)
	})
}

func TestViewExpandsAttachments(t *testing.T) {
	b := newStateBuilder(t)
	host := b.points(1, SuitHearts, RankTen)
	b.jackOn(0, SuitClubs, host)
	s := b.state()

	view := s.View(1)
	require.Len(t, view.Players[1].Field, 1)
	fieldCard := view.Players[1].Field[0]
	require.Len(t, fieldCard.Attachments, 1)
	assert.Equal(t, 0, fieldCard.Controller)
	assert.Equal(t, 10, view.Players[0].Score)
}

func TestActionViewsCarryLabels(t *testing.T) {
	b := newStateBuilder(t)
	b.hand(0, SuitClubs, RankFive)
	s := b.state()

	views := ActionViews(s)
	require.NotEmpty(t, views)
	for _, view := range views {
		assert.NotEmpty(t, view.Label)
	}
}
