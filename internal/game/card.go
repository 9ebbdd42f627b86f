package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// NoPlayer marks a card that is not currently in play.
const NoPlayer = -1

// Suit identifies a card suit. The numeric order is the scuttle
// tie-break order: Clubs < Diamonds < Hearts < Spades.
type Suit int

const (
	SuitClubs Suit = iota
	SuitDiamonds
	SuitHearts
	SuitSpades
)

var suitNames = map[Suit]string{
	SuitClubs:    "Clubs",
	SuitDiamonds: "Diamonds",
	SuitHearts:   "Hearts",
	SuitSpades:   "Spades",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SUIT_%d", int(s))
}

// Rank identifies a card rank. The numeric value of Ace through Ten is
// also the card's point value when played for points.
type Rank int

const (
	RankAce Rank = iota + 1
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
)

var rankNames = map[Rank]string{
	RankAce:   "Ace",
	RankTwo:   "Two",
	RankThree: "Three",
	RankFour:  "Four",
	RankFive:  "Five",
	RankSix:   "Six",
	RankSeven: "Seven",
	RankEight: "Eight",
	RankNine:  "Nine",
	RankTen:   "Ten",
	RankJack:  "Jack",
	RankQueen: "Queen",
	RankKing:  "King",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RANK_%d", int(r))
}

// Purpose records how a card currently in play is being used.
type Purpose string

const (
	PurposeNone     Purpose = ""
	PurposePoints   Purpose = "POINTS"
	PurposeFaceCard Purpose = "FACE_CARD"
	PurposeJack     Purpose = "JACK"
	PurposeOneOff   Purpose = "ONE_OFF"
	PurposeCounter  Purpose = "COUNTER"
)

// Card is a single card in the arena. Suit, Rank and ID are fixed at
// deck construction; PlayedBy, Purpose and Attachments describe its
// in-play decoration and are cleared whenever the card leaves the field.
// Attachments holds the ids of Jacks attached to a point card, in the
// order they were played.
type Card struct {
	ID          string   `json:"id"`
	Suit        Suit     `json:"suit"`
	Rank        Rank     `json:"rank"`
	PlayedBy    int      `json:"played_by"`
	Purpose     Purpose  `json:"purpose,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

func (c *Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// PointValue returns the card's value toward a player's score. Royals
// carry no point value.
func (c *Card) PointValue() int {
	if c.Rank > RankTen {
		return 0
	}
	return int(c.Rank)
}

// SuitValue returns the suit's position in the scuttle tie-break order.
func (c *Card) SuitValue() int {
	return int(c.Suit)
}

// IsPointCard reports whether the card can be played for points
// (Ace through Ten).
func (c *Card) IsPointCard() bool {
	return c.Rank <= RankTen
}

// IsRoyal reports whether the card is a Jack, Queen or King.
func (c *Card) IsRoyal() bool {
	return c.Rank >= RankJack
}

// IsOneOff reports whether the card has a one-off effect. Every rank
// from Ace to Ten except the Eight: the Eight's alternate use is the
// persistent glasses effect instead.
func (c *Card) IsOneOff() bool {
	return c.Rank <= RankTen && c.Rank != RankEight
}

// IsStolen reports whether control of the card currently lies with the
// opponent of the player who played it. Each attached Jack flips
// control, so an odd attachment count means stolen.
func (c *Card) IsStolen() bool {
	return len(c.Attachments)%2 == 1
}

// Controller returns the player whose score the card currently counts
// toward.
func (c *Card) Controller() int {
	if c.PlayedBy == NoPlayer {
		return NoPlayer
	}
	return (c.PlayedBy + len(c.Attachments)) % 2
}

// clearPlayInfo resets the in-play decoration when the card leaves the
// field or hand for the discard pile.
func (c *Card) clearPlayInfo() {
	c.PlayedBy = NoPlayer
	c.Purpose = PurposeNone
	c.Attachments = nil
}

// NewDeck builds the 52-card deck in suit-then-rank order, assigning
// each card a fresh stable id.
func NewDeck() []*Card {
	cards := make([]*Card, 0, 52)
	for suit := SuitClubs; suit <= SuitSpades; suit++ {
		for rank := RankAce; rank <= RankKing; rank++ {
			cards = append(cards, &Card{
				ID:       uuid.NewString(),
				Suit:     suit,
				Rank:     rank,
				PlayedBy: NoPlayer,
			})
		}
	}
	return cards
}

// NewShuffledDeck builds a deck and shuffles it with the provided
// source. A nil rng shuffles with the global source.
func NewShuffledDeck(rng *rand.Rand) []*Card {
	cards := NewDeck()
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}
