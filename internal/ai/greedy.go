package ai

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/cuttlegame/cuttle-server-go/internal/game"
)

// Greedy plays the highest-scoring action under a fixed point-centric
// heuristic: take points, steal big cards, counter everything, discard
// cheap. Ties break randomly so repeated games diverge.
type Greedy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGreedy(seed int64) *Greedy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Greedy{rng: rand.New(rand.NewSource(seed))}
}

func (g *Greedy) Choose(_ context.Context, view game.GameStateView, actions []game.ActionView) (int, error) {
	if len(actions) == 0 {
		return 0, ErrNoActions
	}
	cards := indexCards(view)
	candidates := preferred(actions)

	best := candidates[0]
	bestScore := score(best, cards)
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, action := range candidates[1:] {
		s := score(action, cards)
		if s > bestScore || (s == bestScore && g.rng.Intn(2) == 0) {
			best, bestScore = action, s
		}
	}
	return best.ID, nil
}

// indexCards flattens every card visible in the view by id.
func indexCards(view game.GameStateView) map[string]game.CardView {
	cards := make(map[string]game.CardView)
	var walk func([]game.CardView)
	walk = func(views []game.CardView) {
		for _, card := range views {
			cards[card.ID] = card
			walk(card.Attachments)
		}
	}
	for _, player := range view.Players {
		walk(player.Hand)
		walk(player.Field)
	}
	walk(view.Discard)
	walk(view.PendingSeven)
	return cards
}

func pointValue(cards map[string]game.CardView, id string) int {
	if card, ok := cards[id]; ok {
		return card.PointValue
	}
	return 0
}

func score(action game.ActionView, cards map[string]game.CardView) int {
	switch action.Type {
	case game.ActionCounter:
		return 600
	case game.ActionPoints:
		return 500 + 10*pointValue(cards, action.CardID)
	case game.ActionJack:
		return 450 + 10*pointValue(cards, action.TargetID)
	case game.ActionScuttle:
		return 400 + 10*pointValue(cards, action.TargetID)
	case game.ActionFaceCard:
		return 350
	case game.ActionSelectFromDiscard:
		return 300 + 10*pointValue(cards, action.CardID)
	case game.ActionDiscardFromHand:
		// Give up the cheapest card.
		return 300 - 10*pointValue(cards, action.CardID)
	case game.ActionOneOff:
		return 250 + 10*pointValue(cards, action.TargetID)
	case game.ActionDraw:
		return 150
	case game.ActionRejectStalemate:
		return 120
	case game.ActionResolve:
		return 100
	case game.ActionDiscardRevealed:
		return 50
	case game.ActionAcceptStalemate:
		return 20
	default:
		return 0
	}
}
