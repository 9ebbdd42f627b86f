package ai

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/cuttlegame/cuttle-server-go/internal/game"
)

// Random plays a uniformly random non-conceding action.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Choose(_ context.Context, _ game.GameStateView, actions []game.ActionView) (int, error) {
	if len(actions) == 0 {
		return 0, ErrNoActions
	}
	candidates := preferred(actions)
	r.mu.Lock()
	pick := candidates[r.rng.Intn(len(candidates))]
	r.mu.Unlock()
	return pick.ID, nil
}
