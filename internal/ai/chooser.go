package ai

import (
	"context"
	"errors"

	"github.com/cuttlegame/cuttle-server-go/internal/game"
)

// Chooser picks one action from the current legal list. It receives the
// state as the acting player sees it and returns the chosen action's
// phase-local id (its index in the list). LLM- or RL-backed policies
// implement this interface externally; the package ships two baselines.
type Chooser interface {
	Choose(ctx context.Context, view game.GameStateView, actions []game.ActionView) (int, error)
}

// ErrNoActions is returned when a chooser is invoked with an empty
// legal list, which only happens on a finished game.
var ErrNoActions = errors.New("no legal actions to choose from")

// New builds a baseline chooser by strategy name. Seed pins the
// chooser's randomness; 0 seeds from the clock.
func New(strategy string, seed int64) (Chooser, error) {
	switch strategy {
	case "random":
		return NewRandom(seed), nil
	case "greedy":
		return NewGreedy(seed), nil
	default:
		return nil, errors.New("unknown chooser strategy " + strategy)
	}
}

// preferred filters out concessions and stalemate offers so baseline
// choosers actually play; they remain selectable only when forced.
func preferred(actions []game.ActionView) []game.ActionView {
	kept := make([]game.ActionView, 0, len(actions))
	for _, action := range actions {
		if action.Type == game.ActionConcede || action.Type == game.ActionRequestStalemate {
			continue
		}
		kept = append(kept, action)
	}
	if len(kept) == 0 {
		return actions
	}
	return kept
}
