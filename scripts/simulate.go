package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/cuttlegame/cuttle-server-go/internal/ai"
	"github.com/cuttlegame/cuttle-server-go/internal/game"
)

// Plays chooser-vs-chooser games and prints the outcome tally. Useful
// for eyeballing strategy strength and for soaking the engine with
// long random games.
func main() {
	games := flag.Int("games", 100, "number of games to play")
	seed := flag.Int64("seed", 1, "base seed; game i uses seed+i")
	p0 := flag.String("p0", "greedy", "strategy for seat 0 (random or greedy)")
	p1 := flag.String("p1", "random", "strategy for seat 1 (random or greedy)")
	replayDir := flag.String("replays", "", "directory to save replays to (empty disables)")
	maxSteps := flag.Int("max-steps", 2000, "abort a game after this many actions")
	flag.Parse()

	ctx := context.Background()
	wins := [2]int{}
	draws, aborted := 0, 0

	for i := 0; i < *games; i++ {
		gameSeed := *seed + int64(i)
		result, err := playOne(ctx, gameSeed, *p0, *p1, *replayDir, *maxSteps)
		if err != nil {
			log.Fatalf("game %d (seed %d): %v", i, gameSeed, err)
		}
		switch result {
		case 0, 1:
			wins[result]++
		case -1:
			draws++
		default:
			aborted++
		}
	}

	fmt.Printf("games=%d  p0(%s)=%d  p1(%s)=%d  draws=%d  aborted=%d\n",
		*games, *p0, wins[0], *p1, wins[1], draws, aborted)
}

// playOne runs a single game and returns the winning seat, -1 for a
// draw, or -2 when the step cap was hit.
func playOne(ctx context.Context, seed int64, p0, p1, replayDir string, maxSteps int) (int, error) {
	choosers := [2]ai.Chooser{}
	for seat, strategy := range []string{p0, p1} {
		chooser, err := ai.New(strategy, seed+int64(seat))
		if err != nil {
			return 0, err
		}
		choosers[seat] = chooser
	}

	state := game.NewGame(game.NewShuffledDeck(rand.New(rand.NewSource(seed))))
	var replay *game.Replay
	if replayDir != "" {
		replay = game.NewReplay(fmt.Sprintf("sim-%d", seed))
		replay.RecordState(state)
	}

	for step := 0; step < maxSteps; step++ {
		if state.Phase.Terminal() {
			if replay != nil {
				if err := replay.SaveToFile(replayDir); err != nil {
					return 0, err
				}
			}
			return state.Phase.Winner, nil
		}

		seat := state.ActingPlayer()
		actions := game.ActionViews(state)
		choice, err := choosers[seat].Choose(ctx, state.View(seat), actions)
		if err != nil {
			return 0, fmt.Errorf("step %d: %w", step, err)
		}
		next, _, err := game.Apply(state, actions[choice].Action)
		if err != nil {
			return 0, fmt.Errorf("step %d: %w", step, err)
		}
		state = next
		if replay != nil {
			replay.RecordState(state)
		}
	}
	return -2, nil
}
