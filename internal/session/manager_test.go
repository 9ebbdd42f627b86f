package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cuttlegame/cuttle-server-go/internal/config"
	"github.com/cuttlegame/cuttle-server-go/internal/game"
	"github.com/cuttlegame/cuttle-server-go/internal/repository"
)

func newTestManager(t *testing.T, cfg config.GameConfig) (*Manager, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewManager(cfg, 0, store, zaptest.NewLogger(t)), store
}

func humanVsHuman() config.GameConfig {
	return config.GameConfig{Seed: 42, AutoOpponent: false, OpponentStrategy: "random"}
}

func humanVsAI() config.GameConfig {
	return config.GameConfig{Seed: 42, AutoOpponent: true, OpponentStrategy: "random"}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, humanVsHuman())

	snap, err := mgr.Create(ctx, CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Version)
	assert.NotEmpty(t, snap.SessionID)
	assert.NotEmpty(t, snap.Actions, "creator acts first")
	assert.Equal(t, game.FirstPlayerDeal, len(snap.View.Players[0].Hand))
	assert.Nil(t, snap.View.Players[1].Hand)

	fetched, err := mgr.Get(ctx, snap.SessionID, 1)
	require.NoError(t, err)
	assert.Empty(t, fetched.Actions, "non-acting viewer gets no action list")

	_, err = mgr.Get(ctx, "no-such-session", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitBumpsVersionByOne(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, humanVsHuman())

	snap, err := mgr.Create(ctx, CreateOptions{})
	require.NoError(t, err)

	actions, version, err := mgr.Actions(ctx, snap.SessionID)
	require.NoError(t, err)
	require.Equal(t, 0, version)

	next, err := mgr.Submit(ctx, snap.SessionID, version, actions[0].Action)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Version)

	history, err := mgr.History(ctx, snap.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].Version)
	assert.NotEmpty(t, history[0].Effect.Description)
}

func TestStaleVersionConflictLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, humanVsHuman())

	snap, err := mgr.Create(ctx, CreateOptions{})
	require.NoError(t, err)

	actions, version, err := mgr.Actions(ctx, snap.SessionID)
	require.NoError(t, err)

	// Session moves to version N+1.
	moved, err := mgr.Submit(ctx, snap.SessionID, version, actions[0].Action)
	require.NoError(t, err)
	checksum := moved.View.Checksum

	// A second action still naming version N must conflict and change
	// nothing.
	_, err = mgr.Submit(ctx, snap.SessionID, version, actions[0].Action)
	require.ErrorIs(t, err, ErrConflict)

	current, err := mgr.Get(ctx, snap.SessionID, 0)
	require.NoError(t, err)
	assert.Equal(t, moved.Version, current.Version)
	assert.Equal(t, checksum, current.View.Checksum)
}

func TestIllegalActionDoesNotBumpVersion(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, humanVsHuman())

	snap, err := mgr.Create(ctx, CreateOptions{})
	require.NoError(t, err)

	_, err = mgr.Submit(ctx, snap.SessionID, 0, game.Action{Type: game.ActionDraw, PlayedBy: 1, Source: game.SourceDeck})
	require.ErrorIs(t, err, game.ErrIllegalAction)

	current, err := mgr.Get(ctx, snap.SessionID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, current.Version)
}

func TestAutoOpponentPlaysUntilControlReturns(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, humanVsAI())

	snap, err := mgr.Create(ctx, CreateOptions{})
	require.NoError(t, err)

	actions, version, err := mgr.Actions(ctx, snap.SessionID)
	require.NoError(t, err)

	next, err := mgr.Submit(ctx, snap.SessionID, version, actions[0].Action)
	require.NoError(t, err)

	// After the human action the AI seat plays itself out: either the
	// game ended or a human (seat 0) is back in control.
	if !next.View.GameOver {
		assert.Equal(t, 0, next.View.ActingPlayer)
		assert.GreaterOrEqual(t, next.Version, 2, "the AI applied at least one action")
	}

	history, err := mgr.History(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(history), 2)
}

func TestResumeFromStore(t *testing.T) {
	ctx := context.Background()
	cfg := humanVsHuman()
	store := repository.NewMemoryStore()

	mgr := NewManager(cfg, 0, store, zaptest.NewLogger(t))
	snap, err := mgr.Create(ctx, CreateOptions{})
	require.NoError(t, err)

	actions, version, err := mgr.Actions(ctx, snap.SessionID)
	require.NoError(t, err)
	moved, err := mgr.Submit(ctx, snap.SessionID, version, actions[0].Action)
	require.NoError(t, err)
	mgr.CloseAll()

	// A fresh manager over the same store picks the session back up.
	resumed := NewManager(cfg, 0, store, zaptest.NewLogger(t))
	fetched, err := resumed.Get(ctx, snap.SessionID, 0)
	require.NoError(t, err)
	assert.Equal(t, moved.Version, fetched.Version)
	assert.Equal(t, moved.View.Checksum, fetched.View.Checksum)

	history, err := resumed.History(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, humanVsHuman())

	snap, err := mgr.Create(ctx, CreateOptions{})
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, snap.SessionID))
	_, err = mgr.Get(ctx, snap.SessionID, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, mgr.Delete(ctx, snap.SessionID), ErrNotFound)
}

func TestSessionLimit(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	mgr := NewManager(humanVsHuman(), 1, store, zaptest.NewLogger(t))

	_, err := mgr.Create(ctx, CreateOptions{})
	require.NoError(t, err)
	_, err = mgr.Create(ctx, CreateOptions{})
	assert.ErrorIs(t, err, ErrSessionLimit)
}

func TestSeededSessionsReproduce(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, humanVsHuman())

	first, err := mgr.Create(ctx, CreateOptions{Seed: 99})
	require.NoError(t, err)
	second, err := mgr.Create(ctx, CreateOptions{Seed: 99})
	require.NoError(t, err)

	names := func(cards []game.CardView) []string {
		out := make([]string, len(cards))
		for i, card := range cards {
			out[i] = card.Name
		}
		return out
	}
	assert.Equal(t, names(first.View.Players[0].Hand), names(second.View.Players[0].Hand))
}

func TestFinishedGameWritesReplay(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := humanVsHuman()
	cfg.RecordReplays = true
	cfg.ReplayDir = dir
	mgr, _ := newTestManager(t, cfg)

	snap, err := mgr.Create(ctx, CreateOptions{})
	require.NoError(t, err)

	concede := -1
	for _, action := range snap.Actions {
		if action.Type == game.ActionConcede {
			concede = action.ID
		}
	}
	require.GreaterOrEqual(t, concede, 0, "concede is always offered in the idle phase")

	final, err := mgr.SubmitID(ctx, snap.SessionID, snap.Version, concede)
	require.NoError(t, err)
	require.True(t, final.View.GameOver)

	replay, err := game.LoadReplayFromFile(dir, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, replay.Size(), "the deal plus the concede")
	assert.Equal(t, final.View.Checksum, replay.StateAt(1).Checksum())
}
