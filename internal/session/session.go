package session

import (
	"errors"
	"sync"
	"time"

	"github.com/cuttlegame/cuttle-server-go/internal/ai"
	"github.com/cuttlegame/cuttle-server-go/internal/game"
)

// ErrConflict rejects an action computed against a stale state version.
// The caller should refetch state and legal actions, then retry.
var ErrConflict = errors.New("state version conflict")

// ErrNotFound reports an unknown session id.
var ErrNotFound = errors.New("session not found")

// ErrSessionLimit rejects creation once the configured cap is reached.
var ErrSessionLimit = errors.New("session limit reached")

// HistoryEntry is one applied action's effect, tagged with the version
// it produced.
type HistoryEntry struct {
	Version int         `json:"version"`
	Effect  game.Effect `json:"effect"`
	At      time.Time   `json:"at"`
}

// Snapshot is the externally visible session state for one viewer:
// the redacted view, the version to submit against, and the legal
// actions when the viewer is the one to act.
type Snapshot struct {
	SessionID string             `json:"session_id"`
	Version   int                `json:"state_version"`
	View      game.GameStateView `json:"view"`
	Actions   []game.ActionView  `json:"actions,omitempty"`
}

// Session is one live game. All access goes through the mutex: the
// engine is pure, but the session's state/version pair must move
// atomically.
type Session struct {
	ID string

	mu        sync.Mutex
	state     *game.GameState
	version   int
	history   []HistoryEntry
	aiSeat    int
	strategy  string
	chooser   ai.Chooser
	createdAt time.Time
}

// persistedSession is the session-owned JSON stored in a repository
// record's State field.
type persistedSession struct {
	State     *game.GameState `json:"state"`
	AISeat    int             `json:"ai_seat"`
	Strategy  string          `json:"strategy,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// snapshot renders the session for a viewer. Legal actions are
// included only for the acting player: they spell out that player's
// hand. Callers must hold s.mu.
func (s *Session) snapshot(viewer int) *Snapshot {
	snap := &Snapshot{
		SessionID: s.ID,
		Version:   s.version,
		View:      s.state.View(viewer),
	}
	if !s.state.Phase.Terminal() && viewer == s.state.ActingPlayer() {
		snap.Actions = game.ActionViews(s.state)
	}
	return snap
}
