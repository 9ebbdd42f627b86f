package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuttlegame/cuttle-server-go/internal/ai"
	"github.com/cuttlegame/cuttle-server-go/internal/config"
	"github.com/cuttlegame/cuttle-server-go/internal/game"
	"github.com/cuttlegame/cuttle-server-go/internal/repository"
)

// aiTurnLimit bounds the auto-opponent loop within one submission. A
// single AI turn can legitimately chain several actions (counter
// windows, selections), but hundreds means the game is stuck.
const aiTurnLimit = 200

// Manager is the Session Coordinator: it owns the state_version
// compare-and-swap, serializes access per session, runs the configured
// auto-opponent, and persists every applied step.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store       repository.Store
	logger      *zap.Logger
	game        config.GameConfig
	maxSessions int
	recorder    *game.ReplayRecorder
}

func NewManager(cfg config.GameConfig, maxSessions int, store repository.Store, logger *zap.Logger) *Manager {
	m := &Manager{
		sessions:    make(map[string]*Session),
		store:       store,
		logger:      logger,
		game:        cfg,
		maxSessions: maxSessions,
	}
	if cfg.RecordReplays {
		m.recorder = game.NewReplayRecorder(cfg.ReplayDir, logger)
	}
	return m
}

// CreateOptions override the configured game defaults per session.
type CreateOptions struct {
	// Seed pins the shuffle; 0 falls back to the configured seed, and
	// 0 there shuffles randomly.
	Seed int64 `json:"seed,omitempty"`
	// VsAI seats the configured chooser as player 1. Nil uses the
	// configured default.
	VsAI *bool `json:"vs_ai,omitempty"`
	// Strategy picks the chooser; empty uses the configured default.
	Strategy string `json:"strategy,omitempty"`
}

// Create starts a new session. The creator holds seat 0 and always
// acts first.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*Snapshot, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = m.game.Seed
	}
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}

	vsAI := m.game.AutoOpponent
	if opts.VsAI != nil {
		vsAI = *opts.VsAI
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = m.game.OpponentStrategy
	}

	sess := &Session{
		ID:        uuid.NewString(),
		state:     game.NewGame(game.NewShuffledDeck(rng)),
		aiSeat:    game.NoPlayer,
		createdAt: time.Now().UTC(),
	}
	if vsAI {
		chooser, err := ai.New(strategy, seed)
		if err != nil {
			return nil, err
		}
		sess.aiSeat = 1
		sess.strategy = strategy
		sess.chooser = chooser
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, ErrSessionLimit
	}
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.StartRecording(sess.ID, sess.state)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	m.persist(ctx, sess)
	m.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.Bool("vs_ai", vsAI),
		zap.Int64("seed", seed),
	)
	return sess.snapshot(0), nil
}

// Get returns the session snapshot for a viewer, resuming from the
// store if the session is not in memory.
func (m *Manager) Get(ctx context.Context, id string, viewer int) (*Snapshot, error) {
	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(viewer), nil
}

// Actions returns the current legal actions and the version they were
// computed against; a submission must echo that version back.
func (m *Manager) Actions(ctx context.Context, id string) ([]game.ActionView, int, error) {
	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return game.ActionViews(sess.state), sess.version, nil
}

// Submit applies one action under the version CAS, then lets the
// configured chooser play the AI seat until control returns to a human
// or the game ends. The snapshot is rendered for the submitting player.
func (m *Manager) Submit(ctx context.Context, id string, expectedVersion int, action game.Action) (*Snapshot, error) {
	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if expectedVersion != sess.version {
		return nil, fmt.Errorf("%w: expected %d, at %d", ErrConflict, expectedVersion, sess.version)
	}

	if err := m.step(sess, action); err != nil {
		return nil, err
	}
	if err := m.runAutoOpponent(ctx, sess); err != nil {
		return nil, err
	}

	m.persist(ctx, sess)
	return sess.snapshot(action.PlayedBy), nil
}

// SubmitID applies the legal action with the given phase-local id.
// Action ids are indices into the list returned by Actions at the same
// version, which is exactly what the CAS guarantees still holds.
func (m *Manager) SubmitID(ctx context.Context, id string, expectedVersion, actionID int) (*Snapshot, error) {
	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if expectedVersion != sess.version {
		return nil, fmt.Errorf("%w: expected %d, at %d", ErrConflict, expectedVersion, sess.version)
	}
	actions := game.LegalActions(sess.state)
	if actionID < 0 || actionID >= len(actions) {
		return nil, fmt.Errorf("%w: action id %d of %d", game.ErrIllegalAction, actionID, len(actions))
	}
	action := actions[actionID]

	if err := m.step(sess, action); err != nil {
		return nil, err
	}
	if err := m.runAutoOpponent(ctx, sess); err != nil {
		return nil, err
	}

	m.persist(ctx, sess)
	return sess.snapshot(action.PlayedBy), nil
}

// step applies one action and records it. Callers hold sess.mu.
func (m *Manager) step(sess *Session, action game.Action) error {
	next, effect, err := game.Apply(sess.state, action)
	if err != nil {
		return err
	}
	sess.state = next
	sess.version++
	sess.history = append(sess.history, HistoryEntry{
		Version: sess.version,
		Effect:  *effect,
		At:      time.Now().UTC(),
	})
	if m.recorder != nil {
		m.recorder.RecordState(sess.ID, sess.state)
		if sess.state.Phase.Terminal() {
			if err := m.recorder.SaveReplay(sess.ID); err != nil {
				m.logger.Warn("save replay", zap.String("session_id", sess.ID), zap.Error(err))
			}
		}
	}
	m.logger.Debug("action applied",
		zap.String("session_id", sess.ID),
		zap.String("action", string(action.Type)),
		zap.Int("player", action.PlayedBy),
		zap.Int("version", sess.version),
	)
	return nil
}

func (m *Manager) runAutoOpponent(ctx context.Context, sess *Session) error {
	if sess.chooser == nil {
		return nil
	}
	for turns := 0; turns < aiTurnLimit; turns++ {
		if sess.state.Phase.Terminal() || sess.state.ActingPlayer() != sess.aiSeat {
			return nil
		}
		actions := game.ActionViews(sess.state)
		choice, err := sess.chooser.Choose(ctx, sess.state.View(sess.aiSeat), actions)
		if err != nil {
			return fmt.Errorf("chooser: %w", err)
		}
		if choice < 0 || choice >= len(actions) {
			return fmt.Errorf("chooser picked action %d of %d", choice, len(actions))
		}
		if err := m.step(sess, actions[choice].Action); err != nil {
			return fmt.Errorf("apply chooser action: %w", err)
		}
	}
	return fmt.Errorf("auto opponent exceeded %d actions in one submission", aiTurnLimit)
}

// History returns the applied-action log.
func (m *Manager) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	sess, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return append([]HistoryEntry(nil), sess.history...), nil
}

// Delete removes the session from memory and the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	_, inMemory := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.ClearReplay(id)
	}

	err := m.store.Delete(ctx, id)
	if err != nil && !inMemory {
		return ErrNotFound
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		m.logger.Warn("delete session from store", zap.String("session_id", id), zap.Error(err))
	}
	return nil
}

// List returns the known session ids, live and stored.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	stored, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(stored))
	for _, id := range stored {
		seen[id] = true
	}
	m.mu.RLock()
	for id := range m.sessions {
		if !seen[id] {
			stored = append(stored, id)
		}
	}
	m.mu.RUnlock()
	return stored, nil
}

// CloseAll persists every live session and drops them from memory,
// used during graceful shutdown.
func (m *Manager) CloseAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		m.persist(ctx, sess)
		sess.mu.Unlock()
	}
	m.logger.Info("all sessions persisted", zap.Int("count", len(sessions)))
}

// lookup finds a live session or resumes one from the store.
func (m *Manager) lookup(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}
	return m.resume(ctx, id)
}

func (m *Manager) resume(ctx context.Context, id string) (*Session, error) {
	record, err := m.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var persisted persistedSession
	if err := json.Unmarshal(record.State, &persisted); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	var history []HistoryEntry
	if len(record.History) > 0 {
		if err := json.Unmarshal(record.History, &history); err != nil {
			return nil, fmt.Errorf("decode session %s history: %w", id, err)
		}
	}
	if checksum := persisted.State.Checksum(); checksum != record.Checksum {
		return nil, fmt.Errorf("session %s state checksum mismatch", id)
	}

	sess := &Session{
		ID:        id,
		state:     persisted.State,
		version:   record.Version,
		history:   history,
		aiSeat:    persisted.AISeat,
		strategy:  persisted.Strategy,
		createdAt: persisted.CreatedAt,
	}
	if sess.aiSeat != game.NoPlayer && persisted.Strategy != "" {
		chooser, err := ai.New(persisted.Strategy, 0)
		if err != nil {
			return nil, err
		}
		sess.chooser = chooser
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	m.sessions[id] = sess
	m.logger.Info("session resumed from store", zap.String("session_id", id), zap.Int("version", sess.version))
	return sess, nil
}

// persist saves the session best-effort: the in-memory session stays
// authoritative and a storage failure must not fail the action that
// already applied. Callers hold sess.mu.
func (m *Manager) persist(ctx context.Context, sess *Session) {
	state, err := json.Marshal(persistedSession{
		State:     sess.state,
		AISeat:    sess.aiSeat,
		Strategy:  sess.strategy,
		CreatedAt: sess.createdAt,
	})
	if err != nil {
		m.logger.Error("marshal session state", zap.String("session_id", sess.ID), zap.Error(err))
		return
	}
	history, err := json.Marshal(sess.history)
	if err != nil {
		m.logger.Error("marshal session history", zap.String("session_id", sess.ID), zap.Error(err))
		return
	}
	record := &repository.Record{
		ID:        sess.ID,
		Version:   sess.version,
		Checksum:  sess.state.Checksum(),
		State:     state,
		History:   history,
		CreatedAt: sess.createdAt,
	}
	if err := m.store.Save(ctx, record); err != nil {
		m.logger.Error("persist session", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

