package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Replay is a recorded game: the full state after the deal and after
// every applied action, in order. States are stored unredacted, so a
// replay file reveals both hands.
type Replay struct {
	SessionID    string
	States       []*GameState
	CurrentIndex int
	mu           sync.RWMutex
}

func NewReplay(sessionID string) *Replay {
	return &Replay{SessionID: sessionID}
}

// RecordState appends a snapshot. The caller keeps ownership of the
// state; a clone is stored.
func (r *Replay) RecordState(state *GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.States = append(r.States, state.Clone())
}

// Start resets playback to the deal.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the state at the cursor and advances it, or nil past
// the end.
func (r *Replay) Next() *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.States) {
		state := r.States[r.CurrentIndex]
		r.CurrentIndex++
		return state
	}
	return nil
}

// Previous steps the cursor back and returns that state, or nil at
// the start.
func (r *Replay) Previous() *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.States[r.CurrentIndex]
	}
	return nil
}

// Skip moves the cursor by count (may be negative), clamped to the
// recorded range, and returns the state there.
func (r *Replay) Skip(count int) *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()

	newIndex := r.CurrentIndex + count
	if newIndex >= len(r.States) {
		newIndex = len(r.States) - 1
	}
	if newIndex < 0 {
		newIndex = 0
	}

	r.CurrentIndex = newIndex
	if r.CurrentIndex < len(r.States) {
		return r.States[r.CurrentIndex]
	}
	return nil
}

// Size returns the number of recorded states.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.States)
}

// StateAt returns the state at index, or nil when out of range.
func (r *Replay) StateAt(index int) *GameState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.States) {
		return r.States[index]
	}
	return nil
}

// replayMetadata heads every replay file.
type replayMetadata struct {
	SessionID     string
	Timestamp     time.Time
	Version       int
	StateCount    int
	FinalChecksum string
}

// SaveToFile writes the replay as a gzipped gob stream named
// <session id>.replay under directory.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", r.SessionID))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := gob.NewEncoder(gzipWriter)

	metadata := replayMetadata{
		SessionID:  r.SessionID,
		Timestamp:  time.Now(),
		Version:    1,
		StateCount: len(r.States),
	}
	if len(r.States) > 0 {
		metadata.FinalChecksum = r.States[len(r.States)-1].Checksum()
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	for i, state := range r.States {
		if err := encoder.Encode(state); err != nil {
			return fmt.Errorf("failed to encode state %d: %w", i, err)
		}
	}

	return nil
}

// LoadReplayFromFile reads a replay saved by SaveToFile and verifies
// the final state against the recorded checksum.
func LoadReplayFromFile(directory, sessionID string) (*Replay, error) {
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", sessionID))

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != 1 {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.SessionID)
	for i := 0; i < metadata.StateCount; i++ {
		var state GameState
		if err := decoder.Decode(&state); err != nil {
			return nil, fmt.Errorf("failed to decode state %d: %w", i, err)
		}
		replay.States = append(replay.States, &state)
	}

	if len(replay.States) > 0 {
		last := replay.States[len(replay.States)-1]
		if got := last.Checksum(); got != metadata.FinalChecksum {
			return nil, fmt.Errorf("replay checksum mismatch: got %s, want %s", got, metadata.FinalChecksum)
		}
	}

	return replay, nil
}

// ReplayRecorder tracks in-progress replays by session id and saves
// them to disk when a session ends.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	saveDir string
}

func NewReplayRecorder(saveDir string, logger *zap.Logger) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		saveDir: saveDir,
	}
}

// StartRecording begins a replay for the session, seeded with the
// state after the deal.
func (rr *ReplayRecorder) StartRecording(sessionID string, initial *GameState) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	replay := NewReplay(sessionID)
	replay.RecordState(initial)
	rr.replays[sessionID] = replay
}

// RecordState appends a snapshot for the session, if it is being
// recorded.
func (rr *ReplayRecorder) RecordState(sessionID string, state *GameState) {
	rr.mu.RLock()
	replay := rr.replays[sessionID]
	rr.mu.RUnlock()

	if replay == nil {
		return
	}
	replay.RecordState(state)
}

// Replay returns the in-memory replay for a session.
func (rr *ReplayRecorder) Replay(sessionID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, ok := rr.replays[sessionID]
	return replay, ok
}

// SaveReplay flushes the session's replay to disk and drops it from
// memory.
func (rr *ReplayRecorder) SaveReplay(sessionID string) error {
	rr.mu.Lock()
	replay, ok := rr.replays[sessionID]
	delete(rr.replays, sessionID)
	rr.mu.Unlock()

	if !ok {
		return fmt.Errorf("no replay found for session %s", sessionID)
	}
	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}

	rr.logger.Info("saved replay to disk",
		zap.String("session_id", sessionID),
		zap.Int("state_count", replay.Size()),
		zap.String("directory", rr.saveDir),
	)
	return nil
}

// ClearReplay drops a session's replay without saving it.
func (rr *ReplayRecorder) ClearReplay(sessionID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, sessionID)
}
