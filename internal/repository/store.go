package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound reports a session id with no stored record.
var ErrNotFound = errors.New("session record not found")

// Record is the persisted snapshot of one session: the serialized game
// state plus the optimistic-concurrency version and integrity checksum.
// State and History are opaque JSON owned by the session layer.
type Record struct {
	ID        string          `json:"id"`
	Version   int             `json:"version"`
	Checksum  string          `json:"checksum"`
	State     json.RawMessage `json:"state"`
	History   json.RawMessage `json:"history"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store persists session records. Implementations must be safe for
// concurrent use; the session layer serializes writes per session but
// different sessions save in parallel.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Load(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	Close()
}

func cloneRecord(record *Record) *Record {
	copied := *record
	copied.State = append(json.RawMessage(nil), record.State...)
	copied.History = append(json.RawMessage(nil), record.History...)
	return &copied
}
