package game

import "errors"

// ErrIllegalAction rejects an action that is not in the current legal
// set: a stale id, wrong phase, ownership mismatch or bad target.
var ErrIllegalAction = errors.New("action is not legal in the current state")

// ErrMalformedAction rejects an action missing the card or target its
// type requires. Checked before legality so the caller can tell a bad
// request from a stale one.
var ErrMalformedAction = errors.New("action is missing a required card or target")
