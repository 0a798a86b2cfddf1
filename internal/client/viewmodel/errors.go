package viewmodel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIndexOutOfRange = errors.New("note index out of range")
	ErrEmptyName       = errors.New("note name is empty")
	ErrNotLoaded       = errors.New("notes are not loaded")
	ErrSignedOut       = errors.New("not signed in")
)

// ErrorPolicy decides what happens to the failure of an optimistic
// mutation. Local state is never rolled back under either policy.
type ErrorPolicy int

const (
	// PolicyLog writes every failed create or delete to the log.
	PolicyLog ErrorPolicy = iota
	// PolicySilent drops failures; only the hook sees them.
	PolicySilent
)

func (p ErrorPolicy) String() string {
	if p == PolicySilent {
		return "silent"
	}
	return "log"
}

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "log":
		return PolicyLog, nil
	case "silent":
		return PolicySilent, nil
	default:
		return PolicyLog, fmt.Errorf("unknown mutation error policy %q", s)
	}
}

// MutationError describes a remote call that failed after the local state
// had already been updated.
type MutationError struct {
	Op     string
	NoteID string
	Err    error
}

func (e MutationError) Error() string {
	return fmt.Sprintf("%s note %s: %v", e.Op, e.NoteID, e.Err)
}

func (e MutationError) Unwrap() error { return e.Err }
