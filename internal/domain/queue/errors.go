package queue

import "errors"

var (
	ErrEntryNotFound        = errors.New("queue entry not found")
	ErrEntryTerminal        = errors.New("queue entry is in a terminal state")
	ErrInvalidTransition    = errors.New("invalid queue status transition")
	ErrInvalidStatus        = errors.New("invalid queue status value")
	ErrDuplicateActiveEntry = errors.New("patient already has an active queue entry for this doctor")
	ErrScopeMismatch        = errors.New("reorder batch does not match the current queue scope")
)
