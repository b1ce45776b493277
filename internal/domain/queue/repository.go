package queue

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Enqueue persists a new entry, assigning TokenNumber and Position inside a single
	// transaction. A priority entry takes position 1 and shifts the rest of the scope
	// down by one. Returns ErrDuplicateActiveEntry if the patient already has a
	// non-terminal entry for the same doctor.
	Enqueue(ctx context.Context, e *QueueEntry) error

	// GetByID retrieves an entry by primary key. Returns ErrEntryNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*QueueEntry, error)

	// UpdateStatus persists a status change, guarded by the status the caller validated
	// against: the write applies only while the stored status still equals from. A
	// transition losing that race is reported as ErrEntryTerminal or
	// ErrInvalidTransition depending on what the entry has meanwhile become. Position
	// and TokenNumber are untouched.
	UpdateStatus(ctx context.Context, e *QueueEntry, from Status) error

	// Reorder atomically rewrites Position for every entry in the scope. The id list
	// must be exactly the set of non-terminal entries currently in the scope; otherwise
	// ErrScopeMismatch is returned and nothing is written.
	Reorder(ctx context.Context, scope Scope, orderedIDs []uuid.UUID) error

	// List returns entries matching the query ordered by Position.
	List(ctx context.Context, q *ListQuery) ([]*QueueEntry, error)

	// CountActive reports the number of non-terminal entries in the scope.
	CountActive(ctx context.Context, scope Scope) (int, error)
}
