package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/queue"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var terminalStatuses = []queue.Status{queue.StatusCompleted, queue.StatusCancelled}

type QueueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// lockScope serializes all mutations of one (doctor, day) line for the duration of the
// transaction. Two concurrent enqueues or reorder batches on the same scope are forced
// to run one after the other, so the position permutation can never interleave.
func lockScope(tx *gorm.DB, scope queue.Scope) error {
	key := scope.DoctorID.String() + ":" + scope.Date.Format("2006-01-02")
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

func (r *QueueRepository) Enqueue(ctx context.Context, e *queue.QueueEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := queue.Scope{DoctorID: e.DoctorID, Date: e.QueueDate}
		if err := lockScope(tx, scope); err != nil {
			return fmt.Errorf("locking queue scope: %w", err)
		}

		var activeCount int64
		if err := tx.Model(&queue.QueueEntry{}).
			Where("patient_id = ? AND doctor_id = ? AND queue_date = ? AND status NOT IN ?",
				e.PatientID, e.DoctorID, e.QueueDate, terminalStatuses).
			Count(&activeCount).Error; err != nil {
			return fmt.Errorf("checking active entry: %w", err)
		}
		if activeCount > 0 {
			return queue.ErrDuplicateActiveEntry
		}

		// Token numbers count every entry of the day, terminal included, so a number
		// is never reissued after a cancellation.
		var maxToken int
		if err := tx.Model(&queue.QueueEntry{}).
			Select("COALESCE(MAX(token_number), 0)").
			Where("doctor_id = ? AND queue_date = ?", e.DoctorID, e.QueueDate).
			Scan(&maxToken).Error; err != nil {
			return fmt.Errorf("computing next token number: %w", err)
		}
		e.TokenNumber = maxToken + 1

		if e.Priority {
			// Head of the line; everyone else active shifts down one place.
			if err := tx.Model(&queue.QueueEntry{}).
				Where("doctor_id = ? AND queue_date = ? AND status NOT IN ?",
					e.DoctorID, e.QueueDate, terminalStatuses).
				Update("position", gorm.Expr("position + 1")).Error; err != nil {
				return fmt.Errorf("shifting positions for priority entry: %w", err)
			}
			e.Position = 1
		} else {
			var maxPosition int
			if err := tx.Model(&queue.QueueEntry{}).
				Select("COALESCE(MAX(position), 0)").
				Where("doctor_id = ? AND queue_date = ? AND status NOT IN ?",
					e.DoctorID, e.QueueDate, terminalStatuses).
				Scan(&maxPosition).Error; err != nil {
				return fmt.Errorf("computing next position: %w", err)
			}
			e.Position = maxPosition + 1
		}

		if err := tx.Create(e).Error; err != nil {
			return fmt.Errorf("inserting queue entry: %w", err)
		}
		return nil
	})
}

func (r *QueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*queue.QueueEntry, error) {
	var e queue.QueueEntry
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, queue.ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *QueueRepository) UpdateStatus(ctx context.Context, e *queue.QueueEntry, from queue.Status) error {
	// The status predicate makes the write a compare-and-swap: a transition validated
	// against a snapshot that another request has since moved on from matches zero
	// rows instead of clobbering the newer status.
	result := r.db.WithContext(ctx).Model(&queue.QueueEntry{}).
		Where("id = ? AND status = ?", e.ID, from).
		Updates(map[string]any{
			"status":       e.Status,
			"cancelled_at": e.CancelledAt,
			"completed_at": e.CompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		current, err := r.GetByID(ctx, e.ID)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			return queue.ErrEntryTerminal
		}
		return queue.ErrInvalidTransition
	}
	return nil
}

func (r *QueueRepository) Reorder(ctx context.Context, scope queue.Scope, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockScope(tx, scope); err != nil {
			return fmt.Errorf("locking queue scope: %w", err)
		}

		var currentIDs []uuid.UUID
		if err := tx.Model(&queue.QueueEntry{}).
			Where("doctor_id = ? AND queue_date = ? AND status NOT IN ?",
				scope.DoctorID, scope.Date, terminalStatuses).
			Pluck("id", &currentIDs).Error; err != nil {
			return fmt.Errorf("loading scope entries: %w", err)
		}

		// Conservative staleness policy: the batch must be exactly the current set.
		if len(orderedIDs) != len(currentIDs) {
			return queue.ErrScopeMismatch
		}
		current := make(map[uuid.UUID]bool, len(currentIDs))
		for _, id := range currentIDs {
			current[id] = true
		}
		seen := make(map[uuid.UUID]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if !current[id] || seen[id] {
				return queue.ErrScopeMismatch
			}
			seen[id] = true
		}

		for i, id := range orderedIDs {
			if err := tx.Model(&queue.QueueEntry{}).
				Where("id = ?", id).
				Update("position", i+1).Error; err != nil {
				return fmt.Errorf("updating position for %s: %w", id, err)
			}
		}
		return nil
	})
}

func (r *QueueRepository) List(ctx context.Context, q *queue.ListQuery) ([]*queue.QueueEntry, error) {
	db := r.db.WithContext(ctx).Model(&queue.QueueEntry{}).
		Where("queue_date = ?", q.Date)

	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.DoctorID != nil {
		db = db.Where("doctor_id = ?", *q.DoctorID)
	}

	var entries []*queue.QueueEntry
	if err := db.Order("position ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *QueueRepository) CountActive(ctx context.Context, scope queue.Scope) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&queue.QueueEntry{}).
		Where("doctor_id = ? AND queue_date = ? AND status NOT IN ?",
			scope.DoctorID, scope.Date, terminalStatuses).
		Count(&count).Error
	return int(count), err
}
