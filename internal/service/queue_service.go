package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/identity"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/queue"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueueBroadcaster notifies subscribed clients that a scope changed and a fresh
// snapshot should be fetched. Implementations must not block request handling.
type QueueBroadcaster interface {
	QueueChanged(ctx context.Context, scope queue.Scope, kind string, entryID uuid.UUID)
}

// EntryView is a queue entry joined with display summaries for the staff UI.
type EntryView struct {
	*queue.QueueEntry
	Patient *identity.PersonSummary `json:"patient,omitempty"`
	Doctor  *identity.PersonSummary `json:"doctor,omitempty"`
}

type QueueService struct {
	repo        queue.Repository
	directory   identity.Directory
	auditSvc    *AuditService
	broadcaster QueueBroadcaster
	metrics     *metrics.Collector
	cfg         config.QueueConfig
	log         *zap.Logger
}

func NewQueueService(
	repo queue.Repository,
	directory identity.Directory,
	auditSvc *AuditService,
	broadcaster QueueBroadcaster,
	collector *metrics.Collector,
	cfg config.QueueConfig,
	log *zap.Logger,
) *QueueService {
	return &QueueService{
		repo:        repo,
		directory:   directory,
		auditSvc:    auditSvc,
		broadcaster: broadcaster,
		metrics:     collector,
		cfg:         cfg,
		log:         log,
	}
}

// Enqueue adds a patient to a doctor's queue for today. Token number and position are
// assigned atomically by the repository; a priority entry jumps to the head of the line
// and every other active entry shifts down by one in the same transaction.
//
// Conflict policy: one active entry per patient per doctor. A patient may wait in two
// different doctors' queues (cross-clinic referrals), but never twice in the same one.
func (s *QueueService) Enqueue(ctx context.Context, cmd *queue.EnqueueCommand, callerID uuid.UUID, callerRole string, ip string) (*queue.QueueEntry, error) {
	var errs []string
	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	if cmd.DoctorID == uuid.Nil {
		errs = append(errs, "doctor_id is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	e := &queue.QueueEntry{
		PatientID:     cmd.PatientID,
		DoctorID:      cmd.DoctorID,
		QueueDate:     queue.Day(time.Now()),
		Status:        queue.StatusWaiting,
		Priority:      cmd.Priority,
		AppointmentID: cmd.AppointmentID,
		Notes:         strings.TrimSpace(cmd.Notes),
		CreatedBy:     cmd.CreatedBy,
	}

	if err := s.repo.Enqueue(ctx, e); err != nil {
		if err == queue.ErrDuplicateActiveEntry {
			return nil, err
		}
		s.log.Error("failed to enqueue patient", zap.Error(err))
		return nil, fmt.Errorf("enqueuing patient: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "queue_entry",
		ResourceID:   e.ID.String(),
		IPAddress:    ip,
	})
	s.broadcast(ctx, e, "enqueued")
	if s.metrics != nil {
		origin := "walk_in"
		if e.AppointmentID != nil {
			origin = "appointment"
		}
		s.metrics.EnqueuedTotal.WithLabelValues(origin).Inc()
	}
	s.updateDepth(ctx, queue.Scope{DoctorID: e.DoctorID, Date: e.QueueDate})

	s.log.Info("patient enqueued",
		zap.String("entry_id", e.ID.String()),
		zap.String("doctor_id", e.DoctorID.String()),
		zap.Int("token_number", e.TokenNumber),
		zap.Int("position", e.Position),
		zap.Bool("priority", e.Priority),
	)

	return e, nil
}

// Transition moves an entry along the status state machine. Position and token number
// are never touched, and nothing cascades to the charge ledger.
func (s *QueueService) Transition(ctx context.Context, cmd *queue.TransitionCommand, callerID uuid.UUID, callerRole string, ip string) (*queue.QueueEntry, error) {
	e, err := s.repo.GetByID(ctx, cmd.EntryID)
	if err != nil {
		return nil, err
	}

	from := e.Status
	if err := e.Transition(cmd.NewStatus); err != nil {
		return nil, err
	}

	// The repository write is a compare-and-swap on the status we validated against,
	// so a transition racing another request fails instead of overwriting its result.
	if err := s.repo.UpdateStatus(ctx, e, from); err != nil {
		switch err {
		case queue.ErrEntryNotFound, queue.ErrEntryTerminal, queue.ErrInvalidTransition:
			return nil, err
		}
		return nil, fmt.Errorf("updating queue status: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "update",
		ResourceType: "queue_entry",
		ResourceID:   e.ID.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":%q}`, cmd.NewStatus),
	})
	s.broadcast(ctx, e, "transitioned")
	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(cmd.NewStatus)).Inc()
	}
	if cmd.NewStatus.IsTerminal() {
		s.updateDepth(ctx, queue.Scope{DoctorID: e.DoctorID, Date: e.QueueDate})
	}

	return e, nil
}

// Reorder rewrites the service sequence of one scope from a full ordered batch. The
// batch must be exactly the current set of active entries in the scope; stale batches
// are rejected with ErrScopeMismatch and leave the order untouched. Between two
// competing full batches, the last one to commit wins.
func (s *QueueService) Reorder(ctx context.Context, cmd *queue.ReorderCommand, callerID uuid.UUID, callerRole string, ip string) error {
	if len(cmd.OrderedIDs) == 0 {
		return &ValidationError{Fields: []string{"ordered_ids must not be empty"}}
	}
	if s.cfg.MaxBatchSize > 0 && len(cmd.OrderedIDs) > s.cfg.MaxBatchSize {
		return &ValidationError{Fields: []string{
			fmt.Sprintf("ordered_ids exceeds the maximum batch size of %d", s.cfg.MaxBatchSize),
		}}
	}
	if cmd.Scope.DoctorID == uuid.Nil {
		return &ValidationError{Fields: []string{"scope doctor_id is required"}}
	}
	if cmd.Scope.Date.IsZero() {
		cmd.Scope.Date = queue.Day(time.Now())
	}

	if err := s.repo.Reorder(ctx, cmd.Scope, cmd.OrderedIDs); err != nil {
		if err == queue.ErrScopeMismatch {
			if s.metrics != nil {
				s.metrics.ScopeMismatchTotal.Inc()
			}
			s.log.Warn("stale reorder batch rejected",
				zap.String("doctor_id", cmd.Scope.DoctorID.String()),
				zap.Int("batch_size", len(cmd.OrderedIDs)),
			)
			return err
		}
		return fmt.Errorf("reordering queue: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ReordersTotal.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "update",
		ResourceType: "queue_scope",
		ResourceID:   cmd.Scope.DoctorID.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"reordered":%d}`, len(cmd.OrderedIDs)),
	})
	if s.broadcaster != nil {
		s.broadcaster.QueueChanged(ctx, cmd.Scope, "reordered", uuid.Nil)
	}

	return nil
}

// List returns the entries matching the query, ordered by position, each joined with
// patient and doctor display summaries. Summary lookups are best effort: a missing
// directory record leaves the summary nil rather than failing the listing.
func (s *QueueService) List(ctx context.Context, q *queue.ListQuery) ([]*EntryView, error) {
	if q.Date.IsZero() {
		q.Date = queue.Day(time.Now())
	}
	if q.Status != nil && !q.Status.IsValid() {
		return nil, &ValidationError{Fields: []string{"status is invalid"}}
	}

	entries, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing queue: %w", err)
	}

	views := make([]*EntryView, 0, len(entries))
	for _, e := range entries {
		v := &EntryView{QueueEntry: e}
		if s.directory != nil {
			if p, err := s.directory.PatientSummary(ctx, e.PatientID); err == nil {
				v.Patient = p
			}
			if d, err := s.directory.DoctorSummary(ctx, e.DoctorID); err == nil {
				v.Doctor = d
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *QueueService) updateDepth(ctx context.Context, scope queue.Scope) {
	if s.metrics == nil {
		return
	}
	if n, err := s.repo.CountActive(ctx, scope); err == nil {
		s.metrics.QueueDepth.WithLabelValues(scope.DoctorID.String()).Set(float64(n))
	}
}

func (s *QueueService) broadcast(ctx context.Context, e *queue.QueueEntry, kind string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.QueueChanged(ctx, queue.Scope{DoctorID: e.DoctorID, Date: e.QueueDate}, kind, e.ID)
}
