package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/queue"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/vitals"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VitalsService struct {
	repo      vitals.Repository
	queueRepo queue.Repository
	auditSvc  *AuditService
	metrics   *metrics.Collector
	log       *zap.Logger
}

func NewVitalsService(repo vitals.Repository, queueRepo queue.Repository, auditSvc *AuditService, collector *metrics.Collector, log *zap.Logger) *VitalsService {
	return &VitalsService{repo: repo, queueRepo: queueRepo, auditSvc: auditSvc, metrics: collector, log: log}
}

// Record stores a vitals snapshot. When a queue entry id is supplied the reading is
// associated with it, but the entry's status is left alone; moving it to vitals_done
// is a separate queue transition the caller makes explicitly.
func (s *VitalsService) Record(ctx context.Context, cmd *vitals.RecordCommand, callerID uuid.UUID, callerRole string, ip string) (*vitals.VitalsRecord, error) {
	if cmd.PatientID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"patient_id is required"}}
	}
	if cmd.Measurements.IsEmpty() {
		return nil, vitals.ErrEmptyMeasurements
	}

	if cmd.QueueEntryID != nil {
		if _, err := s.queueRepo.GetByID(ctx, *cmd.QueueEntryID); err != nil {
			return nil, err
		}
	}

	v := &vitals.VitalsRecord{
		PatientID:    cmd.PatientID,
		QueueEntryID: cmd.QueueEntryID,
		Measurements: cmd.Measurements,
		BMI:          cmd.Measurements.BMI(),
		Notes:        strings.TrimSpace(cmd.Notes),
		RecordedBy:   cmd.RecordedBy,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		s.log.Error("failed to record vitals", zap.Error(err))
		return nil, fmt.Errorf("recording vitals: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "vitals_record",
		ResourceID:   v.ID.String(),
		IPAddress:    ip,
	})
	if s.metrics != nil {
		s.metrics.VitalsRecorded.Inc()
	}

	return v, nil
}

// LatestForEntry returns the most recent reading taken for one queue entry, used by
// the consultation screen to show what the nursing station captured.
func (s *VitalsService) LatestForEntry(ctx context.Context, entryID uuid.UUID) (*vitals.VitalsRecord, error) {
	if entryID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"queue_entry_id is required"}}
	}
	return s.repo.GetLatestForEntry(ctx, entryID)
}

func (s *VitalsService) ListForPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*vitals.VitalsRecord, error) {
	if patientID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"patient_id is required"}}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByPatient(ctx, patientID, limit)
}
