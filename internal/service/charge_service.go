package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/charge"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChargeList is an admission's ledger page: entries most recent first plus totals.
type ChargeList struct {
	Entries []*charge.ChargeEntry `json:"entries"`
	Totals  *charge.Totals        `json:"totals"`
}

type ChargeService struct {
	repo     charge.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewChargeService(repo charge.Repository, auditSvc *AuditService, collector *metrics.Collector, log *zap.Logger) *ChargeService {
	return &ChargeService{repo: repo, auditSvc: auditSvc, metrics: collector, log: log}
}

func (s *ChargeService) AddCharge(ctx context.Context, cmd *charge.AddChargeCommand, callerID uuid.UUID, callerRole string, ip string) (*charge.ChargeEntry, error) {
	var errs []string
	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	if cmd.AdmissionID == uuid.Nil {
		errs = append(errs, "admission_id is required")
	}
	if strings.TrimSpace(cmd.Description) == "" {
		errs = append(errs, "description is required")
	}
	if cmd.Quantity <= 0 {
		errs = append(errs, "quantity must be positive")
	}
	if !cmd.UnitAmount.IsPositive() {
		errs = append(errs, "unit_amount must be positive")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	c := &charge.ChargeEntry{
		PatientID:     cmd.PatientID,
		AdmissionID:   cmd.AdmissionID,
		Description:   strings.TrimSpace(cmd.Description),
		UnitAmount:    cmd.UnitAmount,
		Quantity:      cmd.Quantity,
		Amount:        cmd.UnitAmount.Mul(decimal.NewFromInt(int64(cmd.Quantity))),
		BillingStatus: charge.StatusPending,
		CreatedBy:     cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.log.Error("failed to create charge entry", zap.Error(err))
		return nil, fmt.Errorf("creating charge entry: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "charge_entry",
		ResourceID:   c.ID.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"amount":%q}`, c.Amount.String()),
	})
	if s.metrics != nil {
		s.metrics.ChargesAddedTotal.Inc()
	}

	return c, nil
}

// RemoveCharge deletes a pending entry. Billed entries are immutable history and are
// rejected with ErrChargeBilled without touching the row; the repository's conditional
// delete upholds that even when billing lands between the check here and the write.
func (s *ChargeService) RemoveCharge(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.IsBilled() {
		return charge.ErrChargeBilled
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch err {
		case charge.ErrChargeNotFound, charge.ErrChargeBilled:
			return err
		}
		return fmt.Errorf("deleting charge entry: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "delete",
		ResourceType: "charge_entry",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

func (s *ChargeService) ListCharges(ctx context.Context, patientID, admissionID uuid.UUID) (*ChargeList, error) {
	if patientID == uuid.Nil || admissionID == uuid.Nil {
		return nil, &ValidationError{Fields: []string{"patient_id and admission_id are required"}}
	}

	entries, err := s.repo.ListByAdmission(ctx, patientID, admissionID)
	if err != nil {
		return nil, fmt.Errorf("listing charges: %w", err)
	}
	totals, err := s.repo.Totals(ctx, patientID, admissionID)
	if err != nil {
		return nil, fmt.Errorf("computing charge totals: %w", err)
	}

	return &ChargeList{Entries: entries, Totals: totals}, nil
}

// MarkBilled transitions the given pending entries to billed. Already-billed ids are
// skipped, so replaying the same batch is harmless.
func (s *ChargeService) MarkBilled(ctx context.Context, ids []uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	if len(ids) == 0 {
		return &ValidationError{Fields: []string{"ids must not be empty"}}
	}

	if err := s.repo.MarkBilled(ctx, ids); err != nil {
		return fmt.Errorf("marking charges billed: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "update",
		ResourceType: "charge_entry",
		ResourceID:   fmt.Sprintf("batch:%d", len(ids)),
		IPAddress:    ip,
		Changes:      `{"billing_status":"billed"}`,
	})
	if s.metrics != nil {
		s.metrics.ChargesBilledTotal.Add(float64(len(ids)))
	}

	return nil
}
