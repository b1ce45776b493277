package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/charge"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ChargeRepository struct {
	db *gorm.DB
}

func NewChargeRepository(db *gorm.DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

func (r *ChargeRepository) Create(ctx context.Context, c *charge.ChargeEntry) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ChargeRepository) GetByID(ctx context.Context, id uuid.UUID) (*charge.ChargeEntry, error) {
	var c charge.ChargeEntry
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, charge.ErrChargeNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ChargeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Conditional on billing_status: a MarkBilled landing between the caller's check
	// and this write leaves the row intact and resolves to ErrChargeBilled.
	result := r.db.WithContext(ctx).
		Where("id = ? AND billing_status = ?", id, charge.StatusPending).
		Delete(&charge.ChargeEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return charge.ErrChargeBilled
	}
	return nil
}

func (r *ChargeRepository) ListByAdmission(ctx context.Context, patientID, admissionID uuid.UUID) ([]*charge.ChargeEntry, error) {
	var entries []*charge.ChargeEntry
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND admission_id = ?", patientID, admissionID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ChargeRepository) MarkBilled(ctx context.Context, ids []uuid.UUID) error {
	now := time.Now()
	// Pending-only predicate makes the batch idempotent: already-billed rows keep
	// their original billed_at.
	return r.db.WithContext(ctx).Model(&charge.ChargeEntry{}).
		Where("id IN ? AND billing_status = ?", ids, charge.StatusPending).
		Updates(map[string]any{
			"billing_status": charge.StatusBilled,
			"billed_at":      now,
		}).Error
}

func (r *ChargeRepository) Totals(ctx context.Context, patientID, admissionID uuid.UUID) (*charge.Totals, error) {
	var row struct {
		RunningTotal    decimal.Decimal
		UnbilledBalance decimal.Decimal
		EntryCount      int
	}
	err := r.db.WithContext(ctx).Model(&charge.ChargeEntry{}).
		Select(`COALESCE(SUM(amount), 0) AS running_total,
			COALESCE(SUM(amount) FILTER (WHERE billing_status = 'pending'), 0) AS unbilled_balance,
			COUNT(*) AS entry_count`).
		Where("patient_id = ? AND admission_id = ?", patientID, admissionID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &charge.Totals{
		RunningTotal:    row.RunningTotal,
		UnbilledBalance: row.UnbilledBalance,
		EntryCount:      row.EntryCount,
	}, nil
}
