package repository

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/vitals"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VitalsRepository struct {
	db *gorm.DB
}

func NewVitalsRepository(db *gorm.DB) *VitalsRepository {
	return &VitalsRepository{db: db}
}

func (r *VitalsRepository) Create(ctx context.Context, v *vitals.VitalsRecord) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VitalsRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*vitals.VitalsRecord, error) {
	var records []*vitals.VitalsRecord
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *VitalsRepository) GetLatestForEntry(ctx context.Context, queueEntryID uuid.UUID) (*vitals.VitalsRecord, error) {
	var v vitals.VitalsRecord
	err := r.db.WithContext(ctx).
		Where("queue_entry_id = ?", queueEntryID).
		Order("recorded_at DESC").
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, vitals.ErrRecordNotFound
		}
		return nil, err
	}
	return &v, nil
}
