package repository

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/identity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Directory reads display summaries from the platform's identity tables. Patient and
// staff records are owned by the wider hospital system; this adapter is strictly
// read-only and never migrates those tables.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) PatientSummary(ctx context.Context, id uuid.UUID) (*identity.PersonSummary, error) {
	var row struct {
		ID   uuid.UUID
		Name string
		Code string
	}
	err := d.db.WithContext(ctx).Raw(
		`SELECT id, TRIM(first_name || ' ' || last_name) AS name, COALESCE(mrn, '') AS code
		 FROM clinical.patients WHERE id = ?`, id).Scan(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrNotFound
		}
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, identity.ErrNotFound
	}
	return &identity.PersonSummary{ID: row.ID, Name: row.Name, Code: row.Code}, nil
}

func (d *Directory) DoctorSummary(ctx context.Context, id uuid.UUID) (*identity.PersonSummary, error) {
	var row struct {
		ID   uuid.UUID
		Name string
		Code string
	}
	err := d.db.WithContext(ctx).Raw(
		`SELECT id, TRIM(first_name || ' ' || last_name) AS name, COALESCE(staff_id::text, '') AS code
		 FROM auth.users WHERE id = ? AND role = 'doctor'`, id).Scan(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrNotFound
		}
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, identity.ErrNotFound
	}
	return &identity.PersonSummary{ID: row.ID, Name: row.Name, Code: row.Code}, nil
}
