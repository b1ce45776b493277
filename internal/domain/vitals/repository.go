package vitals

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, v *VitalsRecord) error

	// ListByPatient returns the patient's readings, most recent first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalsRecord, error)

	// GetLatestForEntry returns the newest reading linked to a queue entry, or
	// ErrRecordNotFound when none exists.
	GetLatestForEntry(ctx context.Context, queueEntryID uuid.UUID) (*VitalsRecord, error)
}
