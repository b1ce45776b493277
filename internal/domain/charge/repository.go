package charge

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *ChargeEntry) error

	// GetByID returns ErrChargeNotFound if the entry does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*ChargeEntry, error)

	// Delete removes a pending entry. The delete is conditional on billing_status, so a
	// row billed between the caller's check and the write is never erased; that race
	// resolves to ErrChargeBilled.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByAdmission returns all entries for the admission, most recent first.
	ListByAdmission(ctx context.Context, patientID, admissionID uuid.UUID) ([]*ChargeEntry, error)

	// MarkBilled transitions pending entries to billed. Entries already billed are left
	// untouched, making repeated calls idempotent.
	MarkBilled(ctx context.Context, ids []uuid.UUID) error

	// Totals computes the running total and unbilled balance for the admission.
	Totals(ctx context.Context, patientID, admissionID uuid.UUID) (*Totals, error)
}
