package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("identity not found")

// PersonSummary is the display snapshot joined into queue listings. Identity storage
// itself is owned by the wider platform; this package only reads from it.
type PersonSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code,omitempty"` // MRN for patients, staff code for doctors
}

type Directory interface {
	PatientSummary(ctx context.Context, id uuid.UUID) (*PersonSummary, error)
	DoctorSummary(ctx context.Context, id uuid.UUID) (*PersonSummary, error)
}
