package charge

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillingStatus string

const (
	StatusPending BillingStatus = "pending"
	StatusBilled  BillingStatus = "billed"
)

// ChargeEntry is one billable line item on a patient's active admission. Pending
// entries may be deleted; once billed the row is append-only history.
type ChargeEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	PatientID   uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	AdmissionID uuid.UUID `gorm:"column:admission_id;type:uuid;not null;index"`

	Description string          `gorm:"column:description;type:varchar(255);not null"`
	UnitAmount  decimal.Decimal `gorm:"column:unit_amount;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null;default:1"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`

	BillingStatus BillingStatus `gorm:"column:billing_status;type:varchar(20);not null;default:'pending';index"`
	BilledAt      *time.Time    `gorm:"column:billed_at"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (ChargeEntry) TableName() string {
	return "billing.charge_entries"
}

func (c *ChargeEntry) IsBilled() bool {
	return c.BillingStatus == StatusBilled
}

// Totals summarizes an admission's ledger. RunningTotal covers every entry regardless
// of billing status; UnbilledBalance is restricted to pending entries.
type Totals struct {
	RunningTotal    decimal.Decimal `json:"running_total"`
	UnbilledBalance decimal.Decimal `json:"unbilled_balance"`
	EntryCount      int             `json:"entry_count"`
}

type AddChargeCommand struct {
	PatientID   uuid.UUID
	AdmissionID uuid.UUID
	Description string
	UnitAmount  decimal.Decimal
	Quantity    int
	CreatedBy   uuid.UUID
}
