package queue

import (
	"time"

	"github.com/google/uuid"
)

// Status transitions possibilities:
//
//	waiting → vitals_done → in_consultation → completed
//	waiting → in_consultation (vitals are optional)
//	waiting | vitals_done | in_consultation → cancelled
//
// completed and cancelled are terminal; entries are never deleted, only superseded by status.
type Status string

const (
	StatusWaiting        Status = "waiting"
	StatusVitalsDone     Status = "vitals_done"
	StatusInConsultation Status = "in_consultation"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusVitalsDone, StatusInConsultation, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ActiveStatuses are the non-terminal states that participate in the ordered scope.
func ActiveStatuses() []Status {
	return []Status{StatusWaiting, StatusVitalsDone, StatusInConsultation}
}

type QueueEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	// QueueDate is the operating day, truncated to midnight UTC. Token numbers and
	// positions are scoped to (doctor, queue_date).
	QueueDate time.Time `gorm:"column:queue_date;type:date;not null;index"`

	// TokenNumber is the patient-facing sequence number. Assigned once at enqueue,
	// monotonically increasing per (doctor, queue_date), never reused or mutated.
	TokenNumber int `gorm:"column:token_number;not null"`

	// Position is the service sequence among the doctor's non-terminal entries for the
	// day. Enqueue and reorder maintain a dense permutation 1..N within that scope. An
	// entry going terminal mid-line takes its position value with it; the gap persists
	// until the next reorder of the scope compacts the numbering.
	Position int `gorm:"column:position;not null;index"`

	Status   Status `gorm:"column:status;type:varchar(30);not null;default:'waiting';index"`
	Priority bool   `gorm:"column:priority;default:false"`

	// Set when the visit originated from a scheduled appointment rather than a walk-in.
	AppointmentID *uuid.UUID `gorm:"column:appointment_id;type:uuid;index"`

	Notes string `gorm:"column:notes;type:text"`

	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (QueueEntry) TableName() string {
	return "opd.queue_entries"
}

func (e *QueueEntry) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusWaiting:        {StatusVitalsDone, StatusInConsultation, StatusCancelled},
		StatusVitalsDone:     {StatusInConsultation, StatusCancelled},
		StatusInConsultation: {StatusCompleted, StatusCancelled},
		StatusCompleted:      {},
		StatusCancelled:      {},
	}

	for _, s := range allowed[e.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Transition applies a status change in place. It never touches Position or TokenNumber.
func (e *QueueEntry) Transition(newStatus Status) error {
	if !newStatus.IsValid() {
		return ErrInvalidStatus
	}
	if e.Status.IsTerminal() {
		return ErrEntryTerminal
	}
	if !e.CanTransitionTo(newStatus) {
		return ErrInvalidTransition
	}

	now := time.Now()
	e.Status = newStatus
	switch newStatus {
	case StatusCompleted:
		e.CompletedAt = &now
	case StatusCancelled:
		e.CancelledAt = &now
	}
	return nil
}

// Scope identifies one ordered waiting line: a doctor's non-terminal entries for a day.
type Scope struct {
	DoctorID uuid.UUID
	Date     time.Time
}

// Day truncates t to the operating day used for queue scoping.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type EnqueueCommand struct {
	PatientID     uuid.UUID
	DoctorID      uuid.UUID
	Priority      bool
	AppointmentID *uuid.UUID
	Notes         string
	CreatedBy     uuid.UUID
}

type TransitionCommand struct {
	EntryID   uuid.UUID
	NewStatus Status
	UpdatedBy uuid.UUID
}

type ReorderCommand struct {
	Scope      Scope
	OrderedIDs []uuid.UUID
	UpdatedBy  uuid.UUID
}

type ListQuery struct {
	Status   *Status
	DoctorID *uuid.UUID
	Date     time.Time
}
