package vitals

import (
	"time"

	"github.com/google/uuid"
)

// Measurements mirrors the nursing station vitals form. All fields are optional but at
// least one must be present to record.
type Measurements struct {
	BloodPressure   string   `json:"blood_pressure,omitempty"`
	PulseBPM        *int     `json:"pulse_bpm,omitempty"`
	TemperatureC    *float64 `json:"temperature_c,omitempty"`
	WeightKg        *float64 `json:"weight_kg,omitempty"`
	HeightCm        *float64 `json:"height_cm,omitempty"`
	SpO2Percent     *float64 `json:"spo2_percent,omitempty"`
	RespiratoryRate *int     `json:"respiratory_rate,omitempty"`
}

func (m *Measurements) IsEmpty() bool {
	return m.BloodPressure == "" &&
		m.PulseBPM == nil &&
		m.TemperatureC == nil &&
		m.WeightKg == nil &&
		m.HeightCm == nil &&
		m.SpO2Percent == nil &&
		m.RespiratoryRate == nil
}

// BMI derives body mass index when both weight and height are present.
func (m *Measurements) BMI() *float64 {
	if m.WeightKg == nil || m.HeightCm == nil || *m.WeightKg <= 0 || *m.HeightCm <= 0 {
		return nil
	}
	heightM := *m.HeightCm / 100
	bmi := *m.WeightKg / (heightM * heightM)
	return &bmi
}

type VitalsRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecordedAt time.Time `gorm:"autoCreateTime;index"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`

	// Optional association with the queue entry the reading was taken for. Recording
	// vitals never transitions the entry; callers invoke the queue transition separately.
	QueueEntryID *uuid.UUID `gorm:"column:queue_entry_id;type:uuid;index"`

	Measurements Measurements `gorm:"column:measurements;serializer:json"`
	BMI          *float64     `gorm:"column:bmi"`
	Notes        string       `gorm:"column:notes;type:text"`

	RecordedBy uuid.UUID `gorm:"column:recorded_by;type:uuid;not null"`
}

func (VitalsRecord) TableName() string {
	return "opd.vitals_records"
}

type RecordCommand struct {
	PatientID    uuid.UUID
	QueueEntryID *uuid.UUID
	Measurements Measurements
	Notes        string
	RecordedBy   uuid.UUID
}
