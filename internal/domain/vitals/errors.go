package vitals

import "errors"

var (
	ErrRecordNotFound    = errors.New("vitals record not found")
	ErrEmptyMeasurements = errors.New("at least one measurement is required")
)
