package charge

import "errors"

var (
	ErrChargeNotFound = errors.New("charge entry not found")
	ErrChargeBilled   = errors.New("charge entry is already billed and cannot be modified")
)
