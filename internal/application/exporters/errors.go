package exporters

import "errors"

var (
	ErrNotFound           = errors.New("Exporter not found")
	ErrProfileRequired    = errors.New("Complete your exporter profile first")
	ErrNoValidFields      = errors.New("No valid update fields provided")
	ErrLockedWhenVerified = errors.New("Company name and GST number cannot change after verification")
)
