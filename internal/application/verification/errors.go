package verification

import "errors"

var (
	ErrMissingFields        = errors.New("Company name and GST number are required")
	ErrCreationFailed       = errors.New("Verification request creation failed")
	ErrAlreadyVerified      = errors.New("Exporter is already verified")
	ErrPendingRequestExists = errors.New("A verification request is already pending")
	ErrInvalidFilter        = errors.New("Invalid status filter")
	ErrNotFound             = errors.New("Verification request not found")
	ErrAlreadyDecided       = errors.New("Verification request has already been decided")
	ErrNotesTooLong         = errors.New("Notes must be at most 2000 characters")
	ErrCardIDExhausted      = errors.New("Could not generate a unique card id")
)

// Step messages reported by Approve and Reject.
const (
	StepVerificationUpdate = "Verification update failed"
	StepExporterFetch      = "Exporter fetch failed"
	StepExporterUpdate     = "Exporter update failed"
	StepTradeCardCreate    = "Trade card creation failed"
	StepAuditWrite         = "Audit log write failed"
)

// StepError names the workflow step that failed and carries its cause.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return e.Step
	}
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step string, err error) error {
	return &StepError{Step: step, Err: err}
}
