package service

// Rejection reasons surfaced to the submitter.
const (
	ReasonInvalidFormat = "invalid_format"
	ReasonAllInvalid    = "all_invalid"
)

// ValidationError rejects a submission before any job is created.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
