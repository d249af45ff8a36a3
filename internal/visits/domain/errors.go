package domain

import "errors"

// Validation failure codes, one per structural rule. Callers match them with
// errors.Is; the message on the returned error is the user-facing text.
var (
	ErrSellerIDRequired  = errors.New("seller_id required")
	ErrSellerIDMalformed = errors.New("seller_id malformed")
	ErrDateRequired      = errors.New("date required")
	ErrDateIsText        = errors.New("date is text")
	ErrClientsRequired   = errors.New("clients required")
	ErrClientsNotList    = errors.New("clients not a list")
	ErrClientsEmpty      = errors.New("clients empty")
	ErrClientNotRef      = errors.New("client entry is not a visit client")
	ErrDuplicateClient   = errors.New("duplicate client")
	ErrClientIDRequired  = errors.New("client_id required")
	ErrClientIDMalformed = errors.New("client_id malformed")
)

// ValidationError reports the first structural defect of a visit.
type ValidationError struct {
	Code    error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == e.Code }

func newValidationError(code error, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}
