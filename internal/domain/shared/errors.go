package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrForbidden            = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrSpotUnavailable      = NewDomainError("SPOT_UNAVAILABLE", "Spot is no longer available for the requested window")
	ErrAmountMismatch       = NewDomainError("AMOUNT_MISMATCH", "Quoted total does not match the computed amount")
	ErrDuplicateTransaction = NewDomainError("DUPLICATE_TRANSACTION", "Transaction id already recorded")
	ErrPaymentRequired      = NewDomainError("PAYMENT_REQUIRED", "Booking must be paid before activation")
	ErrActivationNotDue     = NewDomainError("ACTIVATION_NOT_DUE", "Booking start time has not been reached")
)
