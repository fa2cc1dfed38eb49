package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInvalidAmount      = "INVALID_AMOUNT"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeNoProductsFound    = "NO_PRODUCTS_FOUND"
	ErrCodeInvalidPagination  = "INVALID_PAGINATION"
	ErrCodeDuplicateRequest   = "DUPLICATE_REQUEST"
	ErrCodePersistenceFault   = "PERSISTENCE_FAULT"
	ErrCodeUserExists         = "USER_EXISTS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidOTP         = "INVALID_OTP"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodePasswordMismatch   = "PASSWORD_MISMATCH"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeImportFailed       = "IMPORT_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

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

// Inventory and reporting errors.
var (
	ErrInvalidAmount     = NewDomainError(ErrCodeInvalidAmount, "Invalid amount")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Insufficient quantity available for sale")
	ErrNoProductsFound   = NewDomainError(ErrCodeNoProductsFound, "No products found")
	ErrInvalidPagination = NewDomainError(ErrCodeInvalidPagination, "Invalid start or end values for pagination")
	ErrDuplicateSale     = NewDomainError(ErrCodeDuplicateRequest, "Sale with this idempotency key was already recorded")
)

// Account errors.
var (
	ErrUserExists         = NewDomainError(ErrCodeUserExists, "This user already exists")
	ErrUserNotFound       = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Email or Password is incorrect")
	ErrWrongPassword      = NewDomainError(ErrCodeInvalidCredentials, "Password is incorrect")
	ErrInvalidOTP         = NewDomainError(ErrCodeInvalidOTP, "Invalid OTP")
	ErrOTPRequired        = NewDomainError(ErrCodeInvalidOTP, "OTP is required")
	ErrEmailNotFound      = NewDomainError(ErrCodeUserNotFound, "Email does not exist")
	ErrTokenNotFound      = NewDomainError(ErrCodeInvalidToken, "Token not found")
	ErrInvalidResetToken  = NewDomainError(ErrCodeInvalidToken, "Invalid token")
	ErrPasswordMismatch   = NewDomainError(ErrCodePasswordMismatch, "Password not matched")
)

// Catalogue import errors.
var (
	ErrInvalidImportPath = NewDomainError(ErrCodeImportFailed, "Invalid catalogue file path")
	ErrImportUnreadable  = NewDomainError(ErrCodeImportFailed, "Catalogue file could not be read")
)

// ErrPersistence is the sentinel matched by every PersistenceFault via errors.Is.
var ErrPersistence = NewDomainError(ErrCodePersistenceFault, "An error occurred while processing the request")

// PersistenceFault wraps a driver error raised while executing a statement.
type PersistenceFault struct {
	Op  string
	Err error
}

// NewPersistenceFault wraps err for the named operation. A nil err yields nil.
func NewPersistenceFault(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceFault{Op: op, Err: err}
}

func (f *PersistenceFault) Error() string {
	return fmt.Sprintf("persistence fault in %s: %v", f.Op, f.Err)
}

func (f *PersistenceFault) Unwrap() error {
	return f.Err
}

// Is reports ErrPersistence as a match so callers can test the category
// without unwrapping.
func (f *PersistenceFault) Is(target error) bool {
	return target == ErrPersistence
}
