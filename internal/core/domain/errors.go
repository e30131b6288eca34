package domain

import "errors"

// Common domain errors
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("resource not found")
	ErrStateConflict = errors.New("operation not allowed in current status")
	ErrIntegrity     = errors.New("ledger integrity violation")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrDuplicate     = errors.New("duplicate entry")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user account is inactive")
	ErrTenantNotFound    = errors.New("tenant not found")
)

// Application errors
var (
	// ErrApplicationNotFound covers both a missing application and one owned
	// by another user. The two cases are indistinguishable on purpose so the
	// API never discloses whether someone else's application exists.
	ErrApplicationNotFound   = errors.New("application not found")
	ErrApplicationNotOpen    = errors.New("application is not in a cancellable status")
	ErrOpenApplicationExists = errors.New("user already has an application in progress")
)

// Loan and payment errors
var (
	ErrLoanNotFound       = errors.New("loan not found or not active")
	ErrActiveLoanExists   = errors.New("user already has an active loan")
	ErrNoPendingEMI       = errors.New("no pending EMI found")
	ErrPaymentAmountWrong = errors.New("payment amount does not match the due EMI")
	ErrProductInactive    = errors.New("loan product is not active")
	ErrAmountOutOfBounds  = errors.New("requested amount outside product limits")
	ErrTenureNotOffered   = errors.New("tenure not offered by product")
	ErrDocumentNotFound   = errors.New("document not found")
)
