package domain

// ApplicationStatus is the closed set of loan application states.
type ApplicationStatus string

const (
	ApplicationUnderReview      ApplicationStatus = "under_review"
	ApplicationDocumentsPending ApplicationStatus = "documents_pending"
	ApplicationApproved         ApplicationStatus = "approved"
	ApplicationDisbursed        ApplicationStatus = "disbursed"
	ApplicationRejected         ApplicationStatus = "rejected"
	ApplicationCancelled        ApplicationStatus = "cancelled"
)

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationUnderReview, ApplicationDocumentsPending, ApplicationApproved,
		ApplicationDisbursed, ApplicationRejected, ApplicationCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationDisbursed, ApplicationRejected, ApplicationCancelled:
		return true
	}
	return false
}

// Cancellable reports whether the applicant may still withdraw.
// Only under_review and documents_pending allow it.
func (s ApplicationStatus) Cancellable() bool {
	return s == ApplicationUnderReview || s == ApplicationDocumentsPending
}

// CanTransition reports whether the workflow permits moving to next.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	switch s {
	case ApplicationUnderReview:
		return next == ApplicationDocumentsPending || next == ApplicationApproved ||
			next == ApplicationRejected || next == ApplicationCancelled
	case ApplicationDocumentsPending:
		return next == ApplicationApproved || next == ApplicationRejected ||
			next == ApplicationCancelled
	case ApplicationApproved:
		return next == ApplicationDisbursed || next == ApplicationRejected
	case ApplicationDisbursed, ApplicationRejected, ApplicationCancelled:
		return false
	}
	return false
}

// OpenApplicationStatuses are the non-terminal states a user's application
// can sit in. At most one application per user may be in any of these.
func OpenApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationUnderReview,
		ApplicationDocumentsPending,
		ApplicationApproved,
	}
}

// LoanStatus is the closed set of loan ledger states.
type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanOverdue   LoanStatus = "overdue"
	LoanCompleted LoanStatus = "completed"
	LoanClosed    LoanStatus = "closed"
)

// Valid reports whether s is a known loan status.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanActive, LoanOverdue, LoanCompleted, LoanClosed:
		return true
	}
	return false
}

// Open reports whether the loan still carries an outstanding balance.
// Exactly one loan per user may be open at a time.
func (s LoanStatus) Open() bool {
	return s == LoanActive || s == LoanOverdue
}

// PaymentStatus is the closed set of payment record states.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentFailed  PaymentStatus = "failed"
)

// DocumentStatus is the closed set of uploaded document states.
type DocumentStatus string

const (
	DocumentUploaded DocumentStatus = "uploaded"
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

// Valid reports whether s is a known document status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentUploaded, DocumentPending, DocumentVerified, DocumentRejected:
		return true
	}
	return false
}

// Role represents a user role in the system.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAgent || r == RoleAdmin
}
