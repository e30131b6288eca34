package repositories

import (
	"context"
	"time"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoanRepository handles loan ledger data access: loans, EMI schedule
// entries and payment records.
type LoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// locked returns a query with a row lock where the dialect supports it.
// sqlite has no FOR UPDATE; its single-writer lock already serializes.
func (r *LoanRepository) locked(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "sqlite" {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Create creates a new loan
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetByIDAndUser gets a loan only if it belongs to the user
func (r *LoanRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetByIDForUpdate gets a loan by ID with a row lock. Must run inside a
// transaction; the lock serializes concurrent payments against one loan.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Loan, error) {
	var loan models.Loan
	err := r.locked(ctx).Where("id = ?", id).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetOpenByUser returns the user's loan in an open status (active or
// overdue), if any. At most one may exist.
func (r *LoanRepository) GetOpenByUser(ctx context.Context, userID string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []domain.LoanStatus{domain.LoanActive, domain.LoanOverdue}).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// CountOpenByUser counts the user's loans in an open status
func (r *LoanRepository) CountOpenByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("user_id = ? AND status IN ?", userID, []domain.LoanStatus{domain.LoanActive, domain.LoanOverdue}).
		Count(&count).Error
	return count, err
}

// Update updates a loan
func (r *LoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// ListPastDue lists active loans whose next due date is before the cutoff
func (r *LoanRepository) ListPastDue(ctx context.Context, cutoff time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_due_date IS NOT NULL AND next_due_date < ?", domain.LoanActive, cutoff).
		Find(&loans).Error
	return loans, err
}

// ListDueBetween lists open loans with a due date inside the window (reminders)
func (r *LoanRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("status IN ? AND next_due_date >= ? AND next_due_date < ?",
			[]domain.LoanStatus{domain.LoanActive, domain.LoanOverdue}, from, to).
		Find(&loans).Error
	return loans, err
}

// ============================================================
// EMI Schedule
// ============================================================

// CreateScheduleEntries inserts all schedule entries for a loan
func (r *LoanRepository) CreateScheduleEntries(ctx context.Context, entries []models.EMISchedule) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// NextUnpaid returns the unpaid schedule entry with the smallest
// emi_number. Ordering is by emi_number, not due_date: the number is
// authoritative and immune to clock skew in generated dates.
func (r *LoanRepository) NextUnpaid(ctx context.Context, loanID string) (*models.EMISchedule, error) {
	var entry models.EMISchedule
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND is_paid = ?", loanID, false).
		Order("emi_number ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// NextUnpaidForUpdate is NextUnpaid with a row lock, for payment processing
func (r *LoanRepository) NextUnpaidForUpdate(ctx context.Context, loanID string) (*models.EMISchedule, error) {
	var entry models.EMISchedule
	err := r.locked(ctx).
		Where("loan_id = ? AND is_paid = ?", loanID, false).
		Order("emi_number ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateScheduleEntry updates a schedule entry
func (r *LoanRepository) UpdateScheduleEntry(ctx context.Context, entry *models.EMISchedule) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// ListSchedule lists all schedule entries for a loan in emi_number order
func (r *LoanRepository) ListSchedule(ctx context.Context, loanID string) ([]*models.EMISchedule, error) {
	var entries []*models.EMISchedule
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("emi_number ASC").
		Find(&entries).Error
	return entries, err
}

// ListUpcomingUnpaid lists unpaid entries due on or after the given date
func (r *LoanRepository) ListUpcomingUnpaid(ctx context.Context, loanID string, from time.Time, limit int) ([]*models.EMISchedule, error) {
	var entries []*models.EMISchedule
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND is_paid = ? AND due_date >= ?", loanID, false, from).
		Order("emi_number ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ============================================================
// Payments
// ============================================================

// CreatePayment appends a payment record. Payments are never updated.
func (r *LoanRepository) CreatePayment(ctx context.Context, payment *models.LoanPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// ListPayments lists the most recent payments for a loan
func (r *LoanRepository) ListPayments(ctx context.Context, loanID string, limit int) ([]*models.LoanPayment, error) {
	var payments []*models.LoanPayment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date DESC, created_at DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}
