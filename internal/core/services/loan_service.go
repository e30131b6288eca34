package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lendbridge/internal/adapters/messaging"
	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanService handles the loan ledger: post-login status, loan details
// and disbursement.
type LoanService struct {
	uow         repositories.UnitOfWork
	loanRepo    *repositories.LoanRepository
	appRepo     *repositories.ApplicationRepository
	productRepo *repositories.ProductRepository
	producer    *messaging.Producer
}

// NewLoanService creates a new loan service
func NewLoanService(
	uow repositories.UnitOfWork,
	loanRepo *repositories.LoanRepository,
	appRepo *repositories.ApplicationRepository,
	productRepo *repositories.ProductRepository,
	producer *messaging.Producer,
) *LoanService {
	return &LoanService{
		uow:         uow,
		loanRepo:    loanRepo,
		appRepo:     appRepo,
		productRepo: productRepo,
		producer:    producer,
	}
}

// Post-login status values
const (
	UserStatusHasLoan            = "has_loan"
	UserStatusPendingApplication = "pending_application"
	UserStatusNewUser            = "new_user"
)

// UserLoanStatus is the post-login status check result. Exactly one of
// Loan and Applications is populated depending on Status.
type UserLoanStatus struct {
	Status       string                    `json:"status"`
	Loan         *models.LoanSummary       `json:"loan,omitempty"`
	Applications []*models.LoanApplication `json:"applications,omitempty"`
}

// GetUserLoanStatus classifies the user: an open loan wins over pending
// applications, no record of either means a new user.
func (s *LoanService) GetUserLoanStatus(ctx context.Context, userID string) (*UserLoanStatus, error) {
	loan, err := s.loanRepo.GetOpenByUser(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if loan != nil {
		return &UserLoanStatus{Status: UserStatusHasLoan, Loan: loan.ToSummary()}, nil
	}

	apps, err := s.appRepo.ListOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(apps) > 0 {
		return &UserLoanStatus{Status: UserStatusPendingApplication, Applications: apps}, nil
	}

	return &UserLoanStatus{Status: UserStatusNewUser}, nil
}

// LoanDetails bundles a loan with its recent payment history and the
// upcoming installments.
type LoanDetails struct {
	Loan                 *models.Loan          `json:"loan"`
	RecentPayments       []*models.LoanPayment `json:"recent_payments"`
	UpcomingInstallments []*models.EMISchedule `json:"upcoming_installments"`
}

// GetLoanDetails returns the loan with the last 10 payments and the next
// 3 unpaid installments. Missing and foreign loans are indistinguishable.
func (s *LoanService) GetLoanDetails(ctx context.Context, loanID, userID string) (*LoanDetails, error) {
	loan, err := s.loanRepo.GetByIDAndUser(ctx, loanID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	payments, err := s.loanRepo.ListPayments(ctx, loan.ID, 10)
	if err != nil {
		return nil, err
	}

	// next three unpaid installments by emi_number, past-due ones included
	upcoming, err := s.loanRepo.ListUpcomingUnpaid(ctx, loan.ID, time.Time{}, 3)
	if err != nil {
		return nil, err
	}

	return &LoanDetails{
		Loan:                 loan,
		RecentPayments:       payments,
		UpcomingInstallments: upcoming,
	}, nil
}

// GetSchedule returns the full EMI schedule for the user's loan
func (s *LoanService) GetSchedule(ctx context.Context, loanID, userID string) ([]*models.EMISchedule, error) {
	if _, err := s.loanRepo.GetByIDAndUser(ctx, loanID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return s.loanRepo.ListSchedule(ctx, loanID)
}

// DisburseInput represents disbursement input. Zero-value fields fall
// back to the application and its product.
type DisburseInput struct {
	TenureMonths    int      `json:"tenure_months" validate:"required,gt=0"`
	DisbursedAmount *float64 `json:"disbursed_amount,omitempty"`
	InterestRate    *float64 `json:"interest_rate,omitempty"`
}

// newAccountNumber generates a unique loan account number, e.g. LN2026A1B2C3D4.
func newAccountNumber() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("LN%d%s", time.Now().Year(), fragment)
}

// offersTenure reports whether the product's comma-separated tenure
// options include months.
func offersTenure(product *models.LoanProduct, months int) bool {
	for _, opt := range strings.Split(product.TenureMonths, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(opt))
		if err != nil {
			continue
		}
		if n == months {
			return true
		}
	}
	return false
}

// Disburse converts an approved application into a live loan with a full
// EMI schedule. The loan, its schedule and the application status change
// commit atomically; a second open loan for the user is rejected inside
// the same transaction.
func (s *LoanService) Disburse(ctx context.Context, applicationID string, input *DisburseInput) (*models.Loan, error) {
	if input.TenureMonths <= 0 {
		return nil, fmt.Errorf("%w: tenure_months must be positive", domain.ErrValidation)
	}

	var created *models.Loan
	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		app, err := r.Applications.GetByID(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrApplicationNotFound
			}
			return err
		}
		if !app.Status.CanTransition(domain.ApplicationDisbursed) {
			return fmt.Errorf("%w: status is %s", domain.ErrStateConflict, app.Status)
		}

		amount := app.RequestedAmount
		if input.DisbursedAmount != nil {
			amount = *input.DisbursedAmount
		}
		if amount <= 0 {
			return fmt.Errorf("%w: disbursed amount must be positive", domain.ErrValidation)
		}

		var rate float64
		if input.InterestRate != nil {
			rate = *input.InterestRate
		}
		if app.ProductID != nil {
			product, err := r.Products.GetByID(ctx, *app.ProductID)
			if err != nil {
				return err
			}
			if input.InterestRate == nil {
				rate = product.InterestRate
			}
			if !offersTenure(product, input.TenureMonths) {
				return domain.ErrTenureNotOffered
			}
		}
		if rate < 0 {
			return fmt.Errorf("%w: interest rate cannot be negative", domain.ErrValidation)
		}

		open, err := r.Loans.CountOpenByUser(ctx, app.UserID)
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrActiveLoanExists
		}

		startDate := time.Now().UTC().Truncate(24 * time.Hour)
		entries := GenerateSchedule("", amount, rate, input.TenureMonths, startDate)
		firstDue := entries[0].DueDate

		loan := &models.Loan{
			UserID:             app.UserID,
			AccountNumber:      newAccountNumber(),
			LoanType:           app.LoanType,
			PrincipalAmount:    amount,
			DisbursedAmount:    amount,
			OutstandingBalance: amount,
			MonthlyEMI:         entries[0].EMIAmount,
			InterestRate:       rate,
			TenureMonths:       input.TenureMonths,
			TenureRemaining:    input.TenureMonths,
			NextDueDate:        &firstDue,
			Status:             domain.LoanActive,
		}
		if err := r.Loans.Create(ctx, loan); err != nil {
			return err
		}

		for i := range entries {
			entries[i].LoanID = loan.ID
		}
		if err := r.Loans.CreateScheduleEntries(ctx, entries); err != nil {
			return err
		}

		if err := r.Applications.UpdateStatus(ctx, app.ID, domain.ApplicationDisbursed); err != nil {
			return err
		}

		created = loan
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.producer.Publish(messaging.EventLoanDisbursed, created.UserID, map[string]interface{}{
		"loan_id":        created.ID,
		"account_number": created.AccountNumber,
		"amount":         created.DisbursedAmount,
		"monthly_emi":    created.MonthlyEMI,
	})

	return created, nil
}
