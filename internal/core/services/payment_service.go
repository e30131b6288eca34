package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lendbridge/internal/adapters/messaging"
	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"
	"lendbridge/internal/pkg/money"

	"gorm.io/gorm"
)

// PaymentService applies payments against the next unpaid installment.
// All ledger mutations for one payment commit atomically with the loan
// row locked, so concurrent payments against the same loan serialize.
type PaymentService struct {
	uow      repositories.UnitOfWork
	producer *messaging.Producer
}

// NewPaymentService creates a new payment service
func NewPaymentService(uow repositories.UnitOfWork, producer *messaging.Producer) *PaymentService {
	return &PaymentService{uow: uow, producer: producer}
}

// ProcessPaymentInput represents payment input
type ProcessPaymentInput struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method,omitempty"`
	Reference string  `json:"reference,omitempty"`
}

// PaymentResult is returned after a successful payment
type PaymentResult struct {
	PaymentID        string     `json:"payment_id"`
	AmountPaid       float64    `json:"amount_paid"`
	RemainingBalance float64    `json:"remaining_balance"`
	NextDueDate      *time.Time `json:"next_due_date,omitempty"`
	LoanStatus       string     `json:"loan_status"`
}

// ProcessPayment records a payment for the next unpaid installment:
// the installment is marked paid, the outstanding balance drops by its
// principal component, tenure_remaining decrements, and the due date
// advances. Paying the last installment completes the loan. The paid
// amount must equal the installment's EMI amount to the cent.
func (s *PaymentService) ProcessPayment(ctx context.Context, loanID, userID string, input *ProcessPaymentInput) (*PaymentResult, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	var result *PaymentResult
	err := s.uow.WithinLoanTx(ctx, loanID, func(r repositories.Repos, loan *models.Loan) error {
		if loan.UserID != userID || !loan.Status.Open() {
			return domain.ErrLoanNotFound
		}

		entry, err := r.Loans.NextUnpaidForUpdate(ctx, loan.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNoPendingEMI
			}
			return err
		}

		if !money.Equal(input.Amount, entry.EMIAmount) {
			return fmt.Errorf("%w: expected %.2f", domain.ErrPaymentAmountWrong, entry.EMIAmount)
		}

		now := time.Now().UTC()
		payment := &models.LoanPayment{
			LoanID:             loan.ID,
			UserID:             loan.UserID,
			PaymentDate:        now,
			AmountPaid:         input.Amount,
			PrincipalComponent: entry.PrincipalComponent,
			InterestComponent:  entry.InterestComponent,
			PaymentMethod:      input.Method,
			PaymentReference:   input.Reference,
			Status:             domain.PaymentPaid,
		}
		if err := r.Loans.CreatePayment(ctx, payment); err != nil {
			return err
		}

		entry.IsPaid = true
		entry.PaymentDate = &now
		if err := r.Loans.UpdateScheduleEntry(ctx, entry); err != nil {
			return err
		}

		balance := money.Round2(loan.OutstandingBalance - entry.PrincipalComponent)
		if balance < 0 {
			log.Printf("loan %s: balance would go negative (%.2f), clamping to 0", loan.ID, balance)
			balance = 0
		}
		loan.OutstandingBalance = balance
		loan.TenureRemaining--

		next, err := r.Loans.NextUnpaid(ctx, loan.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if next == nil {
			loan.Status = domain.LoanCompleted
			loan.NextDueDate = nil
		} else {
			due := next.DueDate
			loan.NextDueDate = &due
			// an overdue loan recovers once nothing unpaid is past due
			if loan.Status == domain.LoanOverdue && due.After(now) {
				loan.Status = domain.LoanActive
			}
		}
		if err := r.Loans.Update(ctx, loan); err != nil {
			return err
		}

		result = &PaymentResult{
			PaymentID:        payment.ID,
			AmountPaid:       payment.AmountPaid,
			RemainingBalance: loan.OutstandingBalance,
			NextDueDate:      loan.NextDueDate,
			LoanStatus:       string(loan.Status),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	s.producer.Publish(messaging.EventPaymentRecorded, userID, map[string]interface{}{
		"payment_id":        result.PaymentID,
		"loan_id":           loanID,
		"amount_paid":       result.AmountPaid,
		"remaining_balance": result.RemainingBalance,
	})

	return result, nil
}
