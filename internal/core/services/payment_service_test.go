package services

import (
	"context"
	"errors"
	"testing"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"
	"lendbridge/internal/pkg/money"

	"gorm.io/gorm"
)

func newPaymentService(db *gorm.DB) *PaymentService {
	return NewPaymentService(repositories.NewGormUnitOfWork(db), nil)
}

// disburseLoan seeds a user with an approved application and disburses it.
func disburseLoan(t *testing.T, db *gorm.DB, email string, tenure int) (*models.User, *models.Loan) {
	t.Helper()
	user := seedUser(t, db, email)
	app := seedApplication(t, db, user.ID, domain.ApplicationApproved)
	loan, err := newLoanService(db).Disburse(context.Background(), app.ID, &DisburseInput{TenureMonths: tenure})
	if err != nil {
		t.Fatalf("Disburse: %v", err)
	}
	return user, loan
}

func TestProcessPayment(t *testing.T) {
	db := openTestDB(t)
	svc := newPaymentService(db)
	user, loan := disburseLoan(t, db, "alice@example.com", 12)

	entries, err := repositories.NewLoanRepository(db).ListSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("ListSchedule: %v", err)
	}
	first := entries[0]

	result, err := svc.ProcessPayment(context.Background(), loan.ID, user.ID, &ProcessPaymentInput{
		Amount:    first.EMIAmount,
		Method:    "upi",
		Reference: "TXN-001",
	})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}

	wantBalance := money.Round2(loan.OutstandingBalance - first.PrincipalComponent)
	if result.RemainingBalance != wantBalance {
		t.Errorf("remaining = %v, want %v", result.RemainingBalance, wantBalance)
	}
	if result.NextDueDate == nil || !result.NextDueDate.Equal(entries[1].DueDate) {
		t.Errorf("next_due_date = %v, want %v", result.NextDueDate, entries[1].DueDate)
	}
	if result.LoanStatus != string(domain.LoanActive) {
		t.Errorf("loan status = %s, want active", result.LoanStatus)
	}

	payments, err := repositories.NewLoanRepository(db).ListPayments(context.Background(), loan.ID, 10)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	p := payments[0]
	if p.PrincipalComponent != first.PrincipalComponent || p.InterestComponent != first.InterestComponent {
		t.Errorf("payment split %v/%v, want scheduled split %v/%v",
			p.PrincipalComponent, p.InterestComponent, first.PrincipalComponent, first.InterestComponent)
	}
	if p.AmountPaid != first.EMIAmount {
		t.Errorf("amount_paid = %v, want %v", p.AmountPaid, first.EMIAmount)
	}

	refreshed, err := repositories.NewLoanRepository(db).GetByID(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.TenureRemaining != 11 {
		t.Errorf("tenure_remaining = %d, want 11", refreshed.TenureRemaining)
	}
}

func TestProcessPaymentWalksScheduleInOrder(t *testing.T) {
	db := openTestDB(t)
	svc := newPaymentService(db)
	user, loan := disburseLoan(t, db, "bob@example.com", 6)
	repo := repositories.NewLoanRepository(db)

	entries, err := repo.ListSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("ListSchedule: %v", err)
	}

	balance := loan.OutstandingBalance
	for i, entry := range entries[:3] {
		result, err := svc.ProcessPayment(context.Background(), loan.ID, user.ID, &ProcessPaymentInput{Amount: entry.EMIAmount})
		if err != nil {
			t.Fatalf("payment %d: %v", i+1, err)
		}
		balance = money.Round2(balance - entry.PrincipalComponent)
		if result.RemainingBalance != balance {
			t.Errorf("payment %d: remaining = %v, want %v", i+1, result.RemainingBalance, balance)
		}

		next, err := repo.NextUnpaid(context.Background(), loan.ID)
		if err != nil {
			t.Fatalf("NextUnpaid: %v", err)
		}
		if next.EMINumber != entry.EMINumber+1 {
			t.Errorf("after payment %d next unpaid is #%d", i+1, next.EMINumber)
		}
	}
}

func TestProcessPaymentFullPayoffCompletesLoan(t *testing.T) {
	db := openTestDB(t)
	svc := newPaymentService(db)
	user, loan := disburseLoan(t, db, "carol@example.com", 6)
	repo := repositories.NewLoanRepository(db)

	entries, err := repo.ListSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("ListSchedule: %v", err)
	}

	var last *PaymentResult
	for i, entry := range entries {
		last, err = svc.ProcessPayment(context.Background(), loan.ID, user.ID, &ProcessPaymentInput{Amount: entry.EMIAmount})
		if err != nil {
			t.Fatalf("payment %d: %v", i+1, err)
		}
	}

	if last.RemainingBalance != 0 {
		t.Errorf("final balance = %v, want 0", last.RemainingBalance)
	}
	if last.LoanStatus != string(domain.LoanCompleted) {
		t.Errorf("final status = %s, want completed", last.LoanStatus)
	}
	if last.NextDueDate != nil {
		t.Errorf("completed loan still has next_due_date %v", last.NextDueDate)
	}

	refreshed, err := repo.GetByID(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.TenureRemaining != 0 {
		t.Errorf("tenure_remaining = %d, want 0", refreshed.TenureRemaining)
	}
}

func TestProcessPaymentNoPendingInstallment(t *testing.T) {
	db := openTestDB(t)
	svc := newPaymentService(db)
	user, loan := disburseLoan(t, db, "dave@example.com", 6)
	repo := repositories.NewLoanRepository(db)

	// pay off everything, then force the loan back open to isolate the
	// no-pending check from the completed-status check
	entries, err := repo.ListSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("ListSchedule: %v", err)
	}
	for _, entry := range entries {
		if _, err := svc.ProcessPayment(context.Background(), loan.ID, user.ID, &ProcessPaymentInput{Amount: entry.EMIAmount}); err != nil {
			t.Fatalf("payment: %v", err)
		}
	}
	refreshed, err := repo.GetByID(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	balanceBefore := refreshed.OutstandingBalance
	refreshed.Status = domain.LoanActive
	if err := repo.Update(context.Background(), refreshed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	_, err = svc.ProcessPayment(context.Background(), loan.ID, user.ID, &ProcessPaymentInput{Amount: 100.00})
	if !errors.Is(err, domain.ErrNoPendingEMI) {
		t.Fatalf("expected no pending EMI, got %v", err)
	}

	after, err := repo.GetByID(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.OutstandingBalance != balanceBefore {
		t.Errorf("failed payment changed balance: %v -> %v", balanceBefore, after.OutstandingBalance)
	}
}

func TestProcessPaymentAmountMustMatchEMI(t *testing.T) {
	db := openTestDB(t)
	svc := newPaymentService(db)
	user, loan := disburseLoan(t, db, "erin@example.com", 12)

	for _, amount := range []float64{loan.MonthlyEMI - 0.01, loan.MonthlyEMI + 0.01, loan.MonthlyEMI / 2} {
		_, err := svc.ProcessPayment(context.Background(), loan.ID, user.ID, &ProcessPaymentInput{Amount: amount})
		if !errors.Is(err, domain.ErrPaymentAmountWrong) {
			t.Errorf("amount %v: expected payment amount mismatch, got %v", amount, err)
		}
	}

	// nothing may have been booked
	payments, err := repositories.NewLoanRepository(db).ListPayments(context.Background(), loan.ID, 10)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("rejected payments were persisted: %d", len(payments))
	}
}

func TestProcessPaymentLoanOwnershipAndStatus(t *testing.T) {
	db := openTestDB(t)
	svc := newPaymentService(db)
	user, loan := disburseLoan(t, db, "frank@example.com", 12)
	other := seedUser(t, db, "grace@example.com")

	if _, err := svc.ProcessPayment(context.Background(), loan.ID, other.ID, &ProcessPaymentInput{Amount: loan.MonthlyEMI}); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Errorf("foreign loan: expected loan not found, got %v", err)
	}

	if _, err := svc.ProcessPayment(context.Background(), "00000000-0000-0000-0000-000000000000", user.ID, &ProcessPaymentInput{Amount: loan.MonthlyEMI}); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Errorf("missing loan: expected loan not found, got %v", err)
	}

	repo := repositories.NewLoanRepository(db)
	fetched, err := repo.GetByID(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	fetched.Status = domain.LoanClosed
	if err := repo.Update(context.Background(), fetched); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := svc.ProcessPayment(context.Background(), loan.ID, user.ID, &ProcessPaymentInput{Amount: loan.MonthlyEMI}); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Errorf("closed loan: expected loan not found, got %v", err)
	}
}

func TestProcessPaymentOverdueLoanRecovers(t *testing.T) {
	db := openTestDB(t)
	svc := newPaymentService(db)
	user, loan := disburseLoan(t, db, "heidi@example.com", 12)
	repo := repositories.NewLoanRepository(db)

	fetched, err := repo.GetByID(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	fetched.Status = domain.LoanOverdue
	if err := repo.Update(context.Background(), fetched); err != nil {
		t.Fatalf("Update: %v", err)
	}

	result, err := svc.ProcessPayment(context.Background(), loan.ID, user.ID, &ProcessPaymentInput{Amount: loan.MonthlyEMI})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if result.LoanStatus != string(domain.LoanActive) {
		t.Errorf("status after catching up = %s, want active", result.LoanStatus)
	}
}
