package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"

	"gorm.io/gorm"
)

func newLoanService(db *gorm.DB) *LoanService {
	return NewLoanService(
		repositories.NewGormUnitOfWork(db),
		repositories.NewLoanRepository(db),
		repositories.NewApplicationRepository(db),
		repositories.NewProductRepository(db),
		nil,
	)
}

func TestDisburse(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	user := seedUser(t, db, "alice@example.com")
	app := seedApplication(t, db, user.ID, domain.ApplicationApproved)

	loan, err := svc.Disburse(context.Background(), app.ID, &DisburseInput{TenureMonths: 12})
	if err != nil {
		t.Fatalf("Disburse: %v", err)
	}

	if loan.Status != domain.LoanActive {
		t.Errorf("status = %s, want active", loan.Status)
	}
	if loan.OutstandingBalance != app.RequestedAmount {
		t.Errorf("outstanding = %v, want %v", loan.OutstandingBalance, app.RequestedAmount)
	}
	if loan.TenureRemaining != 12 {
		t.Errorf("tenure_remaining = %d, want 12", loan.TenureRemaining)
	}
	if !strings.HasPrefix(loan.AccountNumber, "LN") {
		t.Errorf("account number %q missing LN prefix", loan.AccountNumber)
	}
	if loan.NextDueDate == nil {
		t.Error("next_due_date not set")
	}

	entries, err := repositories.NewLoanRepository(db).ListSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("ListSchedule: %v", err)
	}
	if len(entries) != 12 {
		t.Fatalf("expected 12 schedule entries, got %d", len(entries))
	}
	if !entries[0].DueDate.Equal(*loan.NextDueDate) {
		t.Errorf("next_due_date %v != first entry due date %v", loan.NextDueDate, entries[0].DueDate)
	}

	refreshed, err := repositories.NewApplicationRepository(db).GetByID(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != domain.ApplicationDisbursed {
		t.Errorf("application status = %s, want disbursed", refreshed.Status)
	}
}

func TestDisburseRequiresApprovedApplication(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	user := seedUser(t, db, "bob@example.com")

	for _, status := range []domain.ApplicationStatus{
		domain.ApplicationUnderReview,
		domain.ApplicationDocumentsPending,
		domain.ApplicationRejected,
		domain.ApplicationCancelled,
		domain.ApplicationDisbursed,
	} {
		app := seedApplication(t, db, user.ID, status)
		_, err := svc.Disburse(context.Background(), app.ID, &DisburseInput{TenureMonths: 12})
		if !errors.Is(err, domain.ErrStateConflict) {
			t.Errorf("disburse from %s: expected state conflict, got %v", status, err)
		}
	}
}

func TestDisburseRejectsSecondOpenLoan(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	user := seedUser(t, db, "carol@example.com")

	first := seedApplication(t, db, user.ID, domain.ApplicationApproved)
	if _, err := svc.Disburse(context.Background(), first.ID, &DisburseInput{TenureMonths: 12}); err != nil {
		t.Fatalf("first disburse: %v", err)
	}

	second := seedApplication(t, db, user.ID, domain.ApplicationApproved)
	_, err := svc.Disburse(context.Background(), second.ID, &DisburseInput{TenureMonths: 12})
	if !errors.Is(err, domain.ErrActiveLoanExists) {
		t.Errorf("expected active loan conflict, got %v", err)
	}

	// the rejected disbursement must not flip the application status
	refreshed, err := repositories.NewApplicationRepository(db).GetByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != domain.ApplicationApproved {
		t.Errorf("application status = %s, want approved (rolled back)", refreshed.Status)
	}
}

func TestDisburseTenureMustBeOffered(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	user := seedUser(t, db, "dave@example.com")
	product := seedProduct(t, db, 50000.00, 500000.00) // offers 6,12,24,36

	app := seedApplication(t, db, user.ID, domain.ApplicationApproved)
	app.ProductID = &product.ID
	if err := repositories.NewApplicationRepository(db).Update(context.Background(), app); err != nil {
		t.Fatalf("attach product: %v", err)
	}

	_, err := svc.Disburse(context.Background(), app.ID, &DisburseInput{TenureMonths: 18})
	if !errors.Is(err, domain.ErrTenureNotOffered) {
		t.Errorf("expected tenure not offered, got %v", err)
	}

	loan, err := svc.Disburse(context.Background(), app.ID, &DisburseInput{TenureMonths: 24})
	if err != nil {
		t.Fatalf("offered tenure: %v", err)
	}
	if loan.InterestRate != product.InterestRate {
		t.Errorf("interest rate = %v, want product rate %v", loan.InterestRate, product.InterestRate)
	}
}

func TestGetUserLoanStatus(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)

	fresh := seedUser(t, db, "new@example.com")
	status, err := svc.GetUserLoanStatus(context.Background(), fresh.ID)
	if err != nil {
		t.Fatalf("GetUserLoanStatus: %v", err)
	}
	if status.Status != UserStatusNewUser {
		t.Errorf("status = %s, want new_user", status.Status)
	}

	applicant := seedUser(t, db, "applicant@example.com")
	seedApplication(t, db, applicant.ID, domain.ApplicationUnderReview)
	status, err = svc.GetUserLoanStatus(context.Background(), applicant.ID)
	if err != nil {
		t.Fatalf("GetUserLoanStatus: %v", err)
	}
	if status.Status != UserStatusPendingApplication {
		t.Errorf("status = %s, want pending_application", status.Status)
	}
	if len(status.Applications) != 1 {
		t.Errorf("expected 1 pending application, got %d", len(status.Applications))
	}

	borrower := seedUser(t, db, "borrower@example.com")
	app := seedApplication(t, db, borrower.ID, domain.ApplicationApproved)
	if _, err := svc.Disburse(context.Background(), app.ID, &DisburseInput{TenureMonths: 12}); err != nil {
		t.Fatalf("Disburse: %v", err)
	}
	status, err = svc.GetUserLoanStatus(context.Background(), borrower.ID)
	if err != nil {
		t.Fatalf("GetUserLoanStatus: %v", err)
	}
	if status.Status != UserStatusHasLoan {
		t.Errorf("status = %s, want has_loan", status.Status)
	}
	if status.Loan == nil || status.Loan.OutstandingBalance != app.RequestedAmount {
		t.Errorf("loan summary missing or wrong: %+v", status.Loan)
	}
}

func TestGetLoanDetails(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	user := seedUser(t, db, "erin@example.com")
	app := seedApplication(t, db, user.ID, domain.ApplicationApproved)
	loan, err := svc.Disburse(context.Background(), app.ID, &DisburseInput{TenureMonths: 12})
	if err != nil {
		t.Fatalf("Disburse: %v", err)
	}

	details, err := svc.GetLoanDetails(context.Background(), loan.ID, user.ID)
	if err != nil {
		t.Fatalf("GetLoanDetails: %v", err)
	}
	if details.Loan.ID != loan.ID {
		t.Errorf("wrong loan returned")
	}
	if len(details.RecentPayments) != 0 {
		t.Errorf("expected no payments yet, got %d", len(details.RecentPayments))
	}
	if len(details.UpcomingInstallments) != 3 {
		t.Fatalf("expected 3 upcoming installments, got %d", len(details.UpcomingInstallments))
	}
	for i, e := range details.UpcomingInstallments {
		if e.EMINumber != i+1 {
			t.Errorf("upcoming installment %d has emi_number %d", i, e.EMINumber)
		}
	}
}

func TestGetLoanDetailsOwnershipIndistinguishable(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	owner := seedUser(t, db, "frank@example.com")
	other := seedUser(t, db, "grace@example.com")
	app := seedApplication(t, db, owner.ID, domain.ApplicationApproved)
	loan, err := svc.Disburse(context.Background(), app.ID, &DisburseInput{TenureMonths: 12})
	if err != nil {
		t.Fatalf("Disburse: %v", err)
	}

	_, errForeign := svc.GetLoanDetails(context.Background(), loan.ID, other.ID)
	_, errMissing := svc.GetLoanDetails(context.Background(), "00000000-0000-0000-0000-000000000000", other.ID)
	if !errors.Is(errForeign, domain.ErrLoanNotFound) || !errors.Is(errMissing, domain.ErrLoanNotFound) {
		t.Errorf("foreign=%v missing=%v, both must be loan-not-found", errForeign, errMissing)
	}
}
