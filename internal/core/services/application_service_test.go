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

func newApplicationService(db *gorm.DB) *ApplicationService {
	return NewApplicationService(
		repositories.NewApplicationRepository(db),
		repositories.NewProductRepository(db),
		repositories.NewUserRepository(db),
		nil,
	)
}

func TestCreateApplication(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "alice@example.com")

	app, err := svc.Create(context.Background(), user.ID, &CreateApplicationInput{
		LoanType:        "personal",
		RequestedAmount: 120000.00,
		Purpose:         "home renovation",
		EmploymentType:  "salaried",
		MonthlyIncome:   45000.00,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if app.Status != domain.ApplicationUnderReview {
		t.Errorf("status = %s, want under_review", app.Status)
	}
	if app.CurrentStep != 1 {
		t.Errorf("current_step = %d, want 1", app.CurrentStep)
	}
	if !strings.HasPrefix(app.ReferenceNumber, "CRD") {
		t.Errorf("reference number %q missing CRD prefix", app.ReferenceNumber)
	}
	if app.ID == "" {
		t.Error("application id not generated")
	}
}

func TestCreateApplicationValidation(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "bob@example.com")

	cases := []struct {
		name  string
		input CreateApplicationInput
	}{
		{"zero amount", CreateApplicationInput{LoanType: "personal", RequestedAmount: 0, MonthlyIncome: 45000}},
		{"negative amount", CreateApplicationInput{LoanType: "personal", RequestedAmount: -500, MonthlyIncome: 45000}},
		{"zero income", CreateApplicationInput{LoanType: "personal", RequestedAmount: 120000, MonthlyIncome: 0}},
		{"negative existing emis", CreateApplicationInput{LoanType: "personal", RequestedAmount: 120000, MonthlyIncome: 45000, ExistingEMIs: -1}},
		{"missing loan type", CreateApplicationInput{RequestedAmount: 120000, MonthlyIncome: 45000}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), user.ID, &c.input)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateApplicationUnknownUser(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)

	_, err := svc.Create(context.Background(), "00000000-0000-0000-0000-000000000000", &CreateApplicationInput{
		LoanType:        "personal",
		RequestedAmount: 120000.00,
		MonthlyIncome:   45000.00,
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected user not found, got %v", err)
	}
}

func TestCreateApplicationProductBounds(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "carol@example.com")
	product := seedProduct(t, db, 50000.00, 500000.00)

	_, err := svc.Create(context.Background(), user.ID, &CreateApplicationInput{
		ProductID:       &product.ID,
		LoanType:        "personal",
		RequestedAmount: 10000.00,
		MonthlyIncome:   45000.00,
	})
	if !errors.Is(err, domain.ErrAmountOutOfBounds) {
		t.Errorf("below minimum: expected amount out of bounds, got %v", err)
	}

	_, err = svc.Create(context.Background(), user.ID, &CreateApplicationInput{
		ProductID:       &product.ID,
		LoanType:        "personal",
		RequestedAmount: 900000.00,
		MonthlyIncome:   45000.00,
	})
	if !errors.Is(err, domain.ErrAmountOutOfBounds) {
		t.Errorf("above maximum: expected amount out of bounds, got %v", err)
	}

	app, err := svc.Create(context.Background(), user.ID, &CreateApplicationInput{
		ProductID:       &product.ID,
		LoanType:        "personal",
		RequestedAmount: 120000.00,
		MonthlyIncome:   45000.00,
	})
	if err != nil {
		t.Fatalf("within bounds: %v", err)
	}
	if app.ProductID == nil || *app.ProductID != product.ID {
		t.Error("product reference not stored")
	}
}

func TestCreateApplicationInactiveProduct(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "dave@example.com")
	product := seedProduct(t, db, 50000.00, 500000.00)
	product.Active = false
	if err := repositories.NewProductRepository(db).Update(context.Background(), product); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	_, err := svc.Create(context.Background(), user.ID, &CreateApplicationInput{
		ProductID:       &product.ID,
		LoanType:        "personal",
		RequestedAmount: 120000.00,
		MonthlyIncome:   45000.00,
	})
	if !errors.Is(err, domain.ErrProductInactive) {
		t.Errorf("expected product inactive, got %v", err)
	}
}

func TestCreateApplicationOnePerUser(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "erin@example.com")

	input := CreateApplicationInput{
		LoanType:        "personal",
		RequestedAmount: 120000.00,
		MonthlyIncome:   45000.00,
	}
	if _, err := svc.Create(context.Background(), user.ID, &input); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(context.Background(), user.ID, &input)
	if !errors.Is(err, domain.ErrOpenApplicationExists) {
		t.Errorf("expected open application conflict, got %v", err)
	}
}

func TestCreateApplicationAfterTerminalAllowed(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "frank@example.com")
	seedApplication(t, db, user.ID, domain.ApplicationRejected)

	_, err := svc.Create(context.Background(), user.ID, &CreateApplicationInput{
		LoanType:        "personal",
		RequestedAmount: 120000.00,
		MonthlyIncome:   45000.00,
	})
	if err != nil {
		t.Errorf("a terminal application must not block a new one: %v", err)
	}
}

func TestCancelApplication(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "grace@example.com")

	for _, status := range []domain.ApplicationStatus{domain.ApplicationUnderReview, domain.ApplicationDocumentsPending} {
		app := seedApplication(t, db, user.ID, status)
		cancelled, err := svc.Cancel(context.Background(), app.ID, user.ID)
		if err != nil {
			t.Fatalf("Cancel from %s: %v", status, err)
		}
		if cancelled.Status != domain.ApplicationCancelled {
			t.Errorf("status = %s, want cancelled", cancelled.Status)
		}
	}
}

func TestCancelApplicationStateConflict(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "heidi@example.com")

	blocked := []domain.ApplicationStatus{
		domain.ApplicationApproved,
		domain.ApplicationRejected,
		domain.ApplicationDisbursed,
		domain.ApplicationCancelled,
	}
	for _, status := range blocked {
		app := seedApplication(t, db, user.ID, status)
		_, err := svc.Cancel(context.Background(), app.ID, user.ID)
		if !errors.Is(err, domain.ErrStateConflict) {
			t.Errorf("cancel from %s: expected state conflict, got %v", status, err)
		}
	}
}

func TestCancelApplicationOwnershipIndistinguishable(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	owner := seedUser(t, db, "ivan@example.com")
	other := seedUser(t, db, "judy@example.com")
	app := seedApplication(t, db, owner.ID, domain.ApplicationUnderReview)

	_, errForeign := svc.Cancel(context.Background(), app.ID, other.ID)
	_, errMissing := svc.Cancel(context.Background(), "00000000-0000-0000-0000-000000000000", other.ID)

	if !errors.Is(errForeign, domain.ErrApplicationNotFound) {
		t.Errorf("foreign application: got %v", errForeign)
	}
	if !errors.Is(errMissing, domain.ErrApplicationNotFound) {
		t.Errorf("missing application: got %v", errMissing)
	}
	if errForeign.Error() != errMissing.Error() {
		t.Errorf("ownership must be indistinguishable from absence: %q vs %q", errForeign, errMissing)
	}
}

func TestUnderwritingTransitions(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "kim@example.com")
	app := seedApplication(t, db, user.ID, domain.ApplicationUnderReview)

	stepped, err := svc.RequestDocuments(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("RequestDocuments: %v", err)
	}
	if stepped.Status != domain.ApplicationDocumentsPending {
		t.Errorf("status = %s, want documents_pending", stepped.Status)
	}

	approved, err := svc.Approve(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != domain.ApplicationApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}

	// approved applications cannot be walked back to documents_pending
	if _, err := svc.RequestDocuments(context.Background(), app.ID); !errors.Is(err, domain.ErrStateConflict) {
		t.Errorf("request documents after approve: expected state conflict, got %v", err)
	}
}

func TestUnderwritingRejectAfterApprove(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "oscar@example.com")
	app := seedApplication(t, db, user.ID, domain.ApplicationApproved)

	rejected, err := svc.Reject(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != domain.ApplicationRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}
}

func TestUnderwritingRejectFromReview(t *testing.T) {
	db := openTestDB(t)
	svc := newApplicationService(db)
	user := seedUser(t, db, "mallory@example.com")
	app := seedApplication(t, db, user.ID, domain.ApplicationUnderReview)

	rejected, err := svc.Reject(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != domain.ApplicationRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}
}
