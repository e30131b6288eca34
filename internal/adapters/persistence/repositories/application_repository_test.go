package repositories

import (
	"context"
	"fmt"
	"testing"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/core/domain"

	"gorm.io/gorm"
)

func seedApp(t *testing.T, db *gorm.DB, userID string, status domain.ApplicationStatus) *models.LoanApplication {
	t.Helper()

	app := &models.LoanApplication{
		UserID:          userID,
		ReferenceNumber: fmt.Sprintf("CRD2026%s%d", userID, len(status)),
		LoanType:        "personal",
		RequestedAmount: 120000,
		MonthlyIncome:   45000,
		CurrentStep:     1,
		Status:          status,
	}
	if err := db.Create(app).Error; err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return app
}

func TestApplicationRepositoryCountOpenByUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	seedApp(t, db, "u1", domain.ApplicationUnderReview)
	seedApp(t, db, "u2", domain.ApplicationRejected)
	seedApp(t, db, "u3", domain.ApplicationCancelled)
	seedApp(t, db, "u4", domain.ApplicationDisbursed)

	cases := []struct {
		userID string
		want   int64
	}{
		{"u1", 1}, // under review is open
		{"u2", 0}, // rejected is terminal
		{"u3", 0}, // cancelled is terminal
		{"u4", 0}, // disbursed is terminal
	}
	for _, tc := range cases {
		got, err := repo.CountOpenByUser(ctx, tc.userID)
		if err != nil {
			t.Fatalf("CountOpenByUser(%s): %v", tc.userID, err)
		}
		if got != tc.want {
			t.Errorf("CountOpenByUser(%s) = %d, want %d", tc.userID, got, tc.want)
		}
	}
}

func TestApplicationRepositoryGetByIDAndUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app := seedApp(t, db, "owner", domain.ApplicationUnderReview)

	got, err := repo.GetByIDAndUser(ctx, app.ID, "owner")
	if err != nil {
		t.Fatalf("GetByIDAndUser: %v", err)
	}
	if got.ReferenceNumber != app.ReferenceNumber {
		t.Errorf("got reference %s, want %s", got.ReferenceNumber, app.ReferenceNumber)
	}

	// Someone else's application looks exactly like a missing one
	if _, err := repo.GetByIDAndUser(ctx, app.ID, "stranger"); err != gorm.ErrRecordNotFound {
		t.Errorf("foreign application: got %v, want ErrRecordNotFound", err)
	}
}

func TestApplicationRepositoryListByStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	seedApp(t, db, "u1", domain.ApplicationUnderReview)
	seedApp(t, db, "u2", domain.ApplicationApproved)
	seedApp(t, db, "u3", domain.ApplicationApproved)

	approved := domain.ApplicationApproved
	apps, total, err := repo.List(ctx, &approved, 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(apps) != 2 {
		t.Fatalf("got %d/%d approved applications, want 2/2", len(apps), total)
	}

	all, total, err := repo.List(ctx, nil, 0, 2)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(all) != 2 {
		t.Errorf("page size = %d, want 2", len(all))
	}
}

func TestApplicationRepositoryUpdateStatus(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	app := seedApp(t, db, "u1", domain.ApplicationUnderReview)

	if err := repo.UpdateStatus(ctx, app.ID, domain.ApplicationApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := repo.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.ApplicationApproved {
		t.Errorf("status = %s, want approved", got.Status)
	}
}
