package services

import (
	"context"
	"testing"
	"time"

	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/config"
	"lendbridge/internal/core/domain"

	"gorm.io/gorm"
)

func newSweepService(db *gorm.DB) *SweepService {
	cfg := &config.Config{OTP: config.OTPConfig{ExpiryMinutes: 5, MaxAttempts: 5}}
	userRepo := repositories.NewUserRepository(db)
	refreshRepo := repositories.NewRefreshTokenRepository(db)
	auth := NewAuthService(userRepo, refreshRepo, repositories.NewTenantRepository(db), cfg)
	otp := NewOTPService(repositories.NewOTPRepository(db), userRepo, auth, nil, cfg)
	return NewSweepService(repositories.NewLoanRepository(db), refreshRepo, otp, nil)
}

func TestSweepMarksPastDueLoansOverdue(t *testing.T) {
	db := openTestDB(t)
	_, loan := disburseLoan(t, db, "alice@example.com", 12)
	repo := repositories.NewLoanRepository(db)

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	loan.NextDueDate = &yesterday
	if err := repo.Update(context.Background(), loan); err != nil {
		t.Fatalf("Update: %v", err)
	}

	newSweepService(db).RunDailySweep()

	refreshed, err := repo.GetByID(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != domain.LoanOverdue {
		t.Errorf("status = %s, want overdue", refreshed.Status)
	}
}

func TestSweepLeavesCurrentLoansAlone(t *testing.T) {
	db := openTestDB(t)
	_, loan := disburseLoan(t, db, "bob@example.com", 12)
	repo := repositories.NewLoanRepository(db)

	newSweepService(db).RunDailySweep()

	refreshed, err := repo.GetByID(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != domain.LoanActive {
		t.Errorf("status = %s, want active (due date is a month out)", refreshed.Status)
	}
}

func TestSweepIgnoresCompletedLoans(t *testing.T) {
	db := openTestDB(t)
	_, loan := disburseLoan(t, db, "carol@example.com", 12)
	repo := repositories.NewLoanRepository(db)

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	loan.Status = domain.LoanCompleted
	loan.NextDueDate = &yesterday
	if err := repo.Update(context.Background(), loan); err != nil {
		t.Fatalf("Update: %v", err)
	}

	newSweepService(db).RunDailySweep()

	refreshed, err := repo.GetByID(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.Status != domain.LoanCompleted {
		t.Errorf("status = %s, completed loans must not be touched", refreshed.Status)
	}
}
