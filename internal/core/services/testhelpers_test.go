package services

import (
	"context"
	"testing"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full schema migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Test Customer",
		Email:    email,
		Role:     domain.RoleCustomer,
		IsActive: true,
	}
	if err := repositories.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, minAmount, maxAmount float64) *models.LoanProduct {
	t.Helper()
	product := &models.LoanProduct{
		Name:         "Personal Loan",
		InterestRate: 12.00,
		MinAmount:    minAmount,
		MaxAmount:    maxAmount,
		TenureMonths: "6,12,24,36",
		Active:       true,
	}
	if err := repositories.NewProductRepository(db).Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedApplication(t *testing.T, db *gorm.DB, userID string, status domain.ApplicationStatus) *models.LoanApplication {
	t.Helper()
	app := &models.LoanApplication{
		UserID:          userID,
		ReferenceNumber: newReferenceNumber(),
		LoanType:        "personal",
		RequestedAmount: 120000.00,
		MonthlyIncome:   45000.00,
		CurrentStep:     1,
		Status:          status,
	}
	if err := repositories.NewApplicationRepository(db).Create(context.Background(), app); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return app
}
