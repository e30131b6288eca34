package config

import (
	"log"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/core/domain"
	"lendbridge/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedDefaultTenant(); err != nil {
		log.Printf("⚠️ Tenant seeder skipped: %v", err)
	}
	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedLoanProducts(); err != nil {
		log.Printf("⚠️ Product seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedDefaultTenant seeds the default tenant for single-tenant deployments
func (s *Seeder) seedDefaultTenant() error {
	var count int64
	s.db.Model(&models.Tenant{}).Count(&count)
	if count > 0 {
		return nil
	}

	tenant := &models.Tenant{
		Name:   "LendBridge",
		Domain: "lendbridge.local",
	}
	if err := s.db.Create(tenant).Error; err != nil {
		return err
	}

	log.Printf("✅ Default tenant created: %s", tenant.Name)
	return nil
}

// seedAdminUser seeds a default admin user.
// Development only; production admins are created through a secure process.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:       "Administrator",
		Email:      "admin@lendbridge.local",
		Password:   hashedPassword,
		Role:       domain.RoleAdmin,
		IsActive:   true,
		IsVerified: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

// seedLoanProducts seeds the starter product catalog
func (s *Seeder) seedLoanProducts() error {
	var count int64
	s.db.Model(&models.LoanProduct{}).Count(&count)
	if count > 0 {
		return nil
	}

	products := []models.LoanProduct{
		{
			Name:         "Personal Loan",
			Description:  "Unsecured personal loan for salaried and self-employed applicants",
			InterestRate: 12.00,
			MinAmount:    25000.00,
			MaxAmount:    500000.00,
			TenureMonths: "6,12,24,36",
			Active:       true,
		},
		{
			Name:         "Home Improvement Loan",
			Description:  "Renovation and repair financing against monthly income",
			InterestRate: 10.50,
			MinAmount:    100000.00,
			MaxAmount:    2000000.00,
			TenureMonths: "12,24,36,48,60",
			Active:       true,
		},
		{
			Name:         "Two-Wheeler Loan",
			Description:  "Vehicle financing with fast disbursement",
			InterestRate: 14.00,
			MinAmount:    20000.00,
			MaxAmount:    150000.00,
			TenureMonths: "6,12,18,24",
			Active:       true,
		},
	}
	if err := s.db.Create(&products).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d loan products", len(products))
	return nil
}
