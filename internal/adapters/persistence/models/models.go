package models

import (
	"time"

	"lendbridge/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Identity & Tenancy
// ============================================================

// Tenant represents tenants table. Root of multi-tenancy; a nil tenant
// reference anywhere means single-tenant deployment mode.
type Tenant struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Domain    string    `gorm:"size:100" json:"domain"`
	LogoURL   string    `gorm:"size:255" json:"logo_url"`
	Theme     string    `gorm:"type:text" json:"theme"`
	Config    string    `gorm:"type:text" json:"config"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// User represents users table
type User struct {
	ID         string         `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID   *string        `gorm:"type:char(36);index" json:"tenant_id"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	Email      string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone      *string        `gorm:"size:20;uniqueIndex" json:"phone"`
	Role       domain.Role    `gorm:"size:20;default:'customer'" json:"role"`
	Password   string         `gorm:"size:255" json:"-"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	IsVerified bool           `gorm:"default:false" json:"is_verified"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserResponse DTO
type UserResponse struct {
	ID         string      `json:"id"`
	TenantID   *string     `json:"tenant_id,omitempty"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      *string     `json:"phone,omitempty"`
	Role       domain.Role `json:"role"`
	IsActive   bool        `json:"is_active"`
	IsVerified bool        `json:"is_verified"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		TenantID:   u.TenantID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        string     `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string     `gorm:"type:char(36);index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	return nil
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// OTPCode represents otp_codes table. Delivery happens outside this
// service; only the code lifecycle lives here.
type OTPCode struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    *string   `gorm:"type:char(36);index" json:"user_id"`
	Principal string    `gorm:"size:100;not null;index" json:"principal"`
	Code      string    `gorm:"size:10;not null" json:"-"`
	Purpose   string    `gorm:"size:30;not null;default:'login'" json:"purpose"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
	Attempts  int       `gorm:"default:0" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (OTPCode) TableName() string {
	return "otp_codes"
}

func (o *OTPCode) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// ============================================================
// Catalog & Leads
// ============================================================

// LoanProduct represents loan_products table (read-mostly reference data)
type LoanProduct struct {
	ID           string         `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID     *string        `gorm:"type:char(36);index" json:"tenant_id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	InterestRate float64        `gorm:"type:decimal(5,2)" json:"interest_rate"`
	MinAmount    float64        `gorm:"type:decimal(15,2)" json:"min_amount"`
	MaxAmount    float64        `gorm:"type:decimal(15,2)" json:"max_amount"`
	TenureMonths string         `gorm:"size:255" json:"tenure_months"` // comma-separated month options
	Active       bool           `gorm:"default:true" json:"active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LoanProduct) TableName() string {
	return "loan_products"
}

func (p *LoanProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Lead represents leads table (agent-entered prospects)
type Lead struct {
	ID           string     `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID     *string    `gorm:"type:char(36);index" json:"tenant_id"`
	AgentID      string     `gorm:"type:char(36);index;not null" json:"agent_id"`
	CustomerName string     `gorm:"size:100;not null" json:"customer_name"`
	Phone        string     `gorm:"size:20" json:"phone"`
	Email        string     `gorm:"size:100" json:"email"`
	Source       string     `gorm:"size:50" json:"source"`
	Status       string     `gorm:"size:20;default:'new'" json:"status"`
	Notes        string     `gorm:"type:text" json:"notes"`
	NextFollowup *time.Time `json:"next_followup"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Agent *User `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (Lead) TableName() string {
	return "leads"
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// ============================================================
// Application Workflow
// ============================================================

// LoanApplication represents loan_applications table
type LoanApplication struct {
	ID              string                   `gorm:"type:char(36);primaryKey" json:"id"`
	UserID          string                   `gorm:"type:char(36);index;not null" json:"user_id"`
	ProductID       *string                  `gorm:"type:char(36);index" json:"product_id"`
	ReferenceNumber string                   `gorm:"size:50;uniqueIndex;not null" json:"reference_number"`
	LoanType        string                   `gorm:"size:50;not null" json:"loan_type"`
	RequestedAmount float64                  `gorm:"type:decimal(15,2);not null" json:"requested_amount"`
	Purpose         string                   `gorm:"type:text" json:"purpose"`
	EmploymentType  string                   `gorm:"size:20" json:"employment_type"`
	MonthlyIncome   float64                  `gorm:"type:decimal(10,2)" json:"monthly_income"`
	ExistingEMIs    float64                  `gorm:"type:decimal(10,2);default:0" json:"existing_emis"`
	CurrentStep     int                      `gorm:"default:1" json:"current_step"`
	Status          domain.ApplicationStatus `gorm:"size:20;not null;default:'under_review'" json:"status"`
	ApplicationData string                   `gorm:"type:text" json:"application_data"`
	CreatedAt       time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                `gorm:"autoUpdateTime" json:"updated_at"`

	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product   *LoanProduct   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Documents []LoanDocument `gorm:"foreignKey:ApplicationID" json:"documents,omitempty"`
}

func (LoanApplication) TableName() string {
	return "loan_applications"
}

func (a *LoanApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// LoanDocument represents loan_documents table. Owned by one application;
// user_id is denormalized for ownership checks.
type LoanDocument struct {
	ID            string                `gorm:"type:char(36);primaryKey" json:"id"`
	ApplicationID string                `gorm:"type:char(36);index;not null" json:"application_id"`
	UserID        string                `gorm:"type:char(36);index;not null" json:"user_id"`
	DocumentType  string                `gorm:"size:100;not null" json:"document_type"`
	FileName      string                `gorm:"size:255;not null" json:"file_name"`
	FilePath      string                `gorm:"size:500;not null" json:"file_path"`
	Status        domain.DocumentStatus `gorm:"size:20;not null;default:'uploaded'" json:"status"`
	UploadedAt    time.Time             `gorm:"autoCreateTime" json:"uploaded_at"`
	VerifiedAt    *time.Time            `json:"verified_at"`
	VerifiedBy    *string               `gorm:"type:char(36)" json:"verified_by"`

	Application *LoanApplication `gorm:"foreignKey:ApplicationID" json:"-"`
}

func (LoanDocument) TableName() string {
	return "loan_documents"
}

func (d *LoanDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// ============================================================
// Loan Ledger
// ============================================================

// Loan represents loans table: a disbursed, amortizing loan.
// Invariants: outstanding_balance >= 0, tenure_remaining <= tenure_months,
// at most one loan per user in an open status.
type Loan struct {
	ID                 string            `gorm:"type:char(36);primaryKey" json:"id"`
	UserID             string            `gorm:"type:char(36);index;not null" json:"user_id"`
	AccountNumber      string            `gorm:"size:50;uniqueIndex;not null" json:"account_number"`
	LoanType           string            `gorm:"size:50;not null" json:"loan_type"`
	PrincipalAmount    float64           `gorm:"type:decimal(15,2);not null" json:"principal_amount"`
	DisbursedAmount    float64           `gorm:"type:decimal(15,2);not null" json:"disbursed_amount"`
	OutstandingBalance float64           `gorm:"type:decimal(15,2);not null" json:"outstanding_balance"`
	MonthlyEMI         float64           `gorm:"type:decimal(10,2);not null" json:"monthly_emi"`
	InterestRate       float64           `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	TenureMonths       int               `gorm:"not null" json:"tenure_months"`
	TenureRemaining    int               `gorm:"not null" json:"tenure_remaining"`
	NextDueDate        *time.Time        `gorm:"type:date" json:"next_due_date"`
	Status             domain.LoanStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	User     *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Schedule []EMISchedule `gorm:"foreignKey:LoanID" json:"schedule,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// EMISchedule represents emi_schedule table. Entries for a loan form a
// contiguous sequence 1..tenure_months; emi_number is the authoritative
// ordering, not due_date.
type EMISchedule struct {
	ID                 string     `gorm:"type:char(36);primaryKey" json:"id"`
	LoanID             string     `gorm:"type:char(36);index:idx_loan_emi,unique;not null" json:"loan_id"`
	EMINumber          int        `gorm:"column:emi_number;index:idx_loan_emi,unique;not null" json:"emi_number"`
	DueDate            time.Time  `gorm:"type:date;not null" json:"due_date"`
	EMIAmount          float64    `gorm:"column:emi_amount;type:decimal(10,2);not null" json:"emi_amount"`
	PrincipalComponent float64    `gorm:"type:decimal(10,2);not null" json:"principal_component"`
	InterestComponent  float64    `gorm:"type:decimal(10,2);not null" json:"interest_component"`
	IsPaid             bool       `gorm:"default:false" json:"is_paid"`
	PaymentDate        *time.Time `gorm:"type:date" json:"payment_date"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (EMISchedule) TableName() string {
	return "emi_schedule"
}

func (e *EMISchedule) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// LoanPayment represents loan_payments table (append-only ledger).
// Each payment marks exactly one EMISchedule entry paid.
type LoanPayment struct {
	ID                 string               `gorm:"type:char(36);primaryKey" json:"id"`
	LoanID             string               `gorm:"type:char(36);index;not null" json:"loan_id"`
	UserID             string               `gorm:"type:char(36);index;not null" json:"user_id"`
	PaymentDate        time.Time            `gorm:"type:date;not null" json:"payment_date"`
	AmountPaid         float64              `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	PrincipalComponent float64              `gorm:"type:decimal(10,2);not null" json:"principal_component"`
	InterestComponent  float64              `gorm:"type:decimal(10,2);not null" json:"interest_component"`
	PenaltyComponent   float64              `gorm:"type:decimal(10,2);default:0" json:"penalty_component"`
	PaymentMethod      string               `gorm:"size:20" json:"payment_method"`
	PaymentReference   string               `gorm:"size:100" json:"payment_reference"`
	Status             domain.PaymentStatus `gorm:"size:20;not null;default:'paid'" json:"status"`
	CreatedAt          time.Time            `gorm:"autoCreateTime" json:"created_at"`

	Loan *Loan `gorm:"foreignKey:LoanID" json:"-"`
}

func (LoanPayment) TableName() string {
	return "loan_payments"
}

func (p *LoanPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ============================================================
// Response DTOs
// ============================================================

// LoanSummary DTO for the post-login status check
type LoanSummary struct {
	LoanID             string     `json:"loan_id"`
	LoanType           string     `json:"loan_type"`
	PrincipalAmount    float64    `json:"principal_amount"`
	OutstandingBalance float64    `json:"outstanding_balance"`
	MonthlyEMI         float64    `json:"monthly_emi"`
	NextDueDate        *time.Time `json:"next_due_date"`
	InterestRate       float64    `json:"interest_rate"`
	TenureMonths       int        `json:"tenure_months"`
	TenureRemaining    int        `json:"tenure_remaining"`
	Status             string     `json:"status"`
}

func (l *Loan) ToSummary() *LoanSummary {
	return &LoanSummary{
		LoanID:             l.ID,
		LoanType:           l.LoanType,
		PrincipalAmount:    l.PrincipalAmount,
		OutstandingBalance: l.OutstandingBalance,
		MonthlyEMI:         l.MonthlyEMI,
		NextDueDate:        l.NextDueDate,
		InterestRate:       l.InterestRate,
		TenureMonths:       l.TenureMonths,
		TenureRemaining:    l.TenureRemaining,
		Status:             string(l.Status),
	}
}

// DocumentResponse DTO
type DocumentResponse struct {
	DocumentID   string     `json:"document_id"`
	DocumentType string     `json:"document_type"`
	FileName     string     `json:"file_name"`
	FilePath     string     `json:"file_path"`
	Status       string     `json:"status"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
}

func (d *LoanDocument) ToResponse() *DocumentResponse {
	return &DocumentResponse{
		DocumentID:   d.ID,
		DocumentType: d.DocumentType,
		FileName:     d.FileName,
		FilePath:     d.FilePath,
		Status:       string(d.Status),
		UploadedAt:   d.UploadedAt,
		VerifiedAt:   d.VerifiedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity & tenancy
		&Tenant{},
		&User{},
		&RefreshToken{},
		&OTPCode{},
		// Catalog & leads
		&LoanProduct{},
		&Lead{},
		// Application workflow
		&LoanApplication{},
		&LoanDocument{},
		// Loan ledger
		&Loan{},
		&EMISchedule{},
		&LoanPayment{},
	)
}
