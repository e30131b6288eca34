package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"

	"gorm.io/gorm"
)

// Catalog errors
var (
	ErrProductNotFound = errors.New("loan product not found")
	ErrLeadNotFound    = errors.New("lead not found")
)

// CatalogService handles reference data: tenants, loan products and
// agent leads. Thin pass-through persistence with input validation.
type CatalogService struct {
	productRepo *repositories.ProductRepository
	leadRepo    *repositories.LeadRepository
	tenantRepo  repositories.TenantRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	productRepo *repositories.ProductRepository,
	leadRepo *repositories.LeadRepository,
	tenantRepo repositories.TenantRepository,
) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		leadRepo:    leadRepo,
		tenantRepo:  tenantRepo,
	}
}

// ============================================================
// Loan products
// ============================================================

// ProductInput represents product create/update input
type ProductInput struct {
	TenantID     *string `json:"tenant_id,omitempty"`
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description,omitempty"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0"`
	MinAmount    float64 `json:"min_amount" validate:"gt=0"`
	MaxAmount    float64 `json:"max_amount" validate:"gt=0"`
	TenureMonths string  `json:"tenure_months" validate:"required"`
	Active       *bool   `json:"active,omitempty"`
}

func validateProductInput(input *ProductInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if input.InterestRate < 0 {
		return fmt.Errorf("%w: interest_rate cannot be negative", domain.ErrValidation)
	}
	if input.MinAmount <= 0 || input.MaxAmount <= 0 || input.MinAmount > input.MaxAmount {
		return fmt.Errorf("%w: amount bounds must be positive with min <= max", domain.ErrValidation)
	}
	for _, opt := range strings.Split(input.TenureMonths, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(opt))
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: tenure_months must be comma-separated positive integers", domain.ErrValidation)
		}
	}
	return nil
}

// CreateProduct creates a loan product (back-office)
func (s *CatalogService) CreateProduct(ctx context.Context, input *ProductInput) (*models.LoanProduct, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.LoanProduct{
		TenantID:     input.TenantID,
		Name:         input.Name,
		Description:  input.Description,
		InterestRate: input.InterestRate,
		MinAmount:    input.MinAmount,
		MaxAmount:    input.MaxAmount,
		TenureMonths: input.TenureMonths,
		Active:       true,
	}
	if input.Active != nil {
		product.Active = *input.Active
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct gets a loan product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.LoanProduct, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// ListProducts lists products, optionally tenant-scoped and active-only
func (s *CatalogService) ListProducts(ctx context.Context, tenantID *string, activeOnly bool, offset, limit int) ([]*models.LoanProduct, int64, error) {
	return s.productRepo.List(ctx, tenantID, activeOnly, offset, limit)
}

// UpdateProduct updates a loan product (back-office)
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input *ProductInput) (*models.LoanProduct, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.InterestRate = input.InterestRate
	product.MinAmount = input.MinAmount
	product.MaxAmount = input.MaxAmount
	product.TenureMonths = input.TenureMonths
	if input.Active != nil {
		product.Active = *input.Active
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes a loan product
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ============================================================
// Tenants
// ============================================================

// TenantInput represents tenant create input
type TenantInput struct {
	Name   string `json:"name" validate:"required"`
	Domain string `json:"domain,omitempty"`
	Theme  string `json:"theme,omitempty"`
	Config string `json:"config,omitempty"`
}

// CreateTenant creates a tenant (administrative)
func (s *CatalogService) CreateTenant(ctx context.Context, input *TenantInput) (*models.Tenant, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	tenant := &models.Tenant{
		Name:   input.Name,
		Domain: input.Domain,
		Theme:  input.Theme,
		Config: input.Config,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetTenant gets a tenant by ID
func (s *CatalogService) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	return tenant, nil
}

// ListTenants lists tenants
func (s *CatalogService) ListTenants(ctx context.Context, offset, limit int) ([]*models.Tenant, int64, error) {
	return s.tenantRepo.List(ctx, offset, limit)
}

// ============================================================
// Leads
// ============================================================

// LeadInput represents lead create/update input
type LeadInput struct {
	CustomerName string     `json:"customer_name" validate:"required"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	Source       string     `json:"source,omitempty"`
	Status       string     `json:"status,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	NextFollowup *time.Time `json:"next_followup,omitempty"`
}

// CreateLead records a prospect entered by an agent
func (s *CatalogService) CreateLead(ctx context.Context, agentID string, input *LeadInput) (*models.Lead, error) {
	if input.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer_name is required", domain.ErrValidation)
	}

	lead := &models.Lead{
		AgentID:      agentID,
		CustomerName: input.CustomerName,
		Phone:        input.Phone,
		Email:        input.Email,
		Source:       input.Source,
		Status:       "new",
		Notes:        input.Notes,
		NextFollowup: input.NextFollowup,
	}
	if input.Status != "" {
		lead.Status = input.Status
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// GetLeadForAgent gets a lead owned by the agent
func (s *CatalogService) GetLeadForAgent(ctx context.Context, id, agentID string) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	if lead.AgentID != agentID {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// ListLeadsByAgent lists the agent's leads
func (s *CatalogService) ListLeadsByAgent(ctx context.Context, agentID string, offset, limit int) ([]*models.Lead, int64, error) {
	return s.leadRepo.ListByAgent(ctx, agentID, offset, limit)
}

// UpdateLead updates a lead owned by the agent
func (s *CatalogService) UpdateLead(ctx context.Context, id, agentID string, input *LeadInput) (*models.Lead, error) {
	lead, err := s.GetLeadForAgent(ctx, id, agentID)
	if err != nil {
		return nil, err
	}

	if input.CustomerName != "" {
		lead.CustomerName = input.CustomerName
	}
	if input.Phone != "" {
		lead.Phone = input.Phone
	}
	if input.Email != "" {
		lead.Email = input.Email
	}
	if input.Source != "" {
		lead.Source = input.Source
	}
	if input.Status != "" {
		lead.Status = input.Status
	}
	if input.Notes != "" {
		lead.Notes = input.Notes
	}
	if input.NextFollowup != nil {
		lead.NextFollowup = input.NextFollowup
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// DeleteLead removes a lead owned by the agent
func (s *CatalogService) DeleteLead(ctx context.Context, id, agentID string) error {
	if _, err := s.GetLeadForAgent(ctx, id, agentID); err != nil {
		return err
	}
	return s.leadRepo.Delete(ctx, id)
}
