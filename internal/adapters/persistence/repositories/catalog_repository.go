package repositories

import (
	"context"

	"lendbridge/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ProductRepository handles loan product data access
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new loan product
func (r *ProductRepository) Create(ctx context.Context, product *models.LoanProduct) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID gets a loan product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.LoanProduct, error) {
	var product models.LoanProduct
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List lists loan products, optionally scoped to a tenant
func (r *ProductRepository) List(ctx context.Context, tenantID *string, activeOnly bool, offset, limit int) ([]*models.LoanProduct, int64, error) {
	var products []*models.LoanProduct
	var total int64

	q := r.db.WithContext(ctx).Model(&models.LoanProduct{})
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	}
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

// Update updates a loan product
func (r *ProductRepository) Update(ctx context.Context, product *models.LoanProduct) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete soft deletes a loan product
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LoanProduct{}).Error
}

// LeadRepository handles lead data access
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create creates a new lead
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// GetByID gets a lead by ID
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// ListByAgent lists leads belonging to an agent
func (r *LeadRepository) ListByAgent(ctx context.Context, agentID string, offset, limit int) ([]*models.Lead, int64, error) {
	var leads []*models.Lead
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Lead{}).Where("agent_id = ?", agentID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error
	return leads, total, err
}

// Update updates a lead
func (r *LeadRepository) Update(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

// Delete deletes a lead
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Lead{}).Error
}
