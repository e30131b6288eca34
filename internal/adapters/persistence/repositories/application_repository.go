package repositories

import (
	"context"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/core/domain"

	"gorm.io/gorm"
)

// ApplicationRepository handles loan application data access
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create creates a new loan application
func (r *ApplicationRepository) Create(ctx context.Context, app *models.LoanApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByIDAndUser gets an application only if it belongs to the user.
// A miss on either condition looks identical to the caller.
func (r *ApplicationRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListOpenByUser lists a user's applications in non-terminal statuses, newest first
func (r *ApplicationRepository) ListOpenByUser(ctx context.Context, userID string) ([]*models.LoanApplication, error) {
	var apps []*models.LoanApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, domain.OpenApplicationStatuses()).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

// CountOpenByUser counts a user's applications in non-terminal statuses
func (r *ApplicationRepository) CountOpenByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("user_id = ? AND status IN ?", userID, domain.OpenApplicationStatuses()).
		Count(&count).Error
	return count, err
}

// List lists applications filtered by status with pagination (underwriting view)
func (r *ApplicationRepository) List(ctx context.Context, status *domain.ApplicationStatus, offset, limit int) ([]*models.LoanApplication, int64, error) {
	var apps []*models.LoanApplication
	var total int64

	q := r.db.WithContext(ctx).Model(&models.LoanApplication{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("User").Order("created_at DESC").Offset(offset).Limit(limit).Find(&apps).Error
	return apps, total, err
}

// Update updates an application
func (r *ApplicationRepository) Update(ctx context.Context, app *models.LoanApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// UpdateStatus sets the status of an application
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// DocumentRepository handles loan document data access
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *models.LoanDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// GetByIDAndUser gets a document only if it belongs to the user
func (r *DocumentRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*models.LoanDocument, error) {
	var doc models.LoanDocument
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByID gets a document by ID (underwriting view)
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.LoanDocument, error) {
	var doc models.LoanDocument
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByApplication lists documents attached to an application
func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]*models.LoanDocument, error) {
	var docs []*models.LoanDocument
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("uploaded_at ASC").
		Find(&docs).Error
	return docs, err
}

// Update updates a document record
func (r *DocumentRepository) Update(ctx context.Context, doc *models.LoanDocument) error {
	return r.db.WithContext(ctx).Save(doc).Error
}
