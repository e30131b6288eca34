package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lendbridge/internal/adapters/messaging"
	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationService handles loan application business logic
type ApplicationService struct {
	appRepo     *repositories.ApplicationRepository
	productRepo *repositories.ProductRepository
	userRepo    repositories.UserRepository
	producer    *messaging.Producer
}

// NewApplicationService creates a new application service
func NewApplicationService(
	appRepo *repositories.ApplicationRepository,
	productRepo *repositories.ProductRepository,
	userRepo repositories.UserRepository,
	producer *messaging.Producer,
) *ApplicationService {
	return &ApplicationService{
		appRepo:     appRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		producer:    producer,
	}
}

// CreateApplicationInput represents create application input
type CreateApplicationInput struct {
	ProductID       *string                `json:"product_id,omitempty"`
	LoanType        string                 `json:"loan_type" validate:"required"`
	RequestedAmount float64                `json:"requested_amount" validate:"required,gt=0"`
	Purpose         string                 `json:"purpose,omitempty"`
	EmploymentType  string                 `json:"employment_type,omitempty"`
	MonthlyIncome   float64                `json:"monthly_income" validate:"required,gt=0"`
	ExistingEMIs    float64                `json:"existing_emis,omitempty"`
	ApplicationData map[string]interface{} `json:"application_data,omitempty"`
}

// newReferenceNumber generates a human-readable unique application
// reference, e.g. CRD2026A1B2C3D4.
func newReferenceNumber() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("CRD%d%s", time.Now().Year(), fragment)
}

// Create submits a new loan application for the user
func (s *ApplicationService) Create(ctx context.Context, userID string, input *CreateApplicationInput) (*models.LoanApplication, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if input.LoanType == "" {
		return nil, fmt.Errorf("%w: loan_type is required", domain.ErrValidation)
	}
	if input.RequestedAmount <= 0 {
		return nil, fmt.Errorf("%w: requested_amount must be positive", domain.ErrValidation)
	}
	if input.MonthlyIncome <= 0 {
		return nil, fmt.Errorf("%w: monthly_income must be positive", domain.ErrValidation)
	}
	if input.ExistingEMIs < 0 {
		return nil, fmt.Errorf("%w: existing_emis cannot be negative", domain.ErrValidation)
	}

	// Validate against the product when one is referenced
	if input.ProductID != nil {
		product, err := s.productRepo.GetByID(ctx, *input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: unknown product", domain.ErrValidation)
			}
			return nil, err
		}
		if !product.Active {
			return nil, domain.ErrProductInactive
		}
		if input.RequestedAmount < product.MinAmount || input.RequestedAmount > product.MaxAmount {
			return nil, domain.ErrAmountOutOfBounds
		}
	}

	// One in-flight application per user
	open, err := s.appRepo.CountOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, domain.ErrOpenApplicationExists
	}

	var dataJSON string
	if input.ApplicationData != nil {
		raw, err := json.Marshal(input.ApplicationData)
		if err != nil {
			return nil, fmt.Errorf("%w: application_data is not serializable", domain.ErrValidation)
		}
		dataJSON = string(raw)
	}

	app := &models.LoanApplication{
		UserID:          userID,
		ProductID:       input.ProductID,
		ReferenceNumber: newReferenceNumber(),
		LoanType:        input.LoanType,
		RequestedAmount: input.RequestedAmount,
		Purpose:         input.Purpose,
		EmploymentType:  input.EmploymentType,
		MonthlyIncome:   input.MonthlyIncome,
		ExistingEMIs:    input.ExistingEMIs,
		CurrentStep:     1,
		Status:          domain.ApplicationUnderReview,
		ApplicationData: dataJSON,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.producer.Publish(messaging.EventApplicationStatus, userID, map[string]interface{}{
		"application_id":   app.ID,
		"reference_number": app.ReferenceNumber,
		"status":           string(app.Status),
	})

	return app, nil
}

// GetByIDForUser gets an application owned by the user. A missing
// application and another user's application produce the same error.
func (s *ApplicationService) GetByIDForUser(ctx context.Context, id, userID string) (*models.LoanApplication, error) {
	app, err := s.appRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// ListOpenByUser lists the user's applications in a non-terminal status
func (s *ApplicationService) ListOpenByUser(ctx context.Context, userID string) ([]*models.LoanApplication, error) {
	return s.appRepo.ListOpenByUser(ctx, userID)
}

// List lists applications for back-office review with optional status filter
func (s *ApplicationService) List(ctx context.Context, status *domain.ApplicationStatus, offset, limit int) ([]*models.LoanApplication, int64, error) {
	if status != nil && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *status)
	}
	return s.appRepo.List(ctx, status, offset, limit)
}

// Cancel withdraws the user's application. Permitted only while the
// application is under_review or documents_pending.
func (s *ApplicationService) Cancel(ctx context.Context, id, userID string) (*models.LoanApplication, error) {
	app, err := s.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !app.Status.Cancellable() {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrStateConflict, app.Status)
	}

	if err := s.appRepo.UpdateStatus(ctx, app.ID, domain.ApplicationCancelled); err != nil {
		return nil, err
	}
	app.Status = domain.ApplicationCancelled

	s.producer.Publish(messaging.EventApplicationStatus, userID, map[string]interface{}{
		"application_id":   app.ID,
		"reference_number": app.ReferenceNumber,
		"status":           string(app.Status),
	})

	return app, nil
}

// transition moves an application to the next underwriting status,
// enforcing the state machine.
func (s *ApplicationService) transition(ctx context.Context, id string, next domain.ApplicationStatus) (*models.LoanApplication, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}

	if !app.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrStateConflict, app.Status)
	}

	if err := s.appRepo.UpdateStatus(ctx, app.ID, next); err != nil {
		return nil, err
	}
	app.Status = next

	s.producer.Publish(messaging.EventApplicationStatus, app.UserID, map[string]interface{}{
		"application_id":   app.ID,
		"reference_number": app.ReferenceNumber,
		"status":           string(next),
	})

	return app, nil
}

// RequestDocuments moves an application to documents_pending (underwriting)
func (s *ApplicationService) RequestDocuments(ctx context.Context, id string) (*models.LoanApplication, error) {
	return s.transition(ctx, id, domain.ApplicationDocumentsPending)
}

// Approve moves an application to approved (underwriting)
func (s *ApplicationService) Approve(ctx context.Context, id string) (*models.LoanApplication, error) {
	return s.transition(ctx, id, domain.ApplicationApproved)
}

// Reject moves an application to rejected (underwriting)
func (s *ApplicationService) Reject(ctx context.Context, id string) (*models.LoanApplication, error) {
	return s.transition(ctx, id, domain.ApplicationRejected)
}
