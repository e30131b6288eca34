package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"

	"gorm.io/gorm"
)

// DocumentService handles the document register: metadata for files
// uploaded against an application. Byte storage is the caller's concern.
type DocumentService struct {
	docRepo *repositories.DocumentRepository
	appRepo *repositories.ApplicationRepository
}

// NewDocumentService creates a new document service
func NewDocumentService(docRepo *repositories.DocumentRepository, appRepo *repositories.ApplicationRepository) *DocumentService {
	return &DocumentService{docRepo: docRepo, appRepo: appRepo}
}

// AttachInput represents document attachment input
type AttachInput struct {
	DocumentType string `json:"document_type" validate:"required"`
	FileName     string `json:"file_name" validate:"required"`
	FilePath     string `json:"file_path" validate:"required"`
}

// Attach records an uploaded document against the user's application.
// A missing application and another user's application are
// indistinguishable.
func (s *DocumentService) Attach(ctx context.Context, applicationID, userID string, input *AttachInput) (*models.LoanDocument, error) {
	if input.DocumentType == "" || input.FileName == "" || input.FilePath == "" {
		return nil, fmt.Errorf("%w: document_type, file_name and file_path are required", domain.ErrValidation)
	}

	app, err := s.appRepo.GetByIDAndUser(ctx, applicationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}

	doc := &models.LoanDocument{
		ApplicationID: app.ID,
		UserID:        userID,
		DocumentType:  input.DocumentType,
		FileName:      input.FileName,
		FilePath:      input.FilePath,
		Status:        domain.DocumentUploaded,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// ListByApplication lists documents for the user's application
func (s *DocumentService) ListByApplication(ctx context.Context, applicationID, userID string) ([]*models.LoanDocument, error) {
	if _, err := s.appRepo.GetByIDAndUser(ctx, applicationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return s.docRepo.ListByApplication(ctx, applicationID)
}

// Review marks a document verified or rejected (back-office)
func (s *DocumentService) Review(ctx context.Context, documentID, reviewerID string, approve bool) (*models.LoanDocument, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}

	if doc.Status == domain.DocumentVerified || doc.Status == domain.DocumentRejected {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrStateConflict, doc.Status)
	}

	now := time.Now()
	if approve {
		doc.Status = domain.DocumentVerified
	} else {
		doc.Status = domain.DocumentRejected
	}
	doc.VerifiedAt = &now
	doc.VerifiedBy = &reviewerID

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
