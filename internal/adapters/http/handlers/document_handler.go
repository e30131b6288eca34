package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lendbridge/internal/core/domain"
	"lendbridge/internal/core/services"
	"lendbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const defaultUploadDir = "./uploads"

// DocumentHandler handles application document endpoints
type DocumentHandler struct {
	docService *services.DocumentService
	uploadDir  string
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		uploadDir:  defaultUploadDir,
	}
}

// ReviewRequest represents a document review body
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// Upload handles attaching a document to an application
// @Summary Upload document
// @Description Attach a supporting document to one of the user's applications
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param document_type formData string true "Document type"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id}/documents [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	documentType := strings.TrimSpace(c.FormValue("document_type"))
	if documentType == "" {
		return response.BadRequest(c, "Document type is required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Document file is required")
	}

	// Random prefix keeps uploads from colliding on file name
	storedName := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(file.Filename))
	storedPath := filepath.Join(h.uploadDir, storedName)

	if err := c.SaveFile(file, storedPath); err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	input := &services.AttachInput{
		DocumentType: documentType,
		FileName:     file.Filename,
		FilePath:     storedPath,
	}

	doc, err := h.docService.Attach(c.Context(), c.Params("id"), userID, input)
	if err != nil {
		// The record was rejected, so the stored file must not linger
		_ = os.Remove(storedPath)

		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		default:
			return response.InternalServerError(c, "Failed to attach document")
		}
	}

	return response.Created(c, "Document uploaded successfully", doc.ToResponse())
}

// List handles listing an application's documents
// @Summary List documents
// @Description List documents attached to one of the user's applications
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id}/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	docs, err := h.docService.ListByApplication(c.Context(), c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to list documents")
	}

	return response.Success(c, "Documents retrieved successfully", docs)
}

// Review handles verifying or rejecting a document (back-office)
// @Summary Review document
// @Description Mark an uploaded document as verified or rejected
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param body body ReviewRequest true "Review decision"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/documents/{id}/review [put]
func (h *DocumentHandler) Review(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	doc, err := h.docService.Review(c.Context(), c.Params("id"), reviewerID, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDocumentNotFound):
			return response.NotFound(c, "Document not found")
		case errors.Is(err, domain.ErrStateConflict):
			return response.Conflict(c, "Document has already been reviewed")
		default:
			return response.InternalServerError(c, "Failed to review document")
		}
	}

	return response.Success(c, "Document reviewed successfully", doc.ToResponse())
}
