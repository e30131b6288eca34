package handlers

import (
	"errors"

	"lendbridge/internal/core/domain"
	"lendbridge/internal/core/services"
	"lendbridge/internal/pkg/pagination"
	"lendbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles loan application endpoints
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// CreateApplicationRequest represents an application submission body
type CreateApplicationRequest struct {
	ProductID       *string                `json:"product_id"`
	LoanType        string                 `json:"loan_type"`
	RequestedAmount float64                `json:"requested_amount"`
	Purpose         string                 `json:"purpose"`
	EmploymentType  string                 `json:"employment_type"`
	MonthlyIncome   float64                `json:"monthly_income"`
	ExistingEMIs    float64                `json:"existing_emis"`
	ApplicationData map[string]interface{} `json:"application_data"`
}

// Create handles application submission
// @Summary Submit loan application
// @Description Submit a new loan application for the authenticated user
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateApplicationRequest true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.CreateApplicationInput{
		ProductID:       req.ProductID,
		LoanType:        req.LoanType,
		RequestedAmount: req.RequestedAmount,
		Purpose:         req.Purpose,
		EmploymentType:  req.EmploymentType,
		MonthlyIncome:   req.MonthlyIncome,
		ExistingEMIs:    req.ExistingEMIs,
		ApplicationData: req.ApplicationData,
	}

	app, err := h.appService.Create(c.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrOpenApplicationExists):
			return response.Conflict(c, "You already have an application in progress")
		case errors.Is(err, domain.ErrAmountOutOfBounds):
			return response.BadRequest(c, "Requested amount is outside the product limits")
		case errors.Is(err, domain.ErrProductInactive):
			return response.BadRequest(c, "Selected loan product is not available")
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUserInactive):
			return response.Unauthorized(c, "Unauthorized")
		default:
			return response.InternalServerError(c, "Failed to submit application")
		}
	}

	return response.Created(c, "Application submitted successfully", app)
}

// ListMine handles listing the user's open applications
// @Summary List my applications
// @Description List the authenticated user's in-progress applications
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /applications [get]
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	apps, err := h.appService.ListOpenByUser(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", apps)
}

// GetByID handles fetching a single application
// @Summary Get application
// @Description Get one of the authenticated user's applications by ID
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	app, err := h.appService.GetByIDForUser(c.Context(), c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to get application")
	}

	return response.Success(c, "Application retrieved successfully", app)
}

// Cancel handles cancelling an in-progress application
// @Summary Cancel application
// @Description Cancel one of the authenticated user's in-progress applications
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications/{id}/cancel [put]
func (h *ApplicationHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	app, err := h.appService.Cancel(c.Context(), c.Params("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, domain.ErrStateConflict):
			return response.Conflict(c, "Application can no longer be cancelled")
		default:
			return response.InternalServerError(c, "Failed to cancel application")
		}
	}

	return response.Success(c, "Application cancelled successfully", app)
}

// List handles the back-office application listing
// @Summary List applications (back-office)
// @Description List applications across all users, optionally filtered by status
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /admin/applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var status *domain.ApplicationStatus
	if q := c.Query("status"); q != "" {
		s := domain.ApplicationStatus(q)
		status = &s
	}

	apps, total, err := h.appService.List(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return response.BadRequest(c, "Unknown application status")
		}
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully",
		pagination.NewResponse(apps, params, total))
}

// RequestDocuments moves an application to documents_pending
// @Summary Request documents
// @Description Ask the applicant for supporting documents
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/applications/{id}/request-documents [put]
func (h *ApplicationHandler) RequestDocuments(c *fiber.Ctx) error {
	app, err := h.appService.RequestDocuments(c.Context(), c.Params("id"))
	return h.transitionResponse(c, app, err, "Documents requested")
}

// Approve approves an application
// @Summary Approve application
// @Description Approve an application under review
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/applications/{id}/approve [put]
func (h *ApplicationHandler) Approve(c *fiber.Ctx) error {
	app, err := h.appService.Approve(c.Context(), c.Params("id"))
	return h.transitionResponse(c, app, err, "Application approved")
}

// Reject rejects an application
// @Summary Reject application
// @Description Reject an application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/applications/{id}/reject [put]
func (h *ApplicationHandler) Reject(c *fiber.Ctx) error {
	app, err := h.appService.Reject(c.Context(), c.Params("id"))
	return h.transitionResponse(c, app, err, "Application rejected")
}

// transitionResponse maps a status transition result to an HTTP response
func (h *ApplicationHandler) transitionResponse(c *fiber.Ctx, app interface{}, err error, message string) error {
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, domain.ErrStateConflict):
			return response.Conflict(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update application")
		}
	}
	return response.Success(c, message, app)
}
