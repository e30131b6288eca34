package handlers

import (
	"errors"

	"lendbridge/internal/core/domain"
	"lendbridge/internal/core/services"
	"lendbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan and payment endpoints
type LoanHandler struct {
	loanService    *services.LoanService
	paymentService *services.PaymentService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService, paymentService *services.PaymentService) *LoanHandler {
	return &LoanHandler{
		loanService:    loanService,
		paymentService: paymentService,
	}
}

// PaymentRequest represents an EMI payment body
type PaymentRequest struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}

// DisburseRequest represents a disbursement body
type DisburseRequest struct {
	TenureMonths    int      `json:"tenure_months"`
	DisbursedAmount *float64 `json:"disbursed_amount"`
	InterestRate    *float64 `json:"interest_rate"`
}

// Status handles the post-login status check
// @Summary Get my loan status
// @Description Classify the user as having an open loan, pending applications, or neither
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/status [get]
func (h *LoanHandler) Status(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	status, err := h.loanService.GetUserLoanStatus(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get loan status")
	}

	return response.Success(c, "Loan status retrieved successfully", status)
}

// GetByID handles fetching loan details
// @Summary Get loan details
// @Description Get a loan with recent payments and upcoming installments
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	details, err := h.loanService.GetLoanDetails(c.Context(), c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", details)
}

// GetSchedule handles fetching the full EMI schedule
// @Summary Get EMI schedule
// @Description Get the full repayment schedule for a loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/schedule [get]
func (h *LoanHandler) GetSchedule(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	schedule, err := h.loanService.GetSchedule(c.Context(), c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get schedule")
	}

	return response.Success(c, "Schedule retrieved successfully", schedule)
}

// Pay handles an EMI payment
// @Summary Pay next EMI
// @Description Record a payment against the loan's next unpaid installment
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Param body body PaymentRequest true "Payment data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/payments [post]
func (h *LoanHandler) Pay(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.ProcessPaymentInput{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	}

	result, err := h.paymentService.ProcessPayment(c.Context(), c.Params("id"), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrNoPendingEMI):
			return response.Conflict(c, "No pending installment on this loan")
		case errors.Is(err, domain.ErrPaymentAmountWrong):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to process payment")
		}
	}

	return response.Success(c, "Payment recorded successfully", result)
}

// Disburse handles loan disbursement (back-office)
// @Summary Disburse approved application
// @Description Convert an approved application into an active loan with an EMI schedule
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body DisburseRequest true "Disbursement terms"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/applications/{id}/disburse [post]
func (h *LoanHandler) Disburse(c *fiber.Ctx) error {
	var req DisburseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.TenureMonths <= 0 {
		return response.BadRequest(c, "Tenure in months is required")
	}

	input := &services.DisburseInput{
		TenureMonths:    req.TenureMonths,
		DisbursedAmount: req.DisbursedAmount,
		InterestRate:    req.InterestRate,
	}

	loan, err := h.loanService.Disburse(c.Context(), c.Params("id"), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, domain.ErrStateConflict):
			return response.Conflict(c, err.Error())
		case errors.Is(err, domain.ErrActiveLoanExists):
			return response.Conflict(c, "Applicant already has an active loan")
		case errors.Is(err, domain.ErrTenureNotOffered):
			return response.BadRequest(c, "Tenure is not offered by the loan product")
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to disburse loan")
		}
	}

	return response.Created(c, "Loan disbursed successfully", loan)
}
