package handlers

import (
	"errors"
	"time"

	"lendbridge/internal/core/domain"
	"lendbridge/internal/core/services"
	"lendbridge/internal/pkg/pagination"
	"lendbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles loan product, tenant and lead endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ProductRequest represents a product create/update body
type ProductRequest struct {
	TenantID     *string `json:"tenant_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	InterestRate float64 `json:"interest_rate"`
	MinAmount    float64 `json:"min_amount"`
	MaxAmount    float64 `json:"max_amount"`
	TenureMonths string  `json:"tenure_months"`
	Active       *bool   `json:"active"`
}

// TenantRequest represents a tenant create body
type TenantRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Theme  string `json:"theme"`
	Config string `json:"config"`
}

// LeadRequest represents a lead create/update body
type LeadRequest struct {
	CustomerName string     `json:"customer_name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Source       string     `json:"source"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes"`
	NextFollowup *time.Time `json:"next_followup"`
}

func (r *ProductRequest) toInput() *services.ProductInput {
	return &services.ProductInput{
		TenantID:     r.TenantID,
		Name:         r.Name,
		Description:  r.Description,
		InterestRate: r.InterestRate,
		MinAmount:    r.MinAmount,
		MaxAmount:    r.MaxAmount,
		TenureMonths: r.TenureMonths,
		Active:       r.Active,
	}
}

func (r *LeadRequest) toInput() *services.LeadInput {
	return &services.LeadInput{
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
		Email:        r.Email,
		Source:       r.Source,
		Status:       r.Status,
		Notes:        r.Notes,
		NextFollowup: r.NextFollowup,
	}
}

// ============================================================
// Loan products
// ============================================================

// ListProducts handles the public product catalog
// @Summary List loan products
// @Description List active loan products
// @Tags Catalog
// @Accept json
// @Produce json
// @Param tenant_id query string false "Filter by tenant"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var tenantID *string
	if q := c.Query("tenant_id"); q != "" {
		tenantID = &q
	}

	products, total, err := h.catalogService.ListProducts(c.Context(), tenantID, true, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list products")
	}

	return response.Success(c, "Products retrieved successfully",
		pagination.NewResponse(products, params, total))
}

// GetProduct handles fetching one product
// @Summary Get loan product
// @Description Get a loan product by ID
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.catalogService.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.InternalServerError(c, "Failed to get product")
	}

	return response.Success(c, "Product retrieved successfully", product)
}

// CreateProduct handles product creation (back-office)
// @Summary Create loan product
// @Description Create a new loan product
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProductRequest true "Product data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.catalogService.CreateProduct(c.Context(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrTenantNotFound):
			return response.BadRequest(c, "Unknown tenant")
		default:
			return response.InternalServerError(c, "Failed to create product")
		}
	}

	return response.Created(c, "Product created successfully", product)
}

// UpdateProduct handles product updates (back-office)
// @Summary Update loan product
// @Description Update an existing loan product
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param body body ProductRequest true "Product data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.catalogService.UpdateProduct(c.Context(), c.Params("id"), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			return response.NotFound(c, "Product not found")
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update product")
		}
	}

	return response.Success(c, "Product updated successfully", product)
}

// DeleteProduct handles product deletion (back-office)
// @Summary Delete loan product
// @Description Delete a loan product
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.catalogService.DeleteProduct(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.InternalServerError(c, "Failed to delete product")
	}

	return response.Success(c, "Product deleted successfully", nil)
}

// ============================================================
// Tenants
// ============================================================

// ListTenants handles listing tenants (back-office)
// @Summary List tenants
// @Description List all tenants
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /admin/tenants [get]
func (h *CatalogHandler) ListTenants(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	tenants, total, err := h.catalogService.ListTenants(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list tenants")
	}

	return response.Success(c, "Tenants retrieved successfully",
		pagination.NewResponse(tenants, params, total))
}

// GetTenant handles fetching one tenant (back-office)
// @Summary Get tenant
// @Description Get a tenant by ID
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/tenants/{id} [get]
func (h *CatalogHandler) GetTenant(c *fiber.Ctx) error {
	tenant, err := h.catalogService.GetTenant(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return response.NotFound(c, "Tenant not found")
		}
		return response.InternalServerError(c, "Failed to get tenant")
	}

	return response.Success(c, "Tenant retrieved successfully", tenant)
}

// CreateTenant handles tenant creation (back-office)
// @Summary Create tenant
// @Description Register a new tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TenantRequest true "Tenant data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/tenants [post]
func (h *CatalogHandler) CreateTenant(c *fiber.Ctx) error {
	var req TenantRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.TenantInput{
		Name:   req.Name,
		Domain: req.Domain,
		Theme:  req.Theme,
		Config: req.Config,
	}

	tenant, err := h.catalogService.CreateTenant(c.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to create tenant")
	}

	return response.Created(c, "Tenant created successfully", tenant)
}

// ============================================================
// Leads
// ============================================================

// ListLeads handles listing the agent's leads
// @Summary List my leads
// @Description List leads recorded by the authenticated agent
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /leads [get]
func (h *CatalogHandler) ListLeads(c *fiber.Ctx) error {
	agentID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	leads, total, err := h.catalogService.ListLeadsByAgent(c.Context(), agentID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list leads")
	}

	return response.Success(c, "Leads retrieved successfully",
		pagination.NewResponse(leads, params, total))
}

// GetLead handles fetching one of the agent's leads
// @Summary Get lead
// @Description Get one of the agent's leads by ID
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lead ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{id} [get]
func (h *CatalogHandler) GetLead(c *fiber.Ctx) error {
	agentID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	lead, err := h.catalogService.GetLeadForAgent(c.Context(), c.Params("id"), agentID)
	if err != nil {
		if errors.Is(err, services.ErrLeadNotFound) {
			return response.NotFound(c, "Lead not found")
		}
		return response.InternalServerError(c, "Failed to get lead")
	}

	return response.Success(c, "Lead retrieved successfully", lead)
}

// CreateLead handles recording a new lead
// @Summary Create lead
// @Description Record a new prospect for the authenticated agent
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LeadRequest true "Lead data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /leads [post]
func (h *CatalogHandler) CreateLead(c *fiber.Ctx) error {
	agentID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req LeadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	lead, err := h.catalogService.CreateLead(c.Context(), agentID, req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to create lead")
	}

	return response.Created(c, "Lead created successfully", lead)
}

// UpdateLead handles updating one of the agent's leads
// @Summary Update lead
// @Description Update one of the agent's leads
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lead ID"
// @Param body body LeadRequest true "Lead data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{id} [put]
func (h *CatalogHandler) UpdateLead(c *fiber.Ctx) error {
	agentID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req LeadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	lead, err := h.catalogService.UpdateLead(c.Context(), c.Params("id"), agentID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLeadNotFound):
			return response.NotFound(c, "Lead not found")
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update lead")
		}
	}

	return response.Success(c, "Lead updated successfully", lead)
}

// DeleteLead handles deleting one of the agent's leads
// @Summary Delete lead
// @Description Delete one of the agent's leads
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lead ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{id} [delete]
func (h *CatalogHandler) DeleteLead(c *fiber.Ctx) error {
	agentID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.catalogService.DeleteLead(c.Context(), c.Params("id"), agentID); err != nil {
		if errors.Is(err, services.ErrLeadNotFound) {
			return response.NotFound(c, "Lead not found")
		}
		return response.InternalServerError(c, "Failed to delete lead")
	}

	return response.Success(c, "Lead deleted successfully", nil)
}
