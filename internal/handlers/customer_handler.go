package handlers

import (
	"github.com/peritasorg/eventis-sub000/internal/middleware"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// ListCustomers returns paginated list of customers
// @Summary List customers
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param search query string false "Name, email or phone"
// @Success 200 {object} utils.Response
// @Router /customers [get]
func (h *Handler) ListCustomers(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	page, pageSize := pagination(c)

	customers, total, _, err := h.customerSvc.ListCustomers(c.UserContext(), tenantID, page, pageSize, c.Query("search"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.SuccessWithMeta(c, customers, utils.NewMeta(page, pageSize, total), "Customers retrieved successfully")
}

// CreateCustomer adds a customer
// @Summary Create customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateCustomerRequest true "Customer data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /customers [post]
func (h *Handler) CreateCustomer(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	req := middleware.Body[services.CreateCustomerRequest](c)

	customer, err := h.customerSvc.CreateCustomer(c.UserContext(), tenantID, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, customer, "Customer created successfully", fiber.StatusCreated)
}

// GetCustomer returns customer details
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /customers/{id} [get]
func (h *Handler) GetCustomer(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "customer")
	if err != nil {
		return err
	}

	customer, err := h.customerSvc.GetCustomer(c.UserContext(), tenantID, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, customer, "Customer retrieved successfully")
}

// UpdateCustomer updates customer details
// @Summary Update customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Param request body services.UpdateCustomerRequest true "Customer data"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /customers/{id} [put]
func (h *Handler) UpdateCustomer(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "customer")
	if err != nil {
		return err
	}
	req := middleware.Body[services.UpdateCustomerRequest](c)

	customer, err := h.customerSvc.UpdateCustomer(c.UserContext(), tenantID, id, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, customer, "Customer updated successfully")
}

// ImportCustomers imports customers from CSV
// @Summary Import customers
// @Description Columns: name, email, phone, address, notes. The first row is a header.
// @Tags Customers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /customers/import [post]
func (h *Handler) ImportCustomers(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, "CSV file is required", fiber.StatusBadRequest)
	}
	if err := utils.ValidateCSVFile(file, h.cfg.MaxUploadSize); err != nil {
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)
	}

	rows, err := utils.ReadCSVUpload(file, true)
	if err != nil {
		return utils.Error(c, "Invalid CSV format", fiber.StatusBadRequest)
	}
	if len(rows) == 0 {
		return utils.Error(c, "CSV file is empty or missing header", fiber.StatusBadRequest)
	}

	result := h.customerSvc.ImportCustomersCSV(c.UserContext(), tenantID, rows)

	return utils.Success(c, result, "Import completed")
}
