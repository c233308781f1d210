package handlers

import (
	"github.com/peritasorg/eventis-sub000/internal/middleware"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup creates a tenant and its first admin
// @Summary Tenant signup
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.SignupRequest true "Business and admin details"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /auth/signup [post]
func (h *Handler) Signup(c *fiber.Ctx) error {
	req := middleware.Body[services.SignupRequest](c)

	resp, err := h.authSvc.Signup(c.UserContext(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, resp, "Account created successfully", fiber.StatusCreated)
}

// Login handles user authentication
// @Summary User login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	req := middleware.Body[LoginRequest](c)

	loginResp, err := h.authSvc.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, loginResp, "Login successful")
}

// CreateUser adds a user to the caller's tenant (Admin only)
// @Summary Create user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateUserRequest true "User data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /admin/users [post]
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}
	req := middleware.Body[services.CreateUserRequest](c)

	user, err := h.authSvc.CreateUser(c.UserContext(), tenantID, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, user, "User created successfully", fiber.StatusCreated)
}

// ListUsers returns the tenant's users (Admin only)
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	tenantID, _, err := scope(c)
	if err != nil {
		return err
	}

	users, err := h.authSvc.ListUsers(c.UserContext(), tenantID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, users, "Users retrieved successfully")
}

// GetProfile returns current user profile
// @Summary Get user profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /profile [get]
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	tenantID, userID, err := scope(c)
	if err != nil {
		return err
	}

	user, err := h.authSvc.GetUserProfile(c.UserContext(), tenantID, userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return utils.Success(c, user, "Profile retrieved successfully")
}
