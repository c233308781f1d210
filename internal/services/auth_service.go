package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gosimple/slug"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

var allowedRoles = map[string]bool{RoleAdmin: true, RoleManager: true, RoleStaff: true}

type AuthService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewAuthService(repo *repositories.Repository, cfg *config.Config) *AuthService {
	return &AuthService{repo: repo, cfg: cfg}
}

type LoginResponse struct {
	Token  string         `json:"token"`
	User   *models.User   `json:"user"`
	Tenant *models.Tenant `json:"tenant,omitempty"`
}

type SignupRequest struct {
	BusinessName string `json:"business_name" validate:"required,min=2,max=120"`
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
}

// Signup creates a tenant together with its first admin user.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if existing, _ := s.repo.UserRepo.GetUserByEmail(ctx, email); existing != nil {
		return nil, NewServiceError("email already registered", ErrConflict, nil)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, NewServiceError(err.Error(), ErrInvalidInput, err)
	}

	tenantSlug, err := s.uniqueTenantSlug(ctx, req.BusinessName)
	if err != nil {
		return nil, err
	}

	tenant := &models.Tenant{Name: strings.TrimSpace(req.BusinessName), Slug: tenantSlug}
	user := &models.User{
		Email:    email,
		Password: hashedPassword,
		FullName: strings.TrimSpace(req.FullName),
		Role:     RoleAdmin,
		IsActive: true,
	}

	err = s.repo.Transaction(ctx, func(tx *repositories.Repository) error {
		if err := tx.TenantRepo.CreateTenant(ctx, tenant); err != nil {
			return err
		}
		user.TenantID = tenant.ID
		return tx.UserRepo.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, dbError("failed to create account", err)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	user.Password = ""
	return &LoginResponse{Token: token, User: user, Tenant: tenant}, nil
}

func (s *AuthService) uniqueTenantSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", invalid("business name must contain letters or digits")
	}

	candidate := base
	for i := 2; i < 100; i++ {
		_, err := s.repo.TenantRepo.GetTenantBySlug(ctx, candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", dbError("failed to check tenant slug", err)
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", NewServiceError("could not allocate a tenant slug", ErrConflict, nil)
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	user, err := s.repo.UserRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, NewServiceError("invalid credentials", ErrInvalidCredentials, nil)
	}
	if !user.IsActive {
		return nil, NewServiceError("invalid credentials", ErrInvalidCredentials, nil)
	}

	if err := utils.CheckPassword(password, user.Password); err != nil {
		return nil, NewServiceError("invalid credentials", ErrInvalidCredentials, nil)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	user.Password = ""
	return &LoginResponse{
		Token: token,
		User:  user,
	}, nil
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
	Role     string `json:"role" validate:"required,oneof=admin manager staff"`
}

// CreateUser adds a user to the caller's tenant.
func (s *AuthService) CreateUser(ctx context.Context, tenantID string, req CreateUserRequest) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	role := strings.TrimSpace(strings.ToLower(req.Role))

	if !allowedRoles[role] {
		return nil, invalid("invalid role: must be admin, manager, or staff")
	}

	tenant, err := s.repo.TenantRepo.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, lookupError("tenant", err)
	}

	// Check if user already exists
	if existing, _ := s.repo.UserRepo.GetUserByEmail(ctx, email); existing != nil {
		return nil, NewServiceError("email already registered", ErrConflict, nil)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, NewServiceError(err.Error(), ErrInvalidInput, err)
	}

	user := &models.User{
		TenantID: tenant.ID,
		Email:    email,
		Password: hashedPassword,
		FullName: strings.TrimSpace(req.FullName),
		Role:     role,
		IsActive: true,
	}

	if err := s.repo.UserRepo.CreateUser(ctx, user); err != nil {
		return nil, dbError("failed to create user", err)
	}

	// Remove password from response
	user.Password = ""
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, tenantID string) ([]models.User, error) {
	users, err := s.repo.UserRepo.ListUsers(ctx, tenantID)
	if err != nil {
		return nil, dbError("failed to list users", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (s *AuthService) generateJWT(user *models.User) (string, error) {
	ttl := s.cfg.JWTTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"user_id":   user.ID.String(),
		"tenant_id": user.TenantID.String(),
		"email":     user.Email,
		"role":      user.Role,
		"exp":       time.Now().Add(ttl).Unix(),
		"iat":       time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) GetUserProfile(ctx context.Context, tenantID, userID string) (*models.User, error) {
	user, err := s.repo.UserRepo.GetUserByID(ctx, tenantID, userID)
	if err != nil {
		return nil, lookupError("user", err)
	}

	// Remove sensitive data
	user.Password = ""
	return user, nil
}
