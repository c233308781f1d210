package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/models"
	"github.com/peritasorg/eventis-sub000/internal/repositories"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CustomerService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewCustomerService(repo *repositories.Repository, cfg *config.Config) *CustomerService {
	return &CustomerService{repo: repo, cfg: cfg}
}

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=40"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=40"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

func (s *CustomerService) CreateCustomer(ctx context.Context, tenantID string, req CreateCustomerRequest) (*models.Customer, error) {
	tid, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, invalid("invalid tenant id")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" {
		return nil, invalid("customer name is required")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return nil, invalid("invalid email format")
		}
		existing, err := s.repo.CustomerRepo.GetCustomerByEmail(ctx, tenantID, req.Email)
		if err == nil && existing != nil {
			return nil, NewServiceError(fmt.Sprintf("customer with email %s already exists", req.Email), ErrConflict, nil)
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, dbError("failed to check customer email", err)
		}
	}

	customer := &models.Customer{TenantID: tid, IsActive: true}
	if err := copier.Copy(customer, &req); err != nil {
		return nil, fmt.Errorf("copy customer fields: %w", err)
	}

	if err := s.repo.CustomerRepo.CreateCustomer(ctx, customer); err != nil {
		return nil, dbError("failed to create customer", err)
	}
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, tenantID, id string) (*models.Customer, error) {
	customer, err := s.repo.CustomerRepo.GetCustomerByID(ctx, tenantID, id)
	if err != nil {
		return nil, lookupError("customer", err)
	}
	return customer, nil
}

// UpdateCustomer applies the non-nil members of req.
func (s *CustomerService) UpdateCustomer(ctx context.Context, tenantID, id string, req UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.repo.CustomerRepo.GetCustomerByID(ctx, tenantID, id)
	if err != nil {
		return nil, lookupError("customer", err)
	}

	if err := copier.CopyWithOption(customer, &req, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, fmt.Errorf("copy customer fields: %w", err)
	}
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(strings.ToLower(customer.Email))
	if customer.Name == "" {
		return nil, invalid("customer name is required")
	}

	if err := s.repo.CustomerRepo.UpdateCustomer(ctx, customer); err != nil {
		return nil, dbError("failed to update customer", err)
	}
	return customer, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, tenantID string, page, pageSize int, search string) ([]models.Customer, int64, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	customers, total, err := s.repo.CustomerRepo.ListCustomers(ctx, tenantID, offset, pageSize, search)
	if err != nil {
		return nil, 0, 0, dbError("failed to list customers", err)
	}

	totalPages := (int(total) + pageSize - 1) / pageSize
	return customers, total, totalPages, nil
}

type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// ImportCustomersCSV creates one customer per row: name, email, phone,
// address, notes. Only the name is required. Rows fail individually.
func (s *CustomerService) ImportCustomersCSV(ctx context.Context, tenantID string, rows [][]string) *ImportResult {
	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: insufficient data", i+1))
			continue
		}

		req := CreateCustomerRequest{Name: column(row, 0), Email: column(row, 1), Phone: column(row, 2), Address: column(row, 3), Notes: column(row, 4)}
		if _, err := s.CreateCustomer(ctx, tenantID, req); err != nil {
			result.Failed++
			msg := err.Error()
			if se, ok := AsServiceError(err); ok {
				msg = se.Message
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", i+1, msg))
			continue
		}
		result.Success++
	}

	return result
}

func column(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
