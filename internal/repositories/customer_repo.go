package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/peritasorg/eventis-sub000/internal/models"

	"gorm.io/gorm"
)

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return errors.New("customer cannot be nil")
	}
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepo) GetCustomerByID(ctx context.Context, tenantID, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&customer).Error; err != nil {
		return nil, wrapFind(err, "customer", id)
	}
	return &customer, nil
}

func (r *customerRepo) GetCustomerByEmail(ctx context.Context, tenantID, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND LOWER(email) = ?", tenantID, strings.ToLower(email)).
		First(&customer).Error; err != nil {
		return nil, wrapFind(err, "customer", email)
	}
	return &customer, nil
}

func (r *customerRepo) ListCustomers(ctx context.Context, tenantID string, offset, limit int, search string) ([]models.Customer, int64, error) {
	offset, limit = clampPage(offset, limit)

	var customers []models.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Customer{}).Where("tenant_id = ? AND is_active = ?", tenantID, true)
	if search != "" {
		term := likeTerm(search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", term, term, term)
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func (r *customerRepo) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *customerRepo) CountCustomers(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
