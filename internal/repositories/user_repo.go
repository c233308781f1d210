package repositories

import (
	"context"
	"errors"

	"github.com/peritasorg/eventis-sub000/internal/models"

	"gorm.io/gorm"
)

type tenantRepo struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	if tenant == nil {
		return errors.New("tenant cannot be nil")
	}
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepo) GetTenantByID(ctx context.Context, id string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, wrapFind(err, "tenant", id)
	}
	return &tenant, nil
}

func (r *tenantRepo) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, wrapFind(err, "tenant", slug)
	}
	return &tenant, nil
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

// GetUserByEmail is not tenant scoped: it is how login finds the tenant.
func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapFind(err, "user", email)
	}
	return &user, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, tenantID, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&user).Error; err != nil {
		return nil, wrapFind(err, "user", id)
	}
	return &user, nil
}

func (r *userRepo) ListUsers(ctx context.Context, tenantID string) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
