package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/model"
)

// TenantService is plain CRUD over tenants.
type TenantService struct {
	db *gorm.DB
}

// TenantInput carries tenant fields for create and update.
type TenantInput struct {
	FullName   string
	Phone      string
	Email      string
	IDProofURL string
}

func (in TenantInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return Invalid("tenant name is required")
	}
	return nil
}

func (s *TenantService) Create(ctx context.Context, in TenantInput) (*model.Tenant, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t := model.Tenant{
		FullName:   strings.TrimSpace(in.FullName),
		Phone:      in.Phone,
		Email:      in.Email,
		IDProofURL: in.IDProofURL,
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TenantService) Update(ctx context.Context, id uint, in TenantInput) (*model.Tenant, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var t model.Tenant
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	t.FullName = strings.TrimSpace(in.FullName)
	t.Phone = in.Phone
	t.Email = in.Email
	t.IDProofURL = in.IDProofURL
	if err := s.db.WithContext(ctx).Save(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TenantService) Get(ctx context.Context, id uint) (*model.Tenant, error) {
	var t model.Tenant
	err := s.db.WithContext(ctx).
		Preload("Leases", func(db *gorm.DB) *gorm.DB { return db.Order("start_date DESC") }).
		Preload("Leases.Room").
		First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tenants matching the optional name/phone search.
func (s *TenantService) List(ctx context.Context, search string) ([]model.Tenant, error) {
	q := s.db.WithContext(ctx).Order("full_name")
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR phone LIKE ?", like, like)
	}
	var out []model.Tenant
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a tenant without active leases.
func (s *TenantService) Delete(ctx context.Context, id uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Lease{}).
		Where("tenant_id = ? AND status = ?", id, model.LeaseActive).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return Invalid("tenant has an active lease")
	}
	res := s.db.WithContext(ctx).Delete(&model.Tenant{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
