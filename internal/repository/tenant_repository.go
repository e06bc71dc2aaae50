package repository

import (
	"flightschool_backend/internal/model"

	"gorm.io/gorm"
)

type TenantRepository struct {
	DB *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{DB: db}
}

func (r *TenantRepository) Create(tenant *model.Tenant) error {
	return r.DB.Create(tenant).Error
}

func (r *TenantRepository) FindByCode(code string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.DB.Where("code = ?", code).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) FindByID(id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.DB.First(&tenant, id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
