package repository

import (
	"flightschool_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(tenantID, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Where("tenant_id = ? AND id = ?", tenantID, id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(tenantID uint, email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("tenant_id = ? AND email = ?", tenantID, email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAdmins 返回租户下全部管理员，升级通知的收件人
func (r *UserRepository) FindAdmins(tenantID uint) ([]model.User, error) {
	var admins []model.User
	err := r.DB.Where("tenant_id = ? AND role = ? AND disabled = ?", tenantID, model.Admin, false).
		Find(&admins).Error
	return admins, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}
