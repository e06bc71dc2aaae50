package repository

import (
	"time"

	"flightschool_backend/internal/model"

	"gorm.io/gorm"
)

type BookingRepository struct {
	DB *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) Create(b *model.Booking) error {
	return r.DB.Create(b).Error
}

// FindByID 租户内查询，带教员/学员详情
// 租户不匹配与记录不存在返回同样的错误，避免租户枚举
func (r *BookingRepository) FindByID(tenantID uint, id string) (*model.Booking, error) {
	var b model.Booking
	err := r.DB.Preload("Instructor").Preload("Student").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByTenant(tenantID uint) ([]model.Booking, error) {
	var list []model.Booking
	err := r.DB.Preload("Instructor").Preload("Student").
		Where("tenant_id = ?", tenantID).
		Order("start_time").
		Find(&list).Error
	return list, err
}

// HasActiveOverlap 同一教员 approved/assigned 预约的半开区间重叠检测
// existing.start < new.end AND existing.end > new.start
func (r *BookingRepository) HasActiveOverlap(tenantID, instructorID uint, start, end time.Time) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Booking{}).
		Where("tenant_id = ? AND instructor_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			tenantID, instructorID,
			[]model.BookingStatus{model.BookingApproved, model.BookingAssigned},
			end, start).
		Count(&count).Error
	return count > 0, err
}

// ApplyTransition 以持久化状态为准的条件更新：只有当前状态仍为 from 时才写入，
// 返回是否真正更新（并发下丢失竞争的一方拿到 false）
func (r *BookingRepository) ApplyTransition(tenantID uint, id string, from model.BookingStatus, updates map[string]interface{}) (bool, error) {
	result := r.DB.Model(&model.Booking{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetEscalationRequired 仅由升级 worker 调用
func (r *BookingRepository) SetEscalationRequired(tenantID uint, id string) error {
	return r.DB.Model(&model.Booking{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("escalation_required", true).Error
}
