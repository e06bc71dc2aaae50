package repository

import (
	"time"

	"flightschool_backend/internal/model"

	"gorm.io/gorm"
)

type AvailabilityRepository struct {
	DB *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{DB: db}
}

func (r *AvailabilityRepository) Create(a *model.Availability) error {
	return r.DB.Create(a).Error
}

func (r *AvailabilityRepository) Update(a *model.Availability) error {
	return r.DB.Save(a).Error
}

func (r *AvailabilityRepository) Delete(tenantID uint, id string) error {
	result := r.DB.Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&model.Availability{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AvailabilityRepository) FindByID(tenantID uint, id string) (*model.Availability, error) {
	var a model.Availability
	err := r.DB.Where("tenant_id = ? AND id = ?", tenantID, id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AvailabilityRepository) ListByInstructor(tenantID, instructorID uint) ([]model.Availability, error) {
	var list []model.Availability
	err := r.DB.Where("tenant_id = ? AND instructor_id = ?", tenantID, instructorID).
		Order("start_time").
		Find(&list).Error
	return list, err
}

// HasOverlap 半开区间重叠检测 [start,end)，excludeID 用于更新时排除自身
func (r *AvailabilityRepository) HasOverlap(tenantID, instructorID uint, start, end time.Time, excludeID string) (bool, error) {
	var count int64
	query := r.DB.Model(&model.Availability{}).
		Where("tenant_id = ? AND instructor_id = ? AND start_time < ? AND end_time > ?",
			tenantID, instructorID, end, start)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// CoversWindow 是否存在完整覆盖 [start,end) 的开放时间窗
func (r *AvailabilityRepository) CoversWindow(tenantID, instructorID uint, start, end time.Time) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Availability{}).
		Where("tenant_id = ? AND instructor_id = ? AND start_time <= ? AND end_time >= ?",
			tenantID, instructorID, start, end).
		Count(&count).Error
	return count > 0, err
}
