package repository

import (
	"flightschool_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) ListByTenant(tenantID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("tenant_id = ?", tenantID).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindByID(tenantID, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("course_modules.`order`")
	}).Preload("Modules.Lessons").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindModule(tenantID, id uint) (*model.CourseModule, error) {
	var mod model.CourseModule
	err := r.DB.Where("tenant_id = ? AND id = ?", tenantID, id).First(&mod).Error
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

// UpdateLessonAttachment 更新课件附件地址
func (r *CourseRepository) UpdateLessonAttachment(tenantID, id uint, url string) error {
	return r.DB.Model(&model.Lesson{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("attachment_url", url).Error
}

// FindLesson 带题目加载，判分路径使用；对外下发前需剥离正确答案
func (r *CourseRepository) FindLesson(tenantID, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Preload("Questions").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}
