package repository

import (
	"errors"

	"flightschool_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// CourseSummary 进度汇总视图
type CourseSummary struct {
	CourseID         uint                 `json:"courseId"`
	Status           model.ProgressStatus `json:"status"`
	TotalModules     int                  `json:"totalModules"`
	CompletedModules int                  `json:"completedModules"`
	TotalLessons     int                  `json:"totalLessons"`
	CompletedLessons int                  `json:"completedLessons"`
}

func (r *ProgressRepository) GetCourseSummary(tenantID, studentID, courseID uint) (*CourseSummary, error) {
	summary := &CourseSummary{CourseID: courseID, Status: model.ProgressInProgress}

	var cp model.CourseProgress
	err := r.DB.Where("tenant_id = ? AND student_id = ? AND course_id = ?",
		tenantID, studentID, courseID).First(&cp).Error
	if err == nil {
		summary.Status = cp.Status
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var totalModules int64
	if err := r.DB.Model(&model.CourseModule{}).
		Where("tenant_id = ? AND course_id = ?", tenantID, courseID).
		Count(&totalModules).Error; err != nil {
		return nil, err
	}
	summary.TotalModules = int(totalModules)

	var completedModules int64
	if err := r.DB.Model(&model.ModuleProgress{}).
		Joins("JOIN course_modules ON course_modules.id = module_progress.module_id").
		Where("module_progress.tenant_id = ? AND module_progress.student_id = ? AND module_progress.status = ? AND course_modules.course_id = ?",
			tenantID, studentID, model.ProgressCompleted, courseID).
		Count(&completedModules).Error; err != nil {
		return nil, err
	}
	summary.CompletedModules = int(completedModules)

	var totalLessons int64
	if err := r.DB.Model(&model.Lesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("lessons.tenant_id = ? AND course_modules.course_id = ?", tenantID, courseID).
		Count(&totalLessons).Error; err != nil {
		return nil, err
	}
	summary.TotalLessons = int(totalLessons)

	var completedLessons int64
	if err := r.DB.Model(&model.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("lesson_progress.tenant_id = ? AND lesson_progress.student_id = ? AND lesson_progress.status = ? AND course_modules.course_id = ?",
			tenantID, studentID, model.ProgressCompleted, courseID).
		Count(&completedLessons).Error; err != nil {
		return nil, err
	}
	summary.CompletedLessons = int(completedLessons)

	return summary, nil
}
