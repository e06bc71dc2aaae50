package model

import "time"

type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// 进度行按 (tenant, student, 实体) 唯一，首次交互时惰性创建
// 状态只会前进（in_progress -> completed），不允许回退

// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel
	TenantID    uint           `gorm:"not null;uniqueIndex:uniq_lesson_progress" json:"tenantId"`
	StudentID   uint           `gorm:"not null;uniqueIndex:uniq_lesson_progress" json:"studentId"`
	LessonID    uint           `gorm:"not null;uniqueIndex:uniq_lesson_progress" json:"lessonId"`
	Status      ProgressStatus `gorm:"size:20;not null;default:'in_progress'" json:"status"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// swagger:model ModuleProgress
type ModuleProgress struct {
	BaseModel
	TenantID    uint           `gorm:"not null;uniqueIndex:uniq_module_progress" json:"tenantId"`
	StudentID   uint           `gorm:"not null;uniqueIndex:uniq_module_progress" json:"studentId"`
	ModuleID    uint           `gorm:"not null;uniqueIndex:uniq_module_progress" json:"moduleId"`
	Status      ProgressStatus `gorm:"size:20;not null;default:'in_progress'" json:"status"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

// swagger:model CourseProgress
type CourseProgress struct {
	BaseModel
	TenantID    uint           `gorm:"not null;uniqueIndex:uniq_course_progress" json:"tenantId"`
	StudentID   uint           `gorm:"not null;uniqueIndex:uniq_course_progress" json:"studentId"`
	CourseID    uint           `gorm:"not null;uniqueIndex:uniq_course_progress" json:"courseId"`
	Status      ProgressStatus `gorm:"size:20;not null;default:'in_progress'" json:"status"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}
