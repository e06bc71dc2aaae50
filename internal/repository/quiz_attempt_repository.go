package repository

import (
	"errors"

	"flightschool_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

// FindOffline 按离线幂等键查找既有判分记录
func (r *QuizAttemptRepository) FindOffline(tenantID, studentID, lessonID uint, externalID string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Where(
		"tenant_id = ? AND student_id = ? AND lesson_id = ? AND source = ? AND external_id = ?",
		tenantID, studentID, lessonID, model.AttemptOffline, externalID,
	).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *QuizAttemptRepository) ListByStudent(tenantID, studentID, lessonID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("tenant_id = ? AND student_id = ? AND lesson_id = ?",
		tenantID, studentID, lessonID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}
