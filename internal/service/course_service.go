package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"flightschool_backend/internal/model"
	"flightschool_backend/internal/repository"
	"flightschool_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
	Storage      *StorageService
}

func NewCourseService(courseRepo *repository.CourseRepository, progressRepo *repository.ProgressRepository, storage *StorageService) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		Storage:      storage,
	}
}

func (s *CourseService) ListCourses(tenantID uint) ([]model.Course, error) {
	return s.CourseRepo.ListByTenant(tenantID)
}

func (s *CourseService) GetCourse(tenantID, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(tenantID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return course, nil
}

// StudentQuestion 判分前的题目视图，绝不携带正确选项
type StudentQuestion struct {
	ID       uint     `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// StudentLesson 学员课视图
type StudentLesson struct {
	ID            uint              `json:"id"`
	ModuleID      uint              `json:"moduleId"`
	Title         string            `json:"title"`
	Type          model.LessonType  `json:"type"`
	Content       string            `json:"content"`
	AttachmentURL string            `json:"attachmentUrl,omitempty"`
	Questions     []StudentQuestion `json:"questions,omitempty"`
}

// GetLessonForStudent 下发给学员的课内容，MCQ 题目剥离正确答案
func (s *CourseService) GetLessonForStudent(tenantID, lessonID uint) (*StudentLesson, error) {
	lesson, err := s.CourseRepo.FindLesson(tenantID, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	view := &StudentLesson{
		ID:            lesson.ID,
		ModuleID:      lesson.ModuleID,
		Title:         lesson.Title,
		Type:          lesson.Type,
		Content:       lesson.Content,
		AttachmentURL: lesson.AttachmentURL,
	}
	for _, q := range lesson.Questions {
		view.Questions = append(view.Questions, StudentQuestion{
			ID:       q.ID,
			Question: q.Question,
			Options:  q.Options,
		})
	}
	return view, nil
}

func (s *CourseService) GetCourseProgress(tenantID, studentID, courseID uint) (*repository.CourseSummary, error) {
	if _, err := s.GetCourse(tenantID, courseID); err != nil {
		return nil, err
	}
	return s.ProgressRepo.GetCourseSummary(tenantID, studentID, courseID)
}

// UploadLessonAttachment 上传课件附件（航图/讲义），更新课的附件地址
func (s *CourseService) UploadLessonAttachment(ctx context.Context, tenantID, lessonID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	lesson, err := s.CourseRepo.FindLesson(tenantID, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", util.ErrLessonNotFound
	}
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("lessons/%d/%d_%s", lesson.ID, time.Now().Unix(), filename)
	url, err := s.Storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", err
	}

	if err := s.CourseRepo.UpdateLessonAttachment(tenantID, lessonID, url); err != nil {
		return "", err
	}
	return url, nil
}
