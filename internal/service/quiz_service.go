package service

import (
	"errors"
	"time"

	"flightschool_backend/internal/model"
	"flightschool_backend/internal/repository"
	"flightschool_backend/internal/util"

	"gorm.io/gorm"
)

// PassThreshold 及格线，得分率达到 70% 判定通过
const PassThreshold = 0.7

type QuizService struct {
	CourseRepo   *repository.CourseRepository
	AttemptRepo  *repository.QuizAttemptRepository
	ProgressRepo *repository.ProgressRepository
	DB           *gorm.DB
}

func NewQuizService(
	courseRepo *repository.CourseRepository,
	attemptRepo *repository.QuizAttemptRepository,
	progressRepo *repository.ProgressRepository,
	db *gorm.DB,
) *QuizService {
	return &QuizService{
		CourseRepo:   courseRepo,
		AttemptRepo:  attemptRepo,
		ProgressRepo: progressRepo,
		DB:           db,
	}
}

// IncorrectQuestion 答错的题目及其正确选项，只出现在判分结果里
type IncorrectQuestion struct {
	QuestionID    uint `json:"questionId"`
	CorrectAnswer int  `json:"correctAnswer"`
}

// GradeResult 判分结果
type GradeResult struct {
	Score     int                 `json:"score"`
	Total     int                 `json:"total"`
	Incorrect []IncorrectQuestion `json:"incorrectQuestions"`
}

// PropagationResult 完成级联结果，三级布尔独立返回便于前端按级展示
type PropagationResult struct {
	LessonCompleted bool `json:"lessonCompleted"`
	ModuleCompleted bool `json:"moduleCompleted"`
	CourseCompleted bool `json:"courseCompleted"`
}

// SubmitResult 测验提交响应
type SubmitResult struct {
	AttemptID string              `json:"attemptId"`
	Score     int                 `json:"score"`
	Total     int                 `json:"total"`
	Incorrect []IncorrectQuestion `json:"incorrectQuestions"`
	PropagationResult
	DuplicateSync bool `json:"duplicateSync,omitempty"`
}

// Grade 按题目正确选项对作答判分，纯函数：
// 未匹配到题目的作答静默忽略；Total 恒为该课题目数
func Grade(questions []model.QuizQuestion, answers []model.AttemptAnswer) GradeResult {
	byID := make(map[uint]model.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := GradeResult{
		Total:     len(questions),
		Incorrect: []IncorrectQuestion{},
	}
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		if a.Answer == q.CorrectOption {
			result.Score++
		} else {
			result.Incorrect = append(result.Incorrect, IncorrectQuestion{
				QuestionID:    q.ID,
				CorrectAnswer: q.CorrectOption,
			})
		}
	}
	return result
}

// Passed 判定是否通过
func (r GradeResult) Passed() bool {
	return r.Total > 0 && float64(r.Score)/float64(r.Total) >= PassThreshold
}

// SubmitQuiz 在线提交：判分 + 留痕 + 完成级联，三者同一事务提交
func (s *QuizService) SubmitQuiz(tenantID, studentID, lessonID uint, answers []model.AttemptAnswer) (*SubmitResult, error) {
	lesson, err := s.findLesson(tenantID, lessonID)
	if err != nil {
		return nil, err
	}

	return s.gradeAndPersist(tenantID, studentID, lesson, answers, model.AttemptOnline, "")
}

// SyncOfflineAttempt 离线补交：
// (tenant, student, lesson, clientId) 命中既有记录时直接返回存量结果，
// 不重复判分也不重复触发完成级联
func (s *QuizService) SyncOfflineAttempt(tenantID, studentID, lessonID uint, clientID string, answers []model.AttemptAnswer) (*SubmitResult, error) {
	lesson, err := s.findLesson(tenantID, lessonID)
	if err != nil {
		return nil, err
	}

	existing, err := s.AttemptRepo.FindOffline(tenantID, studentID, lessonID, clientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &SubmitResult{
			AttemptID:     existing.ID,
			Score:         existing.Score,
			Total:         existing.Total,
			Incorrect:     []IncorrectQuestion{},
			DuplicateSync: true,
		}, nil
	}

	return s.gradeAndPersist(tenantID, studentID, lesson, answers, model.AttemptOffline, clientID)
}

// CompleteTextLesson 文本课直接按通过处理，只跑完成级联不留判分记录
func (s *QuizService) CompleteTextLesson(tenantID, studentID, lessonID uint) (*PropagationResult, error) {
	lesson, err := s.findLesson(tenantID, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Type != model.LessonText {
		return nil, util.ErrLessonNotFound
	}

	var result PropagationResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.propagate(tx, tenantID, studentID, lesson, true)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *QuizService) findLesson(tenantID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.CourseRepo.FindLesson(tenantID, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// gradeAndPersist 判分后在单个事务内写入 QuizAttempt 并执行完成级联，
// 崩溃不会留下「有判分记录但进度不一致」的中间态
func (s *QuizService) gradeAndPersist(tenantID, studentID uint, lesson *model.Lesson, answers []model.AttemptAnswer, source model.AttemptSource, externalID string) (*SubmitResult, error) {
	grade := Grade(lesson.Questions, answers)
	passed := grade.Passed()

	attempt := &model.QuizAttempt{
		TenantID:   tenantID,
		StudentID:  studentID,
		LessonID:   lesson.ID,
		Score:      grade.Score,
		Total:      grade.Total,
		Answers:    answers,
		Source:     source,
		ExternalID: externalID,
	}

	var propagation PropagationResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		var txErr error
		propagation, txErr = s.propagate(tx, tenantID, studentID, lesson, passed)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		AttemptID:         attempt.ID,
		Score:             grade.Score,
		Total:             grade.Total,
		Incorrect:         grade.Incorrect,
		PropagationResult: propagation,
	}, nil
}

// propagate 完成级联：课 -> 模块 -> 课程，逐级严格短路
// 进度只前进不回退；已完成行的 completed_at 不被覆盖
func (s *QuizService) propagate(tx *gorm.DB, tenantID, studentID uint, lesson *model.Lesson, passed bool) (PropagationResult, error) {
	var result PropagationResult
	now := time.Now()

	// 1. 课级
	var lp model.LessonProgress
	err := tx.Where("tenant_id = ? AND student_id = ? AND lesson_id = ?",
		tenantID, studentID, lesson.ID).First(&lp).Error
	notFound := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !notFound {
		return result, err
	}

	if !passed {
		// 未通过：只在没有进度行时落一条 in_progress，已完成的不降级
		if notFound {
			lp = model.LessonProgress{
				TenantID:  tenantID,
				StudentID: studentID,
				LessonID:  lesson.ID,
				Status:    model.ProgressInProgress,
			}
			if err := tx.Create(&lp).Error; err != nil {
				return result, err
			}
		}
		return result, nil
	}

	if notFound {
		lp = model.LessonProgress{
			TenantID:    tenantID,
			StudentID:   studentID,
			LessonID:    lesson.ID,
			Status:      model.ProgressCompleted,
			CompletedAt: &now,
		}
		if err := tx.Create(&lp).Error; err != nil {
			return result, err
		}
	} else if lp.Status != model.ProgressCompleted {
		if err := tx.Model(&lp).Updates(map[string]interface{}{
			"status":       model.ProgressCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return result, err
		}
	}
	result.LessonCompleted = true

	// 2. 模块级：模块内全部课都有完成行才算完成
	var totalLessons int64
	if err := tx.Model(&model.Lesson{}).
		Where("tenant_id = ? AND module_id = ?", tenantID, lesson.ModuleID).
		Count(&totalLessons).Error; err != nil {
		return result, err
	}
	var completedLessons int64
	if err := tx.Model(&model.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.tenant_id = ? AND lesson_progress.student_id = ? AND lesson_progress.status = ? AND lessons.module_id = ?",
			tenantID, studentID, model.ProgressCompleted, lesson.ModuleID).
		Count(&completedLessons).Error; err != nil {
		return result, err
	}

	if totalLessons == 0 || completedLessons < totalLessons {
		return result, nil
	}
	if err := s.upsertModuleProgress(tx, tenantID, studentID, lesson.ModuleID, now); err != nil {
		return result, err
	}
	result.ModuleCompleted = true

	// 3. 课程级：同样的口径上提一级
	var mod model.CourseModule
	if err := tx.Where("tenant_id = ? AND id = ?", tenantID, lesson.ModuleID).
		First(&mod).Error; err != nil {
		return result, err
	}

	var totalModules int64
	if err := tx.Model(&model.CourseModule{}).
		Where("tenant_id = ? AND course_id = ?", tenantID, mod.CourseID).
		Count(&totalModules).Error; err != nil {
		return result, err
	}
	var completedModules int64
	if err := tx.Model(&model.ModuleProgress{}).
		Joins("JOIN course_modules ON course_modules.id = module_progress.module_id").
		Where("module_progress.tenant_id = ? AND module_progress.student_id = ? AND module_progress.status = ? AND course_modules.course_id = ?",
			tenantID, studentID, model.ProgressCompleted, mod.CourseID).
		Count(&completedModules).Error; err != nil {
		return result, err
	}

	if totalModules == 0 || completedModules < totalModules {
		return result, nil
	}
	if err := s.upsertCourseProgress(tx, tenantID, studentID, mod.CourseID, now); err != nil {
		return result, err
	}
	result.CourseCompleted = true

	return result, nil
}

func (s *QuizService) upsertModuleProgress(tx *gorm.DB, tenantID, studentID, moduleID uint, now time.Time) error {
	var mp model.ModuleProgress
	err := tx.Where("tenant_id = ? AND student_id = ? AND module_id = ?",
		tenantID, studentID, moduleID).First(&mp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		mp = model.ModuleProgress{
			TenantID:    tenantID,
			StudentID:   studentID,
			ModuleID:    moduleID,
			Status:      model.ProgressCompleted,
			CompletedAt: &now,
		}
		return tx.Create(&mp).Error
	}
	if err != nil {
		return err
	}
	if mp.Status == model.ProgressCompleted {
		return nil
	}
	return tx.Model(&mp).Updates(map[string]interface{}{
		"status":       model.ProgressCompleted,
		"completed_at": now,
	}).Error
}

func (s *QuizService) upsertCourseProgress(tx *gorm.DB, tenantID, studentID, courseID uint, now time.Time) error {
	var cp model.CourseProgress
	err := tx.Where("tenant_id = ? AND student_id = ? AND course_id = ?",
		tenantID, studentID, courseID).First(&cp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cp = model.CourseProgress{
			TenantID:    tenantID,
			StudentID:   studentID,
			CourseID:    courseID,
			Status:      model.ProgressCompleted,
			CompletedAt: &now,
		}
		return tx.Create(&cp).Error
	}
	if err != nil {
		return err
	}
	if cp.Status == model.ProgressCompleted {
		return nil
	}
	return tx.Model(&cp).Updates(map[string]interface{}{
		"status":       model.ProgressCompleted,
		"completed_at": now,
	}).Error
}
