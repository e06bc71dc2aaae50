package service

import (
	"errors"
	"testing"

	"flightschool_backend/internal/model"
	"flightschool_backend/internal/util"

	"gorm.io/gorm"
)

func answersFor(questions []model.QuizQuestion, correct int) []model.AttemptAnswer {
	answers := make([]model.AttemptAnswer, 0, len(questions))
	for i, q := range questions {
		answer := 0
		if i >= correct {
			answer = 3 // 错误选项
		}
		answers = append(answers, model.AttemptAnswer{QuestionID: q.ID, Answer: answer})
	}
	return answers
}

func TestGrade(t *testing.T) {
	questions := []model.QuizQuestion{
		{BaseModel: model.BaseModel{ID: 1}, CorrectOption: 0},
		{BaseModel: model.BaseModel{ID: 2}, CorrectOption: 2},
		{BaseModel: model.BaseModel{ID: 3}, CorrectOption: 1},
	}

	result := Grade(questions, []model.AttemptAnswer{
		{QuestionID: 1, Answer: 0},
		{QuestionID: 2, Answer: 2},
		{QuestionID: 3, Answer: 0},
		{QuestionID: 99, Answer: 1}, // 未知题目，静默忽略
	})

	if result.Score != 2 || result.Total != 3 {
		t.Fatalf("want 2/3, got %d/%d", result.Score, result.Total)
	}
	if len(result.Incorrect) != 1 {
		t.Fatalf("expected one incorrect entry, got %d", len(result.Incorrect))
	}
	if result.Incorrect[0].QuestionID != 3 || result.Incorrect[0].CorrectAnswer != 1 {
		t.Fatalf("incorrect entry should expose the right answer, got %+v", result.Incorrect[0])
	}
}

func TestGradePassThreshold(t *testing.T) {
	cases := []struct {
		score, total int
		passed       bool
	}{
		{7, 10, true},
		{6, 10, false},
		{3, 4, true}, // 0.75
		{2, 3, false},
		{0, 0, false}, // 无题测验永不通过
	}
	for _, tc := range cases {
		r := GradeResult{Score: tc.score, Total: tc.total}
		if r.Passed() != tc.passed {
			t.Errorf("%d/%d: want passed=%v", tc.score, tc.total, tc.passed)
		}
	}
}

func TestGradeMissingAnswers(t *testing.T) {
	questions := []model.QuizQuestion{
		{BaseModel: model.BaseModel{ID: 1}, CorrectOption: 0},
		{BaseModel: model.BaseModel{ID: 2}, CorrectOption: 0},
	}
	// 只答一题：未答不计分也不进 incorrect 列表
	result := Grade(questions, []model.AttemptAnswer{{QuestionID: 1, Answer: 0}})
	if result.Score != 1 || result.Total != 2 {
		t.Fatalf("want 1/2, got %d/%d", result.Score, result.Total)
	}
	if len(result.Incorrect) != 0 {
		t.Fatalf("unanswered questions are not incorrect, got %+v", result.Incorrect)
	}
}

func TestSubmitQuizPassCompletesCascade(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)

	course, mod, lessons := seedCourse(t, db, 1, model.LessonMCQ)
	questions := seedQuestions(t, db, 1, lessons[0].ID, 10)

	result, err := svc.SubmitQuiz(1, 42, lessons[0].ID, answersFor(questions, 8))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 8 || result.Total != 10 {
		t.Fatalf("want 8/10, got %d/%d", result.Score, result.Total)
	}
	if !result.LessonCompleted || !result.ModuleCompleted || !result.CourseCompleted {
		t.Fatalf("single-lesson course should cascade fully, got %+v", result.PropagationResult)
	}

	var lp model.LessonProgress
	if err := db.Where("tenant_id = ? AND student_id = ? AND lesson_id = ?", 1, 42, lessons[0].ID).
		First(&lp).Error; err != nil {
		t.Fatalf("lesson progress: %v", err)
	}
	if lp.Status != model.ProgressCompleted || lp.CompletedAt == nil {
		t.Fatalf("lesson progress should be completed with timestamp, got %+v", lp)
	}

	var mp model.ModuleProgress
	if err := db.Where("tenant_id = ? AND student_id = ? AND module_id = ?", 1, 42, mod.ID).
		First(&mp).Error; err != nil {
		t.Fatalf("module progress: %v", err)
	}
	if mp.Status != model.ProgressCompleted {
		t.Fatalf("module progress should be completed, got %s", mp.Status)
	}

	var cp model.CourseProgress
	if err := db.Where("tenant_id = ? AND student_id = ? AND course_id = ?", 1, 42, course.ID).
		First(&cp).Error; err != nil {
		t.Fatalf("course progress: %v", err)
	}
	if cp.Status != model.ProgressCompleted {
		t.Fatalf("course progress should be completed, got %s", cp.Status)
	}
}

func TestSubmitQuizFailRecordsInProgress(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)

	_, mod, lessons := seedCourse(t, db, 1, model.LessonMCQ)
	questions := seedQuestions(t, db, 1, lessons[0].ID, 10)

	result, err := svc.SubmitQuiz(1, 42, lessons[0].ID, answersFor(questions, 6))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.LessonCompleted || result.ModuleCompleted || result.CourseCompleted {
		t.Fatalf("60%% must not complete anything, got %+v", result.PropagationResult)
	}

	var lp model.LessonProgress
	if err := db.Where("tenant_id = ? AND student_id = ? AND lesson_id = ?", 1, 42, lessons[0].ID).
		First(&lp).Error; err != nil {
		t.Fatalf("lesson progress: %v", err)
	}
	if lp.Status != model.ProgressInProgress || lp.CompletedAt != nil {
		t.Fatalf("failed attempt should leave in_progress, got %+v", lp)
	}

	if err := db.Where("tenant_id = ? AND student_id = ? AND module_id = ?", 1, 42, mod.ID).
		First(&model.ModuleProgress{}).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("no module progress expected, got %v", err)
	}

	// 判分事件仍然留痕
	var attempts int64
	if err := db.Model(&model.QuizAttempt{}).
		Where("lesson_id = ?", lessons[0].ID).Count(&attempts).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected one attempt, got %d", attempts)
	}
}

// 进度只前进不回退：通过后的失败提交不降级，completed_at 不被覆盖
func TestProgressIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)

	_, _, lessons := seedCourse(t, db, 1, model.LessonMCQ)
	questions := seedQuestions(t, db, 1, lessons[0].ID, 10)

	if _, err := svc.SubmitQuiz(1, 42, lessons[0].ID, answersFor(questions, 10)); err != nil {
		t.Fatalf("passing submit: %v", err)
	}

	var before model.LessonProgress
	if err := db.Where("lesson_id = ? AND student_id = ?", lessons[0].ID, 42).First(&before).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}

	result, err := svc.SubmitQuiz(1, 42, lessons[0].ID, answersFor(questions, 0))
	if err != nil {
		t.Fatalf("failing submit: %v", err)
	}
	if result.LessonCompleted {
		t.Fatal("failed retake must not report completion")
	}

	var after model.LessonProgress
	if err := db.Where("lesson_id = ? AND student_id = ?", lessons[0].ID, 42).First(&after).Error; err != nil {
		t.Fatalf("reload progress: %v", err)
	}
	if after.Status != model.ProgressCompleted {
		t.Fatalf("completed progress must not downgrade, got %s", after.Status)
	}
	if after.CompletedAt == nil || !after.CompletedAt.Equal(*before.CompletedAt) {
		t.Fatalf("completed_at must not change, before %v after %v", before.CompletedAt, after.CompletedAt)
	}
}

// 模块要全部课完成才算完成，级联严格短路
func TestModuleCompletionRequiresAllLessons(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)

	_, mod, lessons := seedCourse(t, db, 1, model.LessonMCQ, model.LessonMCQ)
	q1 := seedQuestions(t, db, 1, lessons[0].ID, 4)
	q2 := seedQuestions(t, db, 1, lessons[1].ID, 4)

	result, err := svc.SubmitQuiz(1, 42, lessons[0].ID, answersFor(q1, 4))
	if err != nil {
		t.Fatalf("first lesson: %v", err)
	}
	if !result.LessonCompleted || result.ModuleCompleted {
		t.Fatalf("one of two lessons done: lesson yes, module no; got %+v", result.PropagationResult)
	}

	result, err = svc.SubmitQuiz(1, 42, lessons[1].ID, answersFor(q2, 4))
	if err != nil {
		t.Fatalf("second lesson: %v", err)
	}
	if !result.ModuleCompleted || !result.CourseCompleted {
		t.Fatalf("all lessons done should complete module and course, got %+v", result.PropagationResult)
	}

	var mp model.ModuleProgress
	if err := db.Where("module_id = ? AND student_id = ?", mod.ID, 42).First(&mp).Error; err != nil {
		t.Fatalf("module progress: %v", err)
	}
	if mp.Status != model.ProgressCompleted {
		t.Fatalf("module should be completed, got %s", mp.Status)
	}
}

func TestCompleteTextLesson(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)

	_, _, lessons := seedCourse(t, db, 1, model.LessonText, model.LessonMCQ)

	result, err := svc.CompleteTextLesson(1, 42, lessons[0].ID)
	if err != nil {
		t.Fatalf("complete text lesson: %v", err)
	}
	if !result.LessonCompleted {
		t.Fatal("text lesson should complete immediately")
	}
	if result.ModuleCompleted {
		t.Fatal("module has an unfinished mcq lesson")
	}

	// mcq 课不能走已读路径
	if _, err := svc.CompleteTextLesson(1, 42, lessons[1].ID); !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("mcq lesson must be rejected, got %v", err)
	}
}

func TestSyncOfflineAttemptIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)

	_, _, lessons := seedCourse(t, db, 1, model.LessonMCQ)
	questions := seedQuestions(t, db, 1, lessons[0].ID, 10)

	first, err := svc.SyncOfflineAttempt(1, 42, lessons[0].ID, "device-7-attempt-1", answersFor(questions, 9))
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.DuplicateSync {
		t.Fatal("first sync must not be a duplicate")
	}
	if !first.LessonCompleted {
		t.Fatal("90% should complete the lesson")
	}

	// 同 clientId 重放：返回存量结果，不再判分
	second, err := svc.SyncOfflineAttempt(1, 42, lessons[0].ID, "device-7-attempt-1", answersFor(questions, 0))
	if err != nil {
		t.Fatalf("replay sync: %v", err)
	}
	if !second.DuplicateSync {
		t.Fatal("replay must be flagged duplicateSync")
	}
	if second.AttemptID != first.AttemptID {
		t.Fatalf("replay must return the stored attempt, want %s got %s", first.AttemptID, second.AttemptID)
	}
	if second.Score != 9 || second.Total != 10 {
		t.Fatalf("replay must return stored score 9/10, got %d/%d", second.Score, second.Total)
	}

	var attempts int64
	if err := db.Model(&model.QuizAttempt{}).
		Where("lesson_id = ?", lessons[0].ID).Count(&attempts).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("replay must not create a second attempt, got %d", attempts)
	}

	// 不同 clientId 是新的提交
	third, err := svc.SyncOfflineAttempt(1, 42, lessons[0].ID, "device-7-attempt-2", answersFor(questions, 5))
	if err != nil {
		t.Fatalf("new client id: %v", err)
	}
	if third.DuplicateSync {
		t.Fatal("different clientId must grade fresh")
	}
}

func TestSubmitQuizLessonNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)

	if _, err := svc.SubmitQuiz(1, 42, 999, nil); !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}

	// 租户隔离：课存在但属于别的租户
	_, _, lessons := seedCourse(t, db, 2, model.LessonMCQ)
	if _, err := svc.SubmitQuiz(1, 42, lessons[0].ID, nil); !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("cross-tenant lesson must not be visible, got %v", err)
	}
}
