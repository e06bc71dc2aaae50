package service

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"flightschool_backend/internal/config"
	"flightschool_backend/internal/model"
	"flightschool_backend/internal/repository"
	"flightschool_backend/pkg/database"
	"flightschool_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

var testDBSeq int64

// newTestDB 每个测试独立的内存库，表结构与生产迁移保持一致
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			SLAHours:              2,
			EscalationMaxAttempts: 3,
			WorkerIntervalSeconds: 30,
		},
	}
}

func seedUser(t *testing.T, db *gorm.DB, tenantID uint, role model.UserRole, email string) *model.User {
	t.Helper()
	u := &model.User{
		TenantID: tenantID,
		Name:     email,
		Email:    email,
		Password: "x",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedAvailability(t *testing.T, db *gorm.DB, tenantID, instructorID uint, start, end time.Time) *model.Availability {
	t.Helper()
	a := &model.Availability{
		TenantID:     tenantID,
		InstructorID: instructorID,
		StartTime:    start,
		EndTime:      end,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed availability: %v", err)
	}
	return a
}

// seedCourse 一门课程 / 一个模块 / 指定数量的课
func seedCourse(t *testing.T, db *gorm.DB, tenantID uint, lessonTypes ...model.LessonType) (*model.Course, *model.CourseModule, []model.Lesson) {
	t.Helper()

	course := &model.Course{TenantID: tenantID, Title: "PPL Ground School"}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	mod := &model.CourseModule{TenantID: tenantID, CourseID: course.ID, Title: "Navigation", Order: 1}
	if err := db.Create(mod).Error; err != nil {
		t.Fatalf("seed module: %v", err)
	}

	lessons := make([]model.Lesson, 0, len(lessonTypes))
	for i, lt := range lessonTypes {
		lesson := model.Lesson{
			TenantID: tenantID,
			ModuleID: mod.ID,
			Title:    fmt.Sprintf("Lesson %d", i+1),
			Type:     lt,
			Content:  "content",
		}
		if err := db.Create(&lesson).Error; err != nil {
			t.Fatalf("seed lesson: %v", err)
		}
		lessons = append(lessons, lesson)
	}
	return course, mod, lessons
}

// seedQuestions 为课挂 n 道题，正确答案全部为选项 0
func seedQuestions(t *testing.T, db *gorm.DB, tenantID uint, lessonID uint, n int) []model.QuizQuestion {
	t.Helper()
	questions := make([]model.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		q := model.QuizQuestion{
			TenantID:      tenantID,
			LessonID:      lessonID,
			Question:      fmt.Sprintf("Q%d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: 0,
		}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("seed question: %v", err)
		}
		questions = append(questions, q)
	}
	return questions
}

func newBookingService(db *gorm.DB, notifier Notifier) *BookingService {
	return NewBookingService(
		repository.NewBookingRepository(db),
		repository.NewAvailabilityRepository(db),
		repository.NewUserRepository(db),
		repository.NewEscalationJobRepository(db),
		notifier,
		nil,
		testConfig(),
		db,
	)
}

func newQuizService(db *gorm.DB) *QuizService {
	return NewQuizService(
		repository.NewCourseRepository(db),
		repository.NewQuizAttemptRepository(db),
		repository.NewProgressRepository(db),
		db,
	)
}
