package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"flightschool_backend/internal/config"
	"flightschool_backend/internal/model"
	"flightschool_backend/internal/repository"

	"gorm.io/gorm"
)

// recordingNotifier 记录收到的升级通知，可注入失败次数
type recordingNotifier struct {
	LogNotifier

	mu          sync.Mutex
	escalations []EscalationNotification
	failures    int
}

func (r *recordingNotifier) NotifyEscalation(n EscalationNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("smtp gateway unreachable")
	}
	r.escalations = append(r.escalations, n)
	return nil
}

func (r *recordingNotifier) received() []EscalationNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EscalationNotification, len(r.escalations))
	copy(out, r.escalations)
	return out
}

func newEscalationService(db *gorm.DB, notifier Notifier, cfg *config.Config) *EscalationService {
	return NewEscalationService(
		repository.NewEscalationJobRepository(db),
		repository.NewBookingRepository(db),
		repository.NewUserRepository(db),
		notifier,
		cfg,
	)
}

// 审批超时未指派：置位 escalation_required 并通知全体管理员
func approvedBookingWithDueJob(t *testing.T, db *gorm.DB, svc *BookingService) *model.Booking {
	t.Helper()

	instructor := seedUser(t, db, 1, model.Instructor, "cfi@school.test")
	student := seedUser(t, db, 1, model.Student, "student@school.test")

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seedAvailability(t, db, 1, instructor.ID, day.Add(8*time.Hour), day.Add(18*time.Hour))

	booking, err := svc.CreateBooking(1, instructor.ID, student.ID, day.Add(9*time.Hour), day.Add(11*time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(1, booking.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// 把任务的 run_at 拨到过去，模拟 SLA 到期
	if err := db.Model(&model.EscalationJob{}).
		Where("booking_id = ?", booking.ID).
		Update("run_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate job: %v", err)
	}
	return booking
}

func TestEscalationRaisedWhenStillApproved(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	bookingSvc := newBookingService(db, nil)
	escalationSvc := newEscalationService(db, notifier, testConfig())

	seedUser(t, db, 1, model.Admin, "chief@school.test")
	seedUser(t, db, 1, model.Admin, "ops@school.test")

	booking := approvedBookingWithDueJob(t, db, bookingSvc)

	if err := escalationSvc.ProcessDueJobs(); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, err := bookingSvc.GetBooking(1, booking.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if !got.EscalationRequired {
		t.Fatal("escalation_required should be set")
	}
	if got.Status != model.BookingApproved {
		t.Fatalf("escalation must not change booking status, got %s", got.Status)
	}

	escalations := notifier.received()
	if len(escalations) != 1 {
		t.Fatalf("expected one escalation notification, got %d", len(escalations))
	}
	if len(escalations[0].AdminEmails) != 2 {
		t.Fatalf("notification should target both admins, got %v", escalations[0].AdminEmails)
	}

	var job model.EscalationJob
	if err := db.Where("booking_id = ?", booking.ID).First(&job).Error; err != nil {
		t.Fatalf("load job: %v", err)
	}
	if job.Status != model.EscalationDone {
		t.Fatalf("job should be done, got %s", job.Status)
	}
}

// SLA 在到期前被满足：任务静默失效
func TestEscalationSkippedWhenAssigned(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	bookingSvc := newBookingService(db, nil)
	escalationSvc := newEscalationService(db, notifier, testConfig())

	seedUser(t, db, 1, model.Admin, "chief@school.test")

	booking := approvedBookingWithDueJob(t, db, bookingSvc)
	if _, err := bookingSvc.Assign(1, booking.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := escalationSvc.ProcessDueJobs(); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, err := bookingSvc.GetBooking(1, booking.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if got.EscalationRequired {
		t.Fatal("escalation_required must stay false when SLA was met")
	}
	if len(notifier.received()) != 0 {
		t.Fatal("no notification expected for satisfied SLA")
	}

	var job model.EscalationJob
	if err := db.Where("booking_id = ?", booking.ID).First(&job).Error; err != nil {
		t.Fatalf("load job: %v", err)
	}
	if job.Status != model.EscalationDone {
		t.Fatalf("stale job should be marked done, got %s", job.Status)
	}
}

func TestEscalationCancelledBookingDropsJob(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	bookingSvc := newBookingService(db, nil)
	escalationSvc := newEscalationService(db, notifier, testConfig())

	booking := approvedBookingWithDueJob(t, db, bookingSvc)
	if _, err := bookingSvc.Cancel(1, booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if err := escalationSvc.ProcessDueJobs(); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(notifier.received()) != 0 {
		t.Fatal("cancelled booking must not escalate")
	}
}

// 通知失败：指数退避重试，次数耗尽进入死信
func TestEscalationRetryAndDeadLetter(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{failures: 10}
	bookingSvc := newBookingService(db, nil)

	cfg := testConfig()
	cfg.Booking.EscalationMaxAttempts = 2
	escalationSvc := newEscalationService(db, notifier, cfg)

	seedUser(t, db, 1, model.Admin, "chief@school.test")
	booking := approvedBookingWithDueJob(t, db, bookingSvc)

	// 第一次失败：重试入队
	if err := escalationSvc.ProcessDueJobs(); err != nil {
		t.Fatalf("process: %v", err)
	}

	var job model.EscalationJob
	if err := db.Where("booking_id = ?", booking.ID).First(&job).Error; err != nil {
		t.Fatalf("load job: %v", err)
	}
	if job.Status != model.EscalationPending {
		t.Fatalf("job should stay pending after first failure, got %s", job.Status)
	}
	if job.Attempts != 1 {
		t.Fatalf("attempts should be 1, got %d", job.Attempts)
	}
	if job.LastError == "" {
		t.Fatal("lastError should record the failure")
	}
	if !job.RunAt.After(time.Now()) {
		t.Fatal("retry should be scheduled in the future")
	}

	// 拨回 run_at，第二次失败触发死信
	if err := db.Model(&job).Update("run_at", time.Now().Add(-time.Second)).Error; err != nil {
		t.Fatalf("backdate retry: %v", err)
	}
	if err := escalationSvc.ProcessDueJobs(); err != nil {
		t.Fatalf("process: %v", err)
	}

	if err := db.Where("booking_id = ?", booking.ID).First(&job).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if job.Status != model.EscalationDead {
		t.Fatalf("job should be dead-lettered, got %s", job.Status)
	}
	if job.Attempts != 2 {
		t.Fatalf("attempts should be 2, got %d", job.Attempts)
	}
}

func TestEscalationMissingBookingDropsJob(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	escalationSvc := newEscalationService(db, notifier, testConfig())

	jobRepo := repository.NewEscalationJobRepository(db)
	job := &model.EscalationJob{
		TenantID:   1,
		BookingID:  "vanished",
		ApprovedAt: time.Now().Add(-3 * time.Hour),
		RunAt:      time.Now().Add(-time.Minute),
		Status:     model.EscalationPending,
	}
	if err := jobRepo.Enqueue(job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := escalationSvc.ProcessDueJobs(); err != nil {
		t.Fatalf("process: %v", err)
	}

	var reloaded model.EscalationJob
	if err := db.First(&reloaded, "id = ?", job.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != model.EscalationDone {
		t.Fatalf("missing booking should complete the job, got %s", reloaded.Status)
	}
	if len(notifier.received()) != 0 {
		t.Fatal("no notification expected for missing booking")
	}
}
