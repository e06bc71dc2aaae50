package service

import (
	"errors"
	"sync"
	"time"

	"flightschool_backend/internal/config"
	"flightschool_backend/internal/model"
	"flightschool_backend/internal/repository"
	"flightschool_backend/pkg/logger"
	"flightschool_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 首次重试退避 5 秒，之后指数翻倍
const escalationBaseBackoff = 5 * time.Second

// EscalationService SLA 升级任务的消费方
// 由后台单协程定时驱动，同一时刻只处理一个任务（该队列全局串行，
// 升级低频且设计上幂等，串行足够并避免重复的管理员通知风暴）
type EscalationService struct {
	JobRepo     *repository.EscalationJobRepository
	BookingRepo *repository.BookingRepository
	UserRepo    *repository.UserRepository
	Notifier    Notifier

	mu          sync.RWMutex
	maxAttempts int
}

func NewEscalationService(
	jobRepo *repository.EscalationJobRepository,
	bookingRepo *repository.BookingRepository,
	userRepo *repository.UserRepository,
	notifier Notifier,
	cfg *config.Config,
) *EscalationService {
	return &EscalationService{
		JobRepo:     jobRepo,
		BookingRepo: bookingRepo,
		UserRepo:    userRepo,
		Notifier:    notifier,
		maxAttempts: cfg.Booking.EscalationMaxAttempts,
	}
}

// ApplyConfig 配置热加载回调
func (s *EscalationService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	s.maxAttempts = cfg.Booking.EscalationMaxAttempts
	s.mu.Unlock()
}

func (s *EscalationService) limit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxAttempts
}

// ProcessDueJobs 消费全部到期任务（被后台定时触发）
func (s *EscalationService) ProcessDueJobs() error {
	jobs, err := s.JobRepo.DueJobs(time.Now(), 50)
	if err != nil {
		return err
	}

	for i := range jobs {
		s.processJob(&jobs[i])
	}
	return nil
}

func (s *EscalationService) processJob(job *model.EscalationJob) {
	err := s.runJob(job)
	if err == nil {
		if markErr := s.JobRepo.MarkDone(job); markErr != nil {
			logger.Log.Error("failed to mark escalation job done",
				zap.String("jobId", job.ID), zap.Error(markErr))
		}
		return
	}

	if job.Attempts+1 >= s.limit() {
		// 死信：留存不删，无自动补救
		if markErr := s.JobRepo.MarkDead(job, err.Error()); markErr != nil {
			logger.Log.Error("failed to dead-letter escalation job",
				zap.String("jobId", job.ID), zap.Error(markErr))
			return
		}
		monitoring.EscalationJobsDead.Inc()
		logger.Log.Error("escalation job dead-lettered",
			zap.String("bookingId", job.BookingID),
			zap.Int("attempts", job.Attempts+1),
			zap.Error(err))
		return
	}

	backoff := escalationBaseBackoff << job.Attempts
	if reschedErr := s.JobRepo.Reschedule(job, time.Now().Add(backoff), err.Error()); reschedErr != nil {
		logger.Log.Error("failed to reschedule escalation job",
			zap.String("jobId", job.ID), zap.Error(reschedErr))
		return
	}
	logger.Log.Warn("escalation job failed, scheduled retry",
		zap.String("bookingId", job.BookingID),
		zap.Int("attempts", job.Attempts+1),
		zap.Duration("backoff", backoff),
		zap.Error(err))
}

// runJob 执行一次升级检查：
// 预约缺失或已推进（assigned/completed/cancelled）都静默丢弃，
// 仍停留在审批态才置 escalation_required 并通知全体管理员
func (s *EscalationService) runJob(job *model.EscalationJob) error {
	booking, err := s.BookingRepo.FindByID(job.TenantID, job.BookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 预约可能被合法删除/迁移，不算错误
		logger.Log.Info("escalation target booking missing, dropping job",
			zap.String("bookingId", job.BookingID),
			zap.Uint("tenantId", job.TenantID))
		return nil
	}
	if err != nil {
		return err
	}

	switch booking.Status {
	case model.BookingAssigned, model.BookingCompleted, model.BookingCancelled:
		// SLA 已满足或预约已推进，任务过期，静默丢弃
		return nil
	}

	if err := s.BookingRepo.SetEscalationRequired(job.TenantID, job.BookingID); err != nil {
		return err
	}

	admins, err := s.UserRepo.FindAdmins(job.TenantID)
	if err != nil {
		return err
	}
	adminEmails := make([]string, 0, len(admins))
	for _, a := range admins {
		adminEmails = append(adminEmails, a.Email)
	}

	monitoring.EscalationsRaised.Inc()

	if s.Notifier != nil {
		notification := EscalationNotification{
			BookingNotification: buildNotification(booking),
			AdminEmails:         adminEmails,
			ApprovedAt:          job.ApprovedAt,
		}
		if err := s.Notifier.NotifyEscalation(notification); err != nil {
			return err
		}
	}

	return nil
}
