package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"flightschool_backend/internal/config"
	"flightschool_backend/internal/model"
	"flightschool_backend/internal/repository"
	"flightschool_backend/internal/util"
	"flightschool_backend/pkg/logger"
	"flightschool_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const bookingCacheTTL = 5 * time.Minute

type BookingService struct {
	BookingRepo      *repository.BookingRepository
	AvailabilityRepo *repository.AvailabilityRepository
	UserRepo         *repository.UserRepository
	JobRepo          *repository.EscalationJobRepository
	Notifier         Notifier
	Redis            *redis.Client
	DB               *gorm.DB

	mu      sync.RWMutex
	booking config.BookingConfig
}

func NewBookingService(
	bookingRepo *repository.BookingRepository,
	availabilityRepo *repository.AvailabilityRepository,
	userRepo *repository.UserRepository,
	jobRepo *repository.EscalationJobRepository,
	notifier Notifier,
	rdb *redis.Client,
	cfg *config.Config,
	db *gorm.DB,
) *BookingService {
	return &BookingService{
		BookingRepo:      bookingRepo,
		AvailabilityRepo: availabilityRepo,
		UserRepo:         userRepo,
		JobRepo:          jobRepo,
		Notifier:         notifier,
		Redis:            rdb,
		DB:               db,
		booking:          cfg.Booking,
	}
}

// ApplyConfig 配置热加载回调，运行时调整 SLA 时限
func (s *BookingService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	s.booking = cfg.Booking
	s.mu.Unlock()
}

func (s *BookingService) slaDelay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.booking.SLADelay()
}

// CreateBooking 创建预约：
// 1. 时间区间校验 2. 教员开放时间窗覆盖检查 3. 生效预约重叠检查 4. 落库 requested
// 步骤 2/3 与插入之间没有跨请求锁，并发创建同一时段存在竞态（见 DESIGN.md）
func (s *BookingService) CreateBooking(tenantID, instructorID, studentID uint, start, end time.Time) (*model.Booking, error) {
	if err := ValidateTimeSlot(start, end); err != nil {
		return nil, err
	}

	covered, err := s.AvailabilityRepo.CoversWindow(tenantID, instructorID, start, end)
	if err != nil {
		return nil, err
	}
	if !covered {
		return nil, util.ErrInstructorNotAvailable
	}

	conflict, err := s.BookingRepo.HasActiveOverlap(tenantID, instructorID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, util.ErrInstructorAlreadyBooked
	}

	now := time.Now()
	booking := &model.Booking{
		TenantID:     tenantID,
		InstructorID: instructorID,
		StudentID:    studentID,
		StartTime:    start,
		EndTime:      end,
		Status:       model.BookingRequested,
		RequestedAt:  &now,
	}
	if err := s.BookingRepo.Create(booking); err != nil {
		return nil, err
	}

	created, err := s.BookingRepo.FindByID(tenantID, booking.ID)
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(tenantID, instructorID)
	monitoring.BookingTransitions.WithLabelValues(string(model.BookingRequested)).Inc()
	s.notifyAsync(func(n Notifier) error {
		return n.NotifyRequested(buildNotification(created))
	})

	return created, nil
}

func (s *BookingService) GetBooking(tenantID uint, id string) (*model.Booking, error) {
	booking, err := s.BookingRepo.FindByID(tenantID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookings 租户预约列表，Redis 缓存 5 分钟，任何状态迁移都会失效
func (s *BookingService) ListBookings(tenantID uint) ([]model.Booking, error) {
	cacheKey := fmt.Sprintf("bookings:%d", tenantID)

	if s.Redis != nil {
		val, err := s.Redis.Get(context.Background(), cacheKey).Result()
		if err == nil {
			var cached []model.Booking
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				return cached, nil
			}
		}
	}

	list, err := s.BookingRepo.ListByTenant(tenantID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, jsonErr := json.Marshal(list); jsonErr == nil {
			s.Redis.Set(context.Background(), cacheKey, data, bookingCacheTTL)
		}
	}

	return list, nil
}

func (s *BookingService) Approve(tenantID uint, id string) (*model.Booking, error) {
	return s.transition(tenantID, id, model.BookingApproved)
}

func (s *BookingService) Assign(tenantID uint, id string) (*model.Booking, error) {
	return s.transition(tenantID, id, model.BookingAssigned)
}

func (s *BookingService) Complete(tenantID uint, id string) (*model.Booking, error) {
	return s.transition(tenantID, id, model.BookingCompleted)
}

func (s *BookingService) Cancel(tenantID uint, id string) (*model.Booking, error) {
	return s.transition(tenantID, id, model.BookingCancelled)
}

// transition 按状态机迁移表执行一次状态变更：
// 以持久化状态为前置条件做条件更新（并发竞争失败的一方按当前状态重报非法迁移），
// 状态与对应时间戳在同一次 update 写入；approved 时升级任务入队与状态更新同事务提交
func (s *BookingService) transition(tenantID uint, id string, to model.BookingStatus) (*model.Booking, error) {
	booking, err := s.GetBooking(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(booking.Status, to); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":                      to,
		transitionTimestampColumn[to]: now,
	}

	var applied bool
	if to == model.BookingApproved {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&model.Booking{}).
				Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, booking.Status).
				Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			applied = result.RowsAffected > 0
			if !applied {
				return nil
			}
			job := &model.EscalationJob{
				TenantID:   tenantID,
				BookingID:  id,
				ApprovedAt: now,
				RunAt:      now.Add(s.slaDelay()),
				Status:     model.EscalationPending,
			}
			return tx.Create(job).Error
		})
	} else {
		applied, err = s.BookingRepo.ApplyTransition(tenantID, id, booking.Status, updates)
	}
	if err != nil {
		return nil, err
	}
	if !applied {
		current, ferr := s.GetBooking(tenantID, id)
		if ferr != nil {
			return nil, ferr
		}
		return nil, &util.InvalidTransitionError{From: string(current.Status), To: string(to)}
	}

	updated, err := s.GetBooking(tenantID, id)
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(tenantID, updated.InstructorID)
	monitoring.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.notifyTransition(updated, to)

	return updated, nil
}

func (s *BookingService) notifyTransition(b *model.Booking, to model.BookingStatus) {
	payload := buildNotification(b)
	s.notifyAsync(func(n Notifier) error {
		switch to {
		case model.BookingApproved:
			return n.NotifyApproved(payload)
		case model.BookingAssigned:
			return n.NotifyAssigned(payload)
		case model.BookingCompleted:
			return n.NotifyCompleted(payload)
		case model.BookingCancelled:
			return n.NotifyCancelled(payload)
		}
		return nil
	})
}

// notifyAsync 通知协作方异步调用，任何失败只记日志，绝不影响业务流程
func (s *BookingService) notifyAsync(fn func(Notifier) error) {
	if s.Notifier == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Warn("notification panic recovered", zap.Any("panic", r))
			}
		}()
		if err := fn(s.Notifier); err != nil {
			logger.Log.Warn("notification delivery failed", zap.Error(err))
		}
	}()
}

func (s *BookingService) invalidateCaches(tenantID, instructorID uint) {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	s.Redis.Del(ctx,
		fmt.Sprintf("bookings:%d", tenantID),
		fmt.Sprintf("availability:%d:%d", tenantID, instructorID),
	)
}
