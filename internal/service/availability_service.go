package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flightschool_backend/internal/model"
	"flightschool_backend/internal/repository"
	"flightschool_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type AvailabilityService struct {
	AvailabilityRepo *repository.AvailabilityRepository
	Redis            *redis.Client
}

func NewAvailabilityService(availabilityRepo *repository.AvailabilityRepository, rdb *redis.Client) *AvailabilityService {
	return &AvailabilityService{
		AvailabilityRepo: availabilityRepo,
		Redis:            rdb,
	}
}

// CreateAvailability 开放时间窗：区间合法 且 与该教员既有时间窗互不重叠
func (s *AvailabilityService) CreateAvailability(tenantID, instructorID uint, start, end time.Time) (*model.Availability, error) {
	if err := ValidateTimeSlot(start, end); err != nil {
		return nil, err
	}

	overlap, err := s.AvailabilityRepo.HasOverlap(tenantID, instructorID, start, end, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, util.ErrAvailabilityOverlap
	}

	a := &model.Availability{
		TenantID:     tenantID,
		InstructorID: instructorID,
		StartTime:    start,
		EndTime:      end,
	}
	if err := s.AvailabilityRepo.Create(a); err != nil {
		return nil, err
	}

	s.invalidateCache(tenantID, instructorID)
	return a, nil
}

// UpdateAvailability 更新时间窗，重叠检测排除自身
func (s *AvailabilityService) UpdateAvailability(tenantID uint, id string, start, end time.Time) (*model.Availability, error) {
	if err := ValidateTimeSlot(start, end); err != nil {
		return nil, err
	}

	a, err := s.AvailabilityRepo.FindByID(tenantID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, err
	}

	overlap, err := s.AvailabilityRepo.HasOverlap(tenantID, a.InstructorID, start, end, a.ID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, util.ErrAvailabilityOverlap
	}

	a.StartTime = start
	a.EndTime = end
	if err := s.AvailabilityRepo.Update(a); err != nil {
		return nil, err
	}

	s.invalidateCache(tenantID, a.InstructorID)
	return a, nil
}

func (s *AvailabilityService) DeleteAvailability(tenantID uint, id string) error {
	a, err := s.AvailabilityRepo.FindByID(tenantID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrAvailabilityNotFound
	}
	if err != nil {
		return err
	}

	if err := s.AvailabilityRepo.Delete(tenantID, id); err != nil {
		return err
	}

	s.invalidateCache(tenantID, a.InstructorID)
	return nil
}

// ListAvailability 教员开放时间窗列表，Redis 缓存
func (s *AvailabilityService) ListAvailability(tenantID, instructorID uint) ([]model.Availability, error) {
	cacheKey := fmt.Sprintf("availability:%d:%d", tenantID, instructorID)

	if s.Redis != nil {
		val, err := s.Redis.Get(context.Background(), cacheKey).Result()
		if err == nil {
			var cached []model.Availability
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				return cached, nil
			}
		}
	}

	list, err := s.AvailabilityRepo.ListByInstructor(tenantID, instructorID)
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

func (s *AvailabilityService) invalidateCache(tenantID, instructorID uint) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), fmt.Sprintf("availability:%d:%d", tenantID, instructorID))
}
