package service

import (
	"errors"
	"testing"
	"time"

	"flightschool_backend/internal/model"
	"flightschool_backend/internal/repository"
	"flightschool_backend/internal/util"
)

func TestAvailabilityOverlapRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewAvailabilityService(repository.NewAvailabilityRepository(db), nil)

	instructor := seedUser(t, db, 1, model.Instructor, "cfi@school.test")
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.CreateAvailability(1, instructor.ID, day.Add(9*time.Hour), day.Add(12*time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}

	// 部分重叠
	_, err := svc.CreateAvailability(1, instructor.ID, day.Add(11*time.Hour), day.Add(14*time.Hour))
	if !errors.Is(err, util.ErrAvailabilityOverlap) {
		t.Fatalf("expected ErrAvailabilityOverlap, got %v", err)
	}

	// 首尾相接不算重叠（半开区间）
	if _, err := svc.CreateAvailability(1, instructor.ID, day.Add(12*time.Hour), day.Add(14*time.Hour)); err != nil {
		t.Fatalf("adjacent window must be allowed: %v", err)
	}

	// 其他教员同时段互不影响
	other := seedUser(t, db, 1, model.Instructor, "cfi2@school.test")
	if _, err := svc.CreateAvailability(1, other.ID, day.Add(9*time.Hour), day.Add(12*time.Hour)); err != nil {
		t.Fatalf("other instructor must not conflict: %v", err)
	}
}

func TestAvailabilityUpdateExcludesSelf(t *testing.T) {
	db := newTestDB(t)
	svc := NewAvailabilityService(repository.NewAvailabilityRepository(db), nil)

	instructor := seedUser(t, db, 1, model.Instructor, "cfi@school.test")
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	a, err := svc.CreateAvailability(1, instructor.ID, day.Add(9*time.Hour), day.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 在自身区间内缩短：不应被自己挡住
	updated, err := svc.UpdateAvailability(1, a.ID, day.Add(10*time.Hour), day.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("shrink own window: %v", err)
	}
	if !updated.StartTime.Equal(day.Add(10 * time.Hour)) {
		t.Fatalf("start not updated, got %v", updated.StartTime)
	}

	// 与别的时间窗重叠仍然被拒
	if _, err := svc.CreateAvailability(1, instructor.ID, day.Add(13*time.Hour), day.Add(15*time.Hour)); err != nil {
		t.Fatalf("second window: %v", err)
	}
	if _, err := svc.UpdateAvailability(1, a.ID, day.Add(10*time.Hour), day.Add(14*time.Hour)); !errors.Is(err, util.ErrAvailabilityOverlap) {
		t.Fatalf("expected ErrAvailabilityOverlap, got %v", err)
	}
}

func TestAvailabilityDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewAvailabilityService(repository.NewAvailabilityRepository(db), nil)

	instructor := seedUser(t, db, 1, model.Instructor, "cfi@school.test")
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	a, err := svc.CreateAvailability(1, instructor.ID, day.Add(9*time.Hour), day.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteAvailability(1, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteAvailability(1, a.ID); !errors.Is(err, util.ErrAvailabilityNotFound) {
		t.Fatalf("double delete should report not found, got %v", err)
	}

	list, err := svc.ListAvailability(1, instructor.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}
