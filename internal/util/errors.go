package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrEmailRegistered   = errors.New("该邮箱已被注册")
	ErrInvalidCredential = errors.New("邮箱或密码错误")
	ErrPermissionDenied  = errors.New("permission denied")

	// 预约相关
	ErrInvalidTimeSlot         = errors.New("invalid time slot")
	ErrInstructorNotAvailable  = errors.New("instructor not available")
	ErrInstructorAlreadyBooked = errors.New("instructor already booked")
	ErrAvailabilityOverlap     = errors.New("time slot overlaps existing availability")
	ErrAvailabilityNotFound    = errors.New("availability not found")
	ErrBookingNotFound         = errors.New("booking not found")

	// 学习相关
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

// InvalidTransitionError 非法状态迁移，携带具体的 from/to
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition: %s -> %s", e.From, e.To)
}

// 对外的机器可读错误码，冲突类错误与普通校验错误区分开，
// 便于前端渲染专门的冲突提示
const (
	CodeInvalidTimeSlot         = "INVALID_TIME_SLOT"
	CodeInstructorNotAvailable  = "INSTRUCTOR_NOT_AVAILABLE"
	CodeInstructorAlreadyBooked = "INSTRUCTOR_ALREADY_BOOKED"
	CodeAvailabilityOverlap     = "TIME_SLOT_OVERLAPS_EXISTING_AVAILABILITY"
	CodeBookingNotFound         = "BOOKING_NOT_FOUND"
	CodeInvalidTransition       = "INVALID_TRANSITION"
)
