package service

import (
	"time"

	"flightschool_backend/internal/util"
)

// ParseTimeSlot 解析 ISO-8601 起止时间并校验区间合法性，纯函数无 I/O
func ParseTimeSlot(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, util.ErrInvalidTimeSlot
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, util.ErrInvalidTimeSlot
	}
	if err := ValidateTimeSlot(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ValidateTimeSlot 拒绝退化区间：start >= end 即非法
func ValidateTimeSlot(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return util.ErrInvalidTimeSlot
	}
	if !start.Before(end) {
		return util.ErrInvalidTimeSlot
	}
	return nil
}
