package service

import (
	"flightschool_backend/internal/model"
	"flightschool_backend/internal/util"
)

// 预约状态机迁移表，completed/cancelled 为终态无出边
var bookingTransitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingRequested: {model.BookingApproved, model.BookingCancelled},
	model.BookingApproved:  {model.BookingAssigned, model.BookingCancelled},
	model.BookingAssigned:  {model.BookingCompleted, model.BookingCancelled},
	model.BookingCompleted: {},
	model.BookingCancelled: {},
}

// 每个目标状态对应一个迁移时间戳字段，与状态在同一次 update 中写入
var transitionTimestampColumn = map[model.BookingStatus]string{
	model.BookingApproved:  "approved_at",
	model.BookingAssigned:  "assigned_at",
	model.BookingCompleted: "completed_at",
	model.BookingCancelled: "cancelled_at",
}

// CheckTransition 校验 from -> to 是否合法，不合法时返回携带状态对的错误
func CheckTransition(from, to model.BookingStatus) error {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &util.InvalidTransitionError{From: string(from), To: string(to)}
}
