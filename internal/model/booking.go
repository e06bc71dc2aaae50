package model

import "time"

type BookingStatus string

const (
	BookingRequested BookingStatus = "requested"
	BookingApproved  BookingStatus = "approved"
	BookingAssigned  BookingStatus = "assigned"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking 学员对教员某时间段的预约，生命周期由状态机控制
// 约束：同一教员的 approved/assigned 预约时间段（半开区间）不允许重叠
// swagger:model Booking
type Booking struct {
	UUIDBase
	TenantID     uint          `gorm:"index;not null" json:"tenantId"`
	InstructorID uint          `gorm:"index;not null" json:"instructorId"`
	StudentID    uint          `gorm:"index;not null" json:"studentId"`
	StartTime    time.Time     `gorm:"index;not null" json:"startTime"`
	EndTime      time.Time     `gorm:"not null" json:"endTime"`
	Status       BookingStatus `gorm:"size:20;index;not null;default:'requested'" json:"status"`

	RequestedAt *time.Time `json:"requestedAt,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	AssignedAt  *time.Time `json:"assignedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	// 仅由 SLA 升级任务置位
	EscalationRequired bool `gorm:"default:false" json:"escalationRequired"`

	Instructor *User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Student    *User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsTerminal 判断是否为终态（无出边）
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}
