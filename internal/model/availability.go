package model

import "time"

// Availability 教员开放的可预约时间窗
// 约束：start_time < end_time；同一教员的时间窗之间不允许重叠
// swagger:model Availability
type Availability struct {
	UUIDBase
	TenantID     uint      `gorm:"index;not null" json:"tenantId"`
	InstructorID uint      `gorm:"index;not null" json:"instructorId"`
	StartTime    time.Time `gorm:"index;not null" json:"startTime"`
	EndTime      time.Time `gorm:"not null" json:"endTime"`

	Instructor *User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
}

func (Availability) TableName() string {
	return "availabilities"
}
