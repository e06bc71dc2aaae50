package model

import "time"

type EscalationJobStatus string

const (
	EscalationPending EscalationJobStatus = "pending"
	EscalationDone    EscalationJobStatus = "done"
	EscalationDead    EscalationJobStatus = "dead"
)

// EscalationJob 延迟执行的 SLA 升级任务
// 审批通过时入队，run_at 到期后由后台 worker 串行消费；
// 失败重试按指数退避改写 run_at，超过最大次数进入 dead 状态留存待查
// swagger:model EscalationJob
type EscalationJob struct {
	UUIDBase
	TenantID   uint                `gorm:"index;not null" json:"tenantId"`
	BookingID  string              `gorm:"index;type:varchar(36);not null" json:"bookingId"`
	ApprovedAt time.Time           `gorm:"not null" json:"approvedAt"`
	RunAt      time.Time           `gorm:"index;not null" json:"runAt"`
	Attempts   int                 `gorm:"default:0" json:"attempts"`
	Status     EscalationJobStatus `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	LastError  string              `gorm:"size:512" json:"lastError,omitempty"`
}

func (EscalationJob) TableName() string {
	return "escalation_jobs"
}
