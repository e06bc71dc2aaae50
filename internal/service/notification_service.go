package service

import (
	"time"

	"flightschool_backend/internal/model"
	"flightschool_backend/pkg/logger"

	"go.uber.org/zap"
)

// BookingNotification 预约通知载荷
type BookingNotification struct {
	BookingID       string     `json:"bookingId"`
	TenantID        uint       `json:"tenantId"`
	StudentEmail    string     `json:"studentEmail,omitempty"`
	StudentName     string     `json:"studentName,omitempty"`
	InstructorEmail string     `json:"instructorEmail,omitempty"`
	InstructorName  string     `json:"instructorName,omitempty"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
}

// EscalationNotification 升级通知载荷，额外携带管理员收件人与审批时间
type EscalationNotification struct {
	BookingNotification
	AdminEmails []string  `json:"adminEmails"`
	ApprovedAt  time.Time `json:"approvedAt"`
}

// Notifier 通知协作方接口
// 投递由外部系统负责，业务流程对通知失败不敏感（判分/预约照常完成）
type Notifier interface {
	NotifyRequested(n BookingNotification) error
	NotifyApproved(n BookingNotification) error
	NotifyAssigned(n BookingNotification) error
	NotifyCompleted(n BookingNotification) error
	NotifyCancelled(n BookingNotification) error
	NotifyEscalation(n EscalationNotification) error
}

// LogNotifier 缺省实现：结构化日志输出，部署时可替换为邮件/短信网关
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (l *LogNotifier) log(event string, n BookingNotification) error {
	logger.Log.Info("booking notification",
		zap.String("event", event),
		zap.String("bookingId", n.BookingID),
		zap.Uint("tenantId", n.TenantID),
		zap.String("studentEmail", n.StudentEmail),
		zap.String("instructorEmail", n.InstructorEmail),
	)
	return nil
}

func (l *LogNotifier) NotifyRequested(n BookingNotification) error { return l.log("requested", n) }
func (l *LogNotifier) NotifyApproved(n BookingNotification) error  { return l.log("approved", n) }
func (l *LogNotifier) NotifyAssigned(n BookingNotification) error  { return l.log("assigned", n) }
func (l *LogNotifier) NotifyCompleted(n BookingNotification) error { return l.log("completed", n) }
func (l *LogNotifier) NotifyCancelled(n BookingNotification) error { return l.log("cancelled", n) }

func (l *LogNotifier) NotifyEscalation(n EscalationNotification) error {
	logger.Log.Warn("booking escalation notification",
		zap.String("bookingId", n.BookingID),
		zap.Uint("tenantId", n.TenantID),
		zap.Strings("adminEmails", n.AdminEmails),
		zap.Time("approvedAt", n.ApprovedAt),
	)
	return nil
}

// buildNotification 从预约记录组装通知载荷
func buildNotification(b *model.Booking) BookingNotification {
	n := BookingNotification{
		BookingID: b.ID,
		TenantID:  b.TenantID,
		StartTime: &b.StartTime,
		EndTime:   &b.EndTime,
	}
	if b.Student != nil {
		n.StudentEmail = b.Student.Email
		n.StudentName = b.Student.Name
	}
	if b.Instructor != nil {
		n.InstructorEmail = b.Instructor.Email
		n.InstructorName = b.Instructor.Name
	}
	return n
}
