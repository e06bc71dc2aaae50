package model

type AttemptSource string

const (
	AttemptOnline  AttemptSource = "online"
	AttemptOffline AttemptSource = "offline"
)

// AttemptAnswer 单题作答
type AttemptAnswer struct {
	QuestionID uint `json:"questionId"`
	Answer     int  `json:"answer"`
}

// QuizAttempt 判分事件的追加式记录
// (tenant_id, student_id, lesson_id, source='offline', external_id) 构成离线同步的幂等键
// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	TenantID   uint            `gorm:"index;not null" json:"tenantId"`
	StudentID  uint            `gorm:"index;not null" json:"studentId"`
	LessonID   uint            `gorm:"index;not null" json:"lessonId"`
	Score      int             `gorm:"not null" json:"score"`
	Total      int             `gorm:"not null" json:"total"`
	Answers    []AttemptAnswer `gorm:"serializer:json;type:json" json:"answers"`
	Source     AttemptSource   `gorm:"size:10;not null;default:'online'" json:"source"`
	ExternalID string          `gorm:"size:100;index" json:"externalId,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
