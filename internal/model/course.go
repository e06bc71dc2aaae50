package model

type LessonType string

const (
	LessonText LessonType = "text"
	LessonMCQ  LessonType = "mcq"
)

// swagger:model Course
type Course struct {
	BaseModel
	TenantID    uint           `gorm:"index;not null" json:"tenantId"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Modules     []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model CourseModule
type CourseModule struct {
	BaseModel
	TenantID uint     `gorm:"index;not null" json:"tenantId"`
	CourseID uint     `gorm:"index;not null" json:"courseId"`
	Title    string   `gorm:"size:255;not null" json:"title"`
	Order    int      `gorm:"default:0" json:"order"`
	Lessons  []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// Lesson 课程内容为不可变内容，type=mcq 时挂载若干 QuizQuestion
// swagger:model Lesson
type Lesson struct {
	BaseModel
	TenantID      uint           `gorm:"index;not null" json:"tenantId"`
	ModuleID      uint           `gorm:"index;not null" json:"moduleId"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Type          LessonType     `gorm:"size:10;not null;default:'text'" json:"type"`
	Content       string         `gorm:"type:text" json:"content"`
	AttachmentURL string         `gorm:"size:512" json:"attachmentUrl,omitempty"`
	Questions     []QuizQuestion `gorm:"foreignKey:LessonID" json:"questions,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// QuizQuestion 的 CorrectOption 在判分前绝不下发给客户端
// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	TenantID      uint     `gorm:"index;not null" json:"tenantId"`
	LessonID      uint     `gorm:"index;not null" json:"lessonId"`
	Question      string   `gorm:"type:text;not null" json:"question"`
	Options       []string `gorm:"serializer:json;type:json" json:"options"`
	CorrectOption int      `gorm:"not null" json:"-"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
