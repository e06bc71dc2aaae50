// 手动灌入演示数据脚本
//
// 建一个演示租户、三类用户、一门带模块/课/题目的课程和一个教员时间窗，
// 用于本地联调与前端对接。重复执行会追加数据，不做去重。
//
// 用法: go run scripts/seed_demo.go
package main

import (
	"log"
	"time"

	"flightschool_backend/internal/config"
	"flightschool_backend/internal/model"
	"flightschool_backend/pkg/database"
	"flightschool_backend/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	tenant := &model.Tenant{Name: "Skybound Flight Academy", Code: "skybound"}
	if err := db.Create(tenant).Error; err != nil {
		log.Fatalf("创建租户失败: %v", err)
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	users := []model.User{
		{TenantID: tenant.ID, Name: "Admin", Email: "admin@skybound.test", Password: string(hashed), Role: model.Admin},
		{TenantID: tenant.ID, Name: "CFI Zhang", Email: "cfi@skybound.test", Password: string(hashed), Role: model.Instructor},
		{TenantID: tenant.ID, Name: "Student Li", Email: "student@skybound.test", Password: string(hashed), Role: model.Student},
	}
	if err := db.Create(&users).Error; err != nil {
		log.Fatalf("创建用户失败: %v", err)
	}
	instructor := users[1]

	course := &model.Course{TenantID: tenant.ID, Title: "PPL Ground School", Description: "私照理论课程"}
	if err := db.Create(course).Error; err != nil {
		log.Fatalf("创建课程失败: %v", err)
	}

	mod := &model.CourseModule{TenantID: tenant.ID, CourseID: course.ID, Title: "Air Law", Order: 1}
	if err := db.Create(mod).Error; err != nil {
		log.Fatalf("创建模块失败: %v", err)
	}

	lessons := []model.Lesson{
		{TenantID: tenant.ID, ModuleID: mod.ID, Title: "Airspace Classes", Type: model.LessonText, Content: "Class A through G airspace..."},
		{TenantID: tenant.ID, ModuleID: mod.ID, Title: "Airspace Quiz", Type: model.LessonMCQ, Content: "Check your understanding."},
	}
	if err := db.Create(&lessons).Error; err != nil {
		log.Fatalf("创建课失败: %v", err)
	}

	questions := []model.QuizQuestion{
		{
			TenantID: tenant.ID, LessonID: lessons[1].ID,
			Question:      "Which airspace class requires an ATC clearance for VFR entry?",
			Options:       []string{"Class B", "Class E", "Class G", "Class F"},
			CorrectOption: 0,
		},
		{
			TenantID: tenant.ID, LessonID: lessons[1].ID,
			Question:      "What is the VFR minimum visibility in Class C airspace?",
			Options:       []string{"1.5 km", "5 km", "8 km", "10 km"},
			CorrectOption: 1,
		},
	}
	if err := db.Create(&questions).Error; err != nil {
		log.Fatalf("创建题目失败: %v", err)
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	availability := &model.Availability{
		TenantID:     tenant.ID,
		InstructorID: instructor.ID,
		StartTime:    tomorrow.Add(9 * time.Hour),
		EndTime:      tomorrow.Add(17 * time.Hour),
	}
	if err := db.Create(availability).Error; err != nil {
		log.Fatalf("创建时间窗失败: %v", err)
	}

	log.Printf("演示数据已就绪: 租户 %s, 课程 #%d, 教员时间窗 %s - %s",
		tenant.Code, course.ID,
		availability.StartTime.Format(time.RFC3339),
		availability.EndTime.Format(time.RFC3339))
}
