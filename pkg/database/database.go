package database

import (
	"fmt"
	"log"

	"flightschool_backend/internal/config"
	"flightschool_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = Migrate(db)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate 迁移全部业务表，测试环境用 sqlite 复用同一份表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Course{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.QuizQuestion{},
		&model.Availability{},
		&model.Booking{},
		&model.QuizAttempt{},
		&model.LessonProgress{},
		&model.ModuleProgress{},
		&model.CourseProgress{},
		&model.EscalationJob{},
	)
}
