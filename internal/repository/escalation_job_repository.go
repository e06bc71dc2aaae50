package repository

import (
	"time"

	"flightschool_backend/internal/model"

	"gorm.io/gorm"
)

type EscalationJobRepository struct {
	DB *gorm.DB
}

func NewEscalationJobRepository(db *gorm.DB) *EscalationJobRepository {
	return &EscalationJobRepository{DB: db}
}

func (r *EscalationJobRepository) Enqueue(job *model.EscalationJob) error {
	return r.DB.Create(job).Error
}

// DueJobs 取到期待执行的任务，按到期时间排序
func (r *EscalationJobRepository) DueJobs(now time.Time, limit int) ([]model.EscalationJob, error) {
	var jobs []model.EscalationJob
	err := r.DB.Where("status = ? AND run_at <= ?", model.EscalationPending, now).
		Order("run_at").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *EscalationJobRepository) MarkDone(job *model.EscalationJob) error {
	return r.DB.Model(job).Updates(map[string]interface{}{
		"status":     model.EscalationDone,
		"last_error": "",
	}).Error
}

// Reschedule 失败重试：累加 attempts 并推迟 run_at
func (r *EscalationJobRepository) Reschedule(job *model.EscalationJob, runAt time.Time, lastError string) error {
	return r.DB.Model(job).Updates(map[string]interface{}{
		"attempts":   job.Attempts + 1,
		"run_at":     runAt,
		"last_error": lastError,
	}).Error
}

// MarkDead 重试耗尽，死信留存待运维排查
func (r *EscalationJobRepository) MarkDead(job *model.EscalationJob, lastError string) error {
	return r.DB.Model(job).Updates(map[string]interface{}{
		"attempts":   job.Attempts + 1,
		"status":     model.EscalationDead,
		"last_error": lastError,
	}).Error
}
