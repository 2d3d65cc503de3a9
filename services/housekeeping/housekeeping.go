package housekeeping

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"pickup-scheduler/logger"
	logModel "pickup-scheduler/models/log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const defaultLogRetentionDays = 30

// Service owns periodic maintenance jobs.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

func logRetentionDays() int {
	if v := os.Getenv("LOG_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			return days
		}
	}
	return defaultLogRetentionDays
}

// PurgeOldLogs deletes HTTP log rows past the retention window and returns
// how many were removed.
func (s *Service) PurgeOldLogs() (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -logRetentionDays())

	result := s.DB.Where("created_at < ?", cutoff).Delete(&logModel.Log{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge old logs: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// StartCron schedules the daily maintenance jobs and starts the scheduler.
func (s *Service) StartCron() *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 3 * * *", func() {
		removed, err := s.PurgeOldLogs()
		if err != nil {
			logger.Error("Log purge failed", err)
			return
		}
		logger.Info(fmt.Sprintf("Log purge removed %d entries", removed))
	})
	if err != nil {
		logger.Error("Failed to register log purge job", err)
	}

	c.Start()
	logger.Success("Housekeeping cron started")
	return c
}
