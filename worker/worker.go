package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"pickup-scheduler/logger"
	notificationService "pickup-scheduler/services/notification"
	pickupService "pickup-scheduler/services/pickup"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// TypePickupNotification is the task type for deferred pickup reminders.
const TypePickupNotification = "pickup:send_notification"

// PickupNotificationPayload is the task payload; the pickup id is everything
// the handler needs, state is re-read from the database at execution time.
type PickupNotificationPayload struct {
	PickupID string `json:"pickup_id"`
}

// NewPickupNotificationTask builds the deferred reminder task for a pickup.
func NewPickupNotificationTask(pickupID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PickupNotificationPayload{PickupID: pickupID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypePickupNotification, payload), nil
}

// Worker processes deferred jobs from the queue.
type Worker struct {
	db           *gorm.DB
	notification *notificationService.Service
}

func NewWorker(db *gorm.DB, notification *notificationService.Service) *Worker {
	if notification == nil {
		notification = notificationService.NewServiceFromEnv()
	}
	return &Worker{db: db, notification: notification}
}

// HandleSendPickupNotification re-validates the pickup and sends the reminder
// if it is still eligible. The handler always reports success to the queue;
// skips and delivery failures are logged, not retried, so any retry policy
// lives in the queue configuration alone.
func (w *Worker) HandleSendPickupNotification(ctx context.Context, t *asynq.Task) error {
	var payload PickupNotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Error("Failed to unmarshal pickup notification payload", err)
		return nil
	}

	svc := pickupService.NewService(w.db.WithContext(ctx))

	validation, err := svc.ValidateForNotification(payload.PickupID)
	if err != nil {
		logger.Error("Failed to validate pickup "+payload.PickupID, err)
		return nil
	}

	if !validation.IsValid {
		logger.Info(fmt.Sprintf("Skipping notification for pickup %s: %s", payload.PickupID, validation.SkipReason))
		return nil
	}

	result := w.notification.SendPickupReminder(validation.Pickup)

	switch result.Status {
	case notificationService.StatusSent:
		if err := svc.MarkNotificationSent(validation.Pickup); err != nil {
			logger.Error("Failed to mark notification sent for pickup "+payload.PickupID, err)
		}
	case notificationService.StatusSkipped:
		logger.Warning(fmt.Sprintf("Notification skipped for pickup %s: %s", payload.PickupID, result.Message))
	default:
		logger.Error(fmt.Sprintf("Notification failed for pickup %s: %s", payload.PickupID, result.Message), nil)
	}

	return nil
}

// Run starts the asynq server and blocks until it stops. Call from a
// goroutine alongside the HTTP server.
func Run(db *gorm.DB) error {
	redisAddr := os.Getenv("REDIS_QUEUE_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 10,
		},
	)

	w := NewWorker(db, nil)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePickupNotification, w.HandleSendPickupNotification)

	logger.Success("Notification worker started (queue: " + redisAddr + ")")
	return srv.Run(mux)
}
