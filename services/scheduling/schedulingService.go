package scheduling

import (
	"fmt"
	"os"
	"sync"
	"time"

	"pickup-scheduler/logger"
	"pickup-scheduler/worker"

	"github.com/hibiken/asynq"
)

// DefaultNotifyBefore is how long before the pickup window the reminder fires.
const DefaultNotifyBefore = time.Hour

// Status of a scheduling attempt.
const (
	StatusScheduled   = "scheduled"
	StatusSkippedPast = "skipped_past"
	StatusFailed      = "failed"
)

// Result of a scheduling attempt. JobID is empty unless Status is scheduled.
type Result struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id,omitempty"`
	Message string `json:"message"`
}

// Enqueuer is the slice of the asynq client the service needs. Tests inject
// fakes through it.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Service wraps the deferred-job queue. The underlying Redis connection is
// created lazily on first enqueue and shared across calls.
type Service struct {
	redisAddr string

	mu     sync.Mutex
	client Enqueuer
}

// NewService creates a scheduling service. An empty redisAddr falls back to
// the REDIS_QUEUE_ADDR environment variable.
func NewService(redisAddr string) *Service {
	if redisAddr == "" {
		redisAddr = os.Getenv("REDIS_QUEUE_ADDR")
	}
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	return &Service{redisAddr: redisAddr}
}

// NewServiceWithEnqueuer creates a scheduling service around an existing
// queue client. Used by tests.
func NewServiceWithEnqueuer(enqueuer Enqueuer) *Service {
	return &Service{client: enqueuer}
}

func (s *Service) getClient() Enqueuer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		s.client = asynq.NewClient(asynq.RedisClientOpt{Addr: s.redisAddr})
	}
	return s.client
}

// Close releases the queue connection. Safe to call when the connection was
// never opened or is already closed.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// SchedulePickupNotification enqueues a deferred reminder job for the pickup,
// to run notifyBefore ahead of the window start. A notification time already
// in the past is skipped without touching the queue. Queue errors are
// converted to a failed result and never propagate.
func (s *Service) SchedulePickupNotification(pickupID string, pickupWindowStart time.Time, notifyBefore time.Duration) Result {
	if notifyBefore <= 0 {
		notifyBefore = DefaultNotifyBefore
	}

	notificationTime := pickupWindowStart.Add(-notifyBefore)
	now := time.Now()

	if !notificationTime.After(now) {
		logger.Warning(fmt.Sprintf("Notification time %s is in the past for pickup %s", notificationTime.Format(time.RFC3339), pickupID))
		return Result{
			Status:  StatusSkippedPast,
			Message: "Notification time is in the past",
		}
	}

	delaySeconds := int(notificationTime.Sub(now).Seconds())
	delay := time.Duration(delaySeconds) * time.Second

	task, err := worker.NewPickupNotificationTask(pickupID)
	if err != nil {
		logger.Error("Failed to build notification task for pickup "+pickupID, err)
		return Result{
			Status:  StatusFailed,
			Message: fmt.Sprintf("Scheduling failed: %v", err),
		}
	}

	info, err := s.getClient().Enqueue(task, asynq.ProcessIn(delay))
	if err != nil {
		logger.Error("Failed to schedule notification for pickup "+pickupID, err)
		return Result{
			Status:  StatusFailed,
			Message: fmt.Sprintf("Scheduling failed: %v", err),
		}
	}

	logger.Success(fmt.Sprintf("Scheduled notification for pickup %s at %s (job_id: %s, delay: %ds)",
		pickupID, notificationTime.Format(time.RFC3339), info.ID, delaySeconds))

	return Result{
		Status:  StatusScheduled,
		JobID:   info.ID,
		Message: fmt.Sprintf("Notification scheduled for %s", notificationTime.Format(time.RFC3339)),
	}
}
