package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	pickupModel "pickup-scheduler/models/pickup"
	addressModel "pickup-scheduler/models/pickupaddress"
	notificationService "pickup-scheduler/services/notification"
	pickupService "pickup-scheduler/services/pickup"
	pickupTypes "pickup-scheduler/types/pickup"

	"github.com/hibiken/asynq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeProvider struct {
	sent []string
	ok   bool
	err  error
}

func (f *fakeProvider) Send(recipient, subject, body string) (bool, error) {
	f.sent = append(f.sent, recipient)
	return f.ok, f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&addressModel.PickupAddress{}, &pickupModel.Pickup{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestPickup(t *testing.T, db *gorm.DB) *pickupModel.Pickup {
	t.Helper()

	start := time.Now().Add(3 * time.Hour)
	req := pickupTypes.PickupCreateRequest{
		LabelIDs: []string{"label_1"},
		ContactDetails: pickupTypes.ContactDetailsRequest{
			Name:  "Test User",
			Email: "test@example.com",
			Phone: "+1234567890",
		},
		PickupWindow: pickupTypes.PickupWindowRequest{
			StartAt: start,
			EndAt:   start.Add(2 * time.Hour),
		},
		PickupAddress: pickupTypes.PickupAddressRequest{
			Name:          "Warehouse A",
			Phone:         "+1987654321",
			AddressLine1:  "123 Dock Street",
			CityLocality:  "Austin",
			StateProvince: "TX",
			PostalCode:    "78701",
			CountryCode:   "US",
		},
	}

	p, err := pickupService.NewService(db).CreatePickup(req, "", nil)
	if err != nil {
		t.Fatalf("failed to create pickup: %v", err)
	}
	return p
}

func TestHandleSendPickupNotification(t *testing.T) {
	db := newTestDB(t)
	p := createTestPickup(t, db)

	provider := &fakeProvider{ok: true}
	w := NewWorker(db, notificationService.NewService(provider))

	task, err := NewPickupNotificationTask(p.PickupID)
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}

	if err := w.HandleSendPickupNotification(context.Background(), task); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if len(provider.sent) != 1 || provider.sent[0] != "test@example.com" {
		t.Errorf("sent to %v, want [test@example.com]", provider.sent)
	}

	var reloaded pickupModel.Pickup
	if err := db.Where("pickup_id = ?", p.PickupID).First(&reloaded).Error; err != nil {
		t.Fatalf("failed to reload pickup: %v", err)
	}
	if !reloaded.NotificationSent {
		t.Error("notification_sent should be set after a successful send")
	}
}

func TestHandleSendPickupNotificationUnknownPickup(t *testing.T) {
	db := newTestDB(t)

	provider := &fakeProvider{ok: true}
	w := NewWorker(db, notificationService.NewService(provider))

	task, err := NewPickupNotificationTask("pik_missing00000000000000")
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}

	if err := w.HandleSendPickupNotification(context.Background(), task); err != nil {
		t.Fatalf("handler must not report errors to the queue, got: %v", err)
	}
	if len(provider.sent) != 0 {
		t.Errorf("provider should not be called for a missing pickup, got %v", provider.sent)
	}
}

func TestHandleSendPickupNotificationIdempotent(t *testing.T) {
	db := newTestDB(t)
	p := createTestPickup(t, db)

	provider := &fakeProvider{ok: true}
	w := NewWorker(db, notificationService.NewService(provider))

	task, err := NewPickupNotificationTask(p.PickupID)
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := w.HandleSendPickupNotification(context.Background(), task); err != nil {
			t.Fatalf("handler returned error on run %d: %v", i+1, err)
		}
	}

	if len(provider.sent) != 1 {
		t.Errorf("reminder sent %d times, want 1", len(provider.sent))
	}
}

func TestHandleSendPickupNotificationDeliveryFailure(t *testing.T) {
	db := newTestDB(t)
	p := createTestPickup(t, db)

	provider := &fakeProvider{ok: false}
	w := NewWorker(db, notificationService.NewService(provider))

	task, err := NewPickupNotificationTask(p.PickupID)
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}

	if err := w.HandleSendPickupNotification(context.Background(), task); err != nil {
		t.Fatalf("delivery failures must not bubble up to the queue, got: %v", err)
	}

	var reloaded pickupModel.Pickup
	if err := db.Where("pickup_id = ?", p.PickupID).First(&reloaded).Error; err != nil {
		t.Fatalf("failed to reload pickup: %v", err)
	}
	if reloaded.NotificationSent {
		t.Error("failed delivery must not mark the notification as sent")
	}
}

func TestHandleSendPickupNotificationBadPayload(t *testing.T) {
	db := newTestDB(t)
	w := NewWorker(db, notificationService.NewService(&fakeProvider{ok: true}))

	task := asynq.NewTask(TypePickupNotification, []byte("{not json"))
	if err := w.HandleSendPickupNotification(context.Background(), task); err != nil {
		t.Fatalf("malformed payloads are dropped, not retried, got: %v", err)
	}
}

func TestNewPickupNotificationTask(t *testing.T) {
	task, err := NewPickupNotificationTask("pik_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TypePickupNotification {
		t.Errorf("task type = %q, want %q", task.Type(), TypePickupNotification)
	}

	var payload PickupNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if payload.PickupID != "pik_abc" {
		t.Errorf("payload pickup id = %q, want pik_abc", payload.PickupID)
	}
}
