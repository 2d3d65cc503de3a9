package pickup

import (
	"fmt"
	"strings"
	"testing"
	"time"

	pickupModel "pickup-scheduler/models/pickup"
	addressModel "pickup-scheduler/models/pickupaddress"
	pickupTypes "pickup-scheduler/types/pickup"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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

func testCreateRequest(startAt, endAt time.Time) pickupTypes.PickupCreateRequest {
	return pickupTypes.PickupCreateRequest{
		LabelIDs: []string{"label_1"},
		ContactDetails: pickupTypes.ContactDetailsRequest{
			Name:  "Test User",
			Email: "test@example.com",
			Phone: "+1234567890",
		},
		PickupWindow: pickupTypes.PickupWindowRequest{
			StartAt: startAt,
			EndAt:   endAt,
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
}

func TestGeneratePickupID(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := GeneratePickupID()

		if !strings.HasPrefix(id, PickupIDPrefix) {
			t.Fatalf("pickup id %q missing prefix %q", id, PickupIDPrefix)
		}
		if len(id) != len(PickupIDPrefix)+PickupIDSuffixLength {
			t.Fatalf("pickup id %q length = %d, want %d", id, len(id), len(PickupIDPrefix)+PickupIDSuffixLength)
		}
		if seen[id] {
			t.Fatalf("pickup id %q generated twice", id)
		}
		seen[id] = true
	}
}

func TestCreateAndGetPickup(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	start := time.Now().Add(3 * time.Hour)
	created, err := svc.CreatePickup(testCreateRequest(start, start.Add(2*time.Hour)), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(created.PickupID, PickupIDPrefix) {
		t.Errorf("generated pickup id %q missing prefix", created.PickupID)
	}
	if created.PickupAddress.CityLocality != "Austin" {
		t.Errorf("address not loaded after create: %+v", created.PickupAddress)
	}
	if created.NotificationSent {
		t.Error("new pickup should not have notification_sent set")
	}

	got, err := svc.GetPickupByID(created.PickupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("created pickup not found")
	}
	if got.PickupAddress.PostalCode != "78701" {
		t.Errorf("GetPickupByID did not load address, got %+v", got.PickupAddress)
	}
	if len(got.LabelIDs) != 1 || got.LabelIDs[0] != "label_1" {
		t.Errorf("label ids = %v, want [label_1]", got.LabelIDs)
	}
}

func TestCreatePickupWithSuppliedID(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	start := time.Now().Add(3 * time.Hour)
	jobID := "job_42"
	created, err := svc.CreatePickup(testCreateRequest(start, start.Add(time.Hour)), "pik_supplied00000000000000", &jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.PickupID != "pik_supplied00000000000000" {
		t.Errorf("pickup id = %q, want supplied id", created.PickupID)
	}
	if created.NotificationJobID == nil || *created.NotificationJobID != "job_42" {
		t.Errorf("notification job id = %v, want job_42", created.NotificationJobID)
	}

	// A colliding supplied id must propagate the constraint violation
	_, err = svc.CreatePickup(testCreateRequest(start, start.Add(time.Hour)), "pik_supplied00000000000000", nil)
	if err == nil {
		t.Fatal("expected error for duplicate pickup_id")
	}
}

func TestCancelPickup(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cancelled, err := svc.CancelPickup("pik_does_not_exist0000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled != nil {
		t.Fatal("cancelling unknown pickup should return nil")
	}

	start := time.Now().Add(3 * time.Hour)
	created, err := svc.CreatePickup(testCreateRequest(start, start.Add(time.Hour)), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled, err = svc.CancelPickup(created.PickupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled == nil {
		t.Fatal("expected cancelled pickup")
	}
	if !cancelled.IsDeleted {
		t.Error("cancelled pickup should be soft deleted")
	}
	if cancelled.DeletedAt == nil || cancelled.CancelledAt == nil {
		t.Fatal("cancelled pickup should carry deleted_at and cancelled_at")
	}
	if !cancelled.CancelledAt.Equal(*cancelled.DeletedAt) {
		t.Errorf("cancelled_at %v != deleted_at %v", cancelled.CancelledAt, cancelled.DeletedAt)
	}

	active, err := svc.GetActivePickup(created.PickupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active != nil {
		t.Error("cancelled pickup should not be returned as active")
	}

	// Cancelling again is a no-op returning nil
	again, err := svc.CancelPickup(created.PickupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != nil {
		t.Error("second cancel should return nil")
	}
}

func TestValidateForNotification(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	futureStart := time.Now().Add(3 * time.Hour)

	newPickup := func(t *testing.T) *pickupModel.Pickup {
		t.Helper()
		p, err := svc.CreatePickup(testCreateRequest(futureStart, futureStart.Add(time.Hour)), "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return p
	}

	t.Run("valid", func(t *testing.T) {
		p := newPickup(t)

		result, err := svc.ValidateForNotification(p.PickupID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsValid {
			t.Fatalf("expected valid, got skip reason %q", result.SkipReason)
		}
		if result.Pickup == nil || result.Pickup.PickupID != p.PickupID {
			t.Error("validation result should carry the pickup")
		}
	})

	t.Run("not found", func(t *testing.T) {
		result, err := svc.ValidateForNotification("pik_missing00000000000000")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsValid || result.SkipReason != SkipReasonNotFoundOrCancelled {
			t.Errorf("got %+v, want skip reason %q", result, SkipReasonNotFoundOrCancelled)
		}
	})

	t.Run("cancelled wins over unsent future window", func(t *testing.T) {
		p := newPickup(t)
		if _, err := svc.CancelPickup(p.PickupID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := svc.ValidateForNotification(p.PickupID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.SkipReason != SkipReasonNotFoundOrCancelled {
			t.Errorf("skip reason = %q, want %q", result.SkipReason, SkipReasonNotFoundOrCancelled)
		}
	})

	t.Run("already sent", func(t *testing.T) {
		p := newPickup(t)
		if err := svc.MarkNotificationSent(p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := svc.ValidateForNotification(p.PickupID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.SkipReason != SkipReasonAlreadySent {
			t.Errorf("skip reason = %q, want %q", result.SkipReason, SkipReasonAlreadySent)
		}
	})

	t.Run("window passed", func(t *testing.T) {
		p := newPickup(t)
		pastWindow := pickupModel.PickupWindow{
			StartAt: time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339),
			EndAt:   time.Now().Add(-1 * time.Hour).UTC().Format(time.RFC3339),
		}
		if err := db.Model(p).Update("pickup_window", pastWindow).Error; err != nil {
			t.Fatalf("failed to backdate window: %v", err)
		}

		result, err := svc.ValidateForNotification(p.PickupID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.SkipReason != SkipReasonWindowPassed {
			t.Errorf("skip reason = %q, want %q", result.SkipReason, SkipReasonWindowPassed)
		}
	})

	t.Run("malformed window start does not block", func(t *testing.T) {
		p := newPickup(t)
		badWindow := pickupModel.PickupWindow{StartAt: "not-a-timestamp", EndAt: ""}
		if err := db.Model(p).Update("pickup_window", badWindow).Error; err != nil {
			t.Fatalf("failed to corrupt window: %v", err)
		}

		result, err := svc.ValidateForNotification(p.PickupID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsValid {
			t.Errorf("malformed window should not block, got skip reason %q", result.SkipReason)
		}
	})
}

func TestGetPickupsPaginated(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	start := time.Now().Add(6 * time.Hour)
	for i := 0; i < 25; i++ {
		if _, err := svc.CreatePickup(testCreateRequest(start, start.Add(time.Hour)), "", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	seen := make(map[string]bool)

	page1, err := svc.GetPickupsPaginated(1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page1.Pickups) != 10 {
		t.Errorf("page 1 size = %d, want 10", len(page1.Pickups))
	}
	if !page1.HasMore() {
		t.Error("page 1 should report has_more")
	}
	if page1.TotalCount != 25 {
		t.Errorf("total count = %d, want 25", page1.TotalCount)
	}

	for page := 1; page <= 3; page++ {
		result, err := svc.GetPickupsPaginated(page, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, p := range result.Pickups {
			if seen[p.PickupID] {
				t.Errorf("pickup %s returned on more than one page", p.PickupID)
			}
			seen[p.PickupID] = true
		}
	}
	if len(seen) != 25 {
		t.Errorf("union of pages has %d pickups, want 25", len(seen))
	}

	page3, err := svc.GetPickupsPaginated(3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page3.Pickups) != 5 {
		t.Errorf("page 3 size = %d, want 5", len(page3.Pickups))
	}
	if page3.HasMore() {
		t.Error("page 3 should not report has_more")
	}
}
