package pickup

import (
	"time"

	"pickup-scheduler/models/pickupaddress"
)

// Pickup represents a scheduled package pickup with its collection address.
type Pickup struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"-"`

	// Externally visible identifier, format pik_<22 url-safe chars>
	PickupID string `gorm:"type:varchar(50);not null;unique" json:"pickup_id"`

	// Foreign key for pickup address relationship
	PickupAddressID uint                        `gorm:"not null;index" json:"-"`
	PickupAddress   pickupaddress.PickupAddress `gorm:"foreignKey:PickupAddressID" json:"pickup_address"`

	LabelIDs       StringSlice    `gorm:"type:json;not null" json:"label_ids"`
	ContactDetails ContactDetails `gorm:"type:jsonb;not null" json:"contact_details"`
	PickupWindow   PickupWindow   `gorm:"type:jsonb;not null" json:"pickup_window"`
	PickupNotes    *string        `gorm:"type:text" json:"pickup_notes,omitempty"`

	CarrierID          *string `gorm:"type:varchar(50)" json:"carrier_id,omitempty"`
	ConfirmationNumber *string `gorm:"type:varchar(50)" json:"confirmation_number,omitempty"`
	WarehouseID        *string `gorm:"type:varchar(50)" json:"warehouse_id,omitempty"`

	// Notification tracking
	NotificationJobID *string `gorm:"type:varchar(100)" json:"notification_job_id,omitempty"`
	NotificationSent  bool    `gorm:"default:false" json:"notification_sent"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	IsDeleted   bool       `gorm:"default:false;index" json:"-"`
}
