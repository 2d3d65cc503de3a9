package pickupaddress

import (
	"time"
)

// PickupAddress represents the location a carrier collects packages from.
// Addresses are created together with their pickup and are not updated afterwards.
type PickupAddress struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"type:varchar(100);not null" json:"name"`
	Phone string `gorm:"type:varchar(50);not null" json:"phone"`

	Email       *string `gorm:"type:varchar(100)" json:"email,omitempty"`
	CompanyName *string `gorm:"type:varchar(100)" json:"company_name,omitempty"`

	AddressLine1 string  `gorm:"type:varchar(200);not null" json:"address_line1"`
	AddressLine2 *string `gorm:"type:varchar(200)" json:"address_line2,omitempty"`
	AddressLine3 *string `gorm:"type:varchar(200)" json:"address_line3,omitempty"`

	CityLocality  string `gorm:"type:varchar(100);not null" json:"city_locality"`
	StateProvince string `gorm:"type:varchar(100);not null" json:"state_province"`
	PostalCode    string `gorm:"type:varchar(20);not null" json:"postal_code"`
	CountryCode   string `gorm:"type:varchar(2);not null" json:"country_code"`

	// "yes"/"no"/"unknown", carrier-facing flag
	AddressResidentialIndicator string `gorm:"type:varchar(10);default:no" json:"address_residential_indicator"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
