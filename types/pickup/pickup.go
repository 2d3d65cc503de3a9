package pickup

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ContactDetailsRequest is the person to notify about the pickup.
type ContactDetailsRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,max=50"`
}

// PickupWindowRequest is the requested collection time range.
type PickupWindowRequest struct {
	StartAt time.Time `json:"start_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required"`
}

type PickupAddressRequest struct {
	Name                        string  `json:"name" validate:"required,max=100"`
	Phone                       string  `json:"phone" validate:"required,max=50"`
	Email                       *string `json:"email" validate:"omitempty,email,max=100"`
	CompanyName                 *string `json:"company_name" validate:"omitempty,max=100"`
	AddressLine1                string  `json:"address_line1" validate:"required,max=200"`
	AddressLine2                *string `json:"address_line2" validate:"omitempty,max=200"`
	AddressLine3                *string `json:"address_line3" validate:"omitempty,max=200"`
	CityLocality                string  `json:"city_locality" validate:"required,max=100"`
	StateProvince               string  `json:"state_province" validate:"required,max=100"`
	PostalCode                  string  `json:"postal_code" validate:"required,max=20"`
	CountryCode                 string  `json:"country_code" validate:"required,len=2"`
	AddressResidentialIndicator string  `json:"address_residential_indicator" validate:"omitempty,oneof=yes no unknown"`
}

// PickupCreateRequest represents the request payload for scheduling a pickup
type PickupCreateRequest struct {
	LabelIDs       []string              `json:"label_ids" validate:"required,min=1,dive,required"`
	ContactDetails ContactDetailsRequest `json:"contact_details" validate:"required"`
	PickupNotes    *string               `json:"pickup_notes"`
	PickupWindow   PickupWindowRequest   `json:"pickup_window" validate:"required"`
	PickupAddress  PickupAddressRequest  `json:"pickup_address" validate:"required"`
}

// use first step validation
func (r PickupCreateRequest) Validate() error {
	if len(r.LabelIDs) == 0 {
		return fmt.Errorf("label_ids must not be empty")
	}
	if r.PickupWindow.StartAt.IsZero() || r.PickupWindow.EndAt.IsZero() {
		return fmt.Errorf("pickup_window start_at and end_at are required")
	}
	if !r.PickupWindow.EndAt.After(r.PickupWindow.StartAt) {
		return fmt.Errorf("pickup_window end_at must be after start_at")
	}
	return validate.Struct(r)
}

// PaginationQuery holds the query parameters for pickup listing.
type PaginationQuery struct {
	Page         int `query:"page"`
	ItemsPerPage int `query:"items_per_page"`
}
