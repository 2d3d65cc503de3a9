package pickup

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"pickup-scheduler/logger"
	pickupModel "pickup-scheduler/models/pickup"
	addressModel "pickup-scheduler/models/pickupaddress"
	pickupTypes "pickup-scheduler/types/pickup"
	"pickup-scheduler/utils"

	"gorm.io/gorm"
)

// Pickup ID format: pik_<RANDOM_SUFFIX>
const (
	PickupIDPrefix       = "pik_"
	PickupIDSuffixLength = 22
)

// Validation skip reasons returned to the notification worker.
const (
	SkipReasonNotFoundOrCancelled = "pickup_not_found_or_cancelled"
	SkipReasonAlreadySent         = "notification_already_sent"
	SkipReasonWindowPassed        = "pickup_window_passed"
)

// Service handles pickup lifecycle operations: CRUD, validation and state
// transitions. Deletes are always soft.
type Service struct {
	DB *gorm.DB
}

// NewService creates a new pickup service
func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// ValidationResult is the outcome of checking whether a pickup is still
// eligible for its reminder notification.
type ValidationResult struct {
	IsValid    bool
	Pickup     *pickupModel.Pickup
	SkipReason string
}

// PaginatedPickups is one page of active pickups plus paging metadata.
type PaginatedPickups struct {
	Pickups      []pickupModel.Pickup `json:"pickups"`
	TotalCount   int64                `json:"total_count"`
	Page         int                  `json:"page"`
	ItemsPerPage int                  `json:"items_per_page"`
}

// HasMore reports whether pages beyond this one exist.
func (p PaginatedPickups) HasMore() bool {
	offset := (p.Page - 1) * p.ItemsPerPage
	return int64(offset+len(p.Pickups)) < p.TotalCount
}

// GeneratePickupID generates a unique pickup ID in the format pik_XXXXXXXXX.
// No collision check against the database; the keyspace makes collisions
// negligible and the unique index catches the rest.
func GeneratePickupID() string {
	buf := make([]byte, 17)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("pickup id generation: %v", err))
	}
	suffix := base64.RawURLEncoding.EncodeToString(buf)[:PickupIDSuffixLength]
	return PickupIDPrefix + suffix
}

// CreatePickup inserts the address and the pickup referencing it in one
// transaction. An empty pickupID means one is generated here. The returned
// pickup has its address loaded.
func (s *Service) CreatePickup(req pickupTypes.PickupCreateRequest, pickupID string, notificationJobID *string) (*pickupModel.Pickup, error) {
	if pickupID == "" {
		pickupID = GeneratePickupID()
	}

	residential := req.PickupAddress.AddressResidentialIndicator
	if residential == "" {
		residential = "no"
	}

	var created pickupModel.Pickup

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		address := addressModel.PickupAddress{
			Name:                        req.PickupAddress.Name,
			Phone:                       req.PickupAddress.Phone,
			Email:                       req.PickupAddress.Email,
			CompanyName:                 req.PickupAddress.CompanyName,
			AddressLine1:                req.PickupAddress.AddressLine1,
			AddressLine2:                req.PickupAddress.AddressLine2,
			AddressLine3:                req.PickupAddress.AddressLine3,
			CityLocality:                req.PickupAddress.CityLocality,
			StateProvince:               req.PickupAddress.StateProvince,
			PostalCode:                  req.PickupAddress.PostalCode,
			CountryCode:                 req.PickupAddress.CountryCode,
			AddressResidentialIndicator: residential,
		}

		if err := tx.Create(&address).Error; err != nil {
			return fmt.Errorf("failed to create pickup address: %w", err)
		}

		created = pickupModel.Pickup{
			PickupID:        pickupID,
			PickupAddressID: address.ID,
			LabelIDs:        pickupModel.StringSlice(req.LabelIDs),
			ContactDetails: pickupModel.ContactDetails{
				Name:  req.ContactDetails.Name,
				Email: req.ContactDetails.Email,
				Phone: req.ContactDetails.Phone,
			},
			PickupWindow: pickupModel.PickupWindow{
				StartAt: req.PickupWindow.StartAt.UTC().Format(time.RFC3339),
				EndAt:   req.PickupWindow.EndAt.UTC().Format(time.RFC3339),
			},
			PickupNotes:       req.PickupNotes,
			NotificationJobID: notificationJobID,
			NotificationSent:  false,
		}

		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create pickup: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reload with the address relationship populated
	var withAddress pickupModel.Pickup
	if err := s.DB.Preload("PickupAddress").First(&withAddress, created.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load created pickup: %w", err)
	}

	logger.Success("Created pickup " + pickupID)
	return &withAddress, nil
}

// GetPickupByID retrieves an active pickup with its address loaded.
// Returns nil when no active pickup matches.
func (s *Service) GetPickupByID(pickupID string) (*pickupModel.Pickup, error) {
	var p pickupModel.Pickup
	err := s.DB.Preload("PickupAddress").
		Where("pickup_id = ? AND is_deleted = ?", pickupID, false).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pickup: %w", err)
	}
	return &p, nil
}

// GetActivePickup retrieves an active pickup without loading the address.
// Used where only flags are needed.
func (s *Service) GetActivePickup(pickupID string) (*pickupModel.Pickup, error) {
	var p pickupModel.Pickup
	err := s.DB.Where("pickup_id = ? AND is_deleted = ?", pickupID, false).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pickup: %w", err)
	}
	return &p, nil
}

// GetPickupsPaginated returns one page of active pickups, newest first.
func (s *Service) GetPickupsPaginated(page, itemsPerPage int) (*PaginatedPickups, error) {
	if page < 1 {
		page = 1
	}
	if itemsPerPage < 1 {
		itemsPerPage = 10
	}
	offset := (page - 1) * itemsPerPage

	var pickups []pickupModel.Pickup
	err := s.DB.Preload("PickupAddress").
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Offset(offset).
		Limit(itemsPerPage).
		Find(&pickups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pickups: %w", err)
	}

	var totalCount int64
	err = s.DB.Model(&pickupModel.Pickup{}).
		Where("is_deleted = ?", false).
		Count(&totalCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pickups: %w", err)
	}

	return &PaginatedPickups{
		Pickups:      pickups,
		TotalCount:   totalCount,
		Page:         page,
		ItemsPerPage: itemsPerPage,
	}, nil
}

// CancelPickup soft deletes a pickup. Returns nil without writing anything
// when no active pickup matches.
func (s *Service) CancelPickup(pickupID string) (*pickupModel.Pickup, error) {
	p, err := s.GetActivePickup(pickupID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	deletedAt := time.Now().UTC()
	p.IsDeleted = true
	p.DeletedAt = &deletedAt
	p.CancelledAt = &deletedAt

	if err := s.DB.Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel pickup: %w", err)
	}

	logger.Success("Cancelled pickup " + pickupID)
	return p, nil
}

// ValidateForNotification checks whether a pickup is still eligible for its
// reminder. Checks run in priority order: pickup exists and is active, the
// notification was not sent yet, the pickup window has not started.
// An unparsable window start is logged but does not block the notification.
func (s *Service) ValidateForNotification(pickupID string) (*ValidationResult, error) {
	p, err := s.GetActivePickup(pickupID)
	if err != nil {
		return nil, err
	}

	if p == nil {
		logger.Info("Pickup " + pickupID + " not found or was cancelled")
		return &ValidationResult{
			IsValid:    false,
			Pickup:     nil,
			SkipReason: SkipReasonNotFoundOrCancelled,
		}, nil
	}

	if p.NotificationSent {
		logger.Info("Notification already sent for pickup " + pickupID)
		return &ValidationResult{
			IsValid:    false,
			Pickup:     p,
			SkipReason: SkipReasonAlreadySent,
		}, nil
	}

	if p.PickupWindow.StartAt != "" {
		startAt, ok := utils.ParseFlexibleTime(p.PickupWindow.StartAt)
		if !ok {
			logger.Warning("Invalid pickup window format for pickup " + pickupID + ": " + p.PickupWindow.StartAt)
		} else if startAt.Before(time.Now()) {
			logger.Info("Pickup window already passed for pickup " + pickupID)
			return &ValidationResult{
				IsValid:    false,
				Pickup:     p,
				SkipReason: SkipReasonWindowPassed,
			}, nil
		}
	}

	return &ValidationResult{IsValid: true, Pickup: p}, nil
}

// MarkNotificationSent flips the pickup's notification flag. The transition
// is one way; the API never resets it.
func (s *Service) MarkNotificationSent(p *pickupModel.Pickup) error {
	p.NotificationSent = true
	if err := s.DB.Model(p).Update("notification_sent", true).Error; err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	logger.Success("Marked notification as sent for pickup " + p.PickupID)
	return nil
}
