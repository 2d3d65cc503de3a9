package pickup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"pickup-scheduler/logger"
	pickupService "pickup-scheduler/services/pickup"
	schedulingService "pickup-scheduler/services/scheduling"
	"pickup-scheduler/types"
	pickupTypes "pickup-scheduler/types/pickup"
	"pickup-scheduler/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PickupController handles pickup-related HTTP requests
type PickupController struct {
	DB         *gorm.DB
	Scheduling *schedulingService.Service
	Logger     *logger.AsyncLogger
}

// NewPickupController creates a new pickup controller
func NewPickupController(db *gorm.DB, scheduling *schedulingService.Service, asyncLogger *logger.AsyncLogger) *PickupController {
	return &PickupController{
		DB:         db,
		Scheduling: scheduling,
		Logger:     asyncLogger,
	}
}

func notifyBefore() time.Duration {
	if v := os.Getenv("NOTIFY_BEFORE_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return schedulingService.DefaultNotifyBefore
}

// Store schedules a new pickup: enqueues the reminder job, then creates the
// address and pickup records tagged with the job id.
func (pc *PickupController) Store(c *fiber.Ctx) error {
	var req pickupTypes.PickupCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		logger.Error("Invalid pickup payload", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(types.ErrorResponse{
			Message: err.Error(),
			Status:  fiber.StatusUnprocessableEntity,
		})
	}

	// Generate the pickup ID upfront so the scheduled job can reference it
	pickupID := pickupService.GeneratePickupID()

	schedulingResult := pc.Scheduling.SchedulePickupNotification(pickupID, req.PickupWindow.StartAt, notifyBefore())

	// A failed or skipped scheduling attempt still creates the pickup; it
	// just carries no notification job id.
	var jobID *string
	if schedulingResult.JobID != "" {
		jobID = &schedulingResult.JobID
	}

	svc := pickupService.NewService(pc.DB)
	created, err := svc.CreatePickup(req, pickupID, jobID)
	if err != nil {
		logger.Error("Failed to save pickup", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Message: "Failed to save pickup",
			Status:  fiber.StatusInternalServerError,
		})
	}

	if pc.Logger != nil {
		pc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	}

	logger.Success(fmt.Sprintf("Created pickup %s (notification: %s)", created.PickupID, schedulingResult.Status))
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Index returns a paginated list of active pickups.
func (pc *PickupController) Index(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	itemsPerPage := c.QueryInt("items_per_page", 10)

	svc := pickupService.NewService(pc.DB)
	result, err := svc.GetPickupsPaginated(page, itemsPerPage)
	if err != nil {
		logger.Error("Failed to list pickups", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Message: "Failed to list pickups",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data":           result.Pickups,
		"total_count":    result.TotalCount,
		"has_more":       result.HasMore(),
		"page":           result.Page,
		"items_per_page": result.ItemsPerPage,
	})
}

// Show returns a pickup with its address by external pickup id.
func (pc *PickupController) Show(c *fiber.Ctx) error {
	pickupID := c.Params("pickup_id")

	svc := pickupService.NewService(pc.DB)
	p, err := svc.GetPickupByID(pickupID)
	if err != nil {
		logger.Error("Failed to find pickup", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Message: "Internal server error",
			Status:  fiber.StatusInternalServerError,
		})
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrorResponse{
			Message: "Pickup not found",
			Status:  fiber.StatusNotFound,
		})
	}

	return c.Status(fiber.StatusOK).JSON(p)
}

// Destroy soft-cancels a pickup.
func (pc *PickupController) Destroy(c *fiber.Ctx) error {
	pickupID := c.Params("pickup_id")

	svc := pickupService.NewService(pc.DB)
	cancelled, err := svc.CancelPickup(pickupID)
	if err != nil {
		logger.Error("Failed to cancel pickup", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Message: "Internal server error",
			Status:  fiber.StatusInternalServerError,
		})
	}
	if cancelled == nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrorResponse{
			Message: "Pickup not found",
			Status:  fiber.StatusNotFound,
		})
	}

	if pc.Logger != nil {
		pc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Pickup cancelled successfully",
	})
}
