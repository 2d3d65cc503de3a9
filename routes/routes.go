package routes

import (
	"os"

	"pickup-scheduler/controllers/auth"
	pickupController "pickup-scheduler/controllers/pickup"
	httpServices "pickup-scheduler/httpServices/sso"
	"pickup-scheduler/logger"
	"pickup-scheduler/middleware"
	schedulingService "pickup-scheduler/services/scheduling"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, scheduling *schedulingService.Service) {
	ssoClient := httpServices.NewClient(os.Getenv("SSO_BASE_URL"))
	asyncLogger := logger.NewAsyncLogger(db)
	authController := auth.NewAuthController(ssoClient, db, asyncLogger)
	pickups := pickupController.NewPickupController(db, scheduling, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/get-service-token", authController.GetServiceToken)
	api.Post("/login", authController.Login)
	api.Post("/register", authController.Register)

	/*=============================================================================
	| Protected Routes
	===============================================================================*/
	authGroup := api.Group("/auth").Use(middleware.RequireAnyPermission())
	authGroup.Post("/logout", authController.LogOut)

	/*=============================================================================
	| Pickup Routes
	===============================================================================*/
	pickupGroup := app.Group("/pickups")
	pickupGroup.Post("/", pickups.Store)
	pickupGroup.Get("/", pickups.Index)
	pickupGroup.Get("/:pickup_id", pickups.Show)
	pickupGroup.Delete("/:pickup_id", pickups.Destroy)
}
