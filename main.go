package main

import (
	"fmt"
	"os"
	"time"

	"pickup-scheduler/database"
	"pickup-scheduler/logger"
	"pickup-scheduler/routes"
	"pickup-scheduler/services/housekeeping"
	schedulingService "pickup-scheduler/services/scheduling"
	"pickup-scheduler/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768, // 32KB read buffer
		WriteBufferSize: 32768, // 32KB write buffer
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		BodyLimit:       10 * 1024 * 1024, // 10MB body limit
	})

	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
		fmt.Println("Error loading .env file", err)
	}

	db, err := database.InitDB()
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("FRONTEND_URL"),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	scheduling := schedulingService.NewService("")
	defer scheduling.Close()

	routes.SetupRoutes(app, db, scheduling)

	// Deferred notification worker and housekeeping run alongside the API
	go func() {
		if err := worker.Run(db); err != nil {
			logger.Error("Notification worker stopped", err)
		}
	}()
	housekeeping.NewService(db).StartCron()

	appHost := os.Getenv("APP_HOST")
	appPort := os.Getenv("APP_PORT")
	logger.Success("Server is running on ip: " + appHost + " port: " + appPort)
	if err := app.Listen(appHost + ":" + appPort); err != nil {
		logger.Error("Server stopped", err)
	}
}
