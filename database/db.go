package database

import (
	"fmt"
	"os"

	"pickup-scheduler/logger"
	logModel "pickup-scheduler/models/log"
	pickupModel "pickup-scheduler/models/pickup"
	addressModel "pickup-scheduler/models/pickupaddress"
	userModel "pickup-scheduler/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE") // Optional: "disable", "require", etc.

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := Migrate(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	return DB, nil
}

// Migrate runs the staged auto migration plus the extra indexes and
// constraints AutoMigrate does not cover.
func Migrate(db *gorm.DB) error {
	if err := autoMigrate(db); err != nil {
		return err
	}

	if err := createForeignKeyConstraints(db); err != nil {
		logger.Error("Failed to create foreign key constraints", err)
		return err
	}

	if err := createIndexes(db); err != nil {
		logger.Error("Failed to create indexes", err)
		return err
	}

	return nil
}

// autoMigrate runs auto migration for all models in dependency order
func autoMigrate(db *gorm.DB) error {
	// Stage 1: tables without foreign keys
	stage1Models := []interface{}{
		&userModel.User{},
		&addressModel.PickupAddress{},
	}

	for _, model := range stage1Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: tables referencing stage 1
	stage2Models := []interface{}{
		&pickupModel.Pickup{},
	}

	for _, model := range stage2Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Remaining: logging
	if err := db.AutoMigrate(&logModel.Log{}); err != nil {
		return fmt.Errorf("failed to migrate %T: %w", &logModel.Log{}, err)
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes(db *gorm.DB) error {
	// Pickup indexes
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_pickups_pickup_id ON pickups(pickup_id)").Error; err != nil {
		return fmt.Errorf("failed to create pickup pickup_id index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_pickups_is_deleted ON pickups(is_deleted)").Error; err != nil {
		return fmt.Errorf("failed to create pickup is_deleted index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_pickups_pickup_address_id ON pickups(pickup_address_id)").Error; err != nil {
		return fmt.Errorf("failed to create pickup pickup_address_id index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_pickups_created_at ON pickups(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create pickup created_at index: %w", err)
	}

	// User indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_users_uuid ON users(uuid)").Error; err != nil {
		return fmt.Errorf("failed to create user uuid index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)").Error; err != nil {
		return fmt.Errorf("failed to create user username index: %w", err)
	}

	// Log indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_logs_status_code ON logs(status_code)").Error; err != nil {
		return fmt.Errorf("failed to create log status_code index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}

// createForeignKeyConstraints creates foreign key constraints after auto migration
func createForeignKeyConstraints(db *gorm.DB) error {
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_pickups_pickup_address",
			sql: `ALTER TABLE pickups ADD CONSTRAINT fk_pickups_pickup_address
				  FOREIGN KEY (pickup_address_id) REFERENCES pickup_addresses(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
	}

	for _, constraint := range constraints {
		var exists bool
		checkSQL := `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.table_constraints
				WHERE constraint_name = $1
			)
		`

		err := db.Raw(checkSQL, constraint.name).Scan(&exists).Error
		if err != nil {
			logger.Warning(fmt.Sprintf("Failed to check constraint existence: %s - Error: %v", constraint.name, err))
			continue
		}

		if !exists {
			if err := db.Exec(constraint.sql).Error; err != nil {
				logger.Warning(fmt.Sprintf("Failed to create constraint: %s - Error: %v", constraint.name, err))
			} else {
				logger.Success(fmt.Sprintf("Successfully created constraint: %s", constraint.name))
			}
		} else {
			logger.Debug(fmt.Sprintf("Constraint already exists: %s", constraint.name))
		}
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
