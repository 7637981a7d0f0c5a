package database

import (
	"log"
	"time"

	"github.com/eventify/eventify-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.AutoMigrate(&models.User{}, &models.Event{}, &models.Ticket{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Counter sanity enforced by the store itself, independent of application checks
	db.Exec(`ALTER TABLE events DROP CONSTRAINT IF EXISTS chk_tickets_sold`)
	db.Exec(`
		ALTER TABLE events ADD CONSTRAINT chk_tickets_sold
		CHECK (tickets_sold >= 0 AND tickets_sold <= total_tickets)
	`)

	return db
}
