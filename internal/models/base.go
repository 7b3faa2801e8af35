package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN      string
	LogLevel logger.LogLevel
}

// InitDB opens the MySQL connection. Duplicate-key failures are translated to
// gorm.ErrDuplicatedKey so the repository can recognise slot conflicts.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	level := config.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	return gorm.Open(mysql.Open(config.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
}

// Migrate creates or updates every table owned by the scheduling core.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Doctor{},
		&Appointment{},
		&Prescription{},
		&StatusChange{},
	)
}
