package storage

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/nfvsec/nmtd/internal/core/ports"
)

// SQLiteAdapter implements ports.EventRepository using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// EventModel is the GORM model for activity events.
type EventModel struct {
	ID             string `gorm:"primaryKey"`
	Action         string `gorm:"index"`
	ServiceID      string `gorm:"index"`
	Characteristic string
	Value          string
	Outcome        string
	Detail         string
	Timestamp      time.Time `gorm:"index"`
}

// NewSQLiteAdapter initializes the database and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&EventModel{}); err != nil {
		return nil, err
	}

	return &SQLiteAdapter{db: db}, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure interface compliance
var _ ports.EventRepository = (*SQLiteAdapter)(nil)
