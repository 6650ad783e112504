// Package postgres persists processed detections and matches them against
// state-agency fire perimeter polygons stored in PostGIS.
package postgres

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open establishes a PostgreSQL connection from a DSN.
func Open(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("postgres connected")
	return db, nil
}

// Migrate creates the detections table. The perimeters table is loaded
// separately from agency GIS exports, so only its presence is verified here.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&DetectionModel{}); err != nil {
		return fmt.Errorf("migrate detections: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database connection: %w", err)
	}
	return nil
}
