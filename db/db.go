// Package db talks to the hosted backend's Postgres. The only table read is countries.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dondesang/appdon/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotConfigured is returned when no database URL was given.
var ErrNotConfigured = errors.New("backend database not configured")

// Open connects to the database at url.
func Open(url string, log *zap.Logger) (*gorm.DB, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}
	conn, err := gorm.Open(postgres.Open(url), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	log.Info("database connection established")
	return conn, nil
}

// CountryReader lists the rows of the countries table.
type CountryReader interface {
	Countries(ctx context.Context) ([]models.Country, error)
}

type Countries struct {
	db *gorm.DB
}

func NewCountries(conn *gorm.DB) *Countries {
	return &Countries{db: conn}
}

func (c *Countries) Countries(ctx context.Context) ([]models.Country, error) {
	var out []models.Country
	err := c.db.WithContext(ctx).
		Model(&models.Country{}).
		Select("id", "name").
		Order("name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	return out, nil
}

// Unconfigured is the reader used when no database URL is set.
type Unconfigured struct{}

func (Unconfigured) Countries(context.Context) ([]models.Country, error) {
	return nil, ErrNotConfigured
}
