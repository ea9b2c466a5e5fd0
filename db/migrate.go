package db

import (
	"context"
	"fmt"

	"github.com/dondesang/appdon/models"
	"gorm.io/gorm"
)

// DefaultCountries seeds a local countries table. The hosted backend has its own rows.
var DefaultCountries = []string{"Bénin", "Burkina Faso", "Côte d'Ivoire", "Ghana", "Niger", "Nigeria", "Togo"}

// Migrate creates the countries table on a local database and fills it when empty. It is
// only run explicitly, never against the hosted backend at startup.
func Migrate(ctx context.Context, conn *gorm.DB, seed []string) (int, error) {
	tx := conn.WithContext(ctx)
	if err := tx.AutoMigrate(&models.Country{}); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	var count int64
	if err := tx.Model(&models.Country{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count countries: %w", err)
	}
	if count > 0 || len(seed) == 0 {
		return 0, nil
	}
	rows := make([]models.Country, 0, len(seed))
	for _, name := range seed {
		rows = append(rows, models.Country{Name: name})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("seed countries: %w", err)
	}
	return len(rows), nil
}
