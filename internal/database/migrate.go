package database

import (
	"context"
	"fmt"

	"toolshed/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.InventoryItem{},
		&models.RequestStatus{},
		&models.ToolRequest{},
	}
}

// Migrate creates or updates the schema, including the partial unique index on
// active request codes, and seeds the status catalog.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return SeedStatusCatalog(ctx, db)
}

// SeedStatusCatalog inserts the fixed status rows. Existing rows are left untouched.
func SeedStatusCatalog(ctx context.Context, db *gorm.DB) error {
	catalog := models.StatusCatalog()
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&catalog).Error; err != nil {
		return fmt.Errorf("failed to seed status catalog: %w", err)
	}
	return nil
}
