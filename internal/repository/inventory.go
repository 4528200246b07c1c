package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"toolshed/internal/cache"
	"toolshed/internal/models"
	"toolshed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const inventoryTable = "inventory_items"

// InventoryRepository defines persistence operations for inventory items.
type InventoryRepository interface {
	GetByCode(ctx context.Context, code string) (*models.InventoryItem, error)
	List(ctx context.Context, limit, offset int) ([]models.InventoryItem, error)
	Upsert(ctx context.Context, items []models.InventoryItem) error
}

type inventoryRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewInventoryRepository returns a new InventoryRepository implementation.
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db, log: observability.NewRepoLogger(inventoryTable)}
}

func (r *inventoryRepository) GetByCode(ctx context.Context, code string) (*models.InventoryItem, error) {
	code = strings.TrimSpace(code)
	var item models.InventoryItem

	err := cache.Aside(ctx, cache.InventoryCodeKey(code), &item, cache.InventoryTTL, func() error {
		defer observability.TrackQuery("get_by_code", inventoryTable)()
		if err := readDB(r.db).WithContext(ctx).Where("code = ?", code).Take(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Inventory item", code,
					fmt.Sprintf("Inventory item with code %s not found", code))
			}
			return models.NewInternalError(fmt.Errorf("get inventory item %q: %w", code, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) List(ctx context.Context, limit, offset int) ([]models.InventoryItem, error) {
	defer observability.TrackQuery("list", inventoryTable)()

	var items []models.InventoryItem
	if err := readDB(r.db).WithContext(ctx).
		Order("code ASC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(fmt.Errorf("list inventory: %w", err))
	}
	return items, nil
}

// Upsert inserts items, updating name, description and location of codes that already exist.
func (r *inventoryRepository) Upsert(ctx context.Context, items []models.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	defer observability.TrackQuery("upsert", inventoryTable)()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "location", "updated_at"}),
	}).Create(&items).Error
	if err != nil {
		r.log.LogError(ctx, err, "upsert")
		return models.NewInternalError(fmt.Errorf("upsert inventory: %w", err))
	}

	for _, item := range items {
		cache.InvalidateInventory(ctx, item.Code)
	}
	r.log.LogCreate(ctx, map[string]any{"count": len(items)})
	return nil
}
