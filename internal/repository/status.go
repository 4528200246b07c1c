package repository

import (
	"context"
	"fmt"

	"toolshed/internal/cache"
	"toolshed/internal/models"

	"gorm.io/gorm"
)

// StatusRepository reads the status catalog.
type StatusRepository interface {
	List(ctx context.Context) ([]models.RequestStatus, error)
}

type statusRepository struct {
	db *gorm.DB
}

// NewStatusRepository returns a new StatusRepository implementation.
func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) List(ctx context.Context) ([]models.RequestStatus, error) {
	var statuses []models.RequestStatus
	err := cache.Aside(ctx, cache.StatusCatalogKey, &statuses, cache.StatusCatalogTTL, func() error {
		return readDB(r.db).WithContext(ctx).Order("id ASC").Find(&statuses).Error
	})
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("list statuses: %w", err))
	}
	return statuses, nil
}
