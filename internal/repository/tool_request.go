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
)

// Display texts shared with the HTTP layer.
const (
	MsgDuplicateCode   = "Tool request with this code already exists"
	MsgRequestNotFound = "Tool request you trying to update does not exist"
)

const toolRequestsTable = "tool_requests"

var sortColumns = map[string]string{
	"id":         "tool_requests.id",
	"code":       "tool_requests.code",
	"status":     "tool_requests.status_id",
	"user":       "tool_requests.user_id",
	"tool":       "tool_requests.tool_id",
	"created":    "tool_requests.created_at",
	"createdat":  "tool_requests.created_at",
	"created_at": "tool_requests.created_at",
}

// ResolveSortColumn maps a client sort name to its SQL column. Names are case-insensitive.
func ResolveSortColumn(name string) (string, bool) {
	col, ok := sortColumns[strings.ToLower(strings.TrimSpace(name))]
	return col, ok
}

// PageQuery selects one page of the admin listing. Column must come from ResolveSortColumn.
type PageQuery struct {
	Offset int
	Limit  int
	Column string
	Desc   bool
}

// StatusGuard inspects the stored request before a status write and may veto it.
type StatusGuard func(current models.ToolRequest, next models.RequestStatusID) error

// ToolRequestRepository defines persistence operations for tool requests.
type ToolRequestRepository interface {
	List(ctx context.Context) ([]models.ToolRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]models.ToolRequest, error)
	CountActiveByUser(ctx context.Context, userID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
	Page(ctx context.Context, q PageQuery) ([]models.ToolRequest, error)
	GetByID(ctx context.Context, id uint) (*models.ToolRequest, error)
	Create(ctx context.Context, req *models.ToolRequest) error
	// UpdateRefs also returns the user the request belonged to before the write.
	UpdateRefs(ctx context.Context, id, userID, toolID uint, status models.RequestStatusID, guard StatusGuard) (*models.ToolRequest, uint, error)
	UpdateStatus(ctx context.Context, id uint, status models.RequestStatusID, guard StatusGuard) (*models.ToolRequest, error)
}

type toolRequestRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewToolRequestRepository returns a new ToolRequestRepository implementation.
func NewToolRequestRepository(db *gorm.DB) ToolRequestRepository {
	return &toolRequestRepository{db: db, log: observability.NewRepoLogger(toolRequestsTable)}
}

// joined loads user, tool and status in the same query. Joins is used instead of
// Preload because PENDING has status id 0, which Preload treats as an empty key.
func joined(db *gorm.DB) *gorm.DB {
	return db.Joins("User").Joins("Tool").Joins("Status")
}

func (r *toolRequestRepository) List(ctx context.Context) ([]models.ToolRequest, error) {
	defer observability.TrackQuery("list", toolRequestsTable)()

	var out []models.ToolRequest
	if err := joined(readDB(r.db).WithContext(ctx)).
		Order("tool_requests.id ASC").
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(fmt.Errorf("list tool requests: %w", err))
	}
	return out, nil
}

func (r *toolRequestRepository) ListByUser(ctx context.Context, userID uint) ([]models.ToolRequest, error) {
	defer observability.TrackQuery("list_by_user", toolRequestsTable)()

	var out []models.ToolRequest
	if err := joined(readDB(r.db).WithContext(ctx)).
		Where("tool_requests.user_id = ?", userID).
		Order("tool_requests.id ASC").
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(fmt.Errorf("list tool requests for user %d: %w", userID, err))
	}
	return out, nil
}

func (r *toolRequestRepository) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.UserRequestCountKeyFor(userID), &count, cache.UserRequestCountTTL, func() error {
		defer observability.TrackQuery("count_active_by_user", toolRequestsTable)()
		return readDB(r.db).WithContext(ctx).
			Model(&models.ToolRequest{}).
			Where("user_id = ? AND status_id <> ?", userID, models.StatusRejected).
			Count(&count).Error
	})
	if err != nil {
		return 0, models.NewInternalError(fmt.Errorf("count tool requests for user %d: %w", userID, err))
	}
	return count, nil
}

func (r *toolRequestRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.ToolRequest{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(fmt.Errorf("count tool requests: %w", err))
	}
	return count, nil
}

func (r *toolRequestRepository) Page(ctx context.Context, q PageQuery) ([]models.ToolRequest, error) {
	defer observability.TrackQuery("page", toolRequestsTable)()

	query := joined(readDB(r.db).WithContext(ctx))
	if q.Column != "" && q.Column != "tool_requests.id" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		query = query.Order(q.Column + " " + dir).Order("tool_requests.id ASC")
	} else if q.Desc {
		query = query.Order("tool_requests.id DESC")
	} else {
		query = query.Order("tool_requests.id ASC")
	}

	var out []models.ToolRequest
	if err := query.Offset(q.Offset).Limit(q.Limit).Find(&out).Error; err != nil {
		return nil, models.NewInternalError(fmt.Errorf("page tool requests: %w", err))
	}
	return out, nil
}

func (r *toolRequestRepository) GetByID(ctx context.Context, id uint) (*models.ToolRequest, error) {
	return r.getByID(r.db.WithContext(ctx), id)
}

func (r *toolRequestRepository) getByID(db *gorm.DB, id uint) (*models.ToolRequest, error) {
	var req models.ToolRequest
	if err := joined(db).Where("tool_requests.id = ?", id).Take(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tool request", id, MsgRequestNotFound)
		}
		return nil, models.NewInternalError(fmt.Errorf("get tool request %d: %w", id, err))
	}
	return &req, nil
}

// Create inserts a request. The partial unique index on active codes is the only
// duplicate check; a violation becomes a Conflict.
func (r *toolRequestRepository) Create(ctx context.Context, req *models.ToolRequest) error {
	defer observability.TrackQuery("create", toolRequestsTable)()

	if err := r.db.WithContext(ctx).Omit("User", "Tool", "Status").Create(req).Error; err != nil {
		if isDuplicateKey(err) {
			return models.NewConflictError(MsgDuplicateCode, err)
		}
		if isForeignKeyViolation(err) {
			return models.NewValidationError("Referenced user or tool does not exist")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(fmt.Errorf("create tool request: %w", err))
	}

	r.log.LogCreate(ctx, map[string]any{"id": req.ID, "user_id": req.UserID, "code": req.Code})
	cache.InvalidateUserCounts(ctx, req.UserID)
	return nil
}

// UpdateRefs overwrites exactly user_id, tool_id and status_id.
func (r *toolRequestRepository) UpdateRefs(ctx context.Context, id, userID, toolID uint, status models.RequestStatusID, guard StatusGuard) (*models.ToolRequest, uint, error) {
	return r.update(ctx, id, status, guard, map[string]interface{}{
		"user_id":   userID,
		"tool_id":   toolID,
		"status_id": status,
	})
}

// UpdateStatus overwrites only status_id.
func (r *toolRequestRepository) UpdateStatus(ctx context.Context, id uint, status models.RequestStatusID, guard StatusGuard) (*models.ToolRequest, error) {
	updated, _, err := r.update(ctx, id, status, guard, map[string]interface{}{
		"status_id": status,
	})
	return updated, err
}

func (r *toolRequestRepository) update(ctx context.Context, id uint, status models.RequestStatusID, guard StatusGuard, columns map[string]interface{}) (*models.ToolRequest, uint, error) {
	defer observability.TrackQuery("update", toolRequestsTable)()

	var previousUser uint
	var updated *models.ToolRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.ToolRequest
		if err := tx.Where("id = ?", id).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Tool request", id, MsgRequestNotFound)
			}
			return err
		}
		if guard != nil {
			if err := guard(current, status); err != nil {
				return err
			}
		}
		previousUser = current.UserID

		res := tx.Model(&models.ToolRequest{}).Where("id = ?", id).UpdateColumns(columns)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Tool request", id, MsgRequestNotFound)
		}

		reloaded, err := r.getByID(tx, id)
		if err != nil {
			return err
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		switch {
		case errors.As(err, &appErr):
			return nil, 0, appErr
		case isDuplicateKey(err):
			return nil, 0, models.NewConflictError(MsgDuplicateCode, err)
		case isForeignKeyViolation(err):
			return nil, 0, models.NewValidationError("Referenced user or tool does not exist")
		default:
			r.log.LogError(ctx, err, "update")
			return nil, 0, models.NewInternalError(fmt.Errorf("update tool request %d: %w", id, err))
		}
	}

	r.log.LogUpdate(ctx, map[string]any{"id": id, "columns": len(columns), "status_id": int(status)})
	cache.InvalidateUserCounts(ctx, previousUser, updated.UserID)
	return updated, previousUser, nil
}
