package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	StatusCatalogKey       = "toolrequest:statuses"
	UserRequestCountKey    = "toolrequest:count:user:%d"
	InventoryCodeKeyPrefix = "inventory:code:%s"
)

const (
	StatusCatalogTTL    = time.Hour
	UserRequestCountTTL = 30 * time.Second
	InventoryTTL        = 10 * time.Minute
)

func UserRequestCountKeyFor(userID uint) string {
	return fmt.Sprintf(UserRequestCountKey, userID)
}

func InventoryCodeKey(code string) string {
	return fmt.Sprintf(InventoryCodeKeyPrefix, code)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateUserCounts drops the cached request counts of the given users.
func InvalidateUserCounts(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != 0 {
			keys = append(keys, UserRequestCountKeyFor(id))
		}
	}
	Invalidate(ctx, keys...)
}

func InvalidateInventory(ctx context.Context, code string) {
	Invalidate(ctx, InventoryCodeKey(code))
}
