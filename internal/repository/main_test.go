package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"toolshed/internal/cache"
	"toolshed/internal/database"
	"toolshed/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cache.SetClient(nil)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open(sqlite.Open("file:" + name + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

type fixtures struct {
	users []models.User
	tools []models.InventoryItem
}

// seedFixtures creates two users and n tools.
func seedFixtures(t *testing.T, db *gorm.DB, n int) fixtures {
	t.Helper()
	f := fixtures{
		users: []models.User{{Username: "ana", Email: "ana@example.com"}, {Username: "bo", Email: "bo@example.com"}},
	}
	require.NoError(t, db.Create(&f.users).Error)
	for i := 1; i <= n; i++ {
		f.tools = append(f.tools, models.InventoryItem{Code: fmt.Sprintf("T-%03d", i), Name: fmt.Sprintf("Tool %d", i)})
	}
	if n > 0 {
		require.NoError(t, db.Create(&f.tools).Error)
	}
	return f
}
