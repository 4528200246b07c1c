package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"toolshed/internal/cache"
	"toolshed/internal/config"
	"toolshed/internal/database"
	"toolshed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	users  []models.User
	tools  []models.InventoryItem
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       testSecret,
		Port:            "0",
		Env:             "test",
		AllowedOrigins:  "http://localhost:5173",
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}
}

func openTestDB(t *testing.T) *gorm.DB {
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

// newTestEnv builds a server over an in-memory database holding two users and
// nTools inventory items coded T-001, T-002, ...
func newTestEnv(t *testing.T, cfg *config.Config, rdb *redis.Client, nTools int) *testEnv {
	t.Helper()
	db := openTestDB(t)

	users := []models.User{
		{Username: "ana", Email: "ana@example.com"},
		{Username: "bo", Email: "bo@example.com"},
	}
	require.NoError(t, db.Create(&users).Error)

	var tools []models.InventoryItem
	for i := 1; i <= nTools; i++ {
		tools = append(tools, models.InventoryItem{
			Code:     fmt.Sprintf("T-%03d", i),
			Name:     fmt.Sprintf("Tool %d", i),
			Location: "Shed A",
		})
	}
	if nTools > 0 {
		require.NoError(t, db.Create(&tools).Error)
	}

	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return &testEnv{server: s, app: s.NewApp(), db: db, users: users, tools: tools}
}

func tokenFor(t *testing.T, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// do sends a request through app.Test and returns the status and raw body.
func (e *testEnv) do(t *testing.T, method, path string, body any, userID uint) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

// createRequest creates a request for tool code as userID and returns it.
func (e *testEnv) createRequest(t *testing.T, userID uint, code string) models.ToolRequest {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/api/toolrequests", map[string]string{"code": code}, userID)
	require.Equal(t, http.StatusOK, status, string(raw))
	return *decode[WriteResponse](t, raw).Request
}
