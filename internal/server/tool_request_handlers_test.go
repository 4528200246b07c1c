package server

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"toolshed/internal/featureflags"
	"toolshed/internal/models"
	"toolshed/internal/repository"
	"toolshed/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRequestStatuses(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, 0)

	status, raw := env.do(t, http.MethodGet, "/api/toolrequests/statuses", nil, 0)
	require.Equal(t, http.StatusOK, status)

	statuses := decode[[]models.RequestStatus](t, raw)
	require.Len(t, statuses, 4)
	assert.Equal(t, models.StatusPending, statuses[0].ID)
	assert.Equal(t, "PENDING", statuses[0].Name)
	assert.Equal(t, "DELIVERED", statuses[3].Name)
}

func TestCreateToolRequest(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, 3)
	ana := env.users[0].ID

	tests := []struct {
		name           string
		body           any
		userID         uint
		expectedStatus int
		expectedCode   string
	}{
		{"No Token", map[string]string{"code": "T-001"}, 0, http.StatusUnauthorized, models.CodeUnauthorized},
		{"Blank Code", map[string]string{"code": "  "}, ana, http.StatusBadRequest, models.CodeValidation},
		{"Malformed Body", "{", ana, http.StatusBadRequest, models.CodeValidation},
		{"Unknown Code", map[string]string{"code": "NOPE"}, ana, http.StatusNotFound, models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := env.do(t, http.MethodPost, "/api/toolrequests", tt.body, tt.userID)
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedCode, decode[models.ErrorResponse](t, raw).Code)
		})
	}

	t.Run("Success", func(t *testing.T) {
		status, raw := env.do(t, http.MethodPost, "/api/toolrequests", map[string]string{"code": "T-002"}, ana)
		require.Equal(t, http.StatusOK, status, string(raw))

		resp := decode[WriteResponse](t, raw)
		assert.Equal(t, service.MsgCreated, resp.Message)
		require.NotNil(t, resp.Request)
		assert.Equal(t, ana, resp.Request.UserID)
		assert.Equal(t, env.tools[1].ID, resp.Request.ToolID)
		assert.Equal(t, "T-002", resp.Request.Code)
		require.NotNil(t, resp.Request.Status)
		assert.Equal(t, "PENDING", resp.Request.Status.Name)
	})

	t.Run("Duplicate", func(t *testing.T) {
		status, raw := env.do(t, http.MethodPost, "/api/toolrequests", map[string]string{"code": "T-002"}, env.users[1].ID)
		assert.Equal(t, http.StatusConflict, status)

		errResp := decode[models.ErrorResponse](t, raw)
		assert.Equal(t, repository.MsgDuplicateCode, errResp.Error)
		assert.Equal(t, models.CodeConflict, errResp.Code)
		assert.Empty(t, errResp.Details)
	})
}

func TestCreateToolRequest_ConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, 1)

	const workers = 8
	statuses := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i], _ = env.do(t, http.MethodPost, "/api/toolrequests",
				map[string]string{"code": "T-001"}, env.users[i%2].ID)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, s := range statuses {
		switch s {
		case http.StatusOK:
			created++
		default:
			assert.Equal(t, http.StatusConflict, s)
		}
	}
	assert.Equal(t, 1, created)

	var count int64
	require.NoError(t, env.db.Model(&models.ToolRequest{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCurrentUserEndpoints(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, 4)
	ana, bo := env.users[0].ID, env.users[1].ID

	var ids []uint
	for _, tool := range env.tools[:3] {
		ids = append(ids, env.createRequest(t, ana, tool.Code).ID)
	}
	env.createRequest(t, bo, env.tools[3].Code)

	status, _ := env.do(t, http.MethodPut, "/api/toolrequests/status",
		map[string]any{"id": ids[1], "status": "REJECTED"}, 0)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodPut, "/api/toolrequests/status",
		map[string]any{"id": ids[2], "status": 3}, 0)
	require.Equal(t, http.StatusOK, status)

	t.Run("Count", func(t *testing.T) {
		status, raw := env.do(t, http.MethodGet, "/api/toolrequests/count/current-user", nil, ana)
		require.Equal(t, http.StatusOK, status)
		count := decode[models.UserRequestCount](t, raw)
		assert.Equal(t, ana, count.UserID)
		assert.Equal(t, int64(2), count.Count)
		assert.Contains(t, string(raw), `"userId"`)
	})

	t.Run("Buckets", func(t *testing.T) {
		status, raw := env.do(t, http.MethodGet, "/api/toolrequests/current-user", nil, ana)
		require.Equal(t, http.StatusOK, status)
		buckets := decode[models.StatusBuckets](t, raw)
		assert.Len(t, buckets.Pending, 1)
		assert.Len(t, buckets.Approved, 0)
		assert.Len(t, buckets.Rejected, 1)
		assert.Len(t, buckets.Delivered, 1)
		assert.Equal(t, 2, buckets.Active())
		assert.Contains(t, string(raw), `"approved":[]`)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		status, raw := env.do(t, http.MethodGet, "/api/toolrequests/count/current-user", nil, 0)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, models.CodeUnauthorized, decode[models.ErrorResponse](t, raw).Code)

		status, _ = env.do(t, http.MethodGet, "/api/toolrequests/current-user", nil, 0)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestGetToolRequestPage(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, 25)
	for i, tool := range env.tools {
		env.createRequest(t, env.users[i%2].ID, tool.Code)
	}

	codesOf := func(page models.RequestPage) []string {
		out := make([]string, 0, len(page.Requests))
		for _, r := range page.Requests {
			out = append(out, r.Code)
		}
		return out
	}
	codeRange := func(from, to int) []string {
		var out []string
		for i := from; i <= to; i++ {
			out = append(out, fmt.Sprintf("T-%03d", i))
		}
		return out
	}

	tests := []struct {
		name      string
		path      string
		wantCodes []string
		wantLen   int
	}{
		{"Second Page", "/api/toolrequests/page/2/10", codeRange(11, 20), 10},
		{"Last Partial Page", "/api/toolrequests/page/3/10", codeRange(21, 25), 5},
		{"Zero Size Uses Default", "/api/toolrequests/page/1/0", codeRange(1, 10), 10},
		{"Page Zero Is First", "/api/toolrequests/page/0/5", codeRange(1, 5), 5},
		{"Past The End", "/api/toolrequests/page/9/10", []string{}, 0},
		{"Huge Page Number", "/api/toolrequests/page/9223372036854775807/2", []string{}, 0},
		{"Sorted Desc", "/api/toolrequests/page/1/3/code/desc", []string{"T-025", "T-024", "T-023"}, 3},
		{"Sorted Asc By Id", "/api/toolrequests/page/1/2/id/ASC", codeRange(1, 2), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := env.do(t, http.MethodGet, tt.path, nil, 0)
			require.Equal(t, http.StatusOK, status, string(raw))
			page := decode[models.RequestPage](t, raw)
			assert.Equal(t, int64(25), page.Count)
			assert.Len(t, page.Requests, tt.wantLen)
			assert.Equal(t, tt.wantCodes, codesOf(page))
		})
	}

	t.Run("Invalid Inputs", func(t *testing.T) {
		for _, path := range []string{
			"/api/toolrequests/page/abc/10",
			"/api/toolrequests/page/1/ten",
			"/api/toolrequests/page/1/10/password/asc",
			"/api/toolrequests/page/1/10/code/sideways",
		} {
			status, raw := env.do(t, http.MethodGet, path, nil, 0)
			assert.Equal(t, http.StatusBadRequest, status, path)
			assert.Equal(t, models.CodeValidation, decode[models.ErrorResponse](t, raw).Code, path)
		}
	})
}

func TestChangeToolRequestStatus(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, 1)
	created := env.createRequest(t, env.users[0].ID, "T-001")

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedName   string
	}{
		{"Numeric Status", map[string]any{"id": created.ID, "status": 1}, http.StatusOK, "APPROVED"},
		{"Status Name", map[string]any{"id": created.ID, "status": "delivered"}, http.StatusOK, "DELIVERED"},
		{"Status Object", map[string]any{"id": created.ID, "status": map[string]any{"_id": 0, "name": "PENDING"}}, http.StatusOK, "PENDING"},
		{"String Id", map[string]any{"id": fmt.Sprint(created.ID), "status": "1"}, http.StatusOK, "APPROVED"},
		{"Status Out Of Range", map[string]any{"id": created.ID, "status": 9}, http.StatusBadRequest, ""},
		{"Unknown Status Name", map[string]any{"id": created.ID, "status": "LOST"}, http.StatusBadRequest, ""},
		{"Missing Status", map[string]any{"id": created.ID}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := env.do(t, http.MethodPut, "/api/toolrequests/status", tt.body, 0)
			require.Equal(t, tt.expectedStatus, status, string(raw))
			if tt.expectedStatus != http.StatusOK {
				return
			}
			resp := decode[WriteResponse](t, raw)
			assert.Equal(t, service.MsgStatusUpdated, resp.Message)
			require.NotNil(t, resp.Request.Status)
			assert.Equal(t, tt.expectedName, resp.Request.Status.Name)
			assert.Equal(t, created.Code, resp.Request.Code)
		})
	}

	t.Run("Missing Request", func(t *testing.T) {
		var before models.ToolRequest
		require.NoError(t, env.db.First(&before, created.ID).Error)

		status, raw := env.do(t, http.MethodPut, "/api/toolrequests/status",
			map[string]any{"id": 999, "status": 2}, 0)
		assert.Equal(t, http.StatusNotFound, status)
		errResp := decode[models.ErrorResponse](t, raw)
		assert.Equal(t, repository.MsgRequestNotFound, errResp.Error)

		var after models.ToolRequest
		require.NoError(t, env.db.First(&after, created.ID).Error)
		assert.Equal(t, before.StatusID, after.StatusID)
	})
}

func TestChangeToolRequestStatus_StrictTransitions(t *testing.T) {
	cfg := testConfig()
	cfg.FeatureFlags = featureflags.StrictStatusTransitions + "=on"
	env := newTestEnv(t, cfg, nil, 1)
	created := env.createRequest(t, env.users[0].ID, "T-001")

	status, raw := env.do(t, http.MethodPut, "/api/toolrequests/status",
		map[string]any{"id": created.ID, "status": "DELIVERED"}, 0)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, decode[models.ErrorResponse](t, raw).Code)

	status, _ = env.do(t, http.MethodPut, "/api/toolrequests/status",
		map[string]any{"id": created.ID, "status": "APPROVED"}, 0)
	assert.Equal(t, http.StatusOK, status)
}

func TestChangeToolRequestStatus_StrictRolloutUsesCaller(t *testing.T) {
	rollout := ""
	for pct := 1; pct < 100 && rollout == ""; pct++ {
		candidate := fmt.Sprintf("%s=%d%%", featureflags.StrictStatusTransitions, pct)
		if featureflags.NewManager(candidate).Enabled(featureflags.StrictStatusTransitions, 1) {
			rollout = candidate
		}
	}
	require.NotEmpty(t, rollout)

	cfg := testConfig()
	cfg.FeatureFlags = rollout
	env := newTestEnv(t, cfg, nil, 2)
	require.Equal(t, uint(1), env.users[0].ID)
	first := env.createRequest(t, env.users[0].ID, "T-001")
	second := env.createRequest(t, env.users[0].ID, "T-002")

	status, _ := env.do(t, http.MethodPut, "/api/toolrequests/status",
		map[string]any{"id": first.ID, "status": "DELIVERED"}, env.users[0].ID)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPut, "/api/toolrequests/status",
		map[string]any{"id": second.ID, "status": "DELIVERED"}, 0)
	assert.Equal(t, http.StatusOK, status)
}

func TestUpdateToolRequest(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, 3)
	created := env.createRequest(t, env.users[0].ID, "T-001")

	var before models.ToolRequest
	require.NoError(t, env.db.First(&before, created.ID).Error)

	body := map[string]any{
		"_id":    fmt.Sprint(created.ID),
		"user":   map[string]any{"_id": env.users[1].ID, "username": "bo"},
		"tool":   map[string]any{"id": env.tools[2].ID},
		"status": map[string]any{"_id": 1, "name": "APPROVED"},
	}
	status, raw := env.do(t, http.MethodPut, "/api/toolrequests", body, 0)
	require.Equal(t, http.StatusOK, status, string(raw))

	resp := decode[WriteResponse](t, raw)
	assert.Equal(t, service.MsgUpdated, resp.Message)
	assert.Equal(t, env.users[1].ID, resp.Request.UserID)
	assert.Equal(t, env.tools[2].ID, resp.Request.ToolID)
	assert.Equal(t, models.StatusApproved, resp.Request.StatusID)
	require.NotNil(t, resp.Request.User)
	assert.Equal(t, "bo", resp.Request.User.Username)

	var after models.ToolRequest
	require.NoError(t, env.db.First(&after, created.ID).Error)
	assert.Equal(t, before.Code, after.Code)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))

	t.Run("Missing Request", func(t *testing.T) {
		status, raw := env.do(t, http.MethodPut, "/api/toolrequests", map[string]any{
			"_id": 404, "user": env.users[0].ID, "tool": env.tools[0].ID, "status": 0,
		}, 0)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, repository.MsgRequestNotFound, decode[models.ErrorResponse](t, raw).Error)
	})

	t.Run("Bad Reference", func(t *testing.T) {
		status, _ := env.do(t, http.MethodPut, "/api/toolrequests", map[string]any{
			"_id": created.ID, "user": "not-a-number", "tool": env.tools[0].ID, "status": 0,
		}, 0)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestGetToolRequests(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, 2)

	status, raw := env.do(t, http.MethodGet, "/api/toolrequests", nil, 0)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	env.createRequest(t, env.users[0].ID, "T-001")
	env.createRequest(t, env.users[1].ID, "T-002")

	status, raw = env.do(t, http.MethodGet, "/api/toolrequests", nil, 0)
	require.Equal(t, http.StatusOK, status)
	requests := decode[[]models.ToolRequest](t, raw)
	require.Len(t, requests, 2)
	for _, r := range requests {
		require.NotNil(t, r.User)
		require.NotNil(t, r.Tool)
		require.NotNil(t, r.Status)
		assert.Equal(t, "PENDING", r.Status.Name)
	}
}
