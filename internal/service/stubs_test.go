package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"toolshed/internal/models"
	"toolshed/internal/notifications"
	"toolshed/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toolRequestRepoStub is a stub for repository.ToolRequestRepository.
type toolRequestRepoStub struct {
	listFn              func(context.Context) ([]models.ToolRequest, error)
	listByUserFn        func(context.Context, uint) ([]models.ToolRequest, error)
	countActiveByUserFn func(context.Context, uint) (int64, error)
	countFn             func(context.Context) (int64, error)
	pageFn              func(context.Context, repository.PageQuery) ([]models.ToolRequest, error)
	getByIDFn           func(context.Context, uint) (*models.ToolRequest, error)
	createFn            func(context.Context, *models.ToolRequest) error
	updateRefsFn        func(context.Context, uint, uint, uint, models.RequestStatusID, repository.StatusGuard) (*models.ToolRequest, uint, error)
	updateStatusFn      func(context.Context, uint, models.RequestStatusID, repository.StatusGuard) (*models.ToolRequest, error)
}

func (s *toolRequestRepoStub) List(ctx context.Context) ([]models.ToolRequest, error) {
	return s.listFn(ctx)
}
func (s *toolRequestRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.ToolRequest, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *toolRequestRepoStub) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countActiveByUserFn(ctx, userID)
}
func (s *toolRequestRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *toolRequestRepoStub) Page(ctx context.Context, q repository.PageQuery) ([]models.ToolRequest, error) {
	return s.pageFn(ctx, q)
}
func (s *toolRequestRepoStub) GetByID(ctx context.Context, id uint) (*models.ToolRequest, error) {
	return s.getByIDFn(ctx, id)
}
func (s *toolRequestRepoStub) Create(ctx context.Context, req *models.ToolRequest) error {
	return s.createFn(ctx, req)
}
func (s *toolRequestRepoStub) UpdateRefs(ctx context.Context, id, userID, toolID uint, status models.RequestStatusID, guard repository.StatusGuard) (*models.ToolRequest, uint, error) {
	return s.updateRefsFn(ctx, id, userID, toolID, status, guard)
}
func (s *toolRequestRepoStub) UpdateStatus(ctx context.Context, id uint, status models.RequestStatusID, guard repository.StatusGuard) (*models.ToolRequest, error) {
	return s.updateStatusFn(ctx, id, status, guard)
}

func noopToolRequestRepo() *toolRequestRepoStub {
	return &toolRequestRepoStub{
		listFn:              func(context.Context) ([]models.ToolRequest, error) { return nil, nil },
		listByUserFn:        func(context.Context, uint) ([]models.ToolRequest, error) { return nil, nil },
		countActiveByUserFn: func(context.Context, uint) (int64, error) { return 0, nil },
		countFn:             func(context.Context) (int64, error) { return 0, nil },
		pageFn:              func(context.Context, repository.PageQuery) ([]models.ToolRequest, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.ToolRequest, error) {
			return nil, models.NewNotFoundError("Tool request", id)
		},
		createFn: func(context.Context, *models.ToolRequest) error { return nil },
		updateRefsFn: func(_ context.Context, id, _, _ uint, _ models.RequestStatusID, _ repository.StatusGuard) (*models.ToolRequest, uint, error) {
			return nil, 0, models.NewNotFoundError("Tool request", id)
		},
		updateStatusFn: func(_ context.Context, id uint, _ models.RequestStatusID, _ repository.StatusGuard) (*models.ToolRequest, error) {
			return nil, models.NewNotFoundError("Tool request", id)
		},
	}
}

// memoryRequestStore is an in-memory ToolRequestRepository whose Create enforces
// one active request per code under a mutex, like the store's partial index.
type memoryRequestStore struct {
	mu     sync.Mutex
	nextID uint
	rows   []models.ToolRequest
}

func (m *memoryRequestStore) repo() *toolRequestRepoStub {
	stub := noopToolRequestRepo()
	stub.createFn = func(_ context.Context, req *models.ToolRequest) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, r := range m.rows {
			if r.Code == req.Code && r.StatusID != models.StatusRejected {
				return models.NewConflictError(repository.MsgDuplicateCode, errors.New("unique violation"))
			}
		}
		m.nextID++
		req.ID = m.nextID
		m.rows = append(m.rows, *req)
		return nil
	}
	stub.listByUserFn = func(_ context.Context, userID uint) ([]models.ToolRequest, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		var out []models.ToolRequest
		for _, r := range m.rows {
			if r.UserID == userID {
				out = append(out, r)
			}
		}
		return out, nil
	}
	stub.countActiveByUserFn = func(_ context.Context, userID uint) (int64, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		var n int64
		for _, r := range m.rows {
			if r.UserID == userID && r.StatusID != models.StatusRejected {
				n++
			}
		}
		return n, nil
	}
	stub.updateStatusFn = func(_ context.Context, id uint, status models.RequestStatusID, guard repository.StatusGuard) (*models.ToolRequest, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i := range m.rows {
			if m.rows[i].ID != id {
				continue
			}
			if guard != nil {
				if err := guard(m.rows[i], status); err != nil {
					return nil, err
				}
			}
			m.rows[i].StatusID = status
			out := m.rows[i]
			return &out, nil
		}
		return nil, models.NewNotFoundError("Tool request", id, repository.MsgRequestNotFound)
	}
	return stub
}

func (m *memoryRequestStore) snapshot() []models.ToolRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ToolRequest(nil), m.rows...)
}

// inventoryRepoStub is a stub for repository.InventoryRepository.
type inventoryRepoStub struct {
	items map[string]models.InventoryItem
	err   error
}

func (s *inventoryRepoStub) GetByCode(_ context.Context, code string) (*models.InventoryItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	item, ok := s.items[code]
	if !ok {
		return nil, models.NewNotFoundError("Inventory item", code)
	}
	return &item, nil
}
func (s *inventoryRepoStub) List(context.Context, int, int) ([]models.InventoryItem, error) {
	return nil, nil
}
func (s *inventoryRepoStub) Upsert(context.Context, []models.InventoryItem) error {
	return nil
}

func inventoryWith(codes ...string) *inventoryRepoStub {
	s := &inventoryRepoStub{items: make(map[string]models.InventoryItem)}
	for i, code := range codes {
		s.items[code] = models.InventoryItem{ID: uint(i + 1), Code: code, Name: code}
	}
	return s
}

// statusRepoStub is a stub for repository.StatusRepository.
type statusRepoStub struct{}

func (statusRepoStub) List(context.Context) ([]models.RequestStatus, error) {
	return models.StatusCatalog(), nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.Event
	err    error
}

func (p *recordingPublisher) PublishRequestEvent(_ context.Context, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func assertAppErrorCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}
