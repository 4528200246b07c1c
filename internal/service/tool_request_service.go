// Package service implements the tool request workflow on top of the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"toolshed/internal/featureflags"
	"toolshed/internal/models"
	"toolshed/internal/notifications"
	"toolshed/internal/observability"
	"toolshed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	serviceName = "ToolRequestService"

	// DefaultPageSize is used when a page request carries no usable size.
	DefaultPageSize = 10
	// MaxPageSize caps the admin listing page size.
	MaxPageSize = 100
)

// Success texts returned alongside written requests.
const (
	MsgCreated       = "Tool request was created successfully"
	MsgUpdated       = "Tool request was updated successfully"
	MsgStatusUpdated = "Tool request status was updated successfully"
)

// EventPublisher delivers tool request events after successful writes.
type EventPublisher interface {
	PublishRequestEvent(ctx context.Context, ev notifications.Event) error
}

// ToolRequestService implements the request workflow.
type ToolRequestService struct {
	requests        repository.ToolRequestRepository
	inventory       repository.InventoryRepository
	statuses        repository.StatusRepository
	flags           *featureflags.Manager
	events          EventPublisher
	defaultPageSize int
	maxPageSize     int
}

// Option customizes a ToolRequestService.
type Option func(*ToolRequestService)

// WithFeatureFlags sets the flag manager consulted for strict status transitions.
func WithFeatureFlags(m *featureflags.Manager) Option {
	return func(s *ToolRequestService) { s.flags = m }
}

// WithEventPublisher sets where write events are published.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *ToolRequestService) { s.events = p }
}

// WithPageSizes overrides the default and maximum page sizes. Non-positive values are ignored.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(s *ToolRequestService) {
		if maxSize > 0 {
			s.maxPageSize = maxSize
		}
		if defaultSize > 0 {
			s.defaultPageSize = defaultSize
		}
	}
}

// NewToolRequestService wires the service to its repositories.
func NewToolRequestService(
	requests repository.ToolRequestRepository,
	inventory repository.InventoryRepository,
	statuses repository.StatusRepository,
	opts ...Option,
) *ToolRequestService {
	s := &ToolRequestService{
		requests:        requests,
		inventory:       inventory,
		statuses:        statuses,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultPageSize > s.maxPageSize {
		s.defaultPageSize = s.maxPageSize
	}
	return s
}

// CreateToolRequestInput carries a user's borrow request.
type CreateToolRequestInput struct {
	UserID uint
	Code   string
}

// UpdateToolRequestInput overwrites the references of an existing request.
type UpdateToolRequestInput struct {
	ID     uint
	UserID uint
	ToolID uint
	Status models.RequestStatusID
	// ActorID is the caller, 0 when anonymous. Per-user flag rollouts use it.
	ActorID uint
}

// ChangeStatusInput sets the status of an existing request.
type ChangeStatusInput struct {
	ID      uint
	Status  models.RequestStatusID
	ActorID uint
}

// PageInput selects one page of the admin listing.
type PageInput struct {
	Page          int
	PageSize      int
	SortColumn    string
	SortDirection string
}

// List returns every request with its references loaded.
func (s *ToolRequestService) List(ctx context.Context) (out []models.ToolRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "List")
	defer func() { observability.EndSpan(span, err) }()

	out, err = s.requests.List(ctx)
	return out, asAppError(err)
}

// CountForUser counts the caller's requests that are not rejected.
func (s *ToolRequestService) CountForUser(ctx context.Context, userID uint) (out *models.UserRequestCount, err error) {
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "CountForUser", attribute.Int64("user.id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	if userID == 0 {
		return nil, models.NewUnauthorizedError("Unauthorized")
	}
	count, err := s.requests.CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, asAppError(err)
	}
	return &models.UserRequestCount{UserID: userID, Count: count}, nil
}

// ListForUser returns the caller's requests grouped by status.
func (s *ToolRequestService) ListForUser(ctx context.Context, userID uint) (out *models.StatusBuckets, err error) {
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "ListForUser", attribute.Int64("user.id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	if userID == 0 {
		return nil, models.NewUnauthorizedError("Unauthorized")
	}
	requests, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, asAppError(err)
	}
	buckets, err := models.PartitionByStatus(requests)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &buckets, nil
}

// ListPaged returns one sorted page of all requests and the total request count.
func (s *ToolRequestService) ListPaged(ctx context.Context, in PageInput) (out *models.RequestPage, err error) {
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "ListPaged",
		attribute.Int("page.number", in.Page), attribute.Int("page.size", in.PageSize))
	defer func() { observability.EndSpan(span, err) }()

	q, inRange, err := s.pageQuery(in)
	if err != nil {
		return nil, err
	}

	var requests []models.ToolRequest
	if inRange {
		requests, err = s.requests.Page(ctx, q)
		if err != nil {
			return nil, asAppError(err)
		}
	}
	count, err := s.requests.Count(ctx)
	if err != nil {
		return nil, asAppError(err)
	}
	if requests == nil {
		requests = []models.ToolRequest{}
	}
	return &models.RequestPage{Requests: requests, Count: count}, nil
}

// pageQuery normalizes paging input. inRange is false when the offset would not
// fit in an int, in which case the page lies past every row.
func (s *ToolRequestService) pageQuery(in PageInput) (q repository.PageQuery, inRange bool, err error) {
	size := in.PageSize
	if size <= 0 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}
	page := in.Page
	if page < 1 {
		page = 1
	}

	q = repository.PageQuery{Limit: size}
	inRange = page-1 <= math.MaxInt/size
	if inRange {
		q.Offset = (page - 1) * size
	}

	if col := strings.TrimSpace(in.SortColumn); col != "" {
		resolved, ok := repository.ResolveSortColumn(col)
		if !ok {
			return q, false, models.NewValidationError(fmt.Sprintf("Invalid sort column %q", col))
		}
		q.Column = resolved
	}

	switch strings.ToLower(strings.TrimSpace(in.SortDirection)) {
	case "", "asc":
	case "desc":
		q.Desc = true
	default:
		return q, false, models.NewValidationError(fmt.Sprintf("Invalid sort direction %q", in.SortDirection))
	}
	return q, inRange, nil
}

// ListStatuses returns the status catalog in id order.
func (s *ToolRequestService) ListStatuses(ctx context.Context) (out []models.RequestStatus, err error) {
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "ListStatuses")
	defer func() { observability.EndSpan(span, err) }()

	out, err = s.statuses.List(ctx)
	return out, asAppError(err)
}

// Create opens a PENDING request for the inventory item with the given code.
// Duplicate detection is left to the store's unique index on active codes.
func (s *ToolRequestService) Create(ctx context.Context, in CreateToolRequestInput) (out *models.ToolRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "Create", attribute.String("request.code", in.Code))
	defer func() { observability.EndSpan(span, err) }()

	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Unauthorized")
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, models.NewValidationError("Tool code is required")
	}

	item, err := s.inventory.GetByCode(ctx, code)
	if err != nil {
		return nil, asAppError(err)
	}

	req := &models.ToolRequest{
		UserID:   in.UserID,
		ToolID:   item.ID,
		StatusID: models.StatusPending,
		Code:     code,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeConflict {
			observability.ToolRequestConflicts.Inc()
		}
		return nil, asAppError(err)
	}
	req.Tool = item
	req.Status = &models.RequestStatus{ID: req.StatusID, Name: req.StatusID.Label()}

	observability.ToolRequestsCreated.Inc()
	s.publish(ctx, notifications.NewEvent(notifications.EventCreated, req))
	return req, nil
}

// Update overwrites the user, tool and status of an existing request.
func (s *ToolRequestService) Update(ctx context.Context, in UpdateToolRequestInput) (out *models.ToolRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "Update", attribute.Int64("request.id", int64(in.ID)))
	defer func() { observability.EndSpan(span, err) }()

	if !in.Status.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid status %d", int(in.Status)))
	}

	out, previousUser, err := s.requests.UpdateRefs(ctx, in.ID, in.UserID, in.ToolID, in.Status, s.statusGuard(in.ActorID))
	if err != nil {
		return nil, asAppError(err)
	}

	observability.ToolRequestStatusChanges.WithLabelValues(out.StatusID.Label()).Inc()
	ev := notifications.NewEvent(notifications.EventUpdated, out)
	if previousUser != out.UserID {
		ev.PreviousUserID = previousUser
	}
	s.publish(ctx, ev)
	return out, nil
}

// ChangeStatus sets only the status of an existing request.
func (s *ToolRequestService) ChangeStatus(ctx context.Context, in ChangeStatusInput) (out *models.ToolRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, serviceName, "ChangeStatus",
		attribute.Int64("request.id", int64(in.ID)), attribute.String("request.status", in.Status.Label()))
	defer func() { observability.EndSpan(span, err) }()

	if !in.Status.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid status %d", int(in.Status)))
	}

	out, err = s.requests.UpdateStatus(ctx, in.ID, in.Status, s.statusGuard(in.ActorID))
	if err != nil {
		return nil, asAppError(err)
	}

	observability.ToolRequestStatusChanges.WithLabelValues(out.StatusID.Label()).Inc()
	s.publish(ctx, notifications.NewEvent(notifications.EventStatusChanged, out))
	return out, nil
}

// statusGuard enforces the lifecycle graph when strict transitions are enabled
// for actorID.
func (s *ToolRequestService) statusGuard(actorID uint) repository.StatusGuard {
	if !s.flags.Enabled(featureflags.StrictStatusTransitions, actorID) {
		return nil
	}
	return func(current models.ToolRequest, next models.RequestStatusID) error {
		if !current.StatusID.CanTransitionTo(next) {
			return models.NewValidationError(fmt.Sprintf("Cannot change status from %s to %s",
				current.StatusID.Label(), next.Label()))
		}
		return nil
	}
}

func (s *ToolRequestService) publish(ctx context.Context, ev notifications.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRequestEvent(ctx, ev); err != nil {
		observability.Logger.WarnContext(ctx, "failed to publish tool request event",
			"event", ev.Type, "request_id", ev.RequestID, "error", err)
	}
}

// asAppError passes AppErrors through and wraps anything else as an internal error.
func asAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}
