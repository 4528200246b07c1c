package server

import (
	"toolshed/internal/models"
	"toolshed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// WriteResponse is returned by every tool request write.
type WriteResponse struct {
	Message string              `json:"message"`
	Request *models.ToolRequest `json:"request"`
}

// GetToolRequests handles GET /api/toolrequests
// @Summary List tool requests
// @Description Return every tool request with its user, tool and status
// @Tags toolrequests
// @Produce json
// @Success 200 {array} models.ToolRequest
// @Failure 500 {object} models.ErrorResponse
// @Router /toolrequests [get]
func (s *Server) GetToolRequests(c *fiber.Ctx) error {
	requests, err := s.requests.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if requests == nil {
		requests = []models.ToolRequest{}
	}
	return c.JSON(requests)
}

// GetCurrentUserRequestCount handles GET /api/toolrequests/count/current-user
// @Summary Count my active requests
// @Description Count the caller's requests that are not rejected
// @Tags toolrequests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserRequestCount
// @Failure 401 {object} models.ErrorResponse
// @Router /toolrequests/count/current-user [get]
func (s *Server) GetCurrentUserRequestCount(c *fiber.Ctx) error {
	count, err := s.requests.CountForUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(count)
}

// GetCurrentUserRequests handles GET /api/toolrequests/current-user
// @Summary List my requests by status
// @Description Return the caller's requests grouped into pending, approved, rejected and delivered
// @Tags toolrequests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.StatusBuckets
// @Failure 401 {object} models.ErrorResponse
// @Router /toolrequests/current-user [get]
func (s *Server) GetCurrentUserRequests(c *fiber.Ctx) error {
	buckets, err := s.requests.ListForUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(buckets)
}

// GetToolRequestPage handles GET /api/toolrequests/page/:pageNumber/:pageSize/:sortColumn?/:sortDirection?
// @Summary Page through tool requests
// @Description Return one sorted page of tool requests and the total count
// @Tags toolrequests
// @Produce json
// @Param pageNumber path int true "Page number, starting at 1"
// @Param pageSize path int true "Page size"
// @Param sortColumn path string false "id, code, status, user, tool or createdAt"
// @Param sortDirection path string false "asc or desc"
// @Success 200 {object} models.RequestPage
// @Failure 400 {object} models.ErrorResponse
// @Router /toolrequests/page/{pageNumber}/{pageSize}/{sortColumn}/{sortDirection} [get]
func (s *Server) GetToolRequestPage(c *fiber.Ctx) error {
	page, err := c.ParamsInt("pageNumber")
	if err != nil {
		return badRequest(c, "Invalid page number")
	}
	size, err := c.ParamsInt("pageSize")
	if err != nil {
		return badRequest(c, "Invalid page size")
	}

	result, err := s.requests.ListPaged(c.UserContext(), service.PageInput{
		Page:          page,
		PageSize:      size,
		SortColumn:    c.Params("sortColumn"),
		SortDirection: c.Params("sortDirection"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetRequestStatuses handles GET /api/toolrequests/statuses
// @Summary List request statuses
// @Tags toolrequests
// @Produce json
// @Success 200 {array} models.RequestStatus
// @Router /toolrequests/statuses [get]
func (s *Server) GetRequestStatuses(c *fiber.Ctx) error {
	statuses, err := s.requests.ListStatuses(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(statuses)
}

// CreateToolRequest handles POST /api/toolrequests
// @Summary Request a tool
// @Description Open a pending request for the inventory item with the given code
// @Tags toolrequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{code=string} true "Inventory code"
// @Success 200 {object} WriteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /toolrequests [post]
func (s *Server) CreateToolRequest(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	created, err := s.requests.Create(c.UserContext(), service.CreateToolRequestInput{
		UserID: currentUserID(c),
		Code:   req.Code,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(WriteResponse{Message: service.MsgCreated, Request: created})
}

// UpdateToolRequest handles PUT /api/toolrequests
// @Summary Update a tool request
// @Description Overwrite the user, tool and status of a request. References may be ids or populated objects.
// @Tags toolrequests
// @Accept json
// @Produce json
// @Param request body object{_id=int,user=int,tool=int,status=int} true "Request references"
// @Success 200 {object} WriteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /toolrequests [put]
func (s *Server) UpdateToolRequest(c *fiber.Ctx) error {
	var req struct {
		ID     refID     `json:"_id"`
		AltID  refID     `json:"id"`
		User   refID     `json:"user"`
		Tool   refID     `json:"tool"`
		Status statusRef `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	id := req.ID
	if id == 0 {
		id = req.AltID
	}
	if !req.Status.Set {
		return badRequest(c, "Status is required")
	}

	updated, err := s.requests.Update(c.UserContext(), service.UpdateToolRequestInput{
		ID:      uint(id),
		UserID:  uint(req.User),
		ToolID:  uint(req.Tool),
		Status:  req.Status.ID,
		ActorID: currentUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(WriteResponse{Message: service.MsgUpdated, Request: updated})
}

// ChangeToolRequestStatus handles PUT /api/toolrequests/status
// @Summary Change a request's status
// @Description Set only the status of a request. Status may be an id, a name or a status object.
// @Tags toolrequests
// @Accept json
// @Produce json
// @Param request body object{id=int,status=int} true "Request id and new status"
// @Success 200 {object} WriteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /toolrequests/status [put]
func (s *Server) ChangeToolRequestStatus(c *fiber.Ctx) error {
	var req struct {
		ID     refID     `json:"id"`
		AltID  refID     `json:"_id"`
		Status statusRef `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	id := req.ID
	if id == 0 {
		id = req.AltID
	}
	if !req.Status.Set {
		return badRequest(c, "Status is required")
	}

	updated, err := s.requests.ChangeStatus(c.UserContext(), service.ChangeStatusInput{
		ID:      uint(id),
		Status:  req.Status.ID,
		ActorID: currentUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(WriteResponse{Message: service.MsgStatusUpdated, Request: updated})
}
