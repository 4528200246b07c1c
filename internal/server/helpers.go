package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"toolshed/internal/models"
	"toolshed/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// statusForError maps an AppError code to its HTTP status.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the error envelope for err. Internal causes are logged, not returned.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	status := statusForError(appErr)
	if status == fiber.StatusInternalServerError {
		observability.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "error", appErr.Error())
	}
	return models.RespondWithError(c, status, appErr)
}

func badRequest(c *fiber.Ctx, message string) error {
	return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(message))
}

// currentUserID returns the principal set by the auth middleware.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// refID is a reference to another record in a request body. It accepts a
// number, a numeric string, or a populated object carrying "_id" or "id".
type refID uint

func (r *refID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}

	if data[0] == '{' {
		var obj struct {
			UnderscoreID *refID `json:"_id"`
			ID           *refID `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.UnderscoreID != nil:
			*r = *obj.UnderscoreID
		case obj.ID != nil:
			*r = *obj.ID
		default:
			return errors.New("reference object has no id")
		}
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid reference %s", string(data))
	}
	*r = refID(n)
	return nil
}

// statusRef is a status in a request body: a number, a status name, or a
// populated status object {_id|id, name}.
type statusRef struct {
	ID  models.RequestStatusID
	Set bool
}

func (s *statusRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = statusRef{}
		return nil
	}

	switch data[0] {
	case '{':
		var obj struct {
			UnderscoreID json.RawMessage `json:"_id"`
			ID           json.RawMessage `json:"id"`
			Name         string          `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.UnderscoreID != nil:
			return s.UnmarshalJSON(obj.UnderscoreID)
		case obj.ID != nil:
			return s.UnmarshalJSON(obj.ID)
		case obj.Name != "":
			return s.parseName(obj.Name)
		}
		return errors.New("status object has no id or name")

	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			*s = statusRef{ID: models.RequestStatusID(n), Set: true}
			return nil
		}
		return s.parseName(raw)
	}

	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("invalid status %s", string(data))
	}
	// Range checks happen in the service so the caller gets a precise message.
	*s = statusRef{ID: models.RequestStatusID(n), Set: true}
	return nil
}

func (s *statusRef) parseName(name string) error {
	id, err := models.ParseRequestStatus(name)
	if err != nil {
		return err
	}
	*s = statusRef{ID: id, Set: true}
	return nil
}
