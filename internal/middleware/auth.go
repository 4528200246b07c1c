package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"toolshed/internal/models"
	"toolshed/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMissing is returned when no bearer token was presented.
	ErrTokenMissing = errors.New("authorization token required")
	// ErrTokenInvalid is returned for malformed, expired or badly signed tokens.
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// ParseUserToken validates an HS256 token and returns the user ID carried in its "sub" claim.
func ParseUserToken(secret, raw string) (uint, error) {
	if raw == "" {
		return 0, ErrTokenMissing
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}

	var sub string
	switch v := claims["sub"].(type) {
	case string:
		sub = v
	case float64:
		sub = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return 0, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("%w: invalid user ID in token", ErrTokenInvalid)
	}
	return uint(userID), nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get("Authorization")
	if header == "" {
		return "", ErrTokenMissing
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("%w: invalid authorization header format", ErrTokenInvalid)
	}
	return parts[1], nil
}

func authenticate(c *fiber.Ctx, secret, raw string) error {
	userID, err := ParseUserToken(secret, raw)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, &models.AppError{
			Code:    models.CodeUnauthorized,
			Message: "Unauthorized",
			Err:     err,
		})
	}

	c.Locals("userID", userID)
	c.SetUserContext(observability.WithUserID(c.UserContext(), userID))
	return c.Next()
}

// AuthRequired enforces a bearer token on protected routes and stores the
// principal in c.Locals("userID") and the request context.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, &models.AppError{
				Code:    models.CodeUnauthorized,
				Message: "Unauthorized",
				Err:     err,
			})
		}
		return authenticate(c, secret, raw)
	}
}

// WebSocketAuthRequired accepts the token from the "token" query parameter,
// falling back to the Authorization header.
func WebSocketAuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("token")
		if raw == "" {
			var err error
			if raw, err = bearerToken(c); err != nil {
				return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("Unauthorized"))
			}
		}
		return authenticate(c, secret, raw)
	}
}

// UserIDFromContext returns the authenticated principal stored by AuthRequired.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	uid, ok := ctx.Value(observability.UserIDKey).(uint)
	return uid, ok && uid != 0
}
