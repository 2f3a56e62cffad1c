package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/southcentralhub/supportdesk/pkg/util/errorutil"
)

// StaffMiddleware optionally enforces the staff session token on staff-only
// routes. When not required it passes every request through, preserving the
// reference behavior where the server keeps no session at all.
type StaffMiddleware struct {
	tokens   *TokenManager
	required bool
}

// NewStaffMiddleware constructs middleware.
func NewStaffMiddleware(tokens *TokenManager, required bool) *StaffMiddleware {
	return &StaffMiddleware{tokens: tokens, required: required}
}

// Handle validates the bearer token when enforcement is enabled.
func (m *StaffMiddleware) Handle(c *fiber.Ctx) error {
	if !m.required {
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}
	if err := m.tokens.ValidateStaffToken(parts[1]); err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	return c.Next()
}
