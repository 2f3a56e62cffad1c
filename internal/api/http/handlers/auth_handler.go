package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/southcentralhub/supportdesk/internal/api/dto"
	"github.com/southcentralhub/supportdesk/internal/auth"
)

// AuthHandler serves the staff shared-secret login.
type AuthHandler struct {
	verifier *auth.PasswordVerifier
	tokens   *auth.TokenManager
	logger   *zap.Logger
	validate *validator.Validate
}

// NewAuthHandler constructs handler.
func NewAuthHandler(verifier *auth.PasswordVerifier, tokens *auth.TokenManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		tokens:   tokens,
		logger:   logger,
		validate: validator.New(),
	}
}

// AdminLogin POST /auth/admin. The response shape is part of the wire
// contract: 200 {success:true} or 401 {success:false}, so failures are
// answered directly instead of through the error middleware.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.AdminLoginResponse{
			Success: false,
			Error:   "Invalid password",
		})
	}

	if !h.verifier.Verify(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.AdminLoginResponse{
			Success: false,
			Error:   "Invalid password",
		})
	}

	resp := dto.AdminLoginResponse{Success: true}
	token, expiresAt, err := h.tokens.GenerateStaffToken()
	if err != nil {
		h.logger.Warn("failed to issue staff token", zap.Error(err))
	} else {
		resp.Token = token
		resp.ExpiresAt = &expiresAt
	}
	return c.JSON(resp)
}
