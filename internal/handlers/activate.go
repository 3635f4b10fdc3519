package handlers

import (
	"errors"
	"regexp"

	"github.com/geseib/personalboard/internal/protocol"
	"github.com/geseib/personalboard/internal/services"
	"github.com/geseib/personalboard/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

type ActivationHandler struct {
	Service *services.ActivationService
	Audit   *services.AuditService
}

func NewActivationHandler(service *services.ActivationService, audit *services.AuditService) *ActivationHandler {
	return &ActivationHandler{Service: service, Audit: audit}
}

// Activate redeems an access code for a session token. One store mutation
// on success, none on any failure.
func (h *ActivationHandler) Activate(c *fiber.Ctx) error {
	var req protocol.ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return activationError(c, fiber.StatusBadRequest, protocol.ErrorCodeInvalidRequest, "request body must be JSON")
	}

	if req.Code == "" {
		h.audit("activate_malformed", c, req)
		return activationError(c, fiber.StatusBadRequest, protocol.ErrorCodeInvalidRequest, "code is required")
	}
	if req.ClientID == "" {
		h.audit("activate_malformed", c, req)
		return activationError(c, fiber.StatusBadRequest, protocol.ErrorCodeInvalidRequest, "clientId is required")
	}
	if !codePattern.MatchString(req.Code) {
		h.audit("activate_malformed", c, req)
		return activationError(c, fiber.StatusBadRequest, protocol.ErrorCodeInvalidRequest, "Invalid code format")
	}

	grant, err := h.Service.Claim(c.Context(), req.Code, req.ClientID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeRejected):
			h.audit("code_rejected", c, req)
			return activationError(c, fiber.StatusUnauthorized, protocol.ErrorCodeRejected, "Code is invalid or already used")
		case errors.Is(err, services.ErrSigningSecret):
			logger.Error("activation_config_error", err, map[string]interface{}{
				"client_id": req.ClientID,
			})
			return activationError(c, fiber.StatusInternalServerError, protocol.ErrorCodeServerError, "temporary server problem")
		default:
			logger.Error("activation_store_error", err, map[string]interface{}{
				"client_id": req.ClientID,
			})
			return activationError(c, fiber.StatusInternalServerError, protocol.ErrorCodeServerError, "temporary server problem")
		}
	}

	h.audit("code_claimed", c, req)
	logger.InfoWithClient(req.ClientID, "code_claimed", map[string]interface{}{
		"expires_at": grant.ExpiresAt,
	})

	return c.Status(fiber.StatusOK).JSON(protocol.ActivateResponse{
		Token:     grant.Token,
		ExpiresAt: grant.ExpiresAt,
		ExpiresIn: grant.ExpiresIn,
	})
}

func (h *ActivationHandler) audit(action string, c *fiber.Ctx, req protocol.ActivateRequest) {
	if h.Audit == nil {
		return
	}
	h.Audit.LogAsync(services.AuditEntry{
		Action:    action,
		Code:      req.Code,
		ClientID:  req.ClientID,
		IPAddress: c.IP(),
		RequestID: requestID(c),
	})
}
