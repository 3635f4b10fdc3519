package handlers

import (
	"encoding/json"

	"github.com/geseib/personalboard/internal/middleware"
	"github.com/geseib/personalboard/internal/services"
	"github.com/geseib/personalboard/pkg/logger"
	"github.com/geseib/personalboard/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type AdviceHandler struct {
	Advisor services.Advisor
}

func NewAdviceHandler(advisor services.Advisor) *AdviceHandler {
	return &AdviceHandler{Advisor: advisor}
}

// Advise runs the caller's board context through the advisor. The body is
// passed through opaquely; its shape belongs to the client and the model.
func (h *AdviceHandler) Advise(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return utils.Error(c, fiber.StatusBadRequest, "request body must be JSON")
	}

	advice, err := h.Advisor.Advise(c.Context(), json.RawMessage(body))
	if err != nil {
		claims := middleware.GetSessionClaims(c)
		details := map[string]interface{}{}
		if claims != nil {
			details["client_id"] = claims.Subject
		}
		logger.Error("advice_failed", err, details)
		return utils.Error(c, fiber.StatusBadGateway, "guidance temporarily unavailable")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"advice": advice,
	})
}
