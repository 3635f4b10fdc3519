package middleware

import (
	"time"

	"github.com/geseib/personalboard/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		c.Locals("requestID", requestID)

		err := c.Next()

		latency := time.Since(start)
		statusCode := c.Response().StatusCode()

		details := map[string]interface{}{
			"method":       c.Method(),
			"path":         c.Path(),
			"status_code":  statusCode,
			"latency_ms":   latency.Milliseconds(),
			"ip":           c.IP(),
			"request_body": logger.GetRequestBodySummary(c),
			"request_id":   requestID,
		}

		clientID := logger.GetClientIDFromContext(c)
		if clientID != nil {
			if statusCode >= 400 {
				logger.ErrorWithClient(*clientID, "http_request", err, details)
			} else {
				logger.InfoWithClient(*clientID, "http_request", details)
			}
		} else {
			if statusCode >= 400 {
				logger.Error("http_request", err, details)
			} else {
				logger.Info("http_request", details)
			}
		}

		return err
	}
}

// SecurityLogger records every 401 so repeated claim failures and rejected
// sessions leave a trail.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		statusCode := c.Response().StatusCode()
		if statusCode != fiber.StatusUnauthorized {
			return err
		}

		details := map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"ip":     c.IP(),
			"reason": "unauthorized",
		}

		clientID := logger.GetClientIDFromContext(c)
		if clientID != nil {
			logger.WarnWithClient(*clientID, "unauthorized", details)
		} else {
			logger.Warn("unauthorized_unauthenticated", details)
		}

		return err
	}
}
