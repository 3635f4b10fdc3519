package middleware

import (
	"strings"

	"github.com/geseib/personalboard/internal/services"
	"github.com/geseib/personalboard/pkg/logger"
	"github.com/geseib/personalboard/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	clientIDKey      = "clientID"
	sessionClaimsKey = "sessionClaims"
)

type AuthMiddleware struct {
	Activation *services.ActivationService
}

func NewAuthMiddleware(activation *services.ActivationService) *AuthMiddleware {
	return &AuthMiddleware{Activation: activation}
}

// CORS answers preflight requests before any handler logic runs. Codes are
// redeemed from arbitrary origins, so the policy is permissive.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

// RequireSession gates protected endpoints behind a bearer session token.
// Every rejection path is a plain 401; expired, malformed, and revoked
// sessions are indistinguishable to the caller.
func (a *AuthMiddleware) RequireSession(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		logger.Warn("session_missing_header", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if tokenString == authHeader || tokenString == "" {
		logger.Warn("session_invalid_format", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := a.Activation.ValidateSession(c.Context(), tokenString)
	if err != nil {
		logger.Warn("session_rejected", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired session")
	}

	c.Locals(clientIDKey, claims.Subject)
	c.Locals(sessionClaimsKey, claims)
	return c.Next()
}

// GetSessionClaims returns the claims stored by RequireSession, or nil on
// unprotected routes.
func GetSessionClaims(c *fiber.Ctx) *utils.SessionClaims {
	value := c.Locals(sessionClaimsKey)
	if value == nil {
		return nil
	}
	claims, ok := value.(*utils.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
