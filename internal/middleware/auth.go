// Package middleware provides HTTP middleware for the application:
// token authentication and capability-based authorization.
package middleware

import (
	"log"
	"strings"

	"admitdesk/internal/models"
	"admitdesk/internal/services/auth"
	"admitdesk/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates tokens and attaches the resolved claims to the
// request context.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Handler extracts the access token from the session cookie or a Bearer
// header, validates signature, expiry, and token version, and stores the
// claims in fiber locals.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	tokenString := c.Cookies("access_token")
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString == "" {
		return utils.Unauthorized(c, "missing access token")
	}

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return utils.Unauthorized(c, "invalid token")
	}

	currentVersion, err := m.authService.GetUserTokenVersion(claims.UserID)
	if err != nil {
		log.Printf("Error getting token version for user %d: %v", claims.UserID, err)
		return utils.Unauthorized(c, "invalid token")
	}
	if claims.TokenVersion != currentVersion {
		return utils.Unauthorized(c, "session expired")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}

// ClaimsFromContext returns the resolved identity set by Handler.
func ClaimsFromContext(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	return claims, ok && claims != nil
}

// RequireCapability returns a middleware that rejects callers whose role
// does not hold the capability.
func RequireCapability(cap models.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return utils.Unauthorized(c, "missing claims")
		}
		if !claims.Role.Can(cap) {
			log.Printf("Access denied: role %s lacks %s", claims.Role, cap)
			return utils.Forbidden(c, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireSuperadmin is a shorthand for the moderation surfaces.
func RequireSuperadmin(c *fiber.Ctx) error {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "missing claims")
	}
	if claims.Role != models.RoleSuperadmin {
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}
