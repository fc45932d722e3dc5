package server

import (
	"context"

	"github.com/blendi-remade/reve-studio/internal/middleware"
	"github.com/blendi-remade/reve-studio/internal/models"

	"github.com/gofiber/fiber/v2"
)

const revokedTokenPrefix = "blacklist:"

// authenticate verifies the bearer token and checks the revocation list.
func (s *Server) authenticate(c *fiber.Ctx) (*middleware.TokenClaims, error) {
	claims, err := s.verifier.Verify(middleware.BearerToken(c))
	if err != nil {
		return nil, err
	}
	if claims.JTI != "" && s.redis != nil {
		revoked, err := s.redis.Exists(c.UserContext(), revokedTokenPrefix+claims.JTI).Result()
		if err == nil && revoked > 0 {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := s.authenticate(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(capitalize(err.Error())))
		}

		c.Locals("userID", claims.UserID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// optionalUserID returns the caller's user id when a valid token is present.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	claims, err := s.authenticate(c)
	if err != nil {
		return 0
	}
	return claims.UserID
}

// currentUserID is only valid behind AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	uid, _ := c.Locals("userID").(uint)
	return uid
}
