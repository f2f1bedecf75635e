package server

import (
	"log/slog"

	"yatube/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// LoadViewer resolves the session token, if any, into locals "viewer" and
// "userID". It never rejects a request: a bad, revoked or orphaned token
// just leaves the visitor anonymous.
func (s *Server) LoadViewer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := middleware.TokenFromRequest(c)
		if token == "" {
			return c.Next()
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, token)
		if err != nil {
			return c.Next()
		}
		if s.isRevoked(c, claims.JTI) {
			return c.Next()
		}

		user, err := s.userService.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			return c.Next()
		}

		c.Locals("viewer", user)
		c.Locals("userID", user.ID)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
		return c.Next()
	}
}

func (s *Server) isRevoked(c *fiber.Ctx, jti string) bool {
	if jti == "" {
		return false
	}
	val, err := s.sessions.Get(middleware.BlacklistKey(jti))
	if err != nil {
		// unreadable blacklist counts as revoked
		middleware.Logger.WarnContext(c.UserContext(), "token blacklist lookup failed", slog.String("error", err.Error()))
		return true
	}
	return val != nil
}

// AuthRequired redirects anonymous visitors to the login page, remembering
// where they were headed.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if viewer(c) == nil {
			return c.Redirect(loginURL(c.OriginalURL()), fiber.StatusFound)
		}
		return c.Next()
	}
}
