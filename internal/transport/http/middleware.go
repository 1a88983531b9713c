package http

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lescale-paris/escale-backend/internal/util"
)

const contextUserKey = "escale.user"

// OptionalAuth resolves a bearer token into a user key when one is present.
// Unauthenticated requests proceed with the shared anonymous namespace; a
// malformed or expired token is treated the same way rather than rejected,
// since favorites are convenience state, not protected data.
func OptionalAuth(jwtManager *util.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				if claims, err := jwtManager.Parse(strings.TrimSpace(parts[1])); err == nil {
					c.Set(contextUserKey, claims.UserID.String())
				}
			}
			return next(c)
		}
	}
}

// CurrentUserKey returns the favorites namespace suffix for this request;
// empty for anonymous.
func CurrentUserKey(c echo.Context) string {
	if id, ok := c.Get(contextUserKey).(string); ok {
		return id
	}
	return ""
}
