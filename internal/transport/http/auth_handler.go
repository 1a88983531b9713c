package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lescale-paris/escale-backend/internal/util"
)

type AuthHandler struct {
	jwtManager *util.JWTManager
}

// RegisterAuth exposes guest token issuance. A guest token pins a device to
// its own favorites namespace; there are no accounts.
func RegisterAuth(e *echo.Echo, jwtManager *util.JWTManager) {
	handler := &AuthHandler{jwtManager: jwtManager}
	e.POST("/api/v1/auth/guest", handler.guestToken)
}

func (h *AuthHandler) guestToken(c echo.Context) error {
	token, userID, expiresAt, err := h.jwtManager.GenerateGuest()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not issue token"))
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"token":      token,
		"user_id":    userID,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}
