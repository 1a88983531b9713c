package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lescale-paris/escale-backend/internal/domain"
	"github.com/lescale-paris/escale-backend/internal/service"
	"github.com/lescale-paris/escale-backend/internal/util"
)

type AssistantHandler struct {
	assistant *service.AssistantService
}

func RegisterAssistant(e *echo.Echo, jwtManager *util.JWTManager, assistant *service.AssistantService) {
	handler := &AssistantHandler{assistant: assistant}

	group := e.Group("/api/v1/assistant", OptionalAuth(jwtManager))
	group.POST("/chat", handler.chat)
}

func (h *AssistantHandler) chat(c echo.Context) error {
	var req struct {
		Message string            `json:"message"`
		History []domain.ChatTurn `json:"history"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	reply, err := h.assistant.Reply(c.Request().Context(), req.Message, req.History)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			return c.JSON(http.StatusBadRequest, util.Error("message is required"))
		default:
			return c.JSON(http.StatusBadGateway, util.Error("assistant is unavailable right now"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{"reply": reply})
}
