package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lescale-paris/escale-backend/internal/domain"
	"github.com/lescale-paris/escale-backend/internal/service"
	"github.com/lescale-paris/escale-backend/internal/util"
)

type FavoriteHandler struct {
	favorites *service.FavoriteService
}

func RegisterFavorites(e *echo.Echo, jwtManager *util.JWTManager, favorites *service.FavoriteService) {
	handler := &FavoriteHandler{favorites: favorites}

	group := e.Group("/api/v1/users/me/favorites", OptionalAuth(jwtManager))
	group.GET("", handler.listFavorites)
	group.POST("", handler.saveFavorite)
	group.POST("/toggle", handler.toggleFavorite)
	group.DELETE("/:event_id", handler.removeFavorite)
}

func (h *FavoriteHandler) listFavorites(c echo.Context) error {
	items := h.favorites.List(c.Request().Context(), CurrentUserKey(c))
	return c.JSON(http.StatusOK, util.Envelope{
		"items": items,
		"count": len(items),
	})
}

func (h *FavoriteHandler) saveFavorite(c echo.Context) error {
	event, err := bindEvent(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	if err := h.favorites.Save(c.Request().Context(), CurrentUserKey(c), event); err != nil {
		switch {
		case errors.Is(err, service.ErrFavoriteAlreadyExists):
			return c.JSON(http.StatusConflict, util.Error("event already saved"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"event_id": event.ID,
		"message":  "Event saved to Favorites",
	})
}

// toggleFavorite flips membership for the posted event snapshot and reports
// the resulting state.
func (h *FavoriteHandler) toggleFavorite(c echo.Context) error {
	event, err := bindEvent(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	favorited, err := h.favorites.Toggle(c.Request().Context(), CurrentUserKey(c), event)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"event_id":  event.ID,
		"favorited": favorited,
	})
}

func (h *FavoriteHandler) removeFavorite(c echo.Context) error {
	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		return c.JSON(http.StatusBadRequest, util.Error("event_id is required"))
	}

	if err := h.favorites.Remove(c.Request().Context(), CurrentUserKey(c), eventID); err != nil {
		switch {
		case errors.Is(err, service.ErrFavoriteNotFound):
			return c.JSON(http.StatusNotFound, util.Error("event is not in your favorites"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"event_id": eventID,
		"message":  "Event removed from Favorites",
	})
}

// bindEvent reads the full event snapshot from the request body. The server
// stores what the client saw at favoriting time, not a reference.
func bindEvent(c echo.Context) (domain.EventItem, error) {
	var event domain.EventItem
	if err := c.Bind(&event); err != nil {
		return domain.EventItem{}, errors.New("invalid request body")
	}
	if strings.TrimSpace(event.ID) == "" {
		return domain.EventItem{}, errors.New("id is required")
	}
	if strings.TrimSpace(event.Title) == "" {
		return domain.EventItem{}, errors.New("title is required")
	}
	return event, nil
}
