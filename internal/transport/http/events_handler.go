package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lescale-paris/escale-backend/internal/domain"
	"github.com/lescale-paris/escale-backend/internal/feed"
	"github.com/lescale-paris/escale-backend/internal/service"
	"github.com/lescale-paris/escale-backend/internal/util"
)

type EventHandler struct {
	discovery    *service.DiscoveryService
	favorites    *service.FavoriteService
	rules        feed.RuleSet
	grace        time.Duration
	shareBaseURL string
}

type EventResponse struct {
	domain.EventItem
	Status      domain.EventStatus `json:"status,omitempty"`
	IsPast      bool               `json:"is_past"`
	IsFavorited bool               `json:"is_favorited"`
}

func RegisterEvents(e *echo.Echo, jwtManager *util.JWTManager, discovery *service.DiscoveryService, favorites *service.FavoriteService, rules feed.RuleSet, grace time.Duration, shareBaseURL string) {
	handler := &EventHandler{
		discovery:    discovery,
		favorites:    favorites,
		rules:        rules,
		grace:        grace,
		shareBaseURL: shareBaseURL,
	}

	group := e.Group("/api/v1/events", OptionalAuth(jwtManager))
	group.GET("", handler.discover)
	group.GET("/feed", handler.feed)
	group.GET("/categories", handler.categories)
	group.GET("/:event_id/share", handler.share)
}

// discover runs a discovery call for the given free-text query and returns
// the freshest committed snapshot. A failed or unparsable call surfaces as an
// empty list, never as an error payload.
func (h *EventHandler) discover(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	result := h.discovery.Discover(c.Request().Context(), query)
	_, status := h.discovery.Snapshot()

	return c.JSON(http.StatusOK, util.Envelope{
		"events":  result.Events,
		"sources": result.Sources,
		"status":  status,
	})
}

// feed computes the display list from the current snapshot without
// triggering a discovery call.
func (h *EventHandler) feed(c echo.Context) error {
	opts, err := parseFeedOptions(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	opts.Grace = h.grace
	opts.Rules = h.rules

	userKey := CurrentUserKey(c)
	snapshot, status := h.discovery.Snapshot()
	favorites := h.favorites.List(c.Request().Context(), userKey)

	list := feed.ComputeDisplayList(snapshot.Events, favorites, opts)

	favoriteIDs := make(map[string]bool, len(favorites))
	for _, fav := range favorites {
		favoriteIDs[fav.ID] = true
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	items := make([]EventResponse, 0, len(list))
	for _, ev := range list {
		items = append(items, EventResponse{
			EventItem:   ev,
			Status:      feed.ClassifyStatus(ev, now, h.grace),
			IsPast:      feed.IsPast(ev, now, h.grace),
			IsFavorited: favoriteIDs[ev.ID],
		})
	}

	response := util.Envelope{
		"items":  items,
		"count":  len(items),
		"status": status,
	}
	if !opts.FavoritesOnly {
		response["sources"] = snapshot.Sources
	}
	return c.JSON(http.StatusOK, response)
}

func (h *EventHandler) categories(c echo.Context) error {
	return c.JSON(http.StatusOK, util.Envelope{"categories": h.rules.Tags()})
}

// share returns the formatted share payload for one event, looked up in the
// live snapshot first and the caller's favorites second.
func (h *EventHandler) share(c echo.Context) error {
	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		return c.JSON(http.StatusBadRequest, util.Error("event_id is required"))
	}

	event, ok := h.discovery.FindEvent(eventID)
	if !ok {
		for _, fav := range h.favorites.List(c.Request().Context(), CurrentUserKey(c)) {
			if fav.ID == eventID {
				event, ok = fav, true
				break
			}
		}
	}
	if !ok {
		return c.JSON(http.StatusNotFound, util.Error("event not found"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"share": feed.BuildSharePayload(event, h.shareBaseURL),
	})
}

// parseFeedOptions reads the filter query params. hide_outdated defaults to
// true, matching the events screen's initial state.
func parseFeedOptions(c echo.Context) (feed.Options, error) {
	opts := feed.Options{HideOutdated: true}

	var err error
	if opts.FavoritesOnly, err = parseBoolParam(c, "favorites_only", false); err != nil {
		return feed.Options{}, err
	}
	if opts.HideOutdated, err = parseBoolParam(c, "hide_outdated", true); err != nil {
		return feed.Options{}, err
	}
	if opts.AccessibleOnly, err = parseBoolParam(c, "accessible_only", false); err != nil {
		return feed.Options{}, err
	}

	opts.Category = strings.TrimSpace(c.QueryParam("category"))

	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		t, ok := domain.ParseISODate(raw)
		if !ok {
			return feed.Options{}, fmt.Errorf("from must be an ISO date")
		}
		opts.From = &t
	}
	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		t, ok := domain.ParseISODate(raw)
		if !ok {
			return feed.Options{}, fmt.Errorf("to must be an ISO date")
		}
		opts.To = &t
	}
	if opts.From != nil && opts.To != nil && opts.To.Before(*opts.From) {
		return feed.Options{}, fmt.Errorf("to must not be before from")
	}

	return opts, nil
}

func parseBoolParam(c echo.Context, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return value, nil
}
