package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"geotube/internal/engine"
	"geotube/internal/store"
)

type searchRequest struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Query  string  `json:"query"`
	Intent string  `json:"intent"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health answers liveness probes.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Metrics renders the counter snapshot as plain text.
func (h *Handlers) Metrics(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.SendString(engine.FormatMetrics())
}

// Search runs a location search and returns the resolved videos.
func (h *Handlers) Search(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	out, err := h.sessions.Search(c.UserContext(), req.Lat, req.Lng, req.Query, engine.IntentKind(req.Intent))
	if err != nil {
		return searchFailure(c, err)
	}
	return c.JSON(out)
}

// searchFailure maps the engine failure taxonomy to HTTP statuses.
func searchFailure(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidCoordinate):
		status = fiber.StatusBadRequest
	case errors.Is(err, engine.ErrMissingConfiguration):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, engine.ErrNoResults):
		status = fiber.StatusNotFound
	case errors.Is(err, engine.ErrUpstream):
		status = fiber.StatusBadGateway
	}

	msg := "search failed"
	var serr *engine.SearchError
	if errors.As(err, &serr) {
		msg = serr.UserMessage()
	}
	return c.Status(status).JSON(errorResponse{Error: msg})
}

// Session returns the current session state.
func (h *Handlers) Session(c *fiber.Ctx) error {
	s := h.sessions.Current()
	resp := fiber.Map{
		"generation": s.Generation,
		"coordinate": s.Coordinate,
		"query":      s.Query,
		"intent":     s.Intent,
		"pending":    s.Pending,
		"place":      s.Place,
	}
	if s.Output != nil {
		resp["output"] = s.Output
	}
	if s.Err != nil {
		var serr *engine.SearchError
		if errors.As(s.Err, &serr) {
			resp["error"] = serr.UserMessage()
		} else {
			resp["error"] = "search failed"
		}
	}
	return c.JSON(resp)
}

// SessionClear resets the current session.
func (h *Handlers) SessionClear(c *fiber.Ctx) error {
	h.sessions.Clear()
	return c.JSON(fiber.Map{"cleared": true})
}

// ReverseGeocode resolves a coordinate to place details for display.
func (h *Handlers) ReverseGeocode(c *fiber.Ctx) error {
	if h.geocoder == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "geocoding is not configured"})
	}

	lat := c.QueryFloat("lat")
	lng := c.QueryFloat("lng")
	res, err := h.geocoder.ReverseGeocode(c.UserContext(), lat, lng)
	if err != nil {
		slog.Error("reverse geocode failed", slog.Float64("lat", lat), slog.Float64("lng", lng), slog.Any("error", err))
		return c.Status(fiber.StatusBadGateway).JSON(errorResponse{Error: "reverse geocoding failed"})
	}
	return c.JSON(res)
}

// HistoryAdd records a watched video for the caller.
func (h *Handlers) HistoryAdd(c *fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "watch history is not configured"})
	}

	var e store.WatchEntry
	if err := c.BodyParser(&e); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	e.UserID = userID(c)

	id, err := h.history.Add(c.UserContext(), e)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// HistoryList returns the caller's recent watch history.
func (h *Handlers) HistoryList(c *fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "watch history is not configured"})
	}

	entries, err := h.history.Recent(c.UserContext(), userID(c), c.QueryInt("limit"))
	if err != nil {
		slog.Error("history list failed", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "could not load history"})
	}
	return c.JSON(fiber.Map{"entries": entries, "total": len(entries)})
}

// HistoryClear deletes the caller's watch history.
func (h *Handlers) HistoryClear(c *fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "watch history is not configured"})
	}

	n, err := h.history.Clear(c.UserContext(), userID(c))
	if err != nil {
		slog.Error("history clear failed", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "could not clear history"})
	}
	return c.JSON(fiber.Map{"deleted": n})
}

type commentRequest struct {
	Text string `json:"text"`
}

// CommentAdd attaches a comment to a video.
func (h *Handlers) CommentAdd(c *fiber.Ctx) error {
	if h.comments == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "comments are not configured"})
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	cm, err := h.comments.Add(c.UserContext(), c.Params("id"), userID(c), req.Text)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(cm)
}

// CommentList returns the comments on a video, newest first.
func (h *Handlers) CommentList(c *fiber.Ctx) error {
	if h.comments == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "comments are not configured"})
	}

	comments, err := h.comments.List(c.UserContext(), c.Params("id"), c.QueryInt("limit"))
	if err != nil {
		slog.Error("comment list failed", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "could not load comments"})
	}
	return c.JSON(fiber.Map{"comments": comments, "total": len(comments)})
}

// CommentDelete removes the caller's own comment.
func (h *Handlers) CommentDelete(c *fiber.Ctx) error {
	if h.comments == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "comments are not configured"})
	}

	if err := h.comments.Delete(c.UserContext(), c.Params("id"), userID(c)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "comment not found"})
		}
		slog.Error("comment delete failed", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "could not delete comment"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}
