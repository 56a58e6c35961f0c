// Package server exposes the JSON API consumed by the browser client.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"geotube/internal/engine"
	"geotube/internal/geocode"
	"geotube/internal/store"
)

// Handlers contains the HTTP handlers and their dependencies. History,
// Comments, and Geocoder are optional; routes depending on a missing
// one answer 503.
type Handlers struct {
	sessions *engine.Sessions
	geocoder geocode.Geocoder
	history  *store.History
	comments *store.Comments
}

// NewHandlers creates a Handlers instance. Optional dependencies may
// be nil.
func NewHandlers(sessions *engine.Sessions, geocoder geocode.Geocoder, history *store.History, comments *store.Comments) *Handlers {
	return &Handlers{
		sessions: sessions,
		geocoder: geocoder,
		history:  history,
		comments: comments,
	}
}

// NewApp builds the fiber application with middleware and routes.
func NewApp(h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "geotube",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	setupRoutes(app, h)
	return app
}

func setupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health)
	app.Get("/metrics", h.Metrics)

	api := app.Group("/api")
	api.Post("/search", h.Search)
	api.Get("/session", h.Session)
	api.Post("/session/clear", h.SessionClear)
	api.Get("/geocode/reverse", h.ReverseGeocode)

	api.Post("/history", h.HistoryAdd)
	api.Get("/history", h.HistoryList)
	api.Delete("/history", h.HistoryClear)

	api.Post("/videos/:id/comments", h.CommentAdd)
	api.Get("/videos/:id/comments", h.CommentList)
	api.Delete("/comments/:id", h.CommentDelete)
}

// userID reads the caller identity header. There is no auth layer;
// the client supplies a stable identifier.
func userID(c *fiber.Ctx) string {
	if id := c.Get("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}
