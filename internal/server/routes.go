package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/codexhunt/internal/game"
	"github.com/playperu/codexhunt/internal/throttle"
)

func addRoutes(r chi.Router, logger *slog.Logger, svc *game.Service, limiter *throttle.Limiter, broker *Broker) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("CodeX Hunt API", "/openapi.json", "/docs"))

	r.Post("/register", handleRegister(logger, svc))
	r.With(loginThrottle(limiter, logger)).Post("/login", handleLogin(logger, svc))

	// Gameplay: every request passes session validation first.
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware(logger, svc))
		r.Get("/question", handleGetQuestion(logger, svc))
		r.Post("/question", handleAnswer(logger, svc, broker))
		r.Post("/refuel", handleRefuel(logger, svc, broker))
	})

	// Browsers cannot set headers on EventSource or WebSocket requests.
	r.Group(func(r chi.Router) {
		r.Use(tokenFromQuery)
		r.Use(sessionMiddleware(logger, svc))
		r.Get("/events", handleEvents(broker))
		r.Get("/events/ws", handleEventsWS(logger, broker))
	})
}
