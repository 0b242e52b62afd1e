package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/tavla/internal/boardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *boardservice.Service, env Environment, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, env)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Board document.
	r.Get("/board", h.GetBoard)
	r.Put("/board", h.ReplaceBoard)
	r.Get("/board/view", h.View)

	// Cards.
	r.Post("/board/cards", h.CreateCard)
	r.Put("/board/cards/{id}", h.EditCard)
	r.Delete("/board/cards/{id}", h.DeleteCard)
	r.Post("/board/moves", h.MoveCard)

	// Filters.
	r.Post("/filters/check", h.CheckFilter)

	// Search.
	r.Get("/search", h.Search)

	// Environment.
	r.Get("/environment", h.GetEnvironment)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
