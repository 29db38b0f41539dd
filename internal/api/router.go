package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/itembox/internal/itemservice"
)

// NewRouter creates a chi router with all item routes.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *itemservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/items", h.ListItems)
	r.Post("/items", h.AddItem)
	r.Delete("/items/{item}", h.RemoveItem)

	r.Get("/history", h.History)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
