package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/itembox/internal/apperr"
	"github.com/starford/itembox/internal/itemservice"
	"github.com/starford/itembox/internal/sink"
)

// Handler holds API route handlers.
type Handler struct {
	svc *itemservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *itemservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListItems handles GET /api/items.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Param		sorted	query		bool	false	"Sort byte-wise by name"
//	@Success	200		{object}	ItemListResponse
//	@Failure	400		{object}	errResponse
//	@Router		/items [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	var sorted bool
	if v := r.URL.Query().Get("sorted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("sorted must be a boolean"))
			return
		}
		sorted = b
	}

	out := sink.NewCollector()
	if err := h.svc.List(r.Context(), sorted, out); err != nil {
		slog.Error("list items failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ItemListResponse{Items: out.Items()})
}

// AddItem handles POST /api/items.
//
//	@Summary	Add an item
//	@Tags		items
//	@Accept		json
//	@Produce	json
//	@Param		body	body		AddItemRequest	true	"Item to add"
//	@Success	201		{object}	AddItemRequest
//	@Failure	400		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Router		/items [post]
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.Add(r.Context(), req.Item); err != nil {
		writeError(w, "add item failed", req.Item, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// RemoveItem handles DELETE /api/items/{item}.
//
//	@Summary	Remove an item
//	@Tags		items
//	@Param		item	path	string	true	"Item name"
//	@Success	204		"Item removed"
//	@Failure	404		{object}	errResponse
//	@Router		/items/{item} [delete]
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "item")
	// chi matches on RawPath when the request needed one, which leaves the
	// parameter escaped. Otherwise it is already decoded.
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(name)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("malformed item name"))
			return
		}
		name = decoded
	}
	if err := h.svc.Remove(r.Context(), name); err != nil {
		writeError(w, "remove item failed", name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/history.
//
//	@Summary	Recent add and remove events
//	@Tags		history
//	@Produce	json
//	@Param		limit	query		int	false	"Max events"
//	@Success	200		{object}	HistoryResponse
//	@Failure	400		{object}	errResponse
//	@Router		/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	var limit int
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	events, err := h.svc.History(r.Context(), limit)
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Events: events})
}

func writeError(w http.ResponseWriter, msg, item string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidName):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("item already exists"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	default:
		slog.Error(msg, slog.String("item", item), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
