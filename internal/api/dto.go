package api

import "github.com/starford/itembox/internal/models"

// AddItemRequest is the request body for adding an item.
type AddItemRequest struct {
	Item string `json:"item" example:"buy milk"`
}

// ItemListResponse wraps a listing.
type ItemListResponse struct {
	Items []string `json:"items"`
}

// HistoryResponse wraps journal events, newest first.
type HistoryResponse struct {
	Events []models.Event `json:"events"`
}
