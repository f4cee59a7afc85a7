package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pk210607/foodie-hub/internal/app"
	"github.com/pk210607/foodie-hub/internal/domain"
	"github.com/pk210607/foodie-hub/internal/metrics"
)

// MenuLister is the minimal interface needed for the public menu endpoint.
type MenuLister interface {
	ListItems(ctx context.Context) ([]domain.MenuItem, error)
}

// CatalogAdmin is the minimal interface needed for the admin item endpoints.
type CatalogAdmin interface {
	CreateItem(ctx context.Context, in app.CreateItemInput) (domain.MenuItem, error)
	Restock(ctx context.Context, itemID string, amount int) (domain.MenuItem, error)
}

// HandleMenu returns the handler for GET /items.
func HandleMenu(svc MenuLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		items, err := svc.ListItems(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]itemResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, newItemResponse(item))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleAdminItems returns the handler for POST /admin/items.
func HandleAdminItems(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createItemRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, codeItemNameRequired, "name is required")
			return
		}
		if req.InitialStock < 0 {
			writeError(w, http.StatusBadRequest, codeInvalidStock, "initial_stock must not be negative")
			return
		}

		item, err := svc.CreateItem(r.Context(), app.CreateItemInput{
			Name:         req.Name,
			InitialStock: req.InitialStock,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(newItemResponse(item))
	}
}

// HandleAdminRestock returns the handler for POST /admin/items/{id}/restock.
func HandleAdminRestock(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := restockPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req restockRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		item, err := svc.Restock(r.Context(), itemID, req.Amount)
		metrics.CartOps.WithLabelValues("restock", opOutcome(err)).Inc()
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(newItemResponse(item))
	}
}

// restockPath extracts the item id from /admin/items/{id}/restock.
func restockPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "items" || parts[3] != "restock" {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

type createItemRequest struct {
	Name         string `json:"name"`
	InitialStock int    `json:"initial_stock"`
}

type restockRequest struct {
	Amount int `json:"amount"`
}

type itemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Available int       `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newItemResponse(item domain.MenuItem) itemResponse {
	return itemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Available: item.Available,
		UpdatedAt: item.UpdatedAt,
	}
}
