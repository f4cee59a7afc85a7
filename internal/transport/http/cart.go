package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pk210607/foodie-hub/internal/app"
	"github.com/pk210607/foodie-hub/internal/domain"
	"github.com/pk210607/foodie-hub/internal/metrics"
)

// CartReserver is the minimal interface needed to put stock into a cart.
type CartReserver interface {
	Reserve(ctx context.Context, in app.ReserveInput) (domain.CartLine, error)
}

// CartLineEditor covers the operations addressed to one existing cart line.
type CartLineEditor interface {
	Resync(ctx context.Context, lineID string, quantity int) (app.ResyncResult, error)
	Release(ctx context.Context, lineID string) (app.ReleaseResult, error)
}

// CartReader lists an owner's current cart.
type CartReader interface {
	ListCart(ctx context.Context, ownerID string) ([]domain.CartLine, error)
}

// HandleReserve returns the handler for POST /cart/items.
func HandleReserve(svc CartReserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req reserveRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.OwnerID == "" {
			writeError(w, http.StatusBadRequest, codeOwnerRequired, "owner_id is required")
			return
		}
		if req.ItemID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "item_id is required")
			return
		}

		// A missing quantity means one unit.
		amount := 1
		if req.Quantity != nil {
			amount = *req.Quantity
		}

		line, err := svc.Reserve(r.Context(), app.ReserveInput{
			OwnerID: req.OwnerID,
			ItemID:  req.ItemID,
			Amount:  amount,
		})
		metrics.CartOps.WithLabelValues("reserve", opOutcome(err)).Inc()
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(cartLineResponse{
			ID:       line.ID,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		})
	}
}

// HandleCartLine returns the handler for PUT and DELETE /cart/lines/{id}.
func HandleCartLine(svc CartLineEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, ok := cartLinePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodPut:
			resyncLine(w, r, svc, lineID)
		case http.MethodDelete:
			releaseLine(w, r, svc, lineID)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func resyncLine(w http.ResponseWriter, r *http.Request, svc CartLineEditor, lineID string) {
	var req resyncRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "quantity is required")
		return
	}

	res, err := svc.Resync(r.Context(), lineID, *req.Quantity)
	metrics.CartOps.WithLabelValues("resync", opOutcome(err)).Inc()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if res.Released {
		// A target at or below zero removes the line, so the response is
		// exactly what a DELETE would have returned.
		_ = json.NewEncoder(w).Encode(releaseResponse{
			ID:             res.LineID,
			RestoredAmount: res.RestoredAmount,
		})
		return
	}
	_ = json.NewEncoder(w).Encode(resyncResponse{
		ID:       res.LineID,
		Quantity: res.NewQuantity,
		Delta:    res.Delta,
	})
}

func releaseLine(w http.ResponseWriter, r *http.Request, svc CartLineEditor, lineID string) {
	res, err := svc.Release(r.Context(), lineID)
	metrics.CartOps.WithLabelValues("release", opOutcome(err)).Inc()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(releaseResponse{
		ID:             res.LineID,
		RestoredAmount: res.RestoredAmount,
	})
}

// HandleListCart returns the handler for GET /cart?owner_id=.
func HandleListCart(svc CartReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		ownerID := r.URL.Query().Get("owner_id")
		if ownerID == "" {
			writeError(w, http.StatusBadRequest, codeOwnerRequired, "owner_id is required")
			return
		}

		lines, err := svc.ListCart(r.Context(), ownerID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]cartLineResponse, 0, len(lines))
		for _, line := range lines {
			resp = append(resp, cartLineResponse{
				ID:       line.ID,
				ItemID:   line.ItemID,
				Quantity: line.Quantity,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// cartLinePath extracts the line id from /cart/lines/{id}.
func cartLinePath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "cart" || parts[1] != "lines" || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

type reserveRequest struct {
	OwnerID  string `json:"owner_id"`
	ItemID   string `json:"item_id"`
	Quantity *int   `json:"quantity"`
}

type resyncRequest struct {
	Quantity *int `json:"quantity"`
}

type cartLineResponse struct {
	ID       string `json:"id"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type resyncResponse struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Delta    int    `json:"delta"`
}

type releaseResponse struct {
	ID             string `json:"id"`
	RestoredAmount int    `json:"restored_amount"`
}
