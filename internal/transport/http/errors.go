package http

import (
	"encoding/json"
	"net/http"

	"github.com/pk210607/foodie-hub/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeMissingRequiredField = "missing_required_field"
	codeInvalidID            = "invalid_id"
	codeInvalidQuantity      = "invalid_quantity"
	codeInvalidStock         = "invalid_stock"
	codeOwnerRequired        = "owner_required"
	codeItemNameRequired     = "item_name_required"
	codeItemNotFound         = "item_not_found"
	codeCartLineNotFound     = "cart_line_not_found"
	codeItemAlreadyExists    = "item_already_exists"
	codeInsufficientStock    = "insufficient_stock"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError translates a service error into status and code. Every
// handler funnels its service failures through here so the same error always
// renders the same way.
func writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrItemNotFound:
		writeError(w, http.StatusNotFound, codeItemNotFound, "menu item not found")
	case domain.ErrCartLineNotFound:
		writeError(w, http.StatusNotFound, codeCartLineNotFound, "cart line not found")
	case domain.ErrInsufficientStock:
		writeError(w, http.StatusConflict, codeInsufficientStock, "insufficient stock")
	case domain.ErrItemAlreadyExists:
		writeError(w, http.StatusConflict, codeItemAlreadyExists, "menu item already exists")
	case domain.ErrInvalidQuantity:
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, "quantity must be positive")
	case domain.ErrInvalidStock:
		writeError(w, http.StatusBadRequest, codeInvalidStock, "stock amount must be positive")
	case domain.ErrOwnerRequired:
		writeError(w, http.StatusBadRequest, codeOwnerRequired, "owner_id is required")
	case domain.ErrItemNameRequired:
		writeError(w, http.StatusBadRequest, codeItemNameRequired, "name is required")
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, "invalid id")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

// opOutcome buckets a service error for the operations counter.
func opOutcome(err error) string {
	switch err {
	case nil:
		return "ok"
	case domain.ErrInsufficientStock:
		return "insufficient_stock"
	case domain.ErrItemNotFound, domain.ErrCartLineNotFound:
		return "not_found"
	case domain.ErrInvalidQuantity, domain.ErrInvalidStock, domain.ErrOwnerRequired,
		domain.ErrItemNameRequired, domain.ErrItemAlreadyExists, domain.ErrInvalidID:
		return "invalid"
	default:
		return "error"
	}
}
