package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pk210607/foodie-hub/internal/app"
	"github.com/pk210607/foodie-hub/internal/domain"
)

type stubCartService struct {
	line    domain.CartLine
	resync  app.ResyncResult
	release app.ReleaseResult
	lines   []domain.CartLine
	err     error

	gotLineID   string
	gotQuantity int
	gotReserve  app.ReserveInput
}

func (s *stubCartService) Reserve(_ context.Context, in app.ReserveInput) (domain.CartLine, error) {
	s.gotReserve = in
	return s.line, s.err
}

func (s *stubCartService) Resync(_ context.Context, lineID string, quantity int) (app.ResyncResult, error) {
	s.gotLineID = lineID
	s.gotQuantity = quantity
	return s.resync, s.err
}

func (s *stubCartService) Release(_ context.Context, lineID string) (app.ReleaseResult, error) {
	s.gotLineID = lineID
	return s.release, s.err
}

func (s *stubCartService) ListCart(_ context.Context, _ string) ([]domain.CartLine, error) {
	return s.lines, s.err
}

func TestHandleReserve(t *testing.T) {
	t.Parallel()

	successLine := domain.CartLine{
		ID:       "line-123",
		OwnerID:  "alice",
		ItemID:   "item-1",
		Quantity: 2,
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"owner_id":"alice","item_id":"item-1","quantity":2}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"id":"line-123"`,
		},
		{
			name:           "invalid json",
			body:           `{"owner_id":`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"invalid_request_body"`,
		},
		{
			name:           "missing owner",
			body:           `{"item_id":"item-1","quantity":2}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"owner_required"`,
		},
		{
			name:           "missing item",
			body:           `{"owner_id":"alice","quantity":2}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"missing_required_field"`,
		},
		{
			name:           "zero quantity",
			body:           `{"owner_id":"alice","item_id":"item-1","quantity":0}`,
			serviceErr:     domain.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"invalid_quantity"`,
		},
		{
			name:           "negative quantity",
			body:           `{"owner_id":"alice","item_id":"item-1","quantity":-3}`,
			serviceErr:     domain.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"invalid_quantity"`,
		},
		{
			name:           "item not found",
			body:           `{"owner_id":"alice","item_id":"item-1","quantity":1}`,
			serviceErr:     domain.ErrItemNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: `"item_not_found"`,
		},
		{
			name:           "insufficient stock",
			body:           `{"owner_id":"alice","item_id":"item-1","quantity":1}`,
			serviceErr:     domain.ErrInsufficientStock,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"insufficient_stock"`,
		},
		{
			name:           "internal error",
			body:           `{"owner_id":"alice","item_id":"item-1","quantity":1}`,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedSubstr: `"internal_error"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCartService{line: successLine, err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleReserve(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}

	t.Run("missing quantity means one unit", func(t *testing.T) {
		t.Parallel()
		svc := &stubCartService{line: successLine}
		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"owner_id":"alice","item_id":"item-1"}`))
		rec := httptest.NewRecorder()

		HandleReserve(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
		if svc.gotReserve.Amount != 1 {
			t.Fatalf("amount = %d, want 1", svc.gotReserve.Amount)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/cart/items", nil)
		rec := httptest.NewRecorder()

		HandleReserve(&stubCartService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

func TestHandleCartLineResync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		path           string
		body           string
		result         app.ResyncResult
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "updated line",
			path:           "/cart/lines/line-1",
			body:           `{"quantity":5}`,
			result:         app.ResyncResult{LineID: "line-1", NewQuantity: 5, Delta: 3},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"delta":3`,
		},
		{
			name:           "target of zero renders the release shape",
			path:           "/cart/lines/line-1",
			body:           `{"quantity":0}`,
			result:         app.ResyncResult{LineID: "line-1", Released: true, RestoredAmount: 4},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"restored_amount":4`,
		},
		{
			name:           "invalid json",
			path:           "/cart/lines/line-1",
			body:           `{"quantity":`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"invalid_request_body"`,
		},
		{
			name:           "missing quantity",
			path:           "/cart/lines/line-1",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"missing_required_field"`,
		},
		{
			name:           "line not found",
			path:           "/cart/lines/line-1",
			body:           `{"quantity":5}`,
			serviceErr:     domain.ErrCartLineNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: `"cart_line_not_found"`,
		},
		{
			name:           "insufficient stock",
			path:           "/cart/lines/line-1",
			body:           `{"quantity":50}`,
			serviceErr:     domain.ErrInsufficientStock,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"insufficient_stock"`,
		},
		{
			name:           "malformed path",
			path:           "/cart/lines/line-1/extra",
			body:           `{"quantity":5}`,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCartService{resync: tt.result, err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPut, tt.path, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleCartLine(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}

	t.Run("release body and zero-target resync body match", func(t *testing.T) {
		t.Parallel()
		released := app.ReleaseResult{LineID: "line-1", ItemID: "item-1", RestoredAmount: 4}
		svc := &stubCartService{
			release: released,
			resync:  app.ResyncResult{LineID: "line-1", ItemID: "item-1", Released: true, RestoredAmount: 4},
		}

		putReq := httptest.NewRequest(http.MethodPut, "/cart/lines/line-1", strings.NewReader(`{"quantity":0}`))
		putRec := httptest.NewRecorder()
		HandleCartLine(svc).ServeHTTP(putRec, putReq)

		delReq := httptest.NewRequest(http.MethodDelete, "/cart/lines/line-1", nil)
		delRec := httptest.NewRecorder()
		HandleCartLine(svc).ServeHTTP(delRec, delReq)

		if putRec.Code != delRec.Code {
			t.Fatalf("status mismatch: %d vs %d", putRec.Code, delRec.Code)
		}
		if putRec.Body.String() != delRec.Body.String() {
			t.Fatalf("body mismatch: %q vs %q", putRec.Body.String(), delRec.Body.String())
		}
	})
}

func TestHandleCartLineRelease(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			expectedStatus: http.StatusOK,
			expectedSubstr: `"restored_amount":3`,
		},
		{
			name:           "line not found",
			serviceErr:     domain.ErrCartLineNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: `"cart_line_not_found"`,
		},
		{
			name:           "internal error",
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedSubstr: `"internal_error"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCartService{
				release: app.ReleaseResult{LineID: "line-1", ItemID: "item-1", RestoredAmount: 3},
				err:     tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodDelete, "/cart/lines/line-1", nil)
			rec := httptest.NewRecorder()

			HandleCartLine(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
			if svc.gotLineID != "line-1" {
				t.Fatalf("line id passed = %q, want line-1", svc.gotLineID)
			}
		})
	}

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/cart/lines/line-1", nil)
		rec := httptest.NewRecorder()

		HandleCartLine(&stubCartService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

func TestHandleListCart(t *testing.T) {
	t.Parallel()

	t.Run("lists the owner's lines", func(t *testing.T) {
		t.Parallel()
		svc := &stubCartService{lines: []domain.CartLine{
			{ID: "line-1", OwnerID: "alice", ItemID: "item-1", Quantity: 2},
			{ID: "line-2", OwnerID: "alice", ItemID: "item-2", Quantity: 1},
		}}
		req := httptest.NewRequest(http.MethodGet, "/cart?owner_id=alice", nil)
		rec := httptest.NewRecorder()

		HandleListCart(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, substr := range []string{`"line-1"`, `"line-2"`, `"quantity":2`} {
			if !strings.Contains(body, substr) {
				t.Fatalf("expected response to contain %q, got %q", substr, body)
			}
		}
	})

	t.Run("empty cart is an empty array", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/cart?owner_id=alice", nil)
		rec := httptest.NewRecorder()

		HandleListCart(&stubCartService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Fatalf("body = %q, want []", got)
		}
	})

	t.Run("missing owner", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		rec := httptest.NewRecorder()

		HandleListCart(&stubCartService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"owner_required"`) {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodDelete, "/cart?owner_id=alice", nil)
		rec := httptest.NewRecorder()

		HandleListCart(&stubCartService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}
