package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sunny0223day/accountingbot/internal/ledger"
	"github.com/sunny0223day/accountingbot/internal/middleware"
)

// statusFor maps ledger errors to HTTP status codes. Anything the core does
// not classify as a client error is a 500.
func statusFor(err error) int {
	switch {
	case ledger.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInvalidItem), errors.Is(err, ledger.ErrInvalidDiscount):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrOrderNotEditable),
		errors.Is(err, ledger.ErrAlreadyCancelled),
		errors.Is(err, ledger.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	http.Error(w, msg, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func orderIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
}

func limitQuery(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

type createOrderRequest struct {
	Vendor  string `json:"vendor"`
	PayerID string `json:"payer_id,omitempty"`
	Note    string `json:"note,omitempty"`
}

// CreateOrder opens a new order for the acting user.
func (s *Server) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.Vendor == "" {
		http.Error(w, "vendor is required", http.StatusBadRequest)
		return
	}

	orderID, err := s.ledger.CreateOrder(r.Context(), req.Vendor, middleware.GetUserID(r.Context()), req.PayerID, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"order_id": orderID})
}

type addItemRequest struct {
	UserID    string `json:"user_id,omitempty"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Qty       int64  `json:"qty"`
	Note      string `json:"note,omitempty"`
}

// AddItem appends a line item. The item owner defaults to the acting user,
// who is always recorded as the entry's creator.
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	actor := middleware.GetUserID(r.Context())
	owner := req.UserID
	if owner == "" {
		owner = actor
	}

	itemID, err := s.ledger.AddItem(r.Context(), orderID, owner, req.Name, req.UnitPrice, req.Qty, req.Note, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"item_id": itemID})
}

type setDiscountRequest struct {
	Percent float64 `json:"percent"`
}

// SetDiscount sets the order-level percent discount.
func (s *Server) SetDiscount(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req setDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := s.ledger.SetDiscountPercent(r.Context(), orderID, req.Percent); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setAdjustmentRequest struct {
	Adjustment int64 `json:"adjustment"`
}

// SetAdjustment sets the per-person flat adjustment. Creator-only.
func (s *Server) SetAdjustment(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req setAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := s.ledger.SetAdjustment(r.Context(), orderID, req.Adjustment, middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Lock closes the order for new items and pricing changes.
func (s *Server) Lock(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.ledger.Lock)
}

// Unlock reopens a locked order.
func (s *Server) Unlock(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.ledger.Unlock)
}

// Cancel voids the order permanently.
func (s *Server) Cancel(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.ledger.Cancel)
}

func (s *Server) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, orderID int64, actorID string) error) {
	orderID, err := orderIDParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), orderID, middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type markPaidRequest struct {
	UserID string `json:"user_id,omitempty"`
	PaidTo string `json:"paid_to,omitempty"`
}

// MarkPaid records that a user settled their share. The target defaults to
// the acting user; paid_to defaults to the order's payer.
func (s *Server) MarkPaid(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// An empty body is fine: the target and payee both have defaults.
	var req markPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = middleware.GetUserID(r.Context())
	}

	if err := s.ledger.MarkPaid(r.Context(), orderID, userID, req.PaidTo); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBill returns the full single-order bill view.
func (s *Server) GetBill(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	bill, err := s.queries.GetBill(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// GetDebt returns the acting user's outstanding debt.
func (s *Server) GetDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := s.queries.GetUserDebt(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

// GetOverview returns the acting user's dashboard.
func (s *Server) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.queries.GetUserOverview(r.Context(), middleware.GetUserID(r.Context()), limitQuery(r, 10))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// SearchOrders lists non-cancelled orders for a picker.
func (s *Server) SearchOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.queries.SearchOrders(r.Context(), r.URL.Query().Get("q"), limitQuery(r, 25))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
