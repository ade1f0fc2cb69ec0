package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/reporting"
)

// IdempotencyKeyHeader lets clients retry checkout without duplicating the order.
const IdempotencyKeyHeader = "Idempotency-Key"

type OrderHandlers struct {
	responder
	orders  *order.Service
	reports *reporting.Aggregator
}

func NewOrderHandlers(orders *order.Service, reports *reporting.Aggregator, production bool) *OrderHandlers {
	return &OrderHandlers{responder: responder{production}, orders: orders, reports: reports}
}

// PlaceOrder creates an order for the caller or a guest. A replayed
// idempotency key answers 200 with the stored order.
func (h *OrderHandlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in order.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	in.IdempotencyKey = strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))

	o, created, err := h.orders.Create(r.Context(), in, middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	respondJSON(w, status, o)
}

func (h *OrderHandlers) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"), middleware.Subject(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"), middleware.Subject(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Order cancelled successfully",
		"order":   o,
	})
}

func (h *OrderHandlers) DeleteMyOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteByUser(r.Context(), chi.URLParam(r, "id"), middleware.Subject(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, "Order deleted successfully")
}

// Admin Handlers

func (h *OrderHandlers) AllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandlers) AdminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteByAdmin(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, "Order deleted successfully")
}

func (h *OrderHandlers) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.DashboardStats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
