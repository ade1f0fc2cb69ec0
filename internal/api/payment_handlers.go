package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/payment"
)

// maxWebhookBytes matches the processor's documented payload ceiling.
const maxWebhookBytes = 64 << 10

type PaymentHandlers struct {
	responder
	payments   *payment.Service
	reconciler *payment.Reconciler
}

func NewPaymentHandlers(payments *payment.Service, reconciler *payment.Reconciler, production bool) *PaymentHandlers {
	return &PaymentHandlers{responder: responder{production}, payments: payments, reconciler: reconciler}
}

func (h *PaymentHandlers) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var in payment.IntentInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.payments.CreatePaymentIntent(r.Context(), in, middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *PaymentHandlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentIntentID string `json:"paymentIntentId"`
		OrderID         string `json:"orderId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.payments.ConfirmPayment(r.Context(), req.PaymentIntentID, req.OrderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

// Webhook verifies the raw body before anything is decoded. Verified
// deliveries are acknowledged even when the event type is not handled.
func (h *PaymentHandlers) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		respondJSONError(w, "Webhook payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	err = h.reconciler.Handle(r.Context(), payload, r.Header.Get(payment.SignatureHeader))
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]bool{"received": true})
	case errors.Is(err, payment.ErrInvalidSignature), errors.Is(err, payment.ErrInvalidPayload):
		respondJSONError(w, "Webhook Error: "+err.Error(), http.StatusBadRequest)
	default:
		h.fail(w, r, err)
	}
}

func (h *PaymentHandlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := h.payments.CreateCustomer(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"customerId": id})
}

func (h *PaymentHandlers) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	cards, err := h.payments.ListPaymentMethods(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"paymentMethods": cards})
}

func (h *PaymentHandlers) SavePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethodID string `json:"paymentMethodId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	card, err := h.payments.SavePaymentMethod(r.Context(), middleware.GetUserID(r.Context()), req.PaymentMethodID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "paymentMethod": card})
}

func (h *PaymentHandlers) Refund(w http.ResponseWriter, r *http.Request) {
	var in payment.RefundInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	refund, err := h.payments.Refund(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "refund": refund})
}
