package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/ec-storefront/internal/analytics"
	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/model"
)

type AnalyticsHandlers struct {
	responder
	analytics *analytics.Service
}

func NewAnalyticsHandlers(svc *analytics.Service, production bool) *AnalyticsHandlers {
	return &AnalyticsHandlers{responder: responder{production}, analytics: svc}
}

func (h *AnalyticsHandlers) TrackColor(w http.ResponseWriter, r *http.Request) {
	var in analytics.ColorInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.analytics.TrackColor(r.Context(), in, visitor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "data": e})
}

func (h *AnalyticsHandlers) TrackSize(w http.ResponseWriter, r *http.Request) {
	var in analytics.SizeInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.analytics.TrackSize(r.Context(), in, visitor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "data": e})
}

func (h *AnalyticsHandlers) TrackCombination(w http.ResponseWriter, r *http.Request) {
	var in analytics.CombinationInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.analytics.TrackCombination(r.Context(), in, visitor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "data": e})
}

func (h *AnalyticsHandlers) ColorReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.ColorReport(r.Context(), reportQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": report})
}

func (h *AnalyticsHandlers) SizeReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.SizeReport(r.Context(), reportQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": report})
}

func (h *AnalyticsHandlers) CombinationReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.CombinationReport(r.Context(), reportQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": report})
}

// reportQuery reads the window parameters. A product in the path narrows
// the report to that product.
func reportQuery(r *http.Request) analytics.Query {
	q := r.URL.Query()
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		productID = q.Get("productId")
	}
	return analytics.Query{
		ProductID: productID,
		TimeRange: q.Get("timeRange"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Limit:     queryInt(r, "limit"),
	}
}

func visitor(r *http.Request) model.Visitor {
	return model.Visitor{
		UserID:    middleware.GetUserID(r.Context()),
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// clientIP prefers the first X-Forwarded-For hop set by the proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
