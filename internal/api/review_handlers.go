package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/domain/review"
	"github.com/example/ec-storefront/internal/model"
)

type ReviewHandlers struct {
	responder
	reviews *review.Service
}

func NewReviewHandlers(reviews *review.Service, production bool) *ReviewHandlers {
	return &ReviewHandlers{responder: responder{production}, reviews: reviews}
}

func (h *ReviewHandlers) ProductReviews(w http.ResponseWriter, r *http.Request) {
	q := review.ListQuery{
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
		SortBy:    r.URL.Query().Get("sortBy"),
		Ascending: r.URL.Query().Get("sortOrder") == "asc",
		Rating:    queryInt(r, "rating"),
	}
	page, err := h.reviews.ListForProduct(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *ReviewHandlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	var in review.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	rv, err := h.reviews.Create(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rv)
}

func (h *ReviewHandlers) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var in review.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	rv, err := h.reviews.Update(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rv)
}

func (h *ReviewHandlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.Delete(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, "Review deleted successfully")
}

func (h *ReviewHandlers) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	helpful, err := h.reviews.MarkHelpful(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"helpful": helpful})
}

// Admin Handlers

func (h *ReviewHandlers) AdminReviews(w http.ResponseWriter, r *http.Request) {
	q := review.AdminQuery{
		Status: model.ReviewStatus(r.URL.Query().Get("status")),
		Rating: queryInt(r, "rating"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}
	page, err := h.reviews.AdminList(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *ReviewHandlers) AdminReview(w http.ResponseWriter, r *http.Request) {
	rv, err := h.reviews.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rv)
}

func (h *ReviewHandlers) ModerateReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status        model.ReviewStatus `json:"status"`
		AdminResponse string             `json:"adminResponse"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	rv, err := h.reviews.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.AdminResponse)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rv)
}

func (h *ReviewHandlers) AdminDeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.AdminDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, "Review deleted successfully")
}

func (h *ReviewHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reviews.Overview(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
