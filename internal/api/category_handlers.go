package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/ec-storefront/internal/domain/category"
)

type CategoryHandlers struct {
	responder
	categories *category.Service
}

func NewCategoryHandlers(categories *category.Service, production bool) *CategoryHandlers {
	return &CategoryHandlers{responder: responder{production}, categories: categories}
}

func (h *CategoryHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cats)
}

func (h *CategoryHandlers) Featured(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.Featured(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cats)
}

func (h *CategoryHandlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CategoryHandlers) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CategoryHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in category.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.categories.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *CategoryHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in category.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.categories.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CategoryHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, "Category deleted successfully")
}
