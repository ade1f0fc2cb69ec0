package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/reporting"
)

type ProductHandlers struct {
	responder
	products *product.Service
	reports  *reporting.Aggregator
}

func NewProductHandlers(products *product.Service, reports *reporting.Aggregator, production bool) *ProductHandlers {
	return &ProductHandlers{responder: responder{production}, products: products, reports: reports}
}

func (h *ProductHandlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := product.ListParams{
		Category: q.Get("category"),
		Filter: model.ProductFilter{
			Brand:    q.Get("brand"),
			Color:    q.Get("color"),
			Size:     q.Get("size"),
			MinPrice: queryFloat(r, "minPrice"),
			MaxPrice: queryFloat(r, "maxPrice"),
			Featured: queryBool(r, "featured"),
			IsNew:    queryBool(r, "isNew"),
			Sort:     model.ProductSort(q.Get("sortBy")),
			Page:     queryInt(r, "page"),
			Limit:    queryInt(r, "limit"),
		},
	}
	page, err := h.products.List(r.Context(), params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *ProductHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandlers) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Featured(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandlers) NewArrivals(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.NewArrivals(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandlers) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandlers) Filters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.reports.ProductFilters(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, filters)
}

func (h *ProductHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.products.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *ProductHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, "Product removed")
}
