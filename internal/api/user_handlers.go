package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/domain/user"
)

// UserHandlers serves customer and administrator account management.
type UserHandlers struct {
	responder
	users *user.Service
}

func NewUserHandlers(users *user.Service, production bool) *UserHandlers {
	return &UserHandlers{responder: responder{production}, users: users}
}

func (h *UserHandlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.users.ListCustomers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *UserHandlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.users.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *UserHandlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.users.CreateCustomer(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *UserHandlers) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, "Customer removed")
}

func (h *UserHandlers) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.users.ListAdmins(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, admins)
}

func (h *UserHandlers) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var in user.AdminInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	a, err := h.users.CreateAdmin(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (h *UserHandlers) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteAdmin(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, "Admin removed")
}
