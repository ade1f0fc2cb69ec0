package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/ec-storefront/internal/domain/setting"
)

type SettingHandlers struct {
	responder
	settings *setting.Service
}

func NewSettingHandlers(settings *setting.Service, production bool) *SettingHandlers {
	return &SettingHandlers{responder: responder{production}, settings: settings}
}

func (h *SettingHandlers) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *SettingHandlers) GetSetting(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *SettingHandlers) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var in setting.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.settings.Update(r.Context(), chi.URLParam(r, "key"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}
