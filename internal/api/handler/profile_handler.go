package handler

import (
	"net/http"
	"taskhunt_web/internal/api/middleware"
	"taskhunt_web/internal/app/service"

	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	pages          *Pages
}

func NewProfileHandler(ps *service.ProfileService, pages *Pages) *ProfileHandler {
	return &ProfileHandler{profileService: ps, pages: pages}
}

func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireSession(h.pages.Error)).Get("/profile", h.profile)
}

func (h *ProfileHandler) profile(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	profile, err := h.profileService.Load(r.Context(), session)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "profile", "Profile", "profile", profile)
}
