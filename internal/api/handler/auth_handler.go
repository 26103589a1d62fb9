package handler

import (
	"net/http"
	"taskhunt_web/internal/api/middleware"
	"taskhunt_web/internal/app/service"
	"taskhunt_web/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService  *service.AuthService
	pages        *Pages
	cookieSecure bool
}

func NewAuthHandler(authService *service.AuthService, pages *Pages, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, pages: pages, cookieSecure: cookieSecure}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Get("/signin", h.signinForm)
	r.Post("/signin", h.signin)
	r.Get("/signup/hunter", h.signupForm)
	r.Post("/signup/hunter", h.signup)
	r.Post("/logout", h.logout)
}

type SigninPage struct {
	Email      string `json:"email"`
	Registered bool   `json:"registered"`
}

func homeFor(session *model.Session) string {
	if session.Role == model.RoleHunter {
		return "/apply"
	}
	return "/home"
}

func (h *AuthHandler) index(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if !session.HasToken() {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, homeFor(session), http.StatusSeeOther)
}

func (h *AuthHandler) signinForm(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSessionFromContext(r.Context()); session.HasToken() {
		http.Redirect(w, r, homeFor(session), http.StatusSeeOther)
		return
	}
	data := SigninPage{Registered: r.URL.Query().Get("registered") == "1"}
	h.pages.Render(w, r, http.StatusOK, "signin", "Sign in", "", data)
}

func (h *AuthHandler) signin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	isJSON, err := readBody(r, &req)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	if !isJSON {
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}

	res, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.pages.Form(w, r, "signin", "Sign in", "", SigninPage{Email: req.Email}, err)
		return
	}

	middleware.SetSessionCookie(w, res.Cookie, res.ExpiresAt, h.cookieSecure)
	h.pages.Redirect(w, r, res.Home(), res)
}

func (h *AuthHandler) signupForm(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "signup_hunter", "Hunter signup", "", service.SignupHunterRequest{})
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupHunterRequest
	isJSON, err := readBody(r, &req)
	if err != nil {
		h.pages.Error(w, r, err)
		return
	}
	if !isJSON {
		req = service.SignupHunterRequest{
			CPF:      r.PostFormValue("cpf"),
			Name:     r.PostFormValue("name"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
			Username: r.PostFormValue("username"),
		}
	}

	if err := h.authService.SignupHunter(r.Context(), req); err != nil {
		req.Password = ""
		h.pages.Form(w, r, "signup_hunter", "Hunter signup", "", req, err)
		return
	}
	h.pages.Redirect(w, r, "/signin?registered=1", map[string]string{"message": "Hunter registered"})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if err := h.authService.Logout(r.Context(), session); err != nil {
		h.pages.Error(w, r, err)
		return
	}
	middleware.ClearSessionCookie(w, h.cookieSecure)
	h.pages.Redirect(w, r, "/signin", map[string]string{"message": "Signed out"})
}
