package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"taskhunt_web/internal/api/middleware"
	"taskhunt_web/internal/app/service"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/web"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// Pages renders HTML or JSON depending on what the caller accepts. Every
// handler shares one.
type Pages struct {
	view     *web.Renderer
	sessions *service.SessionService
	log      *zap.Logger
}

func NewPages(view *web.Renderer, sessions *service.SessionService, log *zap.Logger) *Pages {
	return &Pages{view: view, sessions: sessions, log: log}
}

type ErrorPage struct {
	Status int `json:"status"`
}

// Render writes data as page name. JSON callers get data itself.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, name, title, nav string, data any) {
	p.render(w, r, status, name, web.Page{Title: title, Nav: nav, Data: data})
}

// Form re-renders a form page after a failed submit, with field errors when
// err is a validation error.
func (p *Pages) Form(w http.ResponseWriter, r *http.Request, name, title, nav string, data any, err error) {
	status := common.HTTPStatusFromError(err)
	if common.WantsJSON(r) {
		p.Error(w, r, err)
		return
	}
	page := web.Page{Title: title, Nav: nav, Data: data, Error: common.Message(err)}
	var v *common.ValidationError
	if errors.As(err, &v) {
		page.Fields = v.Fields
		page.Error = "Please fix the highlighted fields."
	}
	if status >= http.StatusInternalServerError {
		p.log.Error("Form submit failed", zap.String("page", name), zap.Error(err))
	}
	p.render(w, r, status, name, page)
}

// Error renders err as an error page, or as {"error": ...} for JSON callers.
func (p *Pages) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError && !errors.Is(err, common.ErrUpstream) {
		p.log.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	if common.WantsJSON(r) {
		var v *common.ValidationError
		if errors.As(err, &v) {
			common.RespondWithJSON(w, status, map[string]any{"error": common.Message(err), "fields": v.Fields})
			return
		}
		common.RespondWithError(w, status, common.Message(err))
		return
	}
	p.render(w, r, status, "error", web.Page{
		Title: http.StatusText(status),
		Error: common.Message(err),
		Data:  ErrorPage{Status: status},
	})
}

// Redirect finishes a form post. JSON callers get payload instead.
func (p *Pages) Redirect(w http.ResponseWriter, r *http.Request, to string, payload any) {
	if common.WantsJSON(r) {
		common.RespondWithJSON(w, http.StatusOK, payload)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, page web.Page) {
	if common.WantsJSON(r) {
		common.RespondWithJSON(w, status, page.Data)
		return
	}
	session := middleware.GetSessionFromContext(r.Context())
	page.Session = session
	page.Flashes = p.sessions.PopFlashes(r.Context(), session)
	page.CSRFField = csrf.TemplateField(r)
	p.view.HTML(w, status, name, page)
}

// readBody decodes a JSON body into dst, or parses a form post and reports
// false so the caller copies r.Form into dst.
func readBody(r *http.Request, dst any) (bool, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := r.ParseForm(); err != nil {
			return false, common.Errorf("invalid form body: %w", common.ErrBadRequest)
		}
		return false, nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return true, common.Errorf("invalid request payload: %w", common.ErrBadRequest)
	}
	return true, nil
}

// localPath keeps redirect targets on this site.
func localPath(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
