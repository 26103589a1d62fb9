package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"taskhunt_web/internal/domain/model"
	"time"

	"github.com/gosimple/slug"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Raw HTML in descriptions is escaped: WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Page is what every template receives.
type Page struct {
	Title     string
	Nav       string
	Session   *model.Session
	Flashes   []model.Flash
	CSRFField template.HTML
	Error     string
	Fields    map[string]string
	Data      any
}

type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

// Pages lists the templates under templates/ rendered inside layout.html.
var Pages = []string{
	"signin", "signup_hunter", "board", "task_new", "task_detail",
	"applicants", "hunter", "profile", "error",
}

func NewRenderer(log *zap.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages)), log: log}
	for _, name := range Pages {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tpl
	}
	return r, nil
}

// HTML renders page name with status. The page is buffered so a template
// failure still yields a clean 500.
func (r *Renderer) HTML(w http.ResponseWriter, status int, name string, p Page) {
	tpl, ok := r.pages[name]
	if !ok {
		r.log.Error("Unknown template", zap.String("page", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		r.log.Error("Template render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// StaticHandler serves the embedded stylesheet and assets under prefix.
func StaticHandler(prefix string) http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
}

var funcs = template.FuncMap{
	"markdown": Markdown,
	"slug":     slug.Make,
	"tagName":  TagName,
	"deadline": FormatDeadline,
	"isPO":     func(s *model.Session) bool { return s != nil && s.Role == model.RolePO },
	"isHunter": func(s *model.Session) bool { return s != nil && s.Role == model.RoleHunter },
	"signedIn": func(s *model.Session) bool { return s.HasToken() },
	"hasTag": func(tags []string, tag string) bool {
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
		return false
	},
	"deref": func(v any) any {
		switch p := v.(type) {
		case *string:
			if p != nil {
				return *p
			}
		case *int:
			if p != nil {
				return *p
			}
		case *float64:
			if p != nil {
				return *p
			}
		case *model.TaskStatus:
			if p != nil {
				return string(*p)
			}
		}
		return ""
	},
}

// Markdown renders a task description.
func Markdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// TagName turns a tag constant into a label: "WEB_DEVELOPMENT" → "Web Development".
func TagName(tag string) string {
	words := strings.Split(strings.ToLower(tag), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// FormatDeadline renders a marketplace deadline as a date. Unparseable values
// are shown as sent.
func FormatDeadline(s string) string {
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}
