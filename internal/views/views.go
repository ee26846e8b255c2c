// Package views renders the HTML pages. Each page template is parsed
// together with the shared layout.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/EmpoweredVote/EV-Notepad/internal/utils"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

//go:embed templates/*.gohtml
var FS embed.FS

var pages = []string{
	"home",
	"signup",
	"login",
	"notepad_index",
	"notepad_create",
	"notepad_show",
	"notepad_edit",
	"profile_summary",
	"profile_edit",
	"error",
}

// BaseVM is embedded in every page's view model.
type BaseVM struct {
	Title      string
	IsLoggedIn bool
	CSRFField  template.HTML
	CSRFToken  string
	Flashes    []Flash
}

type Renderer struct {
	pages   map[string]*template.Template
	Flashes *Flasher
	log     *zap.Logger
}

func New(flashes *Flasher, log *zap.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"richtext": richText,
	}

	parsed := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New("layout").Funcs(funcs).ParseFS(FS,
			"templates/layout.gohtml",
			"templates/"+name+".gohtml",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		parsed[name] = t
	}

	return &Renderer{pages: parsed, Flashes: flashes, log: log}, nil
}

// Base builds the shared view model. It consumes pending flash messages, so
// call it before anything is written to w.
func (rd *Renderer) Base(w http.ResponseWriter, r *http.Request, title string) BaseVM {
	_, loggedIn := utils.GetUserIDFromContext(r.Context())

	flashes, err := rd.Flashes.Pop(w, r)
	if err != nil {
		rd.log.Warn("pop flashes", zap.Error(err))
	}

	return BaseVM{
		Title:      title,
		IsLoggedIn: loggedIn,
		CSRFField:  csrf.TemplateField(r),
		CSRFToken:  csrf.Token(r),
		Flashes:    flashes,
	}
}

// Render executes page into a buffer and writes it with status.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, ok := rd.pages[page]
	if !ok {
		rd.log.Error("unknown template", zap.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.log.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorData struct {
	BaseVM
	Status  int
	Message string
}

// Error renders the error page.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	rd.Render(w, r, status, "error", errorData{
		BaseVM:  rd.Base(w, r, http.StatusText(status)),
		Status:  status,
		Message: msg,
	})
}

// Redirect queues a flash message and redirects to url with 302.
func (rd *Renderer) Redirect(w http.ResponseWriter, r *http.Request, url, category, msg string) {
	if msg != "" {
		if err := rd.Flashes.Add(w, r, category, msg); err != nil {
			rd.log.Warn("add flash", zap.Error(err))
		}
	}
	http.Redirect(w, r, url, http.StatusFound)
}
