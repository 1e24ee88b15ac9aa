package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/agrilens/dashboard/web"
)

// ErrNoEngine is returned when rendering through a nil Engine.
var ErrNoEngine = errors.New("view: template engine not initialised")

var templateGlobs = []string{
	"templates/layouts/*.html",
	"templates/partials/*.html",
	"templates/pages/*.html",
}

// Engine renders the embedded dashboard pages.
type Engine struct {
	templates *template.Template
}

// TemplateData is the value every page template receives.
type TemplateData struct {
	Title       string
	CurrentPath string
	GeneratedAt time.Time
	Data        any
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"formatDate": formatDate,
	}).ParseFS(web.Templates, templateGlobs...)
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	return &Engine{templates: tpl}, nil
}

// Render writes the named page with status 200.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes the page into a buffer and only then writes the
// status, so a failing template never leaves a half-written response.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil || e.templates == nil {
		return ErrNoEngine
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("view: render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("02 Jan 2006 15:04 UTC")
}
