// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public pages.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"shapecount/internal/scanner"
	"shapecount/internal/ui"
)

//go:embed templates/public/*.html
var publicFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title    string         // Page title for <title> tag
	Section  string         // Active menu entry (e.g., "topic", "scanner")
	Layout   ui.Layout      // Element ids the page renders
	Menu     *ui.Menu       // nil when the layout has no menu
	Dropdown *ui.Dropdown   // nil when the layout has no dropdown
	Content  template.HTML  // Rendered lesson document, if any
	Data     map[string]any // Page-specific data
}

// NewPageData wires the chrome controllers for layout.
func NewPageData(title, section string, layout ui.Layout) *PageData {
	return &PageData{
		Title:    title,
		Section:  section,
		Layout:   layout,
		Menu:     layout.MenuFor(),
		Dropdown: layout.DropdownFor(),
	}
}

// SolveData is passed to the solve_result fragment.
type SolveData struct {
	Outcome scanner.Outcome
	Preview template.HTML
}

// Renderer handles template parsing and execution for public pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists templates rendered without the base layout.
var standaloneTemplates = map[string]bool{
	"solve_result": true,
}

// New creates a Renderer by parsing all page templates from the embedded
// filesystem. Each page template is paired with the base layout.
// When devMode is true, pages turn on HTMX request logging.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			// css marks controller-generated inline styles as safe. The
			// values come from fixed strings in package ui.
			"css": func(s string) template.CSS {
				return template.CSS(s)
			},
			"isDev": func() bool {
				return devMode
			},
		},
	}

	entries, err := publicFS.ReadDir("templates/public")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		var parseErr error
		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(
				publicFS, "templates/public/"+name,
			)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
				publicFS, "templates/public/base.html", "templates/public/"+name,
			)
		}
		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}

		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full page or an HTMX partial, depending on the request
// headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok || standaloneTemplates[name] {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	execName := "base.html"
	if isHTMX(r) {
		execName = "content"
	}
	rn.write(w, tmpl, execName, data)
}

// Fragment renders a standalone template such as solve_result.
func (rn *Renderer) Fragment(w http.ResponseWriter, name string, data any) {
	tmpl, ok := rn.templates[name]
	if !ok || !standaloneTemplates[name] {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}
	rn.write(w, tmpl, name+".html", data)
}

// write buffers execution so a template error never produces half a page.
func (rn *Renderer) write(w http.ResponseWriter, tmpl *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := executeTemplate(&buf, tmpl, name, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
