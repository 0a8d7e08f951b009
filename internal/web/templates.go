// Package web renders the Welog pages. Every page is a server-rendered form
// flow: mutations answer with a redirect so the next GET re-fetches from the
// API, and failures re-render the form with the submitted input kept.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"Welog/internal/blogapi"
)

//go:embed templates static
var assetsFS embed.FS

// Templates holds one parsed template set per page. Each set is the shared
// layout and partials plus the page's own "content" block.
type Templates struct {
	pages map[string]*template.Template
}

// NewTemplates parses the embedded templates. links resolves image URLs for
// covers and avatars.
func NewTemplates(links ImageLinks) (*Templates, error) {
	funcs := template.FuncMap{
		"ago": func(t blogapi.Time) string {
			return RelativeTime(t.Time, time.Now())
		},
		"date": func(t blogapi.Time) string {
			if t.IsZero() {
				return "Unknown"
			}
			return t.Format("January 2, 2006")
		},
		"image": links.URL,
		"plain": func(s string) string {
			return strings.Join(strings.Fields(stripTags(s)), " ")
		},
	}

	pages, err := fs.Glob(assetsFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	t := &Templates{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(path.Base(page)).Funcs(funcs).ParseFS(assetsFS,
			"templates/layout.html", "templates/partials/*.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		t.pages[path.Base(page)] = tmpl
	}
	return t, nil
}

// Render renders a named page with the provided data. The page is executed
// into a buffer first so a failing template never leaves half a page behind.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded stylesheet and icons under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(assetsFS, "static")
	if err != nil {
		panic(fmt.Sprintf("embedded static directory missing: %v", err))
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
