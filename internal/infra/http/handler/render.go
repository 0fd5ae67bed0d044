package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// Page templates. Each is parsed together with the shared layout.
const (
	PageList  = "list.html"
	PageLogin = "login.html"
)

// Renderer executes the console's page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout and every page from fsys, which must hold a
// templates/ directory.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageList, PageLogin} {
		tmpl, err := template.ParseFS(fsys, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes page with the given status. The page is executed into a
// buffer first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
