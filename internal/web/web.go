// Package web renders the HTML pages and HTMX partials from embedded
// templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

// Renderer holds the parsed template set.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
}

var funcs = template.FuncMap{
	"money": func(symbol string, v decimal.Decimal) string {
		return symbol + " " + v.StringFixed(2)
	},
	"date": func(v any) string {
		switch t := v.(type) {
		case time.Time:
			return t.Format("02 Jan 2006")
		case *time.Time:
			if t == nil {
				return ""
			}
			return t.Format("02 Jan 2006")
		}
		return ""
	},
	"month": func(t time.Time) string {
		return t.Format("Jan 2006")
	},
	"monthValue": func(t time.Time) string {
		return t.Format("2006-01")
	},
	"title": titleCase,
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// NewRenderer parses the embedded templates. Each page template is parsed
// against the shared layout; partials stand alone so HTMX responses carry
// no chrome.
func NewRenderer() (*Renderer, error) {
	partials, err := template.New("partials").Funcs(funcs).
		ParseFS(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing partials: %w", err)
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template)
	for _, e := range entries {
		if e.IsDir() || e.Name() == "layout.html" {
			continue
		}
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+e.Name(), "templates/partials/*.html")
		if err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", e.Name(), err)
		}
		pages[e.Name()] = t
	}
	return &Renderer{pages: pages, partials: partials}, nil
}

// Page renders a full page template inside the layout.
func (r *Renderer) Page(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// Partial renders a bare partial template.
func (r *Renderer) Partial(w io.Writer, name string, data any) error {
	return r.partials.ExecuteTemplate(w, name, data)
}
