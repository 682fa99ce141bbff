// Package web holds the embedded backoffice templates and static assets and
// renders pages for gin.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin/render"
	"github.com/iancoleman/strcase"
)

//go:embed all:templates
var templateFiles embed.FS

//go:embed all:static
var staticFiles embed.FS

// shared holds the templates parsed into every page.
var shared = []string{"templates/layout.html", "templates/partials.html"}

// Static returns the embedded static assets.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("web: static assets: %v", err))
	}

	return http.FS(sub)
}

// Renderer renders one template set per page. It implements gin's
// render.HTMLRender so handlers can call c.HTML(status, "exchange_list", data).
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page under templates/pages together with the
// layout and partials.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFiles, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing page templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}

	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")

		tmpl, err := template.New(name).Funcs(Funcs()).ParseFS(templateFiles, slices.Concat(shared, []string{file})...)
		if err != nil {
			return nil, fmt.Errorf("parsing page %q: %w", name, err)
		}

		r.pages[name] = tmpl
	}

	return r, nil
}

// Has reports whether a page is known.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		panic(fmt.Sprintf("web: unknown page %q", name))
	}

	return render.HTML{Template: tmpl, Name: "layout", Data: data}
}

// Funcs returns the template helpers.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatTime": FormatTime,
		"deref":      Deref,
		"kebab":      strcase.ToKebab,
		"label":      Label,
	}
}

// FormatTime formats a record timestamp for tables. The zero time is a dash.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Local().Format("Jan 2, 2006 15:04")
}

// Deref shows an optional value, or a dash when it is absent.
func Deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}

	return *s
}

// Label turns an identifier such as external_user_id into "External user id".
func Label(s string) string {
	words := strcase.ToDelimited(s, ' ')
	if words == "" {
		return ""
	}

	runes := []rune(words)
	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}
