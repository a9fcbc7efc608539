package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"sync/atomic"

	"github.com/starford/finboard/internal/format"
	"github.com/starford/finboard/internal/markdown"
)

//go:embed templates
var embedded embed.FS

// Templates is the parsed page set. It can be re-parsed while serving.
type Templates struct {
	fsys  fs.FS
	pages atomic.Pointer[map[string]*template.Template]
}

// NewTemplates parses the embedded pages, or the pages under dir when dir is
// set. dir must have the same layout as the embedded tree: layout.html,
// states.html and pages/*.html.
func NewTemplates(dir string) (*Templates, error) {
	var fsys fs.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	t := &Templates{fsys: fsys}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload re-parses every page. On failure the previous set stays active.
func (t *Templates) Reload() error {
	names, err := fs.Glob(t.fsys, "pages/*.html")
	if err != nil {
		return fmt.Errorf("web: list pages: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("web: no pages found")
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(t.fsys, "layout.html", "states.html", name)
		if err != nil {
			return fmt.Errorf("web: parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = tmpl
	}
	for _, name := range Pages {
		if _, ok := pages[name]; !ok {
			return fmt.Errorf("web: page %s missing", name)
		}
	}
	t.pages.Store(&pages)
	return nil
}

// Pages lists every page the handlers render. A template set lacking one is
// rejected and the previous set stays active.
var Pages = []string{
	"home", "bonds", "bond", "funds", "etfs", "recommend_bond", "recommend_fund",
	"recommend_etf", "news", "ecos", "flow", "flow_step", "flow_result", "guide",
	"login", "error401", "error500", "notfound",
}

// Render executes page with data and writes it with status.
func (t *Templates) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := (*t.pages.Load())[page]
	if !ok {
		return fmt.Errorf("web: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("web: render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"number":   format.Number,
	"percent":  format.Percent,
	"date":     format.Date,
	"datetime": format.DateTime,
	"won":      format.Won,
	"change":   func(s string) string { return string(format.Change(s)) },
	"markdown": markdown.HTML,
	"float":    format.Float,
	"floatptr": format.FloatPtr,
}
