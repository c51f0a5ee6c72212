package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Page is the data a template executes with.
type Page struct {
	Method     string
	Path       string
	Query      url.Values
	Header     http.Header
	RemoteAddr string
	Now        time.Time
}

// Templates renders html/template files.
type Templates struct {
	now func() time.Time
}

// NewTemplates creates a template renderer.
func NewTemplates() *Templates {
	return &Templates{now: time.Now}
}

var funcs = template.FuncMap{
	"join":  strings.Join,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// Render parses file and executes it into w. Output is buffered so a template
// error produces an error instead of a truncated page.
func (t *Templates) Render(w http.ResponseWriter, r *http.Request, file string) error {
	tmpl, err := template.New(filepath.Base(file)).Funcs(funcs).ParseFiles(file)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", file, err)
	}

	page := Page{
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      r.URL.Query(),
		Header:     r.Header,
		RemoteAddr: r.RemoteAddr,
		Now:        t.now(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		return fmt.Errorf("execute template %s: %w", file, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err = buf.WriteTo(w)
	return err
}
