package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"expensetracker/internal/notify"
)

// Template names. Partials are defined with {{define}} inside their files.
const (
	PageTemplate          = "index.html"
	ListTemplate          = "expense_list"
	SummaryTemplate       = "summary"
	FormTemplate          = "expense_form"
	NotificationsTemplate = "notifications"
)

type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses templates/*.html from fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"deletePrompt": func() string { return DeletePrompt },
		"label":        label,
	}).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, name := range []string{PageTemplate, ListTemplate, SummaryTemplate, FormTemplate, NotificationsTemplate} {
		if t.Lookup(name) == nil {
			return nil, fmt.Errorf("template %q not defined", name)
		}
	}
	return &Renderer{tmpl: t}, nil
}

func (r *Renderer) Page(w io.Writer, m Model) error {
	return r.execute(w, PageTemplate, m)
}

func (r *Renderer) List(w io.Writer, l ListView) error {
	return r.execute(w, ListTemplate, l)
}

func (r *Renderer) Summary(w io.Writer, s SummaryView) error {
	return r.execute(w, SummaryTemplate, s)
}

func (r *Renderer) Form(w io.Writer, f FormState) error {
	return r.execute(w, FormTemplate, f)
}

func (r *Renderer) Notifications(w io.Writer, ns []notify.Notification) error {
	return r.execute(w, NotificationsTemplate, ns)
}

// execute renders into a buffer first so a failing template never leaves a
// half-written fragment behind.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// label turns a category value into its option text, e.g. "food" -> "Food".
func label(v fmt.Stringer) string {
	s := v.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
