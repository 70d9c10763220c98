package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

// Renderer renders the dashboard page
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the page template
func NewRenderer() *Renderer {
	t := template.Must(template.New("dashboard").Parse(pageTemplate))
	return &Renderer{tmpl: t}
}

// Render writes page to w. Output is buffered so a template error never produces a half page.
func (r *Renderer) Render(w io.Writer, page *Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
