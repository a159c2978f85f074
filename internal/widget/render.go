package widget

import (
	"embed"
	"html/template"
	"io"

	"quiz-widget/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer writes a view as a standalone HTML page. Option and action buttons
// are plain form posts, so the page works without scripts.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/widget.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, view models.View) error {
	return r.tmpl.ExecuteTemplate(w, "widget.html", view)
}
