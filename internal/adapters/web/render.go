package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"add":  func(a, b float64) float64 { return a + b },
	"sub":  func(a, b float64) float64 { return a - b },
	"half": func(a float64) float64 { return a / 2 },
}

// Renderer writes the dashboard in three parts so the page head and spinner
// can be flushed before a slow fetch completes.
type Renderer struct{ t *template.Template }

func NewRenderer() (*Renderer, error) {
	t, err := template.New("dashboard").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{t: t}, nil
}

// Start writes the document head, search form and, while loading, the spinner.
func (r *Renderer) Start(w io.Writer, p Page) error { return r.t.ExecuteTemplate(w, "start", p) }

// Result writes the error banner or the cards, chart and table, and hides the spinner.
func (r *Renderer) Result(w io.Writer, p Page) error { return r.t.ExecuteTemplate(w, "result", p) }

func (r *Renderer) End(w io.Writer) error { return r.t.ExecuteTemplate(w, "end", nil) }

// Page renders a whole document in one go.
func (r *Renderer) Page(w io.Writer, p Page) error {
	if err := r.Start(w, p); err != nil {
		return err
	}
	if err := r.Result(w, p); err != nil {
		return err
	}
	return r.End(w)
}

// Assets serves the embedded stylesheet; mount it under /static/.
func Assets() http.Handler {
	sub, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
