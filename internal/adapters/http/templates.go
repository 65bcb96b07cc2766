package http

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/masterblog/core/internal/domain/entities"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "base.layout.html"

var pageFiles = []string{"index.html", "add.html", "update.html"}

// HTMLData is the view model handed to every page
type HTMLData struct {
	Title     string
	Path      string
	FormError string
	Form      PostForm
	Post      *entities.Post
	Posts     []entities.Post
}

// PostForm holds the submitted (or pre-filled) form values
type PostForm struct {
	Author  string
	Title   string
	Content string
}

var functions = template.FuncMap{
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}

// TemplateRenderer implements echo.Renderer with one parsed set per page
type TemplateRenderer struct {
	pages map[string]*template.Template
}

// NewTemplateRenderer parses the page templates from dir, or from the embedded
// copies when dir is empty.
func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	var fsys fs.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(templatesFS, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	r := &TemplateRenderer{pages: make(map[string]*template.Template, len(pageFiles))}
	for _, page := range pageFiles {
		ts, err := template.New(page).Funcs(functions).ParseFS(fsys, layoutFile, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}

		partials, err := fs.Glob(fsys, "*.partial.html")
		if err != nil {
			return nil, err
		}
		if len(partials) > 0 {
			if ts, err = ts.ParseFS(fsys, partials...); err != nil {
				return nil, fmt.Errorf("failed to parse partials for %s: %w", page, err)
			}
		}

		r.pages[page] = ts
	}

	return r, nil
}

// Render executes the layout of the named page. echo buffers the output.
func (r *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	ts, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	if d, ok := data.(*HTMLData); ok && c != nil {
		d.Path = c.Request().URL.Path
	}

	if err := ts.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// StaticFiles returns the embedded stylesheet directory
func StaticFiles() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}
