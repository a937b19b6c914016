// Package theme is the page-template collaborator: it turns page models
// into markup and owns the shared stylesheet. The build pipeline never
// constructs markup itself.
package theme

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/blogsmith/internal/site"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static/style.css
var stylesheet []byte

// Options tunes the theme.
type Options struct {
	// CustomBackground, when set, is also emitted as palette data under
	// assets/ so client-side theme toggling can pick it up.
	CustomBackground string
}

// Theme renders pages with html/template.
type Theme struct {
	tmpl *template.Template
	opts Options
}

// New parses the embedded templates.
func New(opts Options) (*Theme, error) {
	tmpl := template.New("theme").Funcs(template.FuncMap{
		"raw": func(s string) template.HTML { return template.HTML(s) },
	})
	tmpl, err := tmpl.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse theme templates: %w", err)
	}
	return &Theme{tmpl: tmpl, opts: opts}, nil
}

// RenderPage renders the template matching the model's page kind.
func (t *Theme) RenderPage(m *site.PageModel) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, string(m.Kind)+".tmpl", m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteAssets writes the stylesheet and optional palette data.
func (t *Theme) WriteAssets(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "style.css"), stylesheet, 0o644); err != nil {
		return err
	}
	if t.opts.CustomBackground != "" {
		palette, err := json.Marshal(map[string]string{"background": t.opts.CustomBackground})
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, "palette.json"), palette, 0o644); err != nil {
			return err
		}
	}
	return nil
}
