package groups

import (
	"embed"
	"errors"
	"io"
	"io/fs"
	"os"

	template "github.com/goliatone/go-template"
)

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer renders the bundled groups.html page.
func NewTemplateRenderer() (Renderer, error) {
	return newRenderer(embeddedTemplates)
}

// NewTemplateRendererWithOverrides looks templates up in dir first and falls
// back to the bundled ones, so hosts can restyle the page without forking it.
// dir must contain a templates/ folder.
func NewTemplateRendererWithOverrides(dir string) (Renderer, error) {
	if dir == "" {
		return NewTemplateRenderer()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return newRenderer(overlayFS{os.DirFS(dir), embeddedTemplates})
}

func newRenderer(fsys fs.FS) (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(fsys),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}

// overlayFS serves a file from the first layer that has it.
type overlayFS []fs.FS

func (o overlayFS) Open(name string) (fs.File, error) {
	var firstErr error
	for _, layer := range o {
		f, err := layer.Open(name)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return nil, firstErr
}
