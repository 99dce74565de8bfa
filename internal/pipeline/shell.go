package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrShellRender indicates the HTML shell template failed.
var ErrShellRender = errors.New("HTML shell rendering failed")

// ShellData fills the document shell template.
type ShellData struct {
	Title      string
	Style      string // raw CSS
	ImageWidth string // CSS length, e.g. "6.87in"
	Body       string // trusted HTML fragment from the converter
}

// Shell wraps HTML fragments into a complete printable page.
type Shell struct {
	tmpl *template.Template
}

// NewShell parses an html/template using the .Title, .Style, .ImageWidth and
// .Body fields of ShellData.
func NewShell(source string) (*Shell, error) {
	tmpl, err := template.New("document").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShellRender, err)
	}
	return &Shell{tmpl: tmpl}, nil
}

// Render executes the shell. Style and ImageWidth are inserted as CSS,
// Body as HTML; Title is escaped.
func (s *Shell) Render(ctx context.Context, data ShellData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	view := struct {
		Title      string
		Style      template.CSS
		ImageWidth template.CSS
		Body       template.HTML
	}{
		Title:      data.Title,
		Style:      template.CSS(sanitizeCSS(data.Style)),      // #nosec G203 -- stylesheet is an application asset
		ImageWidth: template.CSS(sanitizeCSS(data.ImageWidth)), // #nosec G203 -- constant geometry
		Body:       template.HTML(data.Body),                   // #nosec G203 -- goldmark output without raw HTML
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrShellRender, err)
	}
	return buf.String(), nil
}

// sanitizeCSS keeps CSS from closing its <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
