package certpress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-certpress/internal/assets"
	"github.com/alnah/go-certpress/internal/document"
	"github.com/alnah/go-certpress/internal/fileutil"
	"github.com/alnah/go-certpress/internal/hints"
	"github.com/alnah/go-certpress/internal/pipeline"
)

// FormatConverter turns an assembled document into its portable form.
type FormatConverter interface {
	// Convert writes the portable file next to documentPath and returns its path.
	Convert(ctx context.Context, documentPath string) (string, error)
	Close() error
}

var (
	_ FormatConverter               = (*PDFConverter)(nil)
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
)

// PDFExtension is appended to the document's base name.
const PDFExtension = ".pdf"

const pdfPermissions = 0o644

// PDFConverter prints assembled Markdown documents to PDF with headless Chrome.
// Create with NewPDFConverter and Close when done.
type PDFConverter struct {
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	shell         *pipeline.Shell
	style         string
	renderer      pdfRenderer
}

// NewPDFConverter loads the print stylesheet and HTML shell from loader
// (embedded assets when nil). The browser is not started until the first
// conversion.
func NewPDFConverter(timeout time.Duration, loader assets.AssetLoader) (*PDFConverter, error) {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	style, err := loader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading style: %w", err)
	}
	source, err := loader.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", err)
	}
	shell, err := pipeline.NewShell(source)
	if err != nil {
		return nil, err
	}

	return &PDFConverter{
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		shell:         shell,
		style:         style,
		renderer:      newRodRenderer(timeout),
	}, nil
}

// Convert renders documentPath to <dir>/<base>.pdf. Every failure wraps
// ErrConversionFailed.
func (c *PDFConverter) Convert(ctx context.Context, documentPath string) (string, error) {
	html, err := c.ToHTML(ctx, documentPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	defer cleanup()

	pdf, err := c.renderer.RenderFromFile(ctx, tmpPath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w%s", ErrConversionFailed, err, hints.ForTimeout())
		}
		return "", fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	out := pdfPath(documentPath)
	if err := os.WriteFile(out, pdf, pdfPermissions); err != nil { // #nosec G306 -- served to clients
		return "", fmt.Errorf("%w: writing %s: %v", ErrConversionFailed, out, err)
	}
	return out, nil
}

// ToHTML builds the printable page for a document without starting a browser.
func (c *PDFConverter) ToHTML(ctx context.Context, documentPath string) (string, error) {
	raw, err := os.ReadFile(documentPath) // #nosec G304 -- path comes from the workspace
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}

	md := c.preprocessor.PreprocessMarkdown(ctx, string(raw))
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := c.htmlConverter.ToHTML(ctx, md)
	if err != nil {
		return "", err
	}

	absDoc, err := filepath.Abs(documentPath)
	if err != nil {
		return "", err
	}
	body, err = pipeline.RewriteImagePaths(body, filepath.Dir(absDoc))
	if err != nil {
		return "", fmt.Errorf("rewriting image paths: %w", err)
	}

	return c.shell.Render(ctx, pipeline.ShellData{
		Title:      baseName(documentPath),
		Style:      c.style,
		ImageWidth: fmt.Sprintf("%gin", document.ImageWidth),
		Body:       body,
	})
}

// Close releases the browser.
func (c *PDFConverter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

func pdfPath(documentPath string) string {
	return filepath.Join(filepath.Dir(documentPath), baseName(documentPath)+PDFExtension)
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
