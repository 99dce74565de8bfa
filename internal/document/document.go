// Package document lays certificate images out two per page.
//
// The assembled document is Markdown: one image paragraph per certificate and
// a thematic break ("***") after every pair. The print stylesheet turns each
// break into a page break.
package document

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-certpress/internal/fileutil"
)

// FileName is the assembled document's name in the output folder.
const FileName = "certificates.md"

// Page geometry, in inches. Images sit flush against the page except for the
// left margin.
const (
	PageWidth    = 8.5
	PageHeight   = 11.0
	MarginTop    = 0.0
	MarginBottom = 0.0
	MarginLeft   = 0.82
	MarginRight  = 0.0
	ImageWidth   = 6.87
)

// PerPage is the number of certificates placed on one page.
const PerPage = 2

// ErrSave indicates the document could not be written.
var ErrSave = errors.New("failed to save document")

// DocumentBuilder authors a paged document of images.
type DocumentBuilder interface {
	AddImage(path string)
	AddPageBreak()
	Save(path string) error
}

// Page is one visual page of the assembled document.
type Page struct {
	Slots []string // image paths actually placed, in order
	Break bool     // a page break follows the page
}

// Document is the layout produced by Assemble.
type Document struct {
	Pages []Page
}

// ImageCount returns the number of placed images.
func (d Document) ImageCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Slots)
	}
	return n
}

// Assemble places images PerPage at a time in the given order and ends every
// page, including a final partial one, with a page break. Paths whose file
// does not exist are skipped and logged; the page still ends with a break.
func Assemble(images []string, b DocumentBuilder, logger *log.Logger) Document {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	var doc Document
	for start := 0; start < len(images); start += PerPage {
		end := min(start+PerPage, len(images))

		var page Page
		for _, path := range images[start:end] {
			if !fileutil.FileExists(path) {
				logger.Printf("File not found: %s", path)
				continue
			}
			b.AddImage(path)
			page.Slots = append(page.Slots, path)
		}

		b.AddPageBreak()
		page.Break = true
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

// MarkdownBuilder writes the document as CommonMark.
// Image references are made relative to the directory the document is
// saved in when possible.
type MarkdownBuilder struct {
	blocks []block
}

type block struct {
	image string // empty for a page break
}

// NewMarkdownBuilder creates an empty builder.
func NewMarkdownBuilder() *MarkdownBuilder {
	return &MarkdownBuilder{}
}

// AddImage implements DocumentBuilder.
func (m *MarkdownBuilder) AddImage(path string) {
	m.blocks = append(m.blocks, block{image: path})
}

// AddPageBreak implements DocumentBuilder.
func (m *MarkdownBuilder) AddPageBreak() {
	m.blocks = append(m.blocks, block{})
}

// Markdown renders the document with image paths relative to dir.
func (m *MarkdownBuilder) Markdown(dir string) string {
	var sb strings.Builder
	for _, b := range m.blocks {
		if b.image == "" {
			sb.WriteString("***\n\n")
			continue
		}
		fmt.Fprintf(&sb, "![](<%s>)\n\n", imageRef(b.image, dir))
	}
	return sb.String()
}

// Save implements DocumentBuilder.
func (m *MarkdownBuilder) Save(path string) error {
	content := m.Markdown(filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { // #nosec G306 -- output is shared with the browser
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	return nil
}

// imageRef returns path relative to dir with forward slashes, or the cleaned
// absolute path when it lives elsewhere. '%' is escaped so names such as
// "A%20B" survive URL unescaping as written.
func imageRef(path, dir string) string {
	ref := filepath.ToSlash(filepath.Clean(path))
	if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		ref = filepath.ToSlash(rel)
	}
	return strings.ReplaceAll(ref, "%", "%25")
}

var _ DocumentBuilder = (*MarkdownBuilder)(nil)
