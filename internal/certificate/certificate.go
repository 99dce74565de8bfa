// Package certificate draws one JPEG per record onto a background template.
//
// The template is read once and decoded again for every record, so overlays
// never leak between certificates. Records render in parallel; when several
// records share a file name only the last one is drawn.
package certificate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-certpress/internal/fileutil"
	"github.com/alnah/go-certpress/internal/records"
)

// MissingText replaces any empty overlay value.
const MissingText = "N/A"

// Extension is the artifact file extension.
const Extension = ".jpg"

const filePermissions = 0o644

// Sentinel errors for rendering.
var (
	ErrTemplate = errors.New("certificate template unusable")
	ErrRender   = errors.New("certificate rendering failed")
)

// Layout fixes where and how overlay text is drawn.
type Layout struct {
	Name      image.Point // person name
	GroupName image.Point
	GroupID   image.Point // "<padded id> : "
	Sequence  image.Point

	FontSize float64
	Color    color.Color
	Stroke   int // outline radius in pixels
	Quality  int // JPEG quality
}

// DefaultLayout matches the printed certificate template.
func DefaultLayout() Layout {
	return Layout{
		Name:      image.Pt(815, 1500),
		GroupName: image.Pt(815, 1700),
		GroupID:   image.Pt(2575, 490),
		Sequence:  image.Pt(2850, 490),
		FontSize:  60,
		Color:     DefaultColor,
		Stroke:    2,
		Quality:   95,
	}
}

// Artifact is the image file produced for one record.
type Artifact struct {
	Record int    // index into the records slice
	Name   string // file name inside the output folder
	Path   string
}

// ArtifactName is the output file name for a record: the trimmed, sanitized
// person name plus Extension. Records with equal trimmed names share a file.
func ArtifactName(rec records.QualifyingRecord) string {
	return fileutil.SanitizeFileName(orMissing(rec.PersonName)) + Extension
}

// Resolver maps an artifact file name to its output path.
type Resolver func(name string) (string, error)

// Option configures a Renderer.
type Option func(*Renderer)

// WithWorkers caps parallel renders. n <= 0 keeps the default of 1.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the destination for per-certificate log lines.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLayout overrides DefaultLayout.
func WithLayout(l Layout) Option {
	return func(r *Renderer) { r.layout = l }
}

// Renderer draws certificates from one template.
type Renderer struct {
	template []byte
	font     *sfnt.Font
	layout   Layout
	workers  int
	logger   *log.Logger
}

// NewRenderer reads the template at path and checks that it decodes.
func NewRenderer(path string, opts ...Option) (*Renderer, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- template path comes from config
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return NewRendererFromBytes(data, opts...)
}

// NewRendererFromBytes builds a Renderer from an in-memory template.
func NewRendererFromBytes(template []byte, opts ...Option) (*Renderer, error) {
	if _, _, err := image.DecodeConfig(bytes.NewReader(template)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing font: %v", ErrTemplate, err)
	}

	r := &Renderer{
		template: template,
		font:     f,
		layout:   DefaultLayout(),
		workers:  1,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render writes one certificate per distinct artifact name and returns an
// Artifact for every record, in record order. The first failure cancels the
// remaining work; files already written are left in place.
func (r *Renderer) Render(ctx context.Context, recs []records.QualifyingRecord, resolve Resolver) ([]Artifact, error) {
	artifacts := make([]Artifact, len(recs))
	last := make(map[string]int, len(recs))
	for i, rec := range recs {
		name := ArtifactName(rec)
		path, err := resolve(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRender, err)
		}
		artifacts[i] = Artifact{Record: i, Name: name, Path: path}
		last[name] = i
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := range recs {
		if last[artifacts[i].Name] != i {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.renderOne(recs[i], artifacts[i].Path); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrRender, artifacts[i].Name, err)
			}
			r.logger.Printf("Generated certificate: %s", artifacts[i].Path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// RenderOne draws a single record into a new JPEG.
func (r *Renderer) RenderOne(rec records.QualifyingRecord, w io.Writer) error {
	c, err := r.canvas()
	if err != nil {
		return err
	}
	r.drawRecord(c, rec)
	return c.Encode(w)
}

func (r *Renderer) renderOne(rec records.QualifyingRecord, path string) error {
	var buf bytes.Buffer
	if err := r.RenderOne(rec, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), filePermissions)
}

func (r *Renderer) canvas() (*rgbaCanvas, error) {
	face, err := newFace(r.font, r.layout.FontSize)
	if err != nil {
		return nil, err
	}
	return newCanvas(r.template, face, r.layout)
}

func (r *Renderer) drawRecord(c ImageCanvas, rec records.QualifyingRecord) {
	groupName := MissingText
	if rec.HasGroupName {
		groupName = orMissing(rec.GroupName)
	}

	c.DrawText(orMissing(rec.PersonName), r.layout.Name)
	c.DrawText(groupName, r.layout.GroupName)
	c.DrawText(orMissing(rec.GroupIDPadded)+" : ", r.layout.GroupID)
	c.DrawText(orMissing(rec.SequenceInGroupPadded), r.layout.Sequence)
}

func orMissing(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return MissingText
	}
	return s
}
