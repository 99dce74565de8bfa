package certpress

import (
	"context"
	"log"
	"time"

	"github.com/alnah/go-certpress/internal/certificate"
	"github.com/alnah/go-certpress/internal/document"
	"github.com/alnah/go-certpress/internal/records"
	"github.com/alnah/go-certpress/internal/sheet"
)

// Upload is one spreadsheet handed to a job.
type Upload struct {
	Name string // client file name, informational only
	Data []byte // XLSX or CSV bytes
}

func (u *Upload) empty() bool {
	return u == nil || len(u.Data) == 0
}

// Input holds the two spreadsheets of a job. Both are required.
type Input struct {
	Roster  *Upload // group IDs and names
	Results *Upload // one row per candidate
}

// Result describes the artifacts of a completed job.
type Result struct {
	RunID        string
	PDFPath      string
	DocumentPath string
	Records      []records.QualifyingRecord
	Artifacts    []certificate.Artifact
	Document     document.Document
}

// Stored upload names in the intake folder, without extension.
const (
	RosterFileName  = "MS6"
	ResultsFileName = "BMS"
)

// Defaults used when options are not given.
const (
	defaultTimeout      = 30 * time.Second
	DefaultIntakeDir    = "uploads"
	DefaultOutputDir    = "gens"
	DefaultTemplatePath = "certificate-template.jpg"
)

// Option configures a Generator.
type Option func(*Generator)

// generatorConfig holds values resolved into collaborators by NewGenerator.
type generatorConfig struct {
	intakeDir    string
	outputDir    string
	templatePath string
	assetPath    string
	columns      records.Columns
	timeout      time.Duration
	workers      int
}

// WithWorkspace sets the intake and output folders.
func WithWorkspace(intakeDir, outputDir string) Option {
	return func(g *Generator) {
		g.cfg.intakeDir = intakeDir
		g.cfg.outputDir = outputDir
	}
}

// WithTemplatePath sets the certificate background image.
func WithTemplatePath(path string) Option {
	return func(g *Generator) {
		g.cfg.templatePath = path
	}
}

// WithColumns sets the spreadsheet header mapping.
func WithColumns(cols records.Columns) Option {
	return func(g *Generator) {
		g.cfg.columns = cols
	}
}

// WithLogger sets the destination for progress and diagnostic lines.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithState shares a JobState with status readers such as the HTTP server.
func WithState(s *JobState) Option {
	return func(g *Generator) {
		if s != nil {
			g.state = s
		}
	}
}

// WithTimeout sets the PDF conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("certpress: WithTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.timeout = d
	}
}

// WithWorkers sets the number of parallel renders; 0 picks ResolveWorkers(0).
func WithWorkers(n int) Option {
	return func(g *Generator) {
		g.cfg.workers = n
	}
}

// WithAssetPath sets a directory whose styles/ and templates/ override the
// embedded print assets.
func WithAssetPath(path string) Option {
	return func(g *Generator) {
		g.cfg.assetPath = path
	}
}

// Collaborators, replaceable in tests.

type certificateRenderer interface {
	Render(ctx context.Context, recs []records.QualifyingRecord, resolve certificate.Resolver) ([]certificate.Artifact, error)
}

var (
	_ certificateRenderer = (*certificate.Renderer)(nil)
	_ sheet.Loader        = sheet.AutoLoader{}
)

func withLoader(l sheet.Loader) Option {
	return func(g *Generator) { g.loader = l }
}

func withRenderer(r certificateRenderer) Option {
	return func(g *Generator) { g.renderer = r }
}

func withConverter(c FormatConverter) Option {
	return func(g *Generator) { g.converter = c }
}

func withBuilder(newBuilder func() document.DocumentBuilder) Option {
	return func(g *Generator) { g.newBuilder = newBuilder }
}
