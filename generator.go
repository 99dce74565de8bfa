package certpress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/alnah/go-certpress/internal/assets"
	"github.com/alnah/go-certpress/internal/certificate"
	"github.com/alnah/go-certpress/internal/document"
	"github.com/alnah/go-certpress/internal/records"
	"github.com/alnah/go-certpress/internal/sheet"
	"github.com/alnah/go-certpress/internal/workspace"
)

const uploadPermissions = 0o640

// Generator runs certificate jobs against one workspace.
// Create with NewGenerator, call Generate per job and Close when done.
// Generate is not meant to run concurrently with itself or Reset: both
// share the workspace folders.
type Generator struct {
	cfg        generatorConfig
	logger     *log.Logger
	state      *JobState
	ws         *workspace.Workspace
	loader     sheet.Loader
	renderer   certificateRenderer
	converter  FormatConverter
	newBuilder func() document.DocumentBuilder
}

// NewGenerator builds a Generator. The template is read and the print
// assets are loaded up front, so configuration mistakes surface here
// rather than in the first job. The browser starts lazily.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg: generatorConfig{
			intakeDir:    DefaultIntakeDir,
			outputDir:    DefaultOutputDir,
			templatePath: DefaultTemplatePath,
			columns:      records.DefaultColumns(),
			timeout:      defaultTimeout,
		},
		logger: log.New(io.Discard, "", 0),
		loader: sheet.AutoLoader{},
		newBuilder: func() document.DocumentBuilder {
			return document.NewMarkdownBuilder()
		},
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.state == nil {
		g.state = NewJobState()
	}
	g.ws = workspace.New(g.cfg.intakeDir, g.cfg.outputDir, g.logger)

	if g.renderer == nil {
		r, err := certificate.NewRenderer(g.cfg.templatePath,
			certificate.WithWorkers(ResolveWorkers(g.cfg.workers)),
			certificate.WithLogger(g.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
		}
		g.renderer = r
	}

	if g.converter == nil {
		var loader assets.AssetLoader
		if g.cfg.assetPath != "" {
			resolver, err := assets.NewAssetResolver(g.cfg.assetPath)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
			}
			loader = resolver
		}
		c, err := NewPDFConverter(g.cfg.timeout, loader)
		if err != nil {
			return nil, err
		}
		g.converter = c
	}

	return g, nil
}

// State returns the JobState the Generator reports to.
func (g *Generator) State() *JobState {
	return g.state
}

// Generate runs one job: store the uploads, build the records, render the
// certificates, assemble the document and convert it to PDF.
// Missing uploads are rejected before the job starts and leave the state
// untouched. Any later failure moves the state to PhaseFailed; files
// written so far stay in the workspace until Reset.
func (g *Generator) Generate(ctx context.Context, in Input) (res *Result, err error) {
	if in.Roster.empty() {
		return nil, fmt.Errorf("%w: roster spreadsheet", ErrMissingInput)
	}
	if in.Results.empty() {
		return nil, fmt.Errorf("%w: results spreadsheet", ErrMissingInput)
	}

	runID := g.state.Begin()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrRenderFailure, r)
		}
		if err != nil {
			res = nil
			g.state.Set(PhaseFailed)
			g.logger.Printf("Error generating certificates: %v", err)
		}
	}()

	res = &Result{RunID: runID}

	if err := g.ws.EnsureAll(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}

	if err := g.storeUpload(RosterFileName, in.Roster); err != nil {
		return nil, err
	}
	if err := g.storeUpload(ResultsFileName, in.Results); err != nil {
		return nil, err
	}

	recs, err := g.buildRecords(in)
	if err != nil {
		return nil, err
	}
	res.Records = recs
	for _, c := range records.Summary(recs) {
		g.logger.Printf("Group %s: %d certificate(s)", c.GroupID, c.Count)
	}

	resolve := func(name string) (string, error) {
		return g.ws.Resolve(workspace.Output, name)
	}
	res.Artifacts, err = g.renderer.Render(ctx, recs, resolve)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}

	g.state.Set(PhaseGeneratingDocument)
	res.DocumentPath, res.Document, err = g.assemble(res.Artifacts)
	if err != nil {
		return nil, err
	}

	g.state.Set(PhaseGeneratingPDF)
	res.PDFPath, err = g.converter.Convert(ctx, res.DocumentPath)
	if err != nil {
		if !errors.Is(err, ErrConversionFailed) {
			err = fmt.Errorf("%w: %w", ErrConversionFailed, err)
		}
		return nil, err
	}

	g.state.Set(PhaseCompleted)
	return res, nil
}

// storeUpload keeps a copy of an upload in the intake folder as
// <base>.xlsx or <base>.csv depending on its content.
func (g *Generator) storeUpload(base string, u *Upload) error {
	name := base + "." + string(sheet.Detect(u.Data))
	path, err := g.ws.Resolve(workspace.Intake, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	if err := os.WriteFile(path, u.Data, uploadPermissions); err != nil {
		return fmt.Errorf("%w: saving %s: %v", ErrFileSystem, name, err)
	}
	return nil
}

func (g *Generator) buildRecords(in Input) ([]records.QualifyingRecord, error) {
	roster, err := g.loader.Load(in.Roster.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: roster: %w", ErrMalformedInput, err)
	}
	results, err := g.loader.Load(in.Results.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: results: %w", ErrMalformedInput, err)
	}

	recs, err := records.Build(roster, results, g.cfg.columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return recs, nil
}

// assemble lays the artifacts out in record order and saves the document.
// Colliding records reference the same file and are placed once per record.
func (g *Generator) assemble(artifacts []certificate.Artifact) (string, document.Document, error) {
	images := make([]string, len(artifacts))
	for i, a := range artifacts {
		images[i] = a.Path
	}

	b := g.newBuilder()
	doc := document.Assemble(images, b, g.logger)

	path, err := g.ws.Resolve(workspace.Output, document.FileName)
	if err != nil {
		return "", document.Document{}, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	if err := b.Save(path); err != nil {
		return "", document.Document{}, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	return path, doc, nil
}

// Reset clears the output folder, then the intake folder. Entries that
// cannot be deleted are logged and skipped. Reset does not stop a running job.
func (g *Generator) Reset() error {
	if err := g.ws.ClearAll(); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	return nil
}

// OutputDir returns the absolute output folder, or the configured path when
// it cannot be made absolute.
func (g *Generator) OutputDir() string {
	root, _ := g.ws.Root(workspace.Output)
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

// Close releases the browser.
func (g *Generator) Close() error {
	if g.converter != nil {
		return g.converter.Close()
	}
	return nil
}
