package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/alnah/go-certpress"
	"github.com/alnah/go-certpress/internal/config"
	"github.com/alnah/go-certpress/internal/records"
	"github.com/alnah/go-certpress/internal/server"
)

// EnvConfig names the config file when --config is not given.
const EnvConfig = "CERTPRESS_CONFIG"

// jobRunner is what the commands need from a Generator.
type jobRunner interface {
	server.Generator
	Close() error
}

var _ jobRunner = (*certpress.Generator)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout    io.Writer
	Stderr    io.Writer
	LookupEnv func(string) (string, bool)

	// NewGenerator builds the job runner from the effective config.
	NewGenerator func(cfg *config.Config, logger *log.Logger) (jobRunner, error)

	// Context is the parent of every command context.
	Context func() (context.Context, context.CancelFunc)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		LookupEnv:    os.LookupEnv,
		NewGenerator: newGenerator,
		Context: func() (context.Context, context.CancelFunc) {
			return notifyContext(context.Background())
		},
	}
}

// newGenerator maps the config sections onto Generator options.
func newGenerator(cfg *config.Config, logger *log.Logger) (jobRunner, error) {
	opts := []certpress.Option{
		certpress.WithWorkspace(cfg.Workspace.IntakeDir, cfg.Workspace.OutputDir),
		certpress.WithTemplatePath(cfg.Template.Path),
		certpress.WithColumns(columnsFrom(cfg.Columns)),
		certpress.WithLogger(logger),
		certpress.WithWorkers(cfg.Render.Workers),
		certpress.WithAssetPath(cfg.Assets.BasePath),
	}
	if cfg.Conversion.Timeout > 0 {
		opts = append(opts, certpress.WithTimeout(cfg.Conversion.Timeout))
	}
	return certpress.NewGenerator(opts...)
}

func columnsFrom(c config.ColumnsConfig) records.Columns {
	return records.Columns{
		PersonName: c.PersonName,
		GroupID:    c.GroupID,
		GroupName:  c.GroupName,
		ResultFlag: c.ResultFlag,
		Remark1:    c.Remark1,
		Remark2:    c.Remark2,
		PassValue:  c.PassValue,
	}
}
