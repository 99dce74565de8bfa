package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/go-certpress"
)

// generateFlags holds the offline job inputs.
type generateFlags struct {
	roster  string
	results string
	output  string
}

func (a *app) newGenerateCmd() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one job from local spreadsheets",
		Long: "Run one job from local spreadsheets and print the PDF path.\n" +
			"With --output the PDF is also copied to that path.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			in, err := readInput(f)
			if err != nil {
				return err
			}

			logger := a.logger()
			gen, err := a.env.NewGenerator(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = gen.Close() }()

			ctx, stop := a.env.Context()
			defer stop()

			res, err := gen.Generate(ctx, in)
			if err != nil {
				return err
			}

			out := res.PDFPath
			if f.output != "" {
				if err := copyFile(res.PDFPath, f.output); err != nil {
					return err
				}
				out = f.output
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d certificates)\n", out, len(res.Records))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.roster, "roster", "r", "", "roster spreadsheet (XLSX or CSV)")
	fs.StringVarP(&f.results, "results", "b", "", "results spreadsheet (XLSX or CSV)")
	fs.StringVarP(&f.output, "output", "o", "", "copy the PDF to this path")
	return cmd
}

// readInput loads both spreadsheets. A flag left empty yields a nil upload,
// which the generator rejects as missing input.
func readInput(f generateFlags) (certpress.Input, error) {
	var in certpress.Input
	var err error
	if in.Roster, err = readUpload(f.roster); err != nil {
		return in, err
	}
	if in.Results, err = readUpload(f.results); err != nil {
		return in, err
	}
	return in, nil
}

func readUpload(path string) (*certpress.Upload, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided input file
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &certpress.Upload{Name: filepath.Base(path), Data: data}, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) // #nosec G304 -- generator output
	if err != nil {
		return fmt.Errorf("%w: %w", certpress.ErrFileSystem, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) // #nosec G304 -- user-provided output path
	if err != nil {
		return fmt.Errorf("%w: %w", certpress.ErrFileSystem, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", certpress.ErrFileSystem, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("%w: %w", certpress.ErrFileSystem, err)
	}
	return nil
}
