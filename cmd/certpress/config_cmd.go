package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-certpress/internal/config"
)

func (a *app) newConfigCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after defaults, the config file and CERTPRESS_* variables are applied.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := config.Format(format)
			if f != config.FormatYAML && f != config.FormatTOML {
				return fmt.Errorf("%w: --format must be yaml or toml, got %q", ErrUsage, format)
			}

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			out, err := config.Encode(f, cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatYAML), "output format: yaml or toml")
	return cmd
}
