package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete uploaded and generated files",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			gen, err := a.env.NewGenerator(cfg, a.logger())
			if err != nil {
				return err
			}
			defer func() { _ = gen.Close() }()

			if err := gen.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Files deleted successfully")
			return nil
		},
	}
}
