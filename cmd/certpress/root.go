package main

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-certpress/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config string
	quiet  bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "config name or file (env "+EnvConfig+")")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress log output")
}

// app carries state shared by the subcommands of one invocation.
type app struct {
	env   *Environment
	flags commonFlags
}

func newRootCmd(env *Environment) *cobra.Command {
	a := &app{env: env}

	root := &cobra.Command{
		Use:           "certpress",
		Short:         "Generate printable completion certificates from spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	a.flags.register(root.PersistentFlags())

	root.AddCommand(
		a.newServeCmd(),
		a.newGenerateCmd(),
		a.newResetCmd(),
		a.newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// usageArgs tags cobra argument errors as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}

// loadConfig resolves defaults, then the config file, then the environment.
func (a *app) loadConfig() (*config.Config, error) {
	name := a.flags.config
	if name == "" {
		if v, ok := a.env.LookupEnv(EnvConfig); ok {
			name = v
		}
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(a.env.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger writes timestamped lines to stderr unless --quiet is set.
func (a *app) logger() *log.Logger {
	if a.flags.quiet {
		return log.New(io.Discard, "", 0)
	}
	return log.New(a.env.Stderr, "", log.LstdFlags)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "certpress %s\n", Version)
		},
	}
}
