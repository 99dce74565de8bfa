package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-certpress/internal/server"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger := a.logger()
			gen, err := a.env.NewGenerator(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := gen.Close(); cerr != nil {
					logger.Printf("closing browser: %v", cerr)
				}
			}()

			var access io.Writer = a.env.Stderr
			if a.flags.quiet {
				access = io.Discard
			}
			srv := server.New(gen, server.Config{
				CORSOrigins: cfg.Server.CORSOrigins,
				BodyLimit:   cfg.Server.BodyLimitMB << 20,
				Logger:      logger,
				AccessLog:   access,
			})

			ctx, stop := a.env.Context()
			defer stop()
			return serve(ctx, srv, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}

// serve runs srv until ctx is canceled or the listener fails.
func serve(ctx context.Context, srv *server.Server, addr string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
