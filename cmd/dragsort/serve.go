package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dragsort/pkg/server"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		port int
		host string
		page string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP and WebSocket",
		Long: `Serve the configured board.

Each WebSocket client gets its own copy of the page. Metrics are
exposed on /metrics and a liveness probe on /healthz.

Examples:
  dragsort serve
  dragsort serve --port=8080
  dragsort serve --page=kanban.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if page != "" {
				cfg.Board.Page = page
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			sc, err := serverConfig(cfg, logger)
			if err != nil {
				return err
			}
			srv, err := server.New(sc)
			if err != nil {
				return err
			}

			printBanner()
			if cfg.Board.Page == "" {
				warn("No board.page configured, serving the demo board")
			}
			success("Listening on %s", cfg.URL())
			info("WebSocket: ws://%s/ws", cfg.Address())
			info("Metrics:   %smetrics", cfg.URL())
			fmt.Println()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from dragsort.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from dragsort.json)")
	cmd.Flags().StringVar(&page, "page", "", "Board page to serve (default from dragsort.json)")

	return cmd
}
