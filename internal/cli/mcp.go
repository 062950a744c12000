package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpTransport "github.com/travellive/tourquery/internal/transport/mcp"
)

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the search_tours tool over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := a.newLogger("cli")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			rt, err := newRuntime(a.cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.WithoutCancel(cmd.Context())) }()

			if a.cfg.Search.Warmup {
				go rt.warm(cmd.Context())
			}

			logger.Info("Starting MCP server on stdio")
			srv := mcpTransport.NewServer(rt.tours, a.cfg.Search.DefaultK, a.cfg.Search.MaxK, logger)
			if err := srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				logger.Error("MCP server stopped", zap.Error(err))
				return err //nolint:wrapcheck // already wrapped
			}
			return nil
		},
	}
}
