// Package cli holds the tourquery commands and the composition root that wires
// configuration, drivers and transports together.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/travellive/tourquery/internal/config"
	"github.com/travellive/tourquery/internal/logger"
)

type app struct {
	env        string
	configPath string
	logLevel   string
	cfg        config.Config
}

// NewRootCmd builds the tourquery command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tourquery",
		Short: "Semantic search over travel tour packages",
		Long: `tourquery answers free-text travel interests with the closest tour packages
from a vector-indexed document store.

Example usage:
  tourquery serve                          # HTTP API on the configured port
  tourquery search -q "beach week" -k 5    # One-off search, Markdown output
  tourquery search -q "alps" --json        # Structured tour records
  tourquery mcp                            # MCP tool server over stdio`,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
	}

	root.PersistentFlags().StringVar(&a.env, "env", config.GetEnv(), "environment, selects config/<env>.yaml")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (overrides --env lookup)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override: debug, info, warn, error")

	root.AddCommand(a.serveCmd(), a.searchCmd(), a.mcpCmd(), versionCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) loadConfig(_ *cobra.Command, _ []string) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(a.env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// newLogger builds the process logger. The flag wins over the config level.
func (a *app) newLogger(env string) (*zap.Logger, error) {
	level := a.cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	l, err := logger.NewLogger(env, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}
