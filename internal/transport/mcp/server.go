// Package mcp exposes tour search as a Model Context Protocol tool over stdio.
package mcp

import (
	"context"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/travellive/tourquery/internal/domain/search/mode"
	toursuc "github.com/travellive/tourquery/internal/usecase/tours"
	"github.com/travellive/tourquery/internal/version"
)

// ServerName is the MCP server name.
const ServerName = "tourquery"

// TourSearcher runs a tour search.
type TourSearcher interface {
	Search(ctx context.Context, raw string, k int, m mode.Mode) (toursuc.Result, error)
}

// Server wraps the MCP server with the tour search use case.
type Server struct {
	mcp      *server.MCPServer
	tours    TourSearcher
	defaultK int
	maxK     int
	logger   *zap.Logger
}

// NewServer creates an MCP server with the search_tours tool registered.
func NewServer(tours TourSearcher, defaultK, maxK int, logger *zap.Logger) *Server {
	if defaultK < 1 {
		defaultK = toursuc.DefaultK
	}
	if maxK < defaultK {
		maxK = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mcp: server.NewMCPServer(ServerName, version.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		tours:    tours,
		defaultK: defaultK,
		maxK:     maxK,
		logger:   logger,
	}
	s.mcp.AddTool(searchToursTool(defaultK, maxK), s.handleSearchTours)
	return s
}

// Serve runs the server over the given streams until ctx is done or stdin closes.
func (s *Server) Serve(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	if err := stdio.Listen(ctx, stdin, stdout); err != nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}
