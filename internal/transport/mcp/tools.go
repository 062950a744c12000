package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/travellive/tourquery/internal/domain"
	"github.com/travellive/tourquery/internal/domain/search/mode"
	"github.com/travellive/tourquery/internal/domain/tour"
)

// ToolSearchTours is the name of the tour search tool.
const ToolSearchTours = "search_tours"

func searchToursTool(defaultK, maxK int) mcp.Tool {
	return mcp.Tool{
		Name:        ToolSearchTours,
		Description: "Find travel tour packages semantically similar to a free-text interest description",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What the traveller is looking for, e.g. 'a week of beaches in Thailand'",
				},
				"k": map[string]any{
					"type":        "integer",
					"description": "Maximum number of tours to return",
					"default":     defaultK,
					"minimum":     1,
					"maximum":     maxK,
				},
				"format": map[string]any{
					"type":        "string",
					"description": "structured returns JSON tour records, markdown a prose digest",
					"enum":        []string{string(mode.Structured), string(mode.Markdown)},
					"default":     string(mode.Structured),
				},
			},
			Required: []string{"query"},
		},
	}
}

type structuredResult struct {
	Query string           `json:"query"`
	Tours []tour.Projected `json:"tours"`
}

// handleSearchTours handles the search_tours tool invocation. Search failures are
// reported as tool errors carrying only the sanitized message and hint.
func (s *Server) handleSearchTours(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}

	query, ok := args["query"].(string)
	if !ok {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	m, ok := mode.Parse(getStringDefault(args, "format", ""))
	if !ok {
		return mcp.NewToolResultError(`format must be "structured" or "markdown"`), nil
	}

	k := min(max(getIntDefault(args, "k", s.defaultK), 1), s.maxK)

	ctx, usage := domain.WithSearchUsage(ctx)
	res, err := s.tours.Search(ctx, query, k, m)
	if err != nil {
		return s.toolError(err), nil
	}
	s.logger.Debug("search_tours",
		zap.Int("k", k), zap.String("format", string(m)),
		zap.Int("results", len(res.Documents)), zap.Int("embedding_tokens", usage.EmbeddingTokens))

	if m == mode.Markdown {
		return mcp.NewToolResultText(res.Markdown), nil
	}

	tours := res.Tours
	if tours == nil {
		tours = []tour.Projected{}
	}
	out, err := json.MarshalIndent(structuredResult{Query: res.Query, Tours: tours}, "", "  ")
	if err != nil {
		return nil, err //nolint:wrapcheck // protocol-level failure
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) toolError(err error) *mcp.CallToolResult {
	var se *domain.SearchError
	if !errors.As(err, &se) {
		s.logger.Error("search_tours failed", zap.Error(err))
		return mcp.NewToolResultError("internal error")
	}

	s.logger.Warn("search_tours failed", zap.String("code", domain.Code(err)), zap.Error(err))
	msg := se.Message()
	if hint := se.Hint(); hint != "" {
		msg += "\n" + hint
	}
	return mcp.NewToolResultError(msg)
}

// getIntDefault extracts an integer parameter with a default value.
func getIntDefault(args map[string]any, key string, defaultValue int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value.
func getStringDefault(args map[string]any, key, defaultValue string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return defaultValue
}
