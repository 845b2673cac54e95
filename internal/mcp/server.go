package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/yr/internal/history"
	"github.com/joescharf/yr/internal/models"
	"github.com/joescharf/yr/internal/reviewer"
	"github.com/joescharf/yr/internal/store"
)

// Server exposes the reviewer and the review history as MCP tools.
type Server struct {
	recorder *history.Recorder
	version  string
}

// NewServer creates the MCP server wrapper.
func NewServer(rec *history.Recorder, version string) *Server {
	return &Server{recorder: rec, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("yr", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.reviewTool())
	srv.AddTool(s.historyTool())
	srv.AddTool(s.infoTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

type reviewOut struct {
	ID        string `json:"id,omitempty"`
	Year      int64  `json:"year"`
	Review    string `json:"review"`
	Special   bool   `json:"special"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toReviewOut(r *models.Review) reviewOut {
	out := reviewOut{
		ID:      r.ID,
		Year:    r.Year,
		Review:  r.Result,
		Special: r.Special,
		Source:  string(r.Source),
	}
	if !r.CreatedAt.IsZero() {
		out.CreatedAt = r.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// yearArg converts a JSON-decoded argument to a value the reviewer accepts.
// JSON has a single number type, so integral numbers count as integers and
// are clamped to the int64 range.
func yearArg(v any) any {
	x, ok := v.(float64)
	if !ok || x != math.Trunc(x) {
		return v
	}
	switch {
	case x >= math.MaxInt64:
		return int64(math.MaxInt64)
	case x <= math.MinInt64:
		return int64(math.MinInt64)
	}
	return int64(x)
}

// yr_review
func (s *Server) reviewTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("yr_review",
		mcp.WithDescription(fmt.Sprintf("Review a calendar year. The year must be an integer no later than %d. Returns JSON with the review text and whether it is a fixed review.", reviewer.Present)),
		mcp.WithNumber("year", mcp.Required(), mcp.Description("Year to review, e.g. 1984")),
	)
	return tool, s.handleReview
}

func (s *Server) handleReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.GetArguments()["year"]
	if !ok {
		return mcp.NewToolResultError("missing required argument: year"), nil
	}

	rec, err := s.recorder.Review(ctx, yearArg(raw), models.ReviewSourceMCP)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", reviewer.KindOf(err), err)), nil
	}
	return jsonResult(toReviewOut(rec))
}

// yr_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("yr_history",
		mcp.WithDescription("List recorded reviews, newest first."),
		mcp.WithNumber("year", mcp.Description("Only reviews of this year")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of reviews (default 20)")),
		mcp.WithString("source", mcp.Description("Only reviews from this source: cli, api, or mcp")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.recorder.Store()
	if st == nil {
		return mcp.NewToolResultError("review history is disabled"), nil
	}

	source, err := models.ParseSourceFilter(request.GetString("source", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filter := store.ReviewListFilter{
		Source: source,
		Limit:  request.GetInt("limit", 20),
	}
	if raw, ok := request.GetArguments()["year"]; ok {
		year, ok := yearArg(raw).(int64)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid year: %v", raw)), nil
		}
		filter.Year = &year
	}

	reviews, err := st.ListReviews(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reviews: %v", err)), nil
	}

	out := make([]reviewOut, len(reviews))
	for i, r := range reviews {
		out[i] = toReviewOut(r)
	}
	return jsonResult(out)
}

// yr_info
func (s *Server) infoTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("yr_info",
		mcp.WithDescription("Describe the reviewer: the present year, the default reviews and the years with fixed reviews."),
	)
	return tool, s.handleInfo
}

func (s *Server) handleInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	specials := make(map[string]string)
	for y, text := range reviewer.Specials() {
		specials[strconv.Itoa(y)] = text
	}
	return jsonResult(map[string]any{
		"present":  reviewer.Present,
		"defaults": reviewer.Defaults(),
		"specials": specials,
		"history":  s.recorder.Recording(),
	})
}
