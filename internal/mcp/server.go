// Package mcp implements a Model Context Protocol server exposing the
// remediation pipeline as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/recheck/internal/config"
	"github.com/Sumatoshi-tech/recheck/internal/observability"
	"github.com/Sumatoshi-tech/recheck/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "recheck"

	// toolCount is the expected number of registered tools.
	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
type ServerDeps struct {
	// Config drives scanner, checker and ledger construction. Nil uses
	// defaults rooted at the current directory.
	Config *config.Config

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional run metrics recorder. Nil disables telemetry.
	Metrics *observability.RunMetrics
}

// Server wraps the MCP SDK server with remediation tool registrations.
type Server struct {
	inner   *mcpsdk.Server
	mu      sync.RWMutex
	tools   []string
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.RunMetrics
}

// NewServer creates a new MCP server with all remediation tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default(".")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		inner:   inner,
		tools:   make([]string, 0, toolCount),
		cfg:     cfg,
		logger:  logger,
		metrics: deps.Metrics,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds all remediation MCP tools to the server.
func (s *Server) registerTools() {
	s.registerScanTool()
	s.registerRemediateTool()
	s.registerProgressTool()
}

func (s *Server) registerScanTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameScan,
		Description: scanToolDescription,
	}, s.handleScan)

	s.trackTool(ToolNameScan)
}

func (s *Server) registerRemediateTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameRemediate,
		Description: remediateToolDescription,
	}, s.handleRemediate)

	s.trackTool(ToolNameRemediate)
}

func (s *Server) registerProgressTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameProgress,
		Description: progressToolDescription,
	}, s.handleProgress)

	s.trackTool(ToolNameProgress)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// Tool description constants.
const (
	scanToolDescription = "List source files carrying the type-check suppression directive. " +
		"Accepts optional module and file filters."

	remediateToolDescription = "Run the remediation pipeline on one suppressed file: " +
		"collect diagnostics, apply matching transforms, re-verify, and report the outcome. " +
		"Set dry_run to preview without writing."

	progressToolDescription = "Report remediation progress from the durable ledger: " +
		"per-module fixed/total counts and run history."
)
