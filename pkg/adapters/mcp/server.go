package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// ParseResult is the output of the parse_url tool. State is partial when
// Error is set.
type ParseResult struct {
	State domain.Tree `json:"state" jsonschema_description:"The application state encoded by the URL"`
	Path  string      `json:"path" jsonschema_description:"The canonical URL of the state"`
	Error string      `json:"error,omitempty" jsonschema_description:"Why the URL could not be fully parsed"`
}

// PathResult is the output of the generate_path tool.
type PathResult struct {
	Path string `json:"path" jsonschema_description:"The canonical URL of the state"`
}

// ResolveResult is the output of the resolve_dispatcher tool.
type ResolveResult struct {
	Key      string `json:"key" jsonschema_description:"The requested state key"`
	Resolved string `json:"resolved,omitempty" jsonschema_description:"The registered key whose handlers would run"`
	Matched  bool   `json:"matched" jsonschema_description:"False when dispatch would warn about the key"`
}

type parseArgs struct {
	URL string `mapstructure:"url"`
}

type pathArgs struct {
	State string `mapstructure:"state"`
}

type resolveArgs struct {
	Key string `mapstructure:"key"`
}

// Server exposes a Router's codec and dispatch table as an MCP server.
// It never dispatches: every tool is read-only.
type Server struct {
	router    *wayfinder.Router
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(router *wayfinder.Router, opts ...Option) *Server {
	s := &Server{
		router:    router,
		mcpServer: server.NewMCPServer("wayfinder-mcp", strings.TrimSpace(wayfinder.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: parse_url
	parseTool := mcp.NewTool("parse_url",
		mcp.WithDescription("Parse a console URL into its application state."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Absolute console URL or path below the base URL")),
		mcp.WithOutputSchema[ParseResult](),
	)
	s.mcpServer.AddTool(parseTool, mcp.NewStructuredToolHandler(s.handleParse))

	// TOOL: generate_path
	pathTool := mcp.NewTool("generate_path",
		mcp.WithDescription("Generate the canonical console URL of an application state."),
		mcp.WithString("state", mcp.Required(), mcp.Description("JSON object of the application state")),
		mcp.WithOutputSchema[PathResult](),
	)
	s.mcpServer.AddTool(pathTool, mcp.NewStructuredToolHandler(s.handleGeneratePath))

	// TOOL: resolve_dispatcher
	resolveTool := mcp.NewTool("resolve_dispatcher",
		mcp.WithDescription("Find the registered dispatcher a dotted state key resolves to."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Dotted state key, e.g. gui.inspector.id")),
		mcp.WithOutputSchema[ResolveResult](),
	)
	s.mcpServer.AddTool(resolveTool, mcp.NewStructuredToolHandler(s.handleResolve))
}

func (s *Server) handleParse(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ParseResult, error) {
	var in parseArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return ParseResult{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if in.URL == "" {
		return ParseResult{}, errors.New("url is required")
	}
	state, err := s.router.GenerateState(ctx, in.URL, false)
	out := ParseResult{State: state, Path: s.router.GeneratePathFor(state)}
	if err != nil {
		out.Error = err.Error()
	}
	return out, nil
}

func (s *Server) handleGeneratePath(_ context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (PathResult, error) {
	var in pathArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return PathResult{}, fmt.Errorf("invalid arguments: %w", err)
	}
	var state domain.Tree
	if err := json.Unmarshal([]byte(in.State), &state); err != nil {
		s.logger.Warn("MCP generate_path: invalid state", "err", err)
		return PathResult{}, fmt.Errorf("state must be a JSON object: %w", err)
	}
	return PathResult{Path: s.router.GeneratePathFor(state)}, nil
}

func (s *Server) handleResolve(_ context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ResolveResult, error) {
	var in resolveArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return ResolveResult{}, fmt.Errorf("invalid arguments: %w", err)
	}
	resolved, ok := s.router.Registry().Resolve(in.Key)
	return ResolveResult{Key: in.Key, Resolved: resolved, Matched: ok}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: wayfinder://grammar
	s.mcpServer.AddResource(mcp.NewResource("wayfinder://grammar", "URL Grammar",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource("wayfinder://grammar", s.router.Grammar())
	})

	// EXPOSE: wayfinder://dispatchers
	s.mcpServer.AddResource(mcp.NewResource("wayfinder://dispatchers", "Registered Dispatcher Keys",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource("wayfinder://dispatchers", s.router.Registry().Keys())
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
