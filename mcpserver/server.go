package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/snippetlab/verifier/config"
	"github.com/snippetlab/verifier/harness"
)

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	runner    *harness.Runner
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, runner *harness.Runner) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger,
		runner: runner,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.Int("sandbox.timeout_ms", s.config.Sandbox.TimeoutMs),
		zap.Int("sandbox.max_source_bytes", s.config.Sandbox.MaxSourceBytes),
		zap.Int("safety.rules", len(s.config.Safety.Rules)),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("snippet-verifier", "An in-process snippet verification sandbox")

	s.registerRunSnippetTestsTool()
	s.registerAnalyzeSnippetTool()

	return s, nil
}

// registerRunSnippetTestsTool registers the run_snippet_tests tool
func (s *MCPServer) registerRunSnippetTestsTool() {
	tool := mcp.Tool{
		Name:        "run_snippet_tests",
		Description: "Verify an annotated snippet against a set of input/expected-output test cases",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "The snippet source text, in the annotated dialect",
				},
				"test_cases": map[string]any{
					"type":        "string",
					"description": "Test cases as a YAML or JSON sequence of {input, expected_output, description}",
				},
				"function_name": map[string]any{
					"type":        "string",
					"description": "Explicit name of the callable under test (optional)",
				},
			},
			Required: []string{"code", "test_cases"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleRunSnippetTests)
}

// registerAnalyzeSnippetTool registers the analyze_snippet tool
func (s *MCPServer) registerAnalyzeSnippetTool() {
	tool := mcp.Tool{
		Name:        "analyze_snippet",
		Description: "Pre-flight safety analysis of a snippet; never executes it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "The snippet source text to analyze",
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleAnalyzeSnippet)
}

// handleRunSnippetTests handles the run_snippet_tests tool
func (s *MCPServer) handleRunSnippetTests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("snippet verification requested")

	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	casesRaw, err := request.RequireString("test_cases")
	if err != nil {
		return nil, fmt.Errorf("test_cases parameter is required: %w", err)
	}

	cases, err := harness.LoadCases([]byte(casesRaw))
	if err != nil {
		return nil, fmt.Errorf("invalid test_cases: %w", err)
	}

	functionName := request.GetString("function_name", "")

	s.logger.Info("running snippet tests",
		zap.Int("code_len", len(code)),
		zap.Int("cases", len(cases)),
		zap.String("function_name", functionName))

	result := s.runner.Run(ctx, code, cases, functionName)

	s.logger.Info("snippet verification completed",
		zap.Bool("all_passed", result.AllPassed),
		zap.Int("results", len(result.Results)))

	return jsonToolResult(result)
}

// handleAnalyzeSnippet handles the analyze_snippet tool
func (s *MCPServer) handleAnalyzeSnippet(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	analysis := s.runner.Analyze(code)

	s.logger.Info("snippet analyzed",
		zap.Bool("safe", analysis.Safe),
		zap.Int("issues", len(analysis.Issues)),
		zap.Int("warnings", len(analysis.Warnings)))

	return jsonToolResult(analysis)
}

// jsonToolResult marshals a payload into a text tool result
func jsonToolResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
