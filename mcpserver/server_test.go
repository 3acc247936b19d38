package mcpserver

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/snippetlab/verifier/config"
	"github.com/snippetlab/verifier/harness"
)

func testServerConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Transport: "stdio",
			HTTPPort:  8080,
		},
		Sandbox: config.SandboxConfig{
			TimeoutMs:      5000,
			MaxSourceBytes: 65536,
		},
		Logging: config.LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
	}
}

func TestNewMCPServer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := testServerConfig()

	runner, err := harness.New(cfg, logger)
	require.NoError(t, err)

	server, err := New(cfg, logger, runner)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, cfg, server.config)
	assert.Equal(t, logger, server.logger)
	assert.Equal(t, runner, server.runner)
	assert.NotNil(t, server.mcpServer)
}

// Test tool result encoding without needing to create complex request
// structs, since we can't easily instantiate external library types in
// tests
func TestJSONToolResult(t *testing.T) {
	result, err := jsonToolResult(harness.RunResult{
		AllPassed: true,
		Results: []harness.TestResult{
			{Passed: true, Input: []any{1, 2}, ExpectedOutput: 3, ActualOutput: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	assert.Equal(t, true, decoded["allPassed"])
	assert.NotEmpty(t, decoded["results"])
}
