// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes
// the verification sandbox to editor/UI collaborators. It uses the
// mark3labs/mcp-go library to handle the protocol details and provides
// two tools: run_snippet_tests, which verifies a snippet against a set of
// test cases, and analyze_snippet, the non-executing pre-flight safety
// check.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, runner)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
