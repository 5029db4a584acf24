// Package mcp exposes the toy robot board to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes one REST request
// against the api package, so the MCP surface always agrees with HTTP.
//
// MCP Tools:
//   - place: x, y and face
//   - rotate: direction LEFT or RIGHT
//   - move, report, remove: no arguments
//   - robot_instructions: board rules
//
// REST errors come back as tool errors carrying the API message, including
// per-field validation details.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode: feed each request body to HandleMessage
//	resp := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
