// Package mcp provides a Model Context Protocol interface for the Puzh
// puzzle game.
//
// The package is a thin client: every tool call is proxied to the REST API
// server, so the MCP process holds no game state of its own and can be
// restarted freely.
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - game_state: Get the current game state with an ASCII board
//   - move: Move the player one tile, resolving pushes and pulls
//   - shoot: Fire every raygun adjacent to the player
//   - tick: Advance in-flight rays by one tile
//   - reset_level: Restore the current level to its initial layout
//   - switch_level: Jump directly to another level
//   - create_session / get_session / list_sessions: Session management
//   - list_levels: List the level catalog with exits and raygun counts
//   - describe_tile: Detailed info about one grid tile
//   - game_instructions: Full rules text
//
// Ray Clock:
//
// After a shoot, player input stays locked until every ray resolves. Agents
// that connect over MCP do not receive the server's WebSocket tick events,
// so the tick tool lets them drive the ray clock explicitly: call it until
// the reported rays-in-flight count reaches zero.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
