// Package api provides the REST interface for the puzzle game server.
//
// Endpoints:
//
//	POST   /api/sessions                      create a session (optional level_id)
//	GET    /api/sessions                      list sessions (sort, order, limit)
//	GET    /api/sessions/{id}                 session info
//	DELETE /api/sessions/{id}                 delete a session
//	GET    /api/sessions/{id}/state           current game state
//	POST   /api/sessions/{id}/move            one player turn {direction}
//	POST   /api/sessions/{id}/shoot           fire adjacent rayguns
//	POST   /api/sessions/{id}/tick            advance the ray clock one tile
//	POST   /api/sessions/{id}/reset           reset the current level
//	POST   /api/sessions/{id}/switch-level    jump to another level {level_id}
//	GET    /api/levels                        level catalog
//	GET    /api/health                        health check
//	GET    /ws?session={id}                   WebSocket state push
//
// Ray Clock:
//
// A successful shoot starts a per-session pump goroutine that advances the
// rays one tile every 120ms and pushes a "tick" over the WebSocket, so
// connected clients see rays travel. Clients without a socket can drive the
// clock themselves through the tick endpoint; the two compose, every
// advancement is exactly one tile either way.
//
// All responses are JSON. Errors use {"error": "..."} with a matching HTTP
// status code.
package api
