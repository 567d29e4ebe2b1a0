// Package websocket provides real-time state push for the puzzle game.
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections, grouped by session ID. Each client connection gets
// a read and a write goroutine; disconnection triggers cleanup.
//
// Clients send commands over the REST API, never over the socket. The socket
// carries state pushes only: a "state_update" after every command and a
// "tick" for every ray-clock advancement, so clients can animate rays
// travelling tile by tile without polling.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run()
//
//	// in the HTTP layer
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, state)
package websocket
