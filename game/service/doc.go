// Package service provides the business logic layer for the puzzle game.
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game
// operations. SessionManager handles session creation, retrieval, and
// lifecycle. LevelCatalog manages level loading and the built level set.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the game engine, providing session isolation and orchestration. Each
// session maintains its own engine instance with independent state. Player
// commands (move, shoot) come in through transports; the ray clock comes in
// through Tick, driven by the server's pump or called explicitly.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService := service.NewGameService(sessionMgr, levelMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "meadow")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, "up")
package service
