package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/puzhgame/puzh/game/engine"
	"github.com/puzhgame/puzh/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Puzh Puzzle Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Puzh Puzzle Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Push, pull, and transform objects on a 12x12 grid. Collect cheese (C), open
doors with keys, and travel between linked levels through exits.

AVAILABLE TOOLS:
- game_state: Get current game state as an ASCII board
- move: Single move (up/down/left/right)
- shoot: Fire every raygun adjacent to the player
- tick: Advance in-flight rays by one tile
- reset_level: Restore the current level, step counter rolls back
- switch_level: Jump directly to another level
- create_session / get_session / list_sessions: Session management
- list_levels: Level catalog
- describe_tile: Detailed info about one grid tile
- game_instructions: Full rules

IMPORTANT: After shoot, the player is locked until the rays resolve. Call
tick until rays_in_flight reaches 0, then keep playing.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionArg := map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with an optional starting level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the starting level (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionArg,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionArg,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one tile in a direction, pushing or pulling whatever the rules allow",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionArg,
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "shoot",
		Description: "Fire every raygun adjacent to the player. Player input is locked until the rays resolve; drive them with the tick tool.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionArg,
			},
			Required: []string{"session_id"},
		},
	}, c.handleShoot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance every in-flight ray by exactly one tile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionArg,
			},
			Required: []string{"session_id"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_level",
		Description: "Restore the current level to its initial layout. Pending cheese is forfeited and the step counter rolls back to the level entry.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionArg,
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "switch_level",
		Description: "Jump directly to another level, banking pending cheese",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionArg,
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the destination level",
				},
			},
			Required: []string{"session_id", "level_id"},
		},
	}, c.handleSwitchLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels with their exits",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get detailed information about one grid tile: its object, ground, exit, and whether the object can be pushed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionArg,
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column), 0-based",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row), 0-based",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeTile)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	levelID, _ := args["level_id"].(string)

	body := map[string]string{}
	if levelID != "" {
		body["level_id"] = levelID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		session.ID, session.StartLevel, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		level := s.StartLevel
		if s.GameState != nil {
			level = s.GameState.Level
		}
		fmt.Fprintf(&b, "- %s (Level: %s, Created: %s)\n",
			s.ID, level, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Session: %s\nStarted on: %s\nCreated: %s\n\n%s",
		session.ID, session.StartLevel,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	body := map[string]interface{}{"direction": direction}

	var result service.MoveResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "Moved %s\n", direction)
	} else {
		fmt.Fprintf(&b, "Move rejected: %s\n", result.Message)
	}
	for _, ev := range result.Events {
		fmt.Fprintf(&b, "Event: %s - %s\n", ev.Type, ev.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleShoot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.ShootResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/shoot", sessionID), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "Fired %d ray(s). Player input is locked until they resolve; use the tick tool.\n\n", result.RaysFired)
	} else {
		fmt.Fprintf(&b, "Nothing fired: %s\n\n", result.Message)
	}
	b.WriteString(formatGameState(result.GameState))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.TickResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/tick", sessionID), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rays in flight: %d\n", result.RaysInFlight)
	for _, ev := range result.Events {
		fmt.Fprintf(&b, "Event: %s - %s\n", ev.Type, ev.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSwitchLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	levelID, _ := args["level_id"].(string)

	body := map[string]string{"level_id": levelID}

	var state engine.GameState
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/switch-level", sessionID), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall("GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, lvl := range levels {
		fmt.Fprintf(&b, "• %s (%s)\n", lvl.Name, lvl.LevelID)
		if lvl.Description != "" {
			fmt.Fprintf(&b, "  %s\n", lvl.Description)
		}
		if len(lvl.Exits) > 0 {
			fmt.Fprintf(&b, "  Exits to: %s\n", strings.Join(lvl.Exits, ", "))
		}
		if lvl.Rayguns > 0 {
			fmt.Fprintf(&b, "  Rayguns: %d\n", lvl.Rayguns)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Puzh Puzzle Game - Complete Instructions

GAME OBJECTIVE:
Explore linked 12x12 levels, collect cheese, and solve push puzzles.

BOARD CHARACTERS:
  @  player          #  wall (immovable)   H  wall with holes (rays pass)
  R  rock (pushable) r  rope (drags along) S  soap (springs behind you)
  M  mirror          /  slope mirror       \  slope mirror
  T  tree            A  axe (chops trees)  C  cheese
  B  bunny (flees)   D  door               K  key (opens doors)
  G  raygun          s  sapling ground     ~  ice ground
  .  grass           *  ray in flight

MOVEMENT RULES:
- Moving into a pushable object pushes it; chains push as one unit. If the
  far end is blocked, nothing moves.
- A rope behind you is dragged along when you move away from it; rope chains
  pull link by link. Pushed objects never drag ropes.
- Soap cannot be pushed forward: it swaps behind the pusher instead.
- Objects pushed onto ice slide until they leave the ice or hit something.
- An axe pushed into a tree chops it. A key pushed into a door consumes both.
- Walking into cheese collects it. Cheese is banked when you leave the level
  and forfeited if you reset first.
- Saplings stepped on once grow into trees after being vacated.
- Bunnies flee from players in line of sight, one tile per turn.

RAYGUNS:
- Stand next to a raygun and shoot: a ray leaves the gun away from you, one
  tile per tick. Mirrors reflect rays; walls with holes let them through.
- When a ray hits an object, the gun's effect applies: swap with the
  shooter, duplicate onto the gun tile, or transform the target.
- Plain walls absorb rays with no effect. Rays leaving the board are gone.
- While rays are in flight, all player input is rejected.

LEVELS:
- Exit tiles with a matching move direction carry you to the linked level.
- reset_level restores the current level; your step counter rolls back to
  when you entered it.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	xf, _ := args["x"].(float64)
	yf, _ := args["y"].(float64)
	x, y := int(xf), int(yf)

	var state engine.GameState
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tile := state.Grid.At(engine.Vec{X: x, Y: y})
	if tile == nil {
		return mcp.NewToolResultError(fmt.Sprintf("(%d,%d) is outside the 12x12 board", x, y)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tile at (%d, %d):\n", x, y)
	if tile.Object != nil {
		fmt.Fprintf(&b, "Object: %s (char %q)\n", tile.Object.Kind, string(kindChar(tile.Object.Kind)))
		fmt.Fprintf(&b, "Pushable: %v\n", tile.Object.Kind.CanMove())
		if tile.Object.Gun != nil {
			fmt.Fprintf(&b, "Gun effect: %s\n", tile.Object.Gun.Effect)
			if tile.Object.Gun.Target != nil {
				fmt.Fprintf(&b, "Gun target: %s\n", tile.Object.Gun.Target.Kind)
			}
		}
	} else {
		b.WriteString("Object: none\n")
	}
	switch tile.Ground.Type {
	case engine.Sapling:
		fmt.Fprintf(&b, "Ground: sapling (stepped on: %v)\n", tile.Ground.SteppedOn)
	case engine.Ice:
		b.WriteString("Ground: ice (pushed objects slide across)\n")
	default:
		b.WriteString("Ground: grass\n")
	}
	if tile.Exit != nil {
		fmt.Fprintf(&b, "Exit: move %s here to enter level %q\n", tile.Exit.Direction, tile.Exit.Level)
	}
	for _, ray := range state.Rays {
		if ray.Pos.X == x && ray.Pos.Y == y {
			fmt.Fprintf(&b, "A ray is currently on this tile (effect %s)\n", ray.Effect)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

// kindChar maps an object kind to its board character.
func kindChar(kind engine.Kind) rune {
	switch kind {
	case engine.Player:
		return '@'
	case engine.Wall:
		return '#'
	case engine.WallWithHoles:
		return 'H'
	case engine.Rock:
		return 'R'
	case engine.Rope:
		return 'r'
	case engine.Soap:
		return 'S'
	case engine.Mirror:
		return 'M'
	case engine.MirrorSlopeUp:
		return '/'
	case engine.MirrorSlopeDown:
		return '\\'
	case engine.Tree:
		return 'T'
	case engine.Axe:
		return 'A'
	case engine.Cheese:
		return 'C'
	case engine.Bunny:
		return 'B'
	case engine.Door:
		return 'D'
	case engine.Key:
		return 'K'
	case engine.Raygun:
		return 'G'
	default:
		return '?'
	}
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s | Steps: %d | Cheese: %d banked + %d pending | Resets: %d\n",
		state.LevelName, state.Steps, state.CheeseBanked, state.CheeseLevel, state.Resets)
	if state.RaysInFlight {
		fmt.Fprintf(&b, "RAYS IN FLIGHT (%d): player input is locked\n", len(state.Rays))
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	b.WriteString("\n")

	rays := make(map[engine.Vec]bool, len(state.Rays))
	for _, ray := range state.Rays {
		rays[ray.Pos] = true
	}

	for y := 0; y < engine.GridSize; y++ {
		for x := 0; x < engine.GridSize; x++ {
			p := engine.Vec{X: x, Y: y}
			tile := state.Grid.At(p)
			switch {
			case rays[p]:
				b.WriteRune('*')
			case tile.Object != nil:
				b.WriteRune(kindChar(tile.Object.Kind))
			case tile.Ground.Type == engine.Sapling:
				b.WriteRune('s')
			case tile.Ground.Type == engine.Ice:
				b.WriteRune('~')
			default:
				b.WriteRune('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
