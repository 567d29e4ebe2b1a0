// Command desktop is a graphical client for the Puzh puzzle game server.
// It renders the 12x12 board with ebiten, receives live updates over the
// server's WebSocket (falling back to polling), and sends player commands
// through the REST API.
package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	gridSize     = 12
	cellSize     = 48
	headerHeight = 60
	footerHeight = 30
	screenWidth  = gridSize * cellSize
	screenHeight = headerHeight + gridSize*cellSize + footerHeight
	baseURL      = "http://localhost:8080"
	pollInterval = 300 * time.Millisecond
)

// Wire types mirror the server's JSON shapes.

type Vec struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Ground struct {
	Type      string `json:"type"`
	SteppedOn bool   `json:"stepped_on,omitempty"`
}

type Object struct {
	Kind string `json:"kind"`
}

type Exit struct {
	Direction string `json:"direction"`
	Level     string `json:"level"`
}

type Tile struct {
	Object *Object `json:"object,omitempty"`
	Ground Ground  `json:"ground"`
	Exit   *Exit   `json:"exit,omitempty"`
}

type Grid struct {
	Tiles [][]Tile `json:"tiles"`
}

type Ray struct {
	Pos Vec `json:"pos"`
	Dir Vec `json:"dir"`
}

type GameState struct {
	Level        string `json:"level"`
	LevelName    string `json:"level_name"`
	Grid         *Grid  `json:"grid"`
	Rays         []Ray  `json:"rays"`
	RaysInFlight bool   `json:"rays_in_flight"`
	CheeseBanked int    `json:"cheese_banked"`
	CheeseLevel  int    `json:"cheese_level"`
	Steps        int    `json:"steps"`
	Resets       int    `json:"resets"`
	Message      string `json:"message,omitempty"`
}

// WSMessage is the WebSocket message wrapper pushed by the hub.
type WSMessage struct {
	SessionID string     `json:"session_id"`
	GameState *GameState `json:"game_state,omitempty"`
	Event     string     `json:"event,omitempty"`
}

// Game is the desktop client state.
type Game struct {
	sessionID  string
	state      *GameState
	wsConn     *websocket.Conn
	lastUpdate time.Time
	errorMsg   string
	mu         sync.RWMutex
}

// NewGame creates the client, reusing the given session or creating a fresh
// one when sessionID is empty.
func NewGame(sessionID string) (*Game, error) {
	g := &Game{sessionID: sessionID}

	if g.sessionID == "" {
		if err := g.createSession(); err != nil {
			return nil, err
		}
	}

	if err := g.connectWebSocket(); err != nil {
		log.Printf("WebSocket unavailable: %v (falling back to polling)", err)
	} else {
		go g.listenWebSocket()
	}

	if err := g.fetchGameState(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) createSession() error {
	resp, err := http.Post(baseURL+"/api/sessions", "application/json", strings.NewReader("{}"))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse session response: %v (body: %s)", err, string(body))
	}

	g.sessionID = result.ID
	log.Printf("Created session %s", g.sessionID)
	return nil
}

func (g *Game) connectWebSocket() error {
	wsURL := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", g.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}
	g.wsConn = conn
	return nil
}

// listenWebSocket applies every pushed state. Tick events carry the state
// after the rays advanced, so ray animation falls out of just rendering
// whatever arrives.
func (g *Game) listenWebSocket() {
	defer g.wsConn.Close()

	for {
		_, message, err := g.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error: %v", err)
			g.mu.Lock()
			g.wsConn = nil
			g.mu.Unlock()
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}
		if msg.GameState == nil {
			continue
		}

		g.mu.Lock()
		g.state = msg.GameState
		g.lastUpdate = time.Now()
		g.mu.Unlock()
	}
}

func (g *Game) fetchGameState() error {
	resp, err := http.Get(fmt.Sprintf("%s/api/sessions/%s/state", baseURL, g.sessionID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var state GameState
	if err := json.Unmarshal(body, &state); err != nil {
		return fmt.Errorf("failed to parse state: %v (body: %s)", err, string(body))
	}

	g.mu.Lock()
	g.state = &state
	g.lastUpdate = time.Now()
	g.mu.Unlock()
	return nil
}

// sendCommand posts a player command and refreshes state from the response
// path. Move payloads carry the direction; shoot and reset have no body.
func (g *Game) sendCommand(action, direction string) {
	var endpoint, payload string
	switch action {
	case "move":
		endpoint = fmt.Sprintf("%s/api/sessions/%s/move", baseURL, g.sessionID)
		payload = fmt.Sprintf(`{"direction":%q}`, direction)
	case "shoot":
		endpoint = fmt.Sprintf("%s/api/sessions/%s/shoot", baseURL, g.sessionID)
		payload = "{}"
	case "reset":
		endpoint = fmt.Sprintf("%s/api/sessions/%s/reset", baseURL, g.sessionID)
		payload = "{}"
	default:
		return
	}

	resp, err := http.Post(endpoint, "application/json", strings.NewReader(payload))
	if err != nil {
		g.mu.Lock()
		g.errorMsg = err.Error()
		g.mu.Unlock()
		return
	}
	resp.Body.Close()

	if err := g.fetchGameState(); err != nil {
		log.Printf("Error fetching state: %v", err)
	}
}

// Update handles input and the polling fallback.
func (g *Game) Update() error {
	g.mu.RLock()
	polling := g.wsConn == nil
	stale := time.Since(g.lastUpdate) > pollInterval
	g.mu.RUnlock()

	if polling && stale {
		if err := g.fetchGameState(); err != nil {
			log.Printf("Error fetching state: %v", err)
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyW):
		go g.sendCommand("move", "up")
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyS):
		go g.sendCommand("move", "down")
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA):
		go g.sendCommand("move", "left")
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD):
		go g.sendCommand("move", "right")
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		go g.sendCommand("shoot", "")
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		go g.sendCommand("reset", "")
	}

	return nil
}

// Draw renders the header, board, rays, and footer.
func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	screen.Fill(color.RGBA{20, 24, 28, 255})

	if g.state == nil || g.state.Grid == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}

	header := fmt.Sprintf("%s | Steps: %d | Cheese: %d banked + %d pending",
		g.state.LevelName, g.state.Steps, g.state.CheeseBanked, g.state.CheeseLevel)
	ebitenutil.DebugPrintAt(screen, header, 10, 10)
	if g.state.RaysInFlight {
		ebitenutil.DebugPrintAt(screen, "RAYS IN FLIGHT - input locked", 10, 25)
	}
	if g.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, "ERROR: "+g.errorMsg, 10, 40)
	}

	for y, row := range g.state.Grid.Tiles {
		for x, tile := range row {
			px := float64(x * cellSize)
			py := float64(y*cellSize + headerHeight)

			ebitenutil.DrawRect(screen, px, py, cellSize-1, cellSize-1, groundColor(tile.Ground))

			if tile.Exit != nil {
				ebitenutil.DrawRect(screen, px, py, cellSize-1, cellSize-1, color.RGBA{90, 60, 120, 255})
				ebitenutil.DebugPrintAt(screen, exitArrow(tile.Exit.Direction), int(px)+2, int(py)+2)
			}

			if tile.Object != nil {
				ebitenutil.DrawRect(screen, px+4, py+4, cellSize-9, cellSize-9, objectColor(tile.Object.Kind))
				ebitenutil.DebugPrintAt(screen, objectLabel(tile.Object.Kind), int(px)+cellSize/2-3, int(py)+cellSize/2-6)
			}
		}
	}

	// Rays render on top so they stay visible crossing occupied tiles.
	for _, ray := range g.state.Rays {
		px := float64(ray.Pos.X*cellSize) + float64(cellSize)/2 - 5
		py := float64(ray.Pos.Y*cellSize+headerHeight) + float64(cellSize)/2 - 5
		ebitenutil.DrawRect(screen, px, py, 10, 10, color.RGBA{255, 240, 80, 255})
	}

	ebitenutil.DebugPrintAt(screen, "Arrows/WASD: Move | SPACE: Shoot | R: Reset",
		10, screenHeight-20)
}

// Layout returns the fixed screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func groundColor(ground Ground) color.Color {
	switch ground.Type {
	case "ice":
		return color.RGBA{160, 210, 240, 255}
	case "sapling":
		if ground.SteppedOn {
			return color.RGBA{110, 140, 60, 255}
		}
		return color.RGBA{70, 130, 50, 255}
	default:
		return color.RGBA{60, 100, 55, 255}
	}
}

func objectColor(kind string) color.Color {
	switch kind {
	case "player":
		return color.RGBA{240, 210, 70, 255}
	case "wall":
		return color.RGBA{70, 70, 75, 255}
	case "wall_with_holes":
		return color.RGBA{110, 110, 115, 255}
	case "rock":
		return color.RGBA{140, 125, 110, 255}
	case "rope":
		return color.RGBA{190, 150, 90, 255}
	case "soap":
		return color.RGBA{220, 190, 230, 255}
	case "mirror", "mirror_slope_up", "mirror_slope_down":
		return color.RGBA{180, 220, 230, 255}
	case "tree":
		return color.RGBA{30, 85, 40, 255}
	case "axe":
		return color.RGBA{170, 60, 50, 255}
	case "cheese":
		return color.RGBA{250, 200, 60, 255}
	case "bunny":
		return color.RGBA{235, 235, 235, 255}
	case "door":
		return color.RGBA{120, 75, 40, 255}
	case "key":
		return color.RGBA{210, 180, 60, 255}
	case "raygun":
		return color.RGBA{90, 170, 200, 255}
	default:
		return color.RGBA{200, 60, 60, 255}
	}
}

func objectLabel(kind string) string {
	switch kind {
	case "player":
		return "@"
	case "wall":
		return "#"
	case "wall_with_holes":
		return "H"
	case "rock":
		return "R"
	case "rope":
		return "r"
	case "soap":
		return "S"
	case "mirror":
		return "M"
	case "mirror_slope_up":
		return "/"
	case "mirror_slope_down":
		return "\\"
	case "tree":
		return "T"
	case "axe":
		return "A"
	case "cheese":
		return "C"
	case "bunny":
		return "B"
	case "door":
		return "D"
	case "key":
		return "K"
	case "raygun":
		return "G"
	default:
		return "?"
	}
}

func exitArrow(direction string) string {
	switch direction {
	case "up":
		return "^"
	case "down":
		return "v"
	case "left":
		return "<"
	case "right":
		return ">"
	default:
		return "?"
	}
}

func main() {
	sessionID := ""
	if len(os.Args) > 1 {
		sessionID = os.Args[1]
	}

	game, err := NewGame(sessionID)
	if err != nil {
		log.Fatalf("Failed to start client: %v", err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Puzh - Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
