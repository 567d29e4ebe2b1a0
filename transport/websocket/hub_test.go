package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/puzhgame/puzh/game/engine"
)

func testHub() *Hub {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewHub(log)
}

func testState() *engine.GameState {
	return &engine.GameState{
		Level:     "meadow",
		LevelName: "Meadow",
		Grid:      engine.NewGrid(),
		Message:   "hello",
	}
}

func TestNewHub(t *testing.T) {
	hub := testHub()

	if hub.sessions == nil {
		t.Error("sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("hub channels must be initialized")
	}
}

func TestRegisterUnregisterClient(t *testing.T) {
	hub := testHub()
	client := &Client{
		hub:       hub,
		sessionID: "ab12",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	if !hub.sessions["ab12"][client] {
		t.Fatal("client was not registered in its session")
	}

	hub.unregisterClient(client)
	if _, exists := hub.sessions["ab12"]; exists {
		t.Error("empty session should be cleaned up after the last client leaves")
	}
	if _, open := <-client.send; open {
		t.Error("send channel should be closed on unregister")
	}
}

func TestBroadcastMessage(t *testing.T) {
	hub := testHub()
	client := &Client{
		hub:       hub,
		sessionID: "ab12",
		send:      make(chan []byte, 256),
	}
	other := &Client{
		hub:       hub,
		sessionID: "cd34",
		send:      make(chan []byte, 256),
	}
	hub.registerClient(client)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{
		SessionID: "ab12",
		GameState: testState(),
		Event:     "state_update",
	})

	select {
	case data := <-client.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Event != "state_update" || msg.GameState.Level != "meadow" {
			t.Errorf("unexpected message %+v", msg)
		}
	default:
		t.Fatal("client in the session should have received the message")
	}

	select {
	case <-other.send:
		t.Error("client in another session must not receive the message")
	default:
	}
}

func TestBroadcastMessage_DropsSlowClient(t *testing.T) {
	hub := testHub()
	client := &Client{
		hub:       hub,
		sessionID: "ab12",
		send:      make(chan []byte), // no buffer, nothing reading
	}
	hub.registerClient(client)

	hub.broadcastMessage(&Message{SessionID: "ab12", Event: "tick"})

	if _, exists := hub.sessions["ab12"]; exists {
		t.Error("a client that cannot keep up should be dropped")
	}
}

func TestServeWS_EndToEnd(t *testing.T) {
	hub := testHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "ab12")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Registration races the broadcast; give the hub a moment.
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastToSession("ab12", testState())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.SessionID != "ab12" || msg.Event != "state_update" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.GameState == nil || msg.GameState.Message != "hello" {
		t.Errorf("state did not round-trip: %+v", msg.GameState)
	}
}
