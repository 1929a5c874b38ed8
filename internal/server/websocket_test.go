package server

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"acromania/internal/config"
)

func TestWebsocketReceivesGameEvents(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	gameID, _ := createGame(t, ts, "Ada")
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/games/" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	defer conn.Close()

	joinPlayer(t, ts, gameID, "Ben")

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.Type != eventPlayerJoined {
		t.Fatalf("expected %s event, got %s", eventPlayerJoined, msg.Type)
	}
	if msg.Payload.PlayerName != "Ben" {
		t.Fatalf("expected Ben in payload, got %q", msg.Payload.PlayerName)
	}
}

func TestWebsocketUnknownGame(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/games/game-999"
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatalf("expected dial to fail for unknown game")
	}
}

type capturingPublisher struct {
	events []string
}

func (p *capturingPublisher) Publish(gameID, event string, payload EventPayload) error {
	p.events = append(p.events, event)
	return nil
}

func TestExtraPublishersReceiveEveryEvent(t *testing.T) {
	srv := New(nil, config.Default())
	sink := &capturingPublisher{}
	srv.AddPublisher(sink)

	game, host, err := srv.CreateGame("Ada", SettingsPatch{}, true, "")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if _, _, err := srv.Join(game.ID, "Ben", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := srv.Start(game.ID, host.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	var joined, started, roundStarted bool
	for _, event := range sink.events {
		switch event {
		case eventPlayerJoined:
			joined = true
		case eventGameStarted:
			started = true
		case eventRoundStarted:
			roundStarted = true
		}
	}
	if !joined || !started || !roundStarted {
		t.Fatalf("missing lifecycle events, got %v", sink.events)
	}
}
