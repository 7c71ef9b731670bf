package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testConfig(url string) ClientConfig {
	return ClientConfig{
		URL:          url,
		PingInterval: time.Second,
		StaleTimeout: 30 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   100,
	}
}

func TestClient_Connect(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if !client.IsConnected() {
		t.Error("expected IsConnected to return true")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if client.IsConnected() {
		t.Error("expected IsConnected to return false after Close")
	}
}

func TestClient_Subscribe(t *testing.T) {
	var received []byte
	var mu sync.Mutex

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			mu.Lock()
			received = msg
			mu.Unlock()
		}
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if err := client.Subscribe([]string{"token-a", "token-b"}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	var cmd SubscribeCommand
	if err := json.Unmarshal(received, &cmd); err != nil {
		t.Fatalf("server received %q, not a subscribe command: %v", received, err)
	}
	if cmd.Type != ChannelMarket {
		t.Errorf("Type = %q, want %q", cmd.Type, ChannelMarket)
	}
	if len(cmd.AssetIDs) != 2 || cmd.AssetIDs[0] != "token-a" {
		t.Errorf("AssetIDs = %v, want [token-a token-b]", cmd.AssetIDs)
	}
}

func TestClient_MessagesFilterKeepalive(t *testing.T) {
	events := []string{
		`{"event_type":"last_trade_price","asset_id":"tok","market":"0xabc","price":"0.55","size":"120","side":"BUY","timestamp":"1705328200000"}`,
		`PONG`,
		`{"event_type":"price_change","asset_id":"tok","market":"0xabc","price":"0.56"}`,
	}

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for _, msg := range events {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		time.Sleep(time.Second)
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	var received []string
	timeout := time.After(500 * time.Millisecond)

	// PONG is filtered, so only 2 messages should arrive.
	for i := 0; i < 2; i++ {
		select {
		case msg := <-client.Messages():
			received = append(received, string(msg.Data))
			if msg.ReceivedAt.IsZero() {
				t.Error("ReceivedAt should not be zero")
			}
		case <-timeout:
			t.Fatalf("timeout waiting for messages, received %d of 2", len(received))
		}
	}

	if received[0] != events[0] {
		t.Errorf("message 0: got %q, want %q", received[0], events[0])
	}
	if received[1] != events[2] {
		t.Errorf("message 1: got %q, want %q", received[1], events[2])
	}

	select {
	case msg := <-client.Messages():
		t.Errorf("unexpected extra message %q, keepalive not filtered", msg.Data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClient_SendNotConnected(t *testing.T) {
	client := NewClient(testConfig("ws://localhost:12345"), nil)

	if err := client.Send([]byte("test")); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestClient_DoubleClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		time.Sleep(time.Second)
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestDecodeEvents(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		data := `{"event_type":"last_trade_price","asset_id":"tok","market":"0xabc","price":"0.55","size":"120","side":"SELL","timestamp":"1705328200000","fee_rate_bps":"0"}`

		events, err := DecodeEvents([]byte(data))
		if err != nil {
			t.Fatalf("DecodeEvents failed: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("len(events) = %d, want 1", len(events))
		}
		ev := events[0]
		if ev.EventType != EventLastTradePrice {
			t.Errorf("EventType = %q, want %q", ev.EventType, EventLastTradePrice)
		}
		if ev.Market != "0xabc" {
			t.Errorf("Market = %q, want 0xabc", ev.Market)
		}
		if ev.Price != "0.55" || ev.Size != "120" {
			t.Errorf("Price/Size = %q/%q, want 0.55/120", ev.Price, ev.Size)
		}
	})

	t.Run("array", func(t *testing.T) {
		data := ` [{"event_type":"book","asset_id":"tok"},{"event_type":"price_change","asset_id":"tok","price":"0.6"}]`

		events, err := DecodeEvents([]byte(data))
		if err != nil {
			t.Fatalf("DecodeEvents failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("len(events) = %d, want 2", len(events))
		}
		if events[0].EventType != EventBook || events[1].EventType != EventPriceChange {
			t.Errorf("event types = %q, %q", events[0].EventType, events[1].EventType)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := DecodeEvents([]byte(`{"event_type":`)); err == nil {
			t.Error("DecodeEvents succeeded on malformed payload")
		}
	})
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := DefaultClientConfig()
	if cfg.PingInterval != 10*time.Second {
		t.Errorf("PingInterval = %v, want 10s", cfg.PingInterval)
	}
	if cfg.StaleTimeout != 30*time.Second {
		t.Errorf("StaleTimeout = %v, want 30s", cfg.StaleTimeout)
	}
	if cfg.BufferSize != 1000 {
		t.Errorf("BufferSize = %d, want 1000", cfg.BufferSize)
	}
}
