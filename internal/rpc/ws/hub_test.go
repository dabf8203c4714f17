package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ledgersim/ledgersim/internal/exchange"
	"github.com/ledgersim/ledgersim/pkg/types"
)

func TestBroadcastTradeReachesConnectedClient(t *testing.T) {
	hub := New()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// give the hub a moment to register the client before broadcasting.
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastTrade(exchange.Trade{
		Pair:     "SIM_COIN/USD",
		Price:    types.NewAmount(10),
		Amount:   types.NewAmount(1),
		BuyerID:  "alice",
		SellerID: "bob",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"type":"trade"`) {
		t.Fatalf("expected a trade event, got %s", data)
	}
}

func TestUnregisteredClientDoesNotBlockBroadcast(t *testing.T) {
	hub := New()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		hub.BroadcastTrade(exchange.Trade{Pair: "SIM_COIN/USD"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a disconnected client")
	}
}
