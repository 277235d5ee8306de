package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smartpos/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ServeWs(hub, c, func(token string) (string, error) {
			if token != "good" {
				return "", errors.New("bad token")
			}
			return "user-1", nil
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestServeWsRejectsBadToken(t *testing.T) {
	hub := NewHub(logger.Discard())
	go hub.Run()
	srv := newServer(t, hub)

	for _, q := range []string{"", "?token=bad"} {
		resp, err := http.Get(srv.URL + "/ws" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("query %q: status %d, want 401", q, resp.StatusCode)
		}
	}
}

func TestPublishReachesClient(t *testing.T) {
	hub := NewHub(logger.Discard())
	go hub.Run()
	srv := newServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=good"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish("stock.updated", map[string]any{"stock_quantity": 7})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Event != "stock.updated" || ev.Data["stock_quantity"] != float64(7) {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestPublishDoesNotBlockWithoutRunLoop(t *testing.T) {
	hub := NewHub(logger.Discard())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish("sale.created", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}
}
