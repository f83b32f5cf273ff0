package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, h *Hub, token string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("client_token", token)
		h.HandleWS(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// registered polls until a connection is registered under token and returns
// it. Registration happens just after the upgrade handshake completes, so the
// dialer can win the race without this.
func registered(t *testing.T, h *Hub, token string) *wsConn {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		c := h.conns[token]
		h.mu.RUnlock()
		if c != nil {
			return c
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no connection registered")
	return nil
}

func readNotification(t *testing.T, conn *websocket.Conn) notification {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var n notification
	require.NoError(t, json.Unmarshal(data, &n))
	return n
}

func TestNotifyReachesClient(t *testing.T) {
	h := NewHub()
	srv := newHubServer(t, h, "tok-1")

	conn := dialHub(t, srv)
	registered(t, h, "tok-1")

	h.Notify("hello")

	n := readNotification(t, conn)
	require.Equal(t, "notification", n.Type)
	require.Equal(t, "hello", n.Text)
}

func TestReconnectWithSameTokenKeepsNewConnection(t *testing.T) {
	h := NewHub()
	srv := newHubServer(t, h, "tok-1")

	first := dialHub(t, srv)
	old := registered(t, h, "tok-1")

	second := dialHub(t, srv)
	deadline := time.Now().Add(2 * time.Second)
	var cur *wsConn
	for time.Now().Before(deadline) {
		h.mu.RLock()
		cur = h.conns["tok-1"]
		h.mu.RUnlock()
		if cur != nil && cur != old {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.NotNil(t, cur)
	require.NotSame(t, old, cur, "reconnect should replace the registration")

	// The replaced connection is closed server-side; its cleanup must not
	// unregister the successor.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	require.Error(t, err)

	time.Sleep(50 * time.Millisecond)
	h.mu.RLock()
	still := h.conns["tok-1"]
	h.mu.RUnlock()
	require.Same(t, cur, still)

	h.Notify("hello")
	n := readNotification(t, second)
	require.Equal(t, "hello", n.Text)
}
