// Package signal pushes the normalizer's user-facing notifications to
// connected websocket clients.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Hub fans notifications out to every connected client. Implements
// app.Notifier. A client that cannot keep up is dropped rather than
// blocking the normalizer.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*wsConn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*wsConn)}
}

type notification struct {
	Type string `json:"type"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

func (h *Hub) Notify(text string) {
	b, err := json.Marshal(notification{Type: "notification", Text: text, TS: time.Now().UnixMilli()})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("notify marshal")
		return
	}

	h.mu.RLock()
	conns := make(map[string]*wsConn, len(h.conns))
	for token, c := range h.conns {
		conns[token] = c
	}
	h.mu.RUnlock()

	for token, c := range conns {
		if err := c.TrySend(b); err != nil {
			log.Warn().Str("module", "signal").Str("token", token).Msg("dropping slow notification client")
			h.removeConn(token, c)
		}
	}
}

// removeConn unregisters c only while it is still the connection registered
// under token. A reconnect replaces the registration first, so the stale
// connection's cleanup must not tear down its successor.
func (h *Hub) removeConn(token string, c *wsConn) {
	h.mu.Lock()
	if cur, ok := h.conns[token]; ok && cur == c {
		delete(h.conns, token)
	}
	h.mu.Unlock()
	c.Close()
}

// HandleWS upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) HandleWS(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("token", token).Msg("new notification client")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{conn: ws, send: make(chan []byte, 32)}
	h.mu.Lock()
	if old, ok := h.conns[token]; ok {
		old.Close()
	}
	h.conns[token] = conn
	h.mu.Unlock()

	go h.writePump(ctx, conn)
	go h.readPump(ctx, token, conn)
}

func (h *Hub) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump only drains control traffic; clients do not talk back on this
// channel. Its job is to notice the disconnect.
func (h *Hub) readPump(ctx context.Context, token string, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("token", token).Msg("notification client gone")
		h.removeConn(token, c)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if _, _, err := c.conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
