// Package signal is the websocket transport in front of the broker.
// It owns the connections; the broker only ever sees core.Sender.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mediochat/mediochat/internal/app"
	"github.com/mediochat/mediochat/internal/core"
)

type Controller struct {
	Broker *app.Broker

	// ReadLimit caps inbound frame size; PingPeriod keeps idle
	// connections alive through proxies. Zero values disable them.
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(broker *app.Broker) *Controller {
	return &Controller{Broker: broker}
}

// wsConn wraps one websocket with a buffered outbound channel so a slow
// peer pushes back through TrySend instead of blocking a broadcast.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection's pumps.
// Room membership is announced later over the socket itself with a
// join-room event; until then the connection is invisible to rooms.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("ws upgrade")
		return
	}

	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	id := core.ConnID(uuid.NewString())
	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	log.Info().Str("module", "adapters.signal").Str("conn", string(id)).Msg("new signaling connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, id, conn)
	}()
}
