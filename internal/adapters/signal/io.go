package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mediochat/mediochat/internal/app"
	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	pingPeriod := ctl.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "adapters.signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump drives the connection's whole lifecycle: events are handled
// to completion in arrival order, and the transport detecting closure
// is what triggers the broker's leave fanout.
func (ctl *Controller) readPump(ctx context.Context, id core.ConnID, c *wsConn) {
	defer func() {
		ctl.Broker.Disconnect(id)
		c.Close()
		log.Info().Str("module", "adapters.signal").Str("conn", string(id)).Msg("readPump closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handle(id, c, data)
		}
	}
}

// handle dispatches one inbound event. Malformed or out-of-state events
// are dropped, never faulted back to the transport.
func (ctl *Controller) handle(id core.ConnID, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "adapters.signal").Msg("bad json, dropped")
		return
	}

	switch env.Type {
	case app.EventJoinRoom:
		var p app.JoinRoom
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn().Err(err).Str("module", "adapters.signal").Msg("bad join payload, dropped")
			return
		}
		ctl.Broker.Join(id, c, domain.RoomCode(p.RoomID), p.ParticipantID, p.DisplayName)
	case app.EventSendMessage:
		var p app.SendMessage
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn().Err(err).Str("module", "adapters.signal").Msg("bad message payload, dropped")
			return
		}
		ctl.Broker.Message(id, p.Text)
	default:
		log.Warn().Str("module", "adapters.signal").Str("type", env.Type).Msg("unknown event, dropped")
	}
}
