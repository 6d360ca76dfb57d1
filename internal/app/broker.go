package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

// participant is one joined connection's registry entry.
type participant struct {
	Room        domain.RoomCode
	ID          string
	DisplayName string
	Send        core.Sender
}

// Broker owns the connection → (room, participant) registry and fans
// out join, chat and leave events within a room. State is process-local
// and rebuilt from scratch on restart; calls are ephemeral and
// re-joinable. The registry is reached only through Join, Message and
// Disconnect — never as shared memory from the HTTP side.
type Broker struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*participant
}

func NewBroker() *Broker {
	return &Broker{conns: make(map[core.ConnID]*participant)}
}

// Join registers the connection in a room and announces it to everyone
// else already there. A connection joins at most once; repeated join
// events are dropped.
func (b *Broker) Join(id core.ConnID, send core.Sender, room domain.RoomCode, participantID, displayName string) {
	if room == "" || participantID == "" {
		return
	}

	b.mu.Lock()
	if _, ok := b.conns[id]; ok {
		b.mu.Unlock()
		log.Warn().Str("module", "app.broker").Str("conn", string(id)).Msg("duplicate join ignored")
		return
	}
	b.conns[id] = &participant{
		Room:        room,
		ID:          participantID,
		DisplayName: displayName,
		Send:        send,
	}
	b.mu.Unlock()

	log.Info().Str("module", "app.broker").Str("conn", string(id)).
		Str("room", string(room)).Str("participant", participantID).Msg("joined room")

	b.fanout(id, room, participantJoined{
		Type:          EventParticipantJoined,
		ParticipantID: participantID,
		DisplayName:   displayName,
	})
}

// Message relays chat text to the sender's room mates. The sender name
// comes from the registry entry recorded at join time, never from the
// payload, so a participant cannot speak as someone else. Messages from
// connections that never joined are dropped: there is no identity to
// attribute them to.
func (b *Broker) Message(id core.ConnID, text string) {
	if text == "" {
		return
	}

	b.mu.RLock()
	p, ok := b.conns[id]
	b.mu.RUnlock()
	if !ok {
		return
	}

	b.fanout(id, p.Room, chatMessage{
		Type:              EventMessage,
		Text:              text,
		SenderDisplayName: p.DisplayName,
	})
}

// Disconnect removes the connection and, if it had joined, tells the
// remaining room members it left. A connection that never joined
// vanishes silently.
func (b *Broker) Disconnect(id core.ConnID) {
	b.mu.Lock()
	p, ok := b.conns[id]
	delete(b.conns, id)
	b.mu.Unlock()
	if !ok {
		return
	}

	log.Info().Str("module", "app.broker").Str("conn", string(id)).
		Str("room", string(p.Room)).Str("participant", p.ID).Msg("left room")

	b.fanout(id, p.Room, participantLeft{
		Type:          EventParticipantLeft,
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
	})
}

// RoomSize reports how many connections are joined to a room.
func (b *Broker) RoomSize(room domain.RoomCode) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, p := range b.conns {
		if p.Room == room {
			n++
		}
	}
	return n
}

// fanout delivers v to every room member except from. Delivery is
// best-effort: a recipient whose send buffer is full just misses the
// frame. Per-sender order is preserved because each connection's events
// arrive from a single read loop and each recipient's buffer is written
// in that order.
func (b *Broker) fanout(from core.ConnID, room domain.RoomCode, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broker").Msg("fanout marshal")
		return
	}

	b.mu.RLock()
	targets := make([]*participant, 0, len(b.conns))
	for id, p := range b.conns {
		if id == from || p.Room != room {
			continue
		}
		targets = append(targets, p)
	}
	b.mu.RUnlock()

	for _, p := range targets {
		if err := p.Send.TrySend(core.Frame(data)); err != nil {
			log.Warn().Err(err).Str("module", "app.broker").
				Str("room", string(room)).Str("participant", p.ID).Msg("dropped frame")
		}
	}
}
