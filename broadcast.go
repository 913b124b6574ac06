package main

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"go_jotto_server/game"
)

var (
	errGameNotFound   = errors.New("Game not found")
	errUnknownMessage = errors.New("unknown message type")
	errRateLimited    = errors.New("too many messages, slow down")
	errBadMessage     = errors.New("malformed message")
)

func encode(event string, payload any) ([]byte, bool) {
	b, err := json.Marshal(ServerMessage{Type: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to encode message")
		return nil, false
	}
	return b, true
}

// deliver routes one notification to its audience.
func (h *Hub) deliver(n game.Notification) {
	msg, ok := encode(n.Event, n.Payload)
	if !ok {
		return
	}
	if n.Audience == game.ToEveryone {
		for id := range h.clients {
			h.write(id, msg)
		}
		return
	}
	for _, id := range n.To {
		h.write(id, msg)
	}
}

func (h *Hub) deliverAll(ns []game.Notification) {
	for _, n := range ns {
		h.deliver(n)
	}
}

func (h *Hub) send(id, event string, payload any) {
	h.deliver(game.Notification{Audience: game.ToPlayers, To: []string{id}, Event: event, Payload: payload})
}

func (h *Hub) write(id string, msg []byte) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	if !c.Send(msg) {
		h.slow = append(h.slow, id)
	}
}

// sendRooms pushes the joinable-room snapshot to one connection.
func (h *Hub) sendRooms(id string) {
	h.send(id, game.EventAvailableRooms, h.registry.ListJoinable())
}

// broadcastRooms pushes the joinable-room snapshot to every connection.
func (h *Hub) broadcastRooms() {
	h.deliver(game.Notification{
		Audience: game.ToEveryone,
		Event:    game.EventAvailableRooms,
		Payload:  h.registry.ListJoinable(),
	})
}
