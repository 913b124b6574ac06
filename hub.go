package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"go_jotto_server/events"
	"go_jotto_server/game"
)

// Client is one live connection as seen by the hub.
type Client interface {
	ID() string
	// Send queues msg without blocking and reports whether it was queued.
	Send(msg []byte) bool
	// Close stops delivery. It is called at most once, by the hub.
	Close()
}

type inbound struct {
	from string
	msg  ClientMessage
	err  error
}

// Hub is the session gateway. A single goroutine (Run) owns the connection
// set and every room membership, so events are handled strictly one at a
// time.
type Hub struct {
	registry  *game.Registry
	publisher events.Publisher

	clients map[string]Client
	rooms   map[string]string // connection ID -> room code
	slow    []string

	register   chan Client
	unregister chan string
	inbox      chan inbound
	done       chan struct{}
}

func NewHub(registry *game.Registry, publisher events.Publisher) *Hub {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Hub{
		registry:   registry,
		publisher:  publisher,
		clients:    make(map[string]Client),
		rooms:      make(map[string]string),
		register:   make(chan Client),
		unregister: make(chan string),
		inbox:      make(chan inbound, 256),
		done:       make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, c := range h.clients {
				delete(h.clients, id)
				c.Close()
			}
			return
		case c := <-h.register:
			h.handleRegister(c)
		case id := <-h.unregister:
			h.drop(id)
		case in := <-h.inbox:
			h.handleInbound(in)
		}
		h.reap()
	}
}

// Register adds c to the live set. It returns false once the hub has stopped.
func (h *Hub) Register(c Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister handles a lost connection.
func (h *Hub) Unregister(id string) {
	select {
	case h.unregister <- id:
	case <-h.done:
	}
}

// Dispatch queues an inbound event from connection id.
func (h *Hub) Dispatch(id string, msg ClientMessage) {
	h.enqueue(inbound{from: id, msg: msg})
}

// Reject answers connection id with an error notification.
func (h *Hub) Reject(id string, err error) {
	h.enqueue(inbound{from: id, err: err})
}

func (h *Hub) enqueue(in inbound) {
	select {
	case h.inbox <- in:
	case <-h.done:
	}
}

func (h *Hub) handleRegister(c Client) {
	h.clients[c.ID()] = c
	log.Info().Str("conn", c.ID()).Int("clients", len(h.clients)).Msg("client connected")
	h.sendRooms(c.ID())
}

func (h *Hub) handleInbound(in inbound) {
	if _, ok := h.clients[in.from]; !ok {
		return
	}
	if in.err != nil {
		h.deliver(game.Rejection(in.from, game.EventError, in.err))
		return
	}

	switch in.msg.Type {
	case msgCreateRoom:
		h.createRoom(in.from)
	case msgJoinRoom:
		h.joinRoom(in.from, in.msg.Room())
	case msgSubmitWord:
		h.submitWord(in.from, h.roomFor(in.from, in.msg), in.msg.Word)
	case msgMakeGuess:
		h.makeGuess(in.from, h.roomFor(in.from, in.msg), in.msg.Guess)
	case msgGetAvailableRooms:
		h.sendRooms(in.from)
	case msgLeaveRoom:
		h.leaveRoom(in.from)
	default:
		log.Debug().Str("conn", in.from).Str("type", in.msg.Type).Msg("unknown message type")
		h.deliver(game.Rejection(in.from, game.EventError, errUnknownMessage))
	}
}

// roomFor resolves the room a message targets, falling back to the
// sender's current room when the message names none.
func (h *Hub) roomFor(id string, msg ClientMessage) string {
	if code := msg.Room(); code != "" {
		return code
	}
	return h.rooms[id]
}

func (h *Hub) createRoom(id string) {
	if _, busy := h.rooms[id]; busy {
		h.deliver(game.Rejection(id, game.EventJoinError, game.ErrAlreadyInRoom))
		return
	}
	code := h.registry.Create()
	res, err := h.registry.Update(code, func(r *game.Room) ([]game.Notification, error) {
		return r.Join(id)
	})
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("creator could not join new room")
		h.registry.Remove(code)
		h.deliver(game.Rejection(id, game.EventJoinError, err))
		return
	}
	h.rooms[id] = code

	log.Info().Str("room", code).Str("conn", id).Msg("room created")
	h.publisher.Publish(code, roomCreatedLine(id))
	h.send(id, game.EventRoomCreated, game.RoomCode{Code: code})
	h.deliverAll(res.Notifications)
	h.broadcastRooms()
}

func (h *Hub) joinRoom(id, code string) {
	if _, busy := h.rooms[id]; busy {
		h.deliver(game.Rejection(id, game.EventJoinError, game.ErrAlreadyInRoom))
		return
	}
	code = game.NormalizeCode(code)
	res, err := h.registry.Update(code, func(r *game.Room) ([]game.Notification, error) {
		return r.Join(id)
	})
	if err != nil {
		if errors.Is(err, game.ErrRoomNotFound) {
			err = game.ErrRoomUnavailable
		}
		h.deliver(game.Rejection(id, game.EventJoinError, err))
		return
	}
	h.rooms[id] = code

	log.Info().Str("room", code).Str("conn", id).Msg("player joined")
	h.publisher.Publish(code, playerJoinedLine(id))
	h.send(id, game.EventRoomJoined, game.RoomCode{Code: code})
	h.deliverAll(res.Notifications)
	h.broadcastRooms()
}

func (h *Hub) submitWord(id, code, word string) {
	res, err := h.registry.Update(code, func(r *game.Room) ([]game.Notification, error) {
		return r.SubmitWord(id, word)
	})
	switch {
	case errors.Is(err, game.ErrInvalidWord):
		h.deliver(game.Rejection(id, game.EventInvalidWord, err))
		return
	case errors.Is(err, game.ErrRoomNotFound):
		h.deliver(game.Rejection(id, game.EventError, errGameNotFound))
		return
	case err != nil:
		h.deliver(game.Rejection(id, game.EventError, err))
		return
	}
	h.publish(code, res.Notifications)
	h.deliverAll(res.Notifications)
}

func (h *Hub) makeGuess(id, code, guess string) {
	res, err := h.registry.Update(code, func(r *game.Room) ([]game.Notification, error) {
		return r.Guess(id, guess)
	})
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		h.deliver(game.Rejection(id, game.EventGuessRejected, errGameNotFound))
		return
	case err != nil:
		h.deliver(game.Rejection(id, game.EventGuessRejected, err))
		return
	}
	h.publish(code, res.Notifications)
	h.deliverAll(res.Notifications)
	if res.Removed {
		log.Info().Str("room", game.NormalizeCode(code)).Str("winner", id).Msg("room finished")
		h.closeRoom(game.NormalizeCode(code), res.Players)
	}
}

// leaveRoom removes id from its room, if any. Leaving always ends the room.
func (h *Hub) leaveRoom(id string) {
	code, ok := h.rooms[id]
	if !ok {
		return
	}
	delete(h.rooms, id)

	res, err := h.registry.Update(code, func(r *game.Room) ([]game.Notification, error) {
		return r.Leave(id)
	})
	if err != nil {
		log.Debug().Err(err).Str("room", code).Str("conn", id).Msg("leave on missing room")
		return
	}
	log.Info().Str("room", code).Str("conn", id).Bool("removed", res.Removed).Msg("player left")
	h.publisher.Publish(code, playerLeftLine(id))
	h.deliverAll(res.Notifications)
	if res.Removed {
		h.closeRoom(code, res.Players)
		return
	}
	h.broadcastRooms()
}

// closeRoom releases the memberships of a room the registry has dropped.
func (h *Hub) closeRoom(code string, players []string) {
	for _, p := range players {
		if h.rooms[p] == code {
			delete(h.rooms, p)
		}
	}
	h.publisher.Close(code)
	h.broadcastRooms()
}

// drop forgets a connection and ends its room.
func (h *Hub) drop(id string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	c.Close()
	log.Info().Str("conn", id).Int("clients", len(h.clients)).Msg("client disconnected")
	h.leaveRoom(id)
}

// reap drops connections whose send buffer overflowed during the last event.
func (h *Hub) reap() {
	for len(h.slow) > 0 {
		id := h.slow[0]
		h.slow = h.slow[1:]
		log.Warn().Str("conn", id).Msg("client too slow, dropping")
		h.drop(id)
	}
}

func (h *Hub) publish(code string, ns []game.Notification) {
	for _, n := range ns {
		if line := describe(n); line != "" {
			h.publisher.Publish(game.NormalizeCode(code), line)
		}
	}
}
