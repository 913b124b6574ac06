package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 64
)

// WSClient is one websocket connection. Its ID is the player identity for
// as long as the connection lives.
type WSClient struct {
	id        string
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	limiter   *rate.Limiter
	ping      time.Duration
	pongWait  time.Duration
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn, hub *Hub, cfg Config) *WSClient {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.PongWait <= cfg.PingInterval {
		cfg.PongWait = 2 * cfg.PingInterval
	}
	return &WSClient{
		id:       uuid.NewString(),
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, sendBuffer),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		ping:     cfg.PingInterval,
		pongWait: cfg.PongWait,
	}
}

func (c *WSClient) ID() string { return c.id }

func (c *WSClient) Send(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *WSClient) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// HandleClient registers the client and blocks reading frames until the
// connection drops.
func (c *WSClient) HandleClient() {
	log.Info().Str("conn", c.id).Str("ip", c.conn.RemoteAddr().String()).Msg("websocket opened")

	if !c.hub.Register(c) {
		c.conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.Unregister(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn", c.id).Msg("read failed")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

		if !c.limiter.Allow() {
			c.hub.Reject(c.id, errRateLimited)
			continue
		}

		var data ClientMessage
		if err := json.Unmarshal(msg, &data); err != nil || data.Type == "" {
			log.Debug().Err(err).Str("conn", c.id).Msg("invalid message")
			c.hub.Reject(c.id, errBadMessage)
			continue
		}
		c.hub.Dispatch(c.id, data)
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(c.ping)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
