package ws

import (
	"context"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type Client struct {
	UserID uint
	Send   chan Event

	conn  *websocket.Conn
	rooms map[uint]struct{} // guarded by the hub's mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(userID uint, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		UserID: userID,
		Send:   make(chan Event, 64),
		conn:   conn,
		rooms:  map[uint]struct{}{},
		ctx:    ctx,
		cancel: cancel,
	}
}

// trySend queues the event without blocking; a slow client drops frames
// rather than stalling the broadcaster.
func (c *Client) trySend(ev Event) {
	select {
	case c.Send <- ev:
	default:
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.Send:
			writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = wsjson.Write(writeCtx, c.conn, ev)
			cancel()
		}
	}
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = c.conn.Ping(pingCtx)
			cancel()
		}
	}
}
