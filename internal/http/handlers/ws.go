package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/bakaydmytro/team-seeker-be/internal/auth"
	"github.com/bakaydmytro/team-seeker-be/internal/chat"
	"github.com/bakaydmytro/team-seeker-be/internal/ws"
)

type WSHandler struct {
	Hub    *ws.Hub
	Tokens *auth.TokenService
	Chats  *chat.Service

	// InsecureSkipVerify bypasses the origin check for cross-origin dev
	// frontends. Leave false in production.
	InsecureSkipVerify bool
}

// Handle is the connection gateway: the handshake carries the token as a
// query parameter (browser WebSocket clients cannot set headers), and the
// decoded identity is bound to the connection for its whole lifetime. No
// re-authentication happens after the upgrade.
func (h *WSHandler) Handle(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not Authorized"})
		return
	}
	claims, err := h.Tokens.Verify(tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not Authorized"})
		return
	}

	opts := &websocket.AcceptOptions{}
	if h.InsecureSkipVerify {
		opts.InsecureSkipVerify = true
	}
	conn, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		return // Accept already wrote the error response
	}

	client := ws.NewClient(claims.UserID, conn)
	h.Hub.Add(client)

	ctx := c.Request.Context()
	h.Chats.Connected(ctx, client)

	defer func() {
		h.Hub.Remove(client)
		// The request context is gone once the connection drops; the
		// offline write still has to land.
		h.Chats.Disconnected(context.Background(), client)
	}()

	// Read loop: one frame at a time, in receipt order. A read error of any
	// kind means the connection is gone.
	for {
		var ev chat.ClientEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			return
		}
		h.Chats.HandleEvent(ctx, client, ev)
	}
}
