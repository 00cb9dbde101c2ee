// Package websocket pushes task changes to connected clients. A client only
// receives events for tasks it is allowed to read.
package websocket

import (
	"context"
	"encoding/json"
	"time"

	"task-manager-api/internal/auth"
	"task-manager-api/internal/models"
	"task-manager-api/pkg/logger"
	"task-manager-api/pkg/metrics"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	sendBuffer      = 16
	broadcastBuffer = 64
)

// Identity turns a bearer token back into the current account.
// *auth.Resolver satisfies it.
type Identity interface {
	Resolve(ctx context.Context, raw string) (*models.User, *auth.Claims, error)
}

// Client is one live connection together with the token that opened it. The
// account behind the token is looked up again before every delivery.
type Client struct {
	Conn    *websocket.Conn
	UserID  int64
	token   string
	expires time.Time
	send    chan []byte
}

func NewClient(conn *websocket.Conn, userID int64, token string, claims *auth.Claims) *Client {
	c := &Client{Conn: conn, UserID: userID, token: token, send: make(chan []byte, sendBuffer)}
	if claims != nil && claims.ExpiresAt != nil {
		c.expires = claims.ExpiresAt.Time
	}
	return c
}

// WritePump forwards queued messages to the connection and closes it when the
// hub drops the client, a write fails or the token expires.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	var expired <-chan time.Time
	if !c.expires.IsZero() {
		timer := time.NewTimer(time.Until(c.expires))
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-expired:
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "token expired"))
			return
		}
	}
}

// ReadPump discards inbound frames and returns when the peer goes away or the
// connection is closed.
func (c *Client) ReadPump() {
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Hub owns the client set. All mutation happens on the Run goroutine.
type Hub struct {
	identity   Identity
	clients    map[*Client]struct{}
	broadcast  chan models.TaskEvent
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(identity Identity) *Hub {
	return &Hub{
		identity:   identity,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan models.TaskEvent, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			h.drop(client)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			metrics.WebsocketClients.Inc()
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case event := <-h.broadcast:
			h.dispatch(ctx, event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event for delivery. It never blocks the caller; when the
// queue is full the event is dropped.
func (h *Hub) Publish(event models.TaskEvent) {
	select {
	case h.broadcast <- event:
	default:
		logger.SystemLogger.Warn("task event dropped", zap.String("type", string(event.Type)), zap.Int64("task_id", event.Task.ID))
	}
}

func (h *Hub) dispatch(ctx context.Context, event models.TaskEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
		return
	}
	for client := range h.clients {
		user, err := h.current(ctx, client)
		if err != nil {
			logger.SecurityLogger.Warn("closing websocket client", zap.Int64("user_id", client.UserID), zap.Error(err))
			h.drop(client)
			continue
		}
		if !auth.CanAccess(event.Task.OwnerID, user.ID, user.IsAdmin) {
			continue
		}
		select {
		case client.send <- msg:
		default:
			// slow reader
			logger.SystemLogger.Info("dropping slow websocket client", zap.Int64("user_id", client.UserID))
			h.drop(client)
		}
	}
}

// current re-resolves the client's token and requires the account to still
// be active.
func (h *Hub) current(ctx context.Context, client *Client) (*models.User, error) {
	user, _, err := h.identity.Resolve(ctx, client.token)
	if err != nil {
		return nil, err
	}
	return auth.RequireActive(user)
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	metrics.WebsocketClients.Dec()
}
