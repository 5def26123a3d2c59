package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"portalConsole/internal/modules/portal/domain"
)

const (
	defaultSendBuffer = 64
	defaultReadLimit  = 1 << 20
	pongWait          = 60 * time.Second
	pingPeriod        = 30 * time.Second
	writeWait         = 5 * time.Second
)

// ClientInfo identifies the session and, for view sockets, the list view a
// client is bound to.
type ClientInfo struct {
	UserID    string
	SessionID string
	HostID    string
	ViewID    string
	Entity    string
}

type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	done       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
	userID     string
	sessionID  string
	viewID     string
	entity     string
	hostMu     sync.RWMutex
	hostID     string
	readLimit  int64
	commands   *CommandProcessor
	subscribed map[string]struct{}
	closeOnce  sync.Once
	closeHooks []func(*Client)
	hookMu     sync.Mutex
}

// NewClient wraps conn for one view or event stream. buf bounds the outbound
// queue; fallback handles actions nothing registered.
func NewClient(hub *Hub, conn *websocket.Conn, info ClientInfo, buf int, fallback CommandHandler) *Client {
	if buf <= 0 {
		buf = defaultSendBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, buf),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		userID:     strings.TrimSpace(info.UserID),
		sessionID:  strings.TrimSpace(info.SessionID),
		hostID:     strings.TrimSpace(info.HostID),
		viewID:     strings.TrimSpace(info.ViewID),
		entity:     strings.TrimSpace(info.Entity),
		readLimit:  defaultReadLimit,
		subscribed: make(map[string]struct{}),
	}
	client.commands = NewCommandProcessor(hub, fallback)
	return client
}

// Commands exposes the processor so handlers can register view commands.
func (c *Client) Commands() *CommandProcessor { return c.commands }

// Context is cancelled once the client closes.
func (c *Client) Context() context.Context { return c.ctx }

func (c *Client) ViewID() string { return c.viewID }

func (c *Client) Entity() string { return c.entity }

func (c *Client) HostID() string {
	c.hostMu.RLock()
	defer c.hostMu.RUnlock()
	return c.hostID
}

// SetHost rebinds the client to another tenant for host-scoped broadcasts.
func (c *Client) SetHost(hostID string) {
	c.hostMu.Lock()
	c.hostID = strings.TrimSpace(hostID)
	c.hostMu.Unlock()
}

// SetReadLimit caps the size of one inbound frame.
func (c *Client) SetReadLimit(limit int64) {
	if limit > 0 {
		c.readLimit = limit
	}
}

func (c *Client) key() string {
	parts := []string{c.userID, c.sessionID}
	if c.viewID != "" {
		parts = append(parts, c.viewID)
	}
	return strings.Join(parts, ":")
}

func (c *Client) logAttrs() []any {
	return []any{
		slog.String("userId", c.userID),
		slog.String("sessionId", c.sessionID),
		slog.String("hostId", c.HostID()),
		slog.String("viewId", c.viewID),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.invokeCloseHooks()
	})
}

// AddCloseHook registers a callback that will be executed once when the client closes.
func (c *Client) AddCloseHook(fn func(*Client)) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.closeHooks = append(c.closeHooks, fn)
	c.hookMu.Unlock()
}

func (c *Client) invokeCloseHooks() {
	c.hookMu.Lock()
	hooks := append([]func(*Client){}, c.closeHooks...)
	c.closeHooks = nil
	c.hookMu.Unlock()

	for _, hook := range hooks {
		func(h func(*Client)) {
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("ws close hook panic", slog.Any("error", r))
				}
			}()
			h(c)
		}(hook)
	}
}

func (c *Client) SendDomainMessage(msg *domain.Message) {
	if msg == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal error", slog.Any("error", err))
		return
	}
	c.enqueue(data)
}

// enqueue never blocks; a full buffer detaches the slow client.
func (c *Client) enqueue(data []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("websocket send buffer full", c.logAttrs()...)
		go c.detach()
	}
}

func (c *Client) detach() {
	if c.hub == nil {
		c.close()
		return
	}
	c.hub.detachClient(c)
}

func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("websocket write error", slog.Any("error", err))
				c.detach()
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				slog.Warn("websocket ping error", slog.Any("error", err))
				c.detach()
				return
			}
		}
	}
}

func (c *Client) ReadPump() {
	c.conn.SetReadLimit(c.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	defer c.detach()
	for {
		var cmd Command
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", append(c.logAttrs(), slog.Any("error", err))...)
			}
			return
		}
		c.processCommand(cmd)
	}
}

func (c *Client) processCommand(cmd Command) {
	if c.commands == nil {
		return
	}
	c.commands.Process(c, cmd)
}
