package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"portalConsole/internal/modules/portal/domain"
)

// Hub tracks connected clients and their topic subscriptions. A client is
// registered under user:session[:view]; a second client with the same key
// replaces the first.
type Hub struct {
	mu      sync.RWMutex
	byTopic map[string]map[*Client]struct{}
	byKey   map[string]*Client
	global  map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		byTopic: make(map[string]map[*Client]struct{}),
		byKey:   make(map[string]*Client),
		global:  make(map[*Client]struct{}),
	}
}

// audience narrows a broadcast to the clients named in message metadata.
type audience struct {
	userID, sessionID, hostID, viewID string
}

func audienceOf(msg *domain.Message) audience {
	if msg.Metadata == nil {
		return audience{}
	}
	return audience{
		userID:    strings.TrimSpace(msg.Metadata["userId"]),
		sessionID: strings.TrimSpace(msg.Metadata["sessionId"]),
		hostID:    strings.TrimSpace(msg.Metadata["hostId"]),
		viewID:    strings.TrimSpace(msg.Metadata["viewId"]),
	}
}

func (a audience) includes(c *Client) bool {
	switch {
	case a.userID != "" && a.userID != c.userID:
		return false
	case a.sessionID != "" && a.sessionID != c.sessionID:
		return false
	case a.hostID != "" && a.hostID != c.HostID():
		return false
	case a.viewID != "" && a.viewID != c.viewID:
		return false
	}
	return true
}

// AttachClient registers c and subscribes it to topics.
func (h *Hub) AttachClient(c *Client, topics []string) {
	h.mu.Lock()
	h.registerLocked(c)
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			h.subscribeLocked(c, trimmed)
		}
	}
	h.mu.Unlock()
	slog.Info("ws client attached", append(c.logAttrs(), slog.Any("topics", topics))...)
}

// AttachClientToAll registers c as a subscriber of every topic.
func (h *Hub) AttachClientToAll(c *Client) {
	h.mu.Lock()
	h.registerLocked(c)
	h.global[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("ws client attached to all topics", c.logAttrs()...)
}

func (h *Hub) registerLocked(c *Client) {
	key := c.key()
	if existing, ok := h.byKey[key]; ok && existing != c {
		slog.Info("ws client replaced", existing.logAttrs()...)
		h.detachLocked(existing)
	}
	h.byKey[key] = c
}

func (h *Hub) subscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribeLocked(c, topic)
}

func (h *Hub) subscribeLocked(c *Client, topic string) {
	subs := h.byTopic[topic]
	if subs == nil {
		subs = make(map[*Client]struct{})
		h.byTopic[topic] = subs
	}
	subs[c] = struct{}{}
	c.subscribed[topic] = struct{}{}
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	h.dropTopicLocked(c, topic)
	h.mu.Unlock()
	slog.Debug("ws client unsubscribed", append(c.logAttrs(), slog.String("topic", topic))...)
}

func (h *Hub) dropTopicLocked(c *Client, topic string) {
	if subs, ok := h.byTopic[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.byTopic, topic)
		}
	}
	delete(c.subscribed, topic)
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if c == nil {
		return
	}
	for topic := range c.subscribed {
		h.dropTopicLocked(c, topic)
	}
	if current := h.byKey[c.key()]; current == c {
		delete(h.byKey, c.key())
	}
	delete(h.global, c)
	c.close()
	slog.Info("ws client detached", c.logAttrs()...)
}

// Broadcast fans msg out to topic subscribers and global clients. Metadata
// userId, sessionId, hostId and viewId narrow the audience when present.
func (h *Hub) Broadcast(_ context.Context, msg *domain.Message) {
	if msg == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal error", slog.String("topic", msg.Topic), slog.Any("error", err))
		return
	}
	target := audienceOf(msg)
	delivered := 0
	for _, c := range h.recipients(msg.Topic) {
		if target.includes(c) {
			c.enqueue(data)
			delivered++
		}
	}
	slog.Debug("broadcast delivered", slog.String("topic", msg.Topic), slog.Int("clients", delivered))
}

// recipients snapshots the subscribers of topic plus global clients, each
// once.
func (h *Hub) recipients(topic string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	subs := h.byTopic[topic]
	out := make([]*Client, 0, len(subs)+len(h.global))
	for c := range subs {
		out = append(out, c)
	}
	for c := range h.global {
		if _, dup := subs[c]; !dup {
			out = append(out, c)
		}
	}
	return out
}

// Len reports how many clients are registered.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byKey)
}

// Close detaches every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.byKey {
		h.detachLocked(c)
	}
	for c := range h.global {
		h.detachLocked(c)
	}
}
