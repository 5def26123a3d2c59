package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"portalConsole/internal/modules/portal/domain"
)

const defaultCommandTimeout = 2 * time.Minute

type Command struct {
	Action  string          `json:"action"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (c Command) actionKey() string {
	return normalizeAction(c.Action)
}

type CommandHandler func(ctx context.Context, client *Client, cmd Command)

type registeredHandler struct {
	fn    CommandHandler
	async bool
}

// CommandProcessor dispatches inbound client commands. Sync handlers run on
// the read pump; async handlers and the fallback run in their own goroutine
// bounded by the command timeout and the client lifetime.
type CommandProcessor struct {
	hub      *Hub
	handlers map[string]registeredHandler
	fallback CommandHandler
	timeout  time.Duration
	inflight sync.WaitGroup
}

func NewCommandProcessor(hub *Hub, fallback CommandHandler) *CommandProcessor {
	processor := &CommandProcessor{
		hub:      hub,
		handlers: make(map[string]registeredHandler),
		fallback: fallback,
		timeout:  defaultCommandTimeout,
	}
	processor.Register("subscribe", processor.handleSubscribe)
	processor.Register("unsubscribe", processor.handleUnsubscribe)
	processor.Register("ping", processor.handlePing)
	return processor
}

// SetTimeout bounds async handlers; zero or less keeps the current value.
func (p *CommandProcessor) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		p.timeout = timeout
	}
}

func (p *CommandProcessor) Register(action string, handler CommandHandler) {
	p.register(action, handler, false)
}

// RegisterAsync registers a handler that may block, such as one waiting for
// a confirmation reply that arrives on the same read pump.
func (p *CommandProcessor) RegisterAsync(action string, handler CommandHandler) {
	p.register(action, handler, true)
}

func (p *CommandProcessor) register(action string, handler CommandHandler, async bool) {
	if handler == nil {
		return
	}
	key := normalizeAction(action)
	if key == "" {
		return
	}
	p.handlers[key] = registeredHandler{fn: handler, async: async}
}

func (p *CommandProcessor) Process(client *Client, cmd Command) {
	if client == nil {
		return
	}

	action := cmd.actionKey()
	if action == "" {
		return
	}

	if handler, ok := p.handlers[action]; ok {
		if handler.async {
			p.runAsync(client, cmd, handler.fn)
			return
		}
		handler.fn(client.Context(), client, cmd)
		return
	}

	if p.fallback == nil {
		slog.Debug("ws command ignored", append(client.logAttrs(), slog.String("action", action))...)
		return
	}
	p.runAsync(client, cmd, p.fallback)
}

func (p *CommandProcessor) runAsync(client *Client, cmd Command, fn CommandHandler) {
	ctx, cancel := context.WithTimeout(client.Context(), p.timeout)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		defer cancel()
		fn(ctx, client, cmd)
	}()
}

// Wait blocks until every async handler has returned.
func (p *CommandProcessor) Wait() {
	p.inflight.Wait()
}

func (p *CommandProcessor) handleSubscribe(_ context.Context, client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		slog.Debug("ws subscribe ignored empty topic", client.logAttrs()...)
		return
	}
	p.hub.subscribe(client, topic)
	slog.Debug("ws subscribe", append(client.logAttrs(), slog.String("topic", topic))...)
}

func (p *CommandProcessor) handleUnsubscribe(_ context.Context, client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		return
	}
	p.hub.unsubscribe(client, topic)
}

func (p *CommandProcessor) handlePing(_ context.Context, client *Client, _ Command) {
	client.SendDomainMessage(domain.BuildSystemMessage(domain.ActionPong, nil, nil, time.Now()))
}

func normalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}
