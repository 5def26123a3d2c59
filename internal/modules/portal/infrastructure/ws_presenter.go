package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/domain"
)

const DefaultConfirmTimeout = 60 * time.Second

var ErrConfirmTimeout = errors.New("confirmation not answered in time")

// MessageSender is the outbound half of a websocket client.
type MessageSender interface {
	SendDomainMessage(msg *domain.Message)
}

// ConfirmRequest is pushed on <entity>.confirm; the browser answers with a
// confirm command carrying the same request id.
type ConfirmRequest struct {
	RequestID string      `json:"requestId"`
	Prompt    port.Prompt `json:"prompt"`
}

// WebsocketPresenter renders prompts, alerts and navigation of one list view
// as messages to its socket.
type WebsocketPresenter struct {
	sender  MessageSender
	entity  string
	viewID  string
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	hostID  string
	pending map[string]chan bool
}

func NewWebsocketPresenter(sender MessageSender, entity, viewID, hostID string, timeout time.Duration) *WebsocketPresenter {
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	return &WebsocketPresenter{
		sender:  sender,
		entity:  strings.TrimSpace(entity),
		viewID:  strings.TrimSpace(viewID),
		hostID:  strings.TrimSpace(hostID),
		timeout: timeout,
		now:     time.Now,
		pending: make(map[string]chan bool),
	}
}

// SetHost changes the host stamped on outgoing messages.
func (p *WebsocketPresenter) SetHost(hostID string) {
	p.mu.Lock()
	p.hostID = strings.TrimSpace(hostID)
	p.mu.Unlock()
}

func (p *WebsocketPresenter) Confirm(ctx context.Context, prompt port.Prompt) (bool, error) {
	requestID := uuid.NewString()
	reply := make(chan bool, 1)
	p.mu.Lock()
	p.pending[requestID] = reply
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, requestID)
		p.mu.Unlock()
	}()

	p.push(domain.ActionConfirm, ConfirmRequest{RequestID: requestID, Prompt: prompt})

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case accepted := <-reply:
		return accepted, nil
	case <-ctx.Done():
		return false, fmt.Errorf("confirm %s: %w", requestID, ctx.Err())
	case <-timer.C:
		return false, fmt.Errorf("confirm %s: %w", requestID, ErrConfirmTimeout)
	}
}

// Resolve delivers the user's answer; unknown or already answered ids are
// ignored.
func (p *WebsocketPresenter) Resolve(requestID string, accepted bool) bool {
	p.mu.Lock()
	reply, ok := p.pending[strings.TrimSpace(requestID)]
	if ok {
		delete(p.pending, strings.TrimSpace(requestID))
	}
	p.mu.Unlock()
	if !ok {
		slog.Debug("connect-view confirm reply unmatched", slog.String("requestId", requestID), slog.String("viewId", p.viewID))
		return false
	}
	reply <- accepted
	return true
}

// Pending reports how many prompts are awaiting an answer.
func (p *WebsocketPresenter) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *WebsocketPresenter) Notify(_ context.Context, alert port.Alert) {
	p.push(domain.ActionAlert, alert)
}

func (p *WebsocketPresenter) Navigate(_ context.Context, nav port.Navigation) {
	p.push(domain.ActionNavigate, nav)
}

// PushState sends a list state snapshot on <entity>.list.
func (p *WebsocketPresenter) PushState(state any) {
	p.push(domain.ActionList, state)
}

// PushError reports a rejected command on <entity>.error.
func (p *WebsocketPresenter) PushError(command string, err error) {
	if err == nil {
		return
	}
	p.push(domain.ActionError, map[string]string{"command": command, "error": port.Describe(err)})
}

func (p *WebsocketPresenter) push(action string, data any) {
	p.mu.Lock()
	hostID := p.hostID
	p.mu.Unlock()
	msg := domain.BuildViewMessage(p.entity, action, p.viewID, hostID, data, p.now())
	if msg == nil {
		return
	}
	p.sender.SendDomainMessage(msg)
}

var (
	_ port.Confirmer = (*WebsocketPresenter)(nil)
	_ port.Notifier  = (*WebsocketPresenter)(nil)
	_ port.Navigator = (*WebsocketPresenter)(nil)
)
