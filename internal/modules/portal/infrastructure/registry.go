package infrastructure

import (
	"context"
	"errors"
	"sync"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/domain"
)

// HandlerRegistry routes broker events to the handlers registered for the
// topic they were read from.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]port.TopicHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]port.TopicHandler)}
}

func (r *HandlerRegistry) Register(h port.TopicHandler) {
	if h == nil || h.Topic() == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Topic()] = append(r.handlers[h.Topic()], h)
}

// Topics lists every topic with at least one handler.
func (r *HandlerRegistry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	return topics
}

func (r *HandlerRegistry) Dispatch(ctx context.Context, source string, msg *domain.Message) error {
	r.mu.RLock()
	handlers := append([]port.TopicHandler(nil), r.handlers[source]...)
	r.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler.Handle(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
