package port

import (
	"context"

	"portalConsole/internal/modules/portal/domain"
)

// Broadcaster fans a message out to the websocket clients whose topics and
// session, host or view metadata match it.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// TopicHandler consumes entity events of one Kafka topic, or of the HTTP
// event endpoint when Topic is "http".
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}
