package broker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"portalConsole/internal/modules/portal/domain"
)

// Dispatcher routes a message read from source to its handlers.
type Dispatcher interface {
	Dispatch(ctx context.Context, source string, msg *domain.Message) error
}

// StartKafkaConsumers runs one consumer per topic in group. Consumers stop
// when ctx ends.
func StartKafkaConsumers(
	ctx context.Context,
	group *errgroup.Group,
	registry Dispatcher,
	brokers []string,
	groupID string,
	topics []string,
) {
	if len(brokers) == 0 {
		// No brokers configured; we avoid calling kafka.NewReader with an empty broker list.
		slog.Info("kafka consumers disabled: no brokers configured")
		return
	}
	for _, topic := range topics {
		consumer := NewKafkaConsumer(brokers, groupID, topic)
		startConsumer(ctx, group, registry, consumer)
	}
}

func startConsumer(ctx context.Context, group *errgroup.Group, registry Dispatcher, consumer *KafkaConsumer) {
	group.Go(func() error {
		slog.Info("kafka consumer started", slog.String("topic", consumer.topic))
		return consumer.Consume(ctx, func(msg *domain.Message) error {
			return registry.Dispatch(ctx, consumer.topic, msg)
		})
	})
}
