package handler

import (
	"context"
	"log/slog"
	"strings"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/application/usecase"
	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/shared/normalization"
)

// ViewRefresher refetches the live views of an entity.
type ViewRefresher interface {
	RefreshEntity(ctx context.Context, entity, hostID, skipViewID string) int
}

// EntityStreamHandler forwards the events of one Kafka topic to /ws/events
// subscribers and refreshes live list views of the entity.
type EntityStreamHandler struct {
	entity         string
	kafkaTopic     string
	allowedActions map[string]struct{}
	broadcastUC    *usecase.BroadcastUseCase
	views          ViewRefresher
}

func NewEntityStreamHandler(entity, kafkaTopic string, allowedActions []string, broadcastUC *usecase.BroadcastUseCase, views ViewRefresher) *EntityStreamHandler {
	actionSet := make(map[string]struct{}, len(allowedActions))
	for _, a := range allowedActions {
		if v := strings.TrimSpace(strings.ToLower(a)); v != "" {
			actionSet[v] = struct{}{}
		}
	}
	return &EntityStreamHandler{
		entity:         normalization.NormalizeEntity(entity),
		kafkaTopic:     kafkaTopic,
		allowedActions: actionSet,
		broadcastUC:    broadcastUC,
		views:          views,
	}
}

func (h *EntityStreamHandler) Topic() string { return h.kafkaTopic }

func (h *EntityStreamHandler) Handle(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return nil
	}
	if len(h.allowedActions) > 0 {
		if _, ok := h.allowedActions[strings.ToLower(strings.TrimSpace(msg.Action))]; !ok {
			return nil
		}
	}
	entityName := h.entity
	if entityName == "" {
		entityName = normalization.NormalizeEntity(msg.Entity)
	}
	if entityName == "" {
		slog.Debug("entity-stream event without entity", slog.String("topic", h.kafkaTopic))
		return nil
	}
	msg.Entity = entityName
	h.broadcastUC.Execute(ctx, msg)
	h.refreshViews(ctx, entityName, msg)
	return nil
}

func (h *EntityStreamHandler) refreshViews(ctx context.Context, entity string, msg *domain.Message) {
	if h.views == nil {
		return
	}
	hostID := eventHost(msg)
	refreshed := h.views.RefreshEntity(ctx, entity, hostID, "")
	slog.Info("entity-stream refresh", slog.String("entity", entity), slog.String("action", msg.Action), slog.String("hostId", hostID), slog.Int("views", refreshed))
}

// eventHost reads the tenant from metadata, then from the event payload.
func eventHost(msg *domain.Message) string {
	if host := msg.HostID(); host != "" {
		return host
	}
	return normalization.StringFromAny(normalization.MapFromPayload(msg.Data)["hostId"])
}

var _ port.TopicHandler = (*EntityStreamHandler)(nil)
