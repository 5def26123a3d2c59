package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"portalConsole/internal/modules/portal/application/usecase"
	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/modules/portal/infrastructure"
	"portalConsole/internal/shared/normalization"
)

// EventsSocketOptions tunes /ws/events.
type EventsSocketOptions struct {
	SendBuffer     int
	AllowedActions []string
	TokenCookie    string
	AllowedOrigins []string
}

// NewEventsWebsocketHandler exposes /ws/events requiring authentication and
// streams entity events of the session host. ?entities=roles,groups narrows
// the stream; without it every event of the host is delivered.
func NewEventsWebsocketHandler(hub *infrastructure.Hub, connectUC *usecase.ConnectViewUseCase, opts EventsSocketOptions) echo.HandlerFunc {
	upgrader := newUpgrader(opts.AllowedOrigins)
	actions := opts.AllowedActions
	if len(actions) == 0 {
		actions = []string{domain.ActionCreated, domain.ActionUpdated, domain.ActionDeleted}
	}

	return func(c echo.Context) error {
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		peerIP := c.RealIP()

		ctx, cancel := context.WithTimeout(c.Request().Context(), connectTimeout)
		defer cancel()
		_, session, err := connectUC.Authenticate(ctx, requestToken(c, opts.TokenCookie), c.QueryParam("hostId"))
		if err != nil {
			httpErr := connectErrors.HTTPError(err)
			slog.Warn("events ws auth failed", slog.String("ip", peerIP), slog.Int("status", httpErr.Code), slog.Any("error", err))
			return httpErr
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("events ws upgrade failed", slog.String("ip", peerIP), slog.String("reqID", requestID), slog.Any("error", err))
			return err
		}

		streamID := "events-" + uuid.NewString()
		client := infrastructure.NewClient(hub, conn, infrastructure.ClientInfo{
			UserID:    session.UserID,
			SessionID: session.ID,
			HostID:    session.HostID,
			ViewID:    streamID,
			Entity:    "events",
		}, opts.SendBuffer, nil)

		topics := eventTopics(splitList(c.QueryParam("entities")), actions)
		if len(topics) == 0 {
			hub.AttachClientToAll(client)
			topics = []string{"*"}
		} else {
			hub.AttachClient(client, topics)
		}

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(domain.BuildSystemMessage(domain.ActionConnected,
			map[string]string{"userId": session.UserID, "sessionId": session.ID, "hostId": session.HostID},
			map[string]any{"mode": "events", "topics": topics},
			time.Now(),
		))
		slog.Info("events ws connected", slog.String("userId", session.UserID), slog.String("sessionId", session.ID), slog.String("hostId", session.HostID), slog.String("ip", peerIP), slog.String("reqID", requestID))
		return nil
	}
}

// EventRequest is an entity change pushed over HTTP by deployments without a
// broker.
type EventRequest struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	HostID     string            `json:"hostId"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
}

type EventResponse struct {
	Success bool   `json:"success"`
	Topic   string `json:"topic"`
}

// EventSink receives entity change events.
type EventSink interface {
	Handle(ctx context.Context, msg *domain.Message) error
}

// NewEventsHTTPHandler accepts POST /api/events from an authenticated caller
// and feeds the event into the same path broker events take.
func NewEventsHTTPHandler(connectUC *usecase.ConnectViewUseCase, sink EventSink, tokenCookie string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, _, err := connectUC.Authenticate(c.Request().Context(), requestToken(c, tokenCookie), ""); err != nil {
			return connectErrors.HTTPError(err)
		}

		var req EventRequest
		if err := c.Bind(&req); err != nil {
			slog.Warn("events http: invalid request body", slog.Any("error", err))
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		entity := normalization.NormalizeEntity(req.Entity)
		action := strings.ToLower(strings.TrimSpace(req.Action))
		if entity == "" || action == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "entity and action are required")
		}

		metadata := map[string]string{}
		for k, v := range req.Metadata {
			metadata[k] = v
		}
		if host := strings.TrimSpace(req.HostID); host != "" {
			metadata["hostId"] = host
		}
		msg := &domain.Message{
			Topic:      domain.CustomTopic(entity, action),
			Entity:     entity,
			Action:     action,
			ResourceID: strings.TrimSpace(req.ResourceID),
			Metadata:   metadata,
			Data:       req.Data,
			Timestamp:  time.Now().UTC(),
		}
		if err := sink.Handle(c.Request().Context(), msg); err != nil {
			slog.Error("events http: handler failed", slog.String("topic", msg.Topic), slog.Any("error", err))
			return echo.NewHTTPError(http.StatusInternalServerError, "event not processed")
		}
		slog.Info("events http: accepted", slog.String("topic", msg.Topic), slog.String("hostId", msg.HostID()))
		return c.JSON(http.StatusAccepted, EventResponse{Success: true, Topic: msg.Topic})
	}
}
