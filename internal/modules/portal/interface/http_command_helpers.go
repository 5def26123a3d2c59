package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"portalConsole/internal/modules/portal/application/usecase"
	"portalConsole/internal/modules/portal/infrastructure"
)

var errInvalidPayload = errors.New("invalid payload")

// errorPusher reports command failures back to the socket.
type errorPusher interface {
	PushError(command string, err error)
}

func decodeCommand[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 {
		return payload, nil
	}
	return payload, json.Unmarshal(raw, &payload)
}

// viewCommand decodes the payload into T and runs fn against the view.
// Failures other than a declined confirmation are pushed on <entity>.error.
func viewCommand[T any](view usecase.View, out errorPusher, action string, fn func(ctx context.Context, payload T) error) infrastructure.CommandHandler {
	return func(ctx context.Context, _ *infrastructure.Client, cmd infrastructure.Command) {
		payload, err := decodeCommand[T](cmd.Payload)
		if err != nil {
			slog.Warn("ws view payload decode failed", slog.String("entity", view.Entity()), slog.String("viewId", view.ID()), slog.String("action", action), slog.Any("error", err))
			out.PushError(action, fmt.Errorf("%w: %v", errInvalidPayload, err))
			return
		}
		if err := fn(ctx, payload); err != nil {
			if errors.Is(err, usecase.ErrConfirmationDeclined) {
				return
			}
			slog.Warn("ws view command failed", slog.String("entity", view.Entity()), slog.String("viewId", view.ID()), slog.String("action", action), slog.Any("error", err))
			out.PushError(action, err)
		}
	}
}
