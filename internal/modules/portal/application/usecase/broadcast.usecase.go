package usecase

import (
	"context"
	"strings"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/shared/clock"
)

// BroadcastUseCase pushes entity events to /ws/events subscribers. Events
// without a topic get <entity>.<action>; events without a timestamp are
// stamped on receipt.
type BroadcastUseCase struct {
	broadcaster port.Broadcaster
	clock       clock.Clock
}

func NewBroadcastUseCase(b port.Broadcaster) *BroadcastUseCase {
	return &BroadcastUseCase{broadcaster: b, clock: clock.Real()}
}

func (uc *BroadcastUseCase) Execute(ctx context.Context, msg *domain.Message) {
	if uc == nil || uc.broadcaster == nil || msg == nil {
		return
	}
	if strings.TrimSpace(msg.Topic) == "" {
		msg.Topic = domain.CustomTopic(msg.Entity, msg.Action)
	}
	if msg.Topic == "" {
		return
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = uc.clock.Now().UTC()
	}
	uc.broadcaster.Broadcast(ctx, msg)
}
