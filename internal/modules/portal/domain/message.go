package domain

import (
	"strings"
	"time"
)

// Message is the unit pushed to websocket subscribers and read from the
// entity event stream.
type Message struct {
	Topic      string            `json:"topic"`
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// HostID returns the tenant the message belongs to, if any.
func (m *Message) HostID() string {
	if m == nil || m.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(m.Metadata["hostId"])
}

// BuildViewMessage composes a message addressed to one list view.
func BuildViewMessage(entity, action, viewID, hostID string, data any, at time.Time) *Message {
	entityName := strings.TrimSpace(entity)
	topic := buildEntityTopic(entityName, action)
	if topic == "" {
		return nil
	}
	metadata := map[string]string{}
	if v := strings.TrimSpace(viewID); v != "" {
		metadata["viewId"] = v
	}
	if h := strings.TrimSpace(hostID); h != "" {
		metadata["hostId"] = h
	}
	return &Message{
		Topic:      topic,
		Entity:     entityName,
		Action:     strings.TrimSpace(action),
		ResourceID: strings.TrimSpace(viewID),
		Metadata:   metadata,
		Data:       data,
		Timestamp:  at.UTC(),
	}
}

// BuildSystemMessage composes a system.* message.
func BuildSystemMessage(action string, metadata map[string]string, data any, at time.Time) *Message {
	return &Message{
		Topic:     buildEntityTopic(SystemEntity, action),
		Entity:    SystemEntity,
		Action:    strings.TrimSpace(action),
		Metadata:  mergeMetadata(nil, metadata),
		Data:      data,
		Timestamp: at.UTC(),
	}
}

func mergeMetadata(target map[string]string, extras map[string]string) map[string]string {
	if len(extras) == 0 {
		return target
	}
	if target == nil {
		target = map[string]string{}
	}
	for key, value := range extras {
		trimmedKey := strings.TrimSpace(key)
		trimmedValue := strings.TrimSpace(value)
		if trimmedKey == "" || trimmedValue == "" {
			continue
		}
		target[trimmedKey] = trimmedValue
	}
	return target
}
