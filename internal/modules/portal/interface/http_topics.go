package transport

import (
	"strings"

	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/shared/normalization"
)

// viewTopics are the topics a view socket receives.
func viewTopics(entity string) []string {
	entity = strings.TrimSpace(entity)
	return compactTopics(
		domain.ListTopic(entity),
		domain.ConfirmTopic(entity),
		domain.AlertTopic(entity),
		domain.NavigateTopic(entity),
		domain.ErrorTopic(entity),
		domain.TopicSystemPong,
	)
}

// eventTopics expands entities and actions into <entity>.<action> topics.
// Unknown entity spellings are normalized; empty parts are skipped.
func eventTopics(entities, actions []string) []string {
	topics := make([]string, 0, len(entities)*len(actions))
	for _, raw := range entities {
		entity := normalization.NormalizeEntity(raw)
		if entity == "" {
			continue
		}
		for _, action := range actions {
			action = strings.TrimSpace(strings.ToLower(action))
			if action == "" {
				continue
			}
			topics = append(topics, domain.CustomTopic(entity, action))
		}
	}
	return compactTopics(topics...)
}

func compactTopics(topics ...string) []string {
	out := make([]string, 0, len(topics))
	seen := make(map[string]struct{}, len(topics))
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		if _, exists := seen[topic]; exists {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
