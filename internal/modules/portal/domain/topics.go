package domain

import "strings"

const (
	SystemEntity = "system"

	TopicSystemConnected = SystemEntity + ".connected"
	TopicSystemPong      = SystemEntity + ".pong"
	TopicSystemError     = SystemEntity + ".error"

	ActionConnected = "connected"
	ActionPong      = "pong"
	ActionError     = "error"
	ActionList      = "list"
	ActionConfirm   = "confirm"
	ActionAlert     = "alert"
	ActionNavigate  = "navigate"
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
)

// ListTopic returns the topic list state snapshots are pushed on.
func ListTopic(entity string) string {
	return buildEntityTopic(entity, ActionList)
}

// ConfirmTopic returns the topic confirmation prompts are pushed on.
func ConfirmTopic(entity string) string {
	return buildEntityTopic(entity, ActionConfirm)
}

// AlertTopic returns the topic blocking alerts are pushed on.
func AlertTopic(entity string) string {
	return buildEntityTopic(entity, ActionAlert)
}

// NavigateTopic returns the topic navigation requests are pushed on.
func NavigateTopic(entity string) string {
	return buildEntityTopic(entity, ActionNavigate)
}

// ErrorTopic returns the canonical error topic for the given entity.
func ErrorTopic(entity string) string {
	return buildEntityTopic(entity, ActionError)
}

// CustomTopic returns the canonical topic for the given entity and action.
func CustomTopic(entity, action string) string {
	return buildEntityTopic(entity, action)
}

func buildEntityTopic(entity, action string) string {
	cleanEntity := strings.TrimSpace(entity)
	cleanAction := strings.TrimSpace(action)
	if cleanEntity == "" || cleanAction == "" {
		return ""
	}
	return cleanEntity + "." + cleanAction
}
