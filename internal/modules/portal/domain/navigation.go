package domain

import (
	"strings"

	"portalConsole/internal/shared/normalization"
)

// NavigationState is the in-memory context one view hands to the next:
// seed fields for the target list, or the entity being edited, plus the path
// to come back to.
type NavigationState struct {
	Data   map[string]any `json:"data,omitempty"`
	Source string         `json:"source,omitempty"`
}

// Value returns a seed field rendered as a string. Missing and composite
// values yield "".
func (n NavigationState) Value(key string) string {
	if n.Data == nil {
		return ""
	}
	return normalization.StringFromAny(n.Data[strings.TrimSpace(key)])
}

// Empty reports whether the state carries no seed data.
func (n NavigationState) Empty() bool {
	return len(n.Data) == 0
}
