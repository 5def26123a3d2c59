package port

import (
	"context"

	"portalConsole/internal/modules/portal/domain"
)

// Prompt asks the user to approve a destructive action.
type Prompt struct {
	Entity  string `json:"entity"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Key     string `json:"key,omitempty"`
}

const (
	SeverityError = "error"
	SeverityInfo  = "info"
)

// Alert is a blocking notification shown to the user.
type Alert struct {
	Entity   string `json:"entity"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Navigation moves the presentation layer to another view.
type Navigation struct {
	Entity string                 `json:"entity"`
	Path   string                 `json:"path"`
	State  domain.NavigationState `json:"state"`
}

// Confirmer blocks until the user accepts or declines. A context error means
// no answer was given.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, alert Alert)
}

type Navigator interface {
	Navigate(ctx context.Context, nav Navigation)
}

// AutoConfirm accepts or declines every prompt without asking.
type AutoConfirm bool

func (a AutoConfirm) Confirm(context.Context, Prompt) (bool, error) { return bool(a), nil }

// DiscardNotifier drops alerts.
type DiscardNotifier struct{}

func (DiscardNotifier) Notify(context.Context, Alert) {}

// DiscardNavigator drops navigation requests.
type DiscardNavigator struct{}

func (DiscardNavigator) Navigate(context.Context, Navigation) {}
