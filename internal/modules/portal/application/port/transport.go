package port

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"portalConsole/internal/modules/portal/domain"
)

var (
	ErrPortalForbidden = errors.New("portal request forbidden")
	ErrPortalNotFound  = errors.New("portal resource not found")
	ErrPortalRejected  = errors.New("portal request rejected")
)

// QueryTransport sends read envelopes to the query endpoint and returns the
// raw success body.
type QueryTransport interface {
	Query(ctx context.Context, envelope domain.Envelope) ([]byte, error)
}

// CommandTransport sends mutating envelopes to the command endpoint and
// returns the raw success body.
type CommandTransport interface {
	Command(ctx context.Context, envelope domain.Envelope) ([]byte, error)
}

// Portal is both endpoints of one credentialed session.
type Portal interface {
	QueryTransport
	CommandTransport
}

// PortalError is a failure reported by the portal itself. Description is the
// server-defined text shown to the user when present.
type PortalError struct {
	Status      int
	Code        string
	Description string
}

func (e *PortalError) Error() string {
	var b strings.Builder
	b.WriteString("portal error")
	if e.Status > 0 {
		fmt.Fprintf(&b, " status=%d", e.Status)
	}
	if e.Code != "" {
		b.WriteString(" code=")
		b.WriteString(e.Code)
	}
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	return b.String()
}

// Unwrap exposes the status class as a sentinel for errors.Is.
func (e *PortalError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrPortalForbidden
	case http.StatusNotFound:
		return ErrPortalNotFound
	default:
		return ErrPortalRejected
	}
}

// Describe returns the text to surface to a user for err.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var portalErr *PortalError
	if errors.As(err, &portalErr) && strings.TrimSpace(portalErr.Description) != "" {
		return strings.TrimSpace(portalErr.Description)
	}
	return err.Error()
}
