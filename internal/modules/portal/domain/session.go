package domain

import "strings"

// Session is the read-only user context a controller is constructed with.
// HostID may be empty until the user picks a tenant.
type Session struct {
	ID     string
	HostID string
	UserID string
	Email  string
	Roles  []string
}

// Ready reports whether list fetches may run for this session.
func (s Session) Ready() bool {
	return strings.TrimSpace(s.HostID) != ""
}

// WithHost returns a copy bound to another tenant.
func (s Session) WithHost(hostID string) Session {
	cloned := s
	cloned.HostID = strings.TrimSpace(hostID)
	if s.Roles != nil {
		cloned.Roles = append([]string(nil), s.Roles...)
	}
	return cloned
}
