package domain

import (
	"errors"
	"strings"
)

const (
	// DefaultEnvelopeHost is the routing host every portal envelope carries.
	DefaultEnvelopeHost = "lightapi.net"
	// DefaultEnvelopeVersion is the service version portal actions are served under.
	DefaultEnvelopeVersion = "0.1.0"
)

var ErrInvalidEnvelope = errors.New("invalid envelope")

// Envelope is the self-describing RPC call sent to both the query and the
// command endpoint. Service and Action are routing keys for the portal and
// are passed through untouched.
type Envelope struct {
	Host    string `json:"host"`
	Service string `json:"service"`
	Action  string `json:"action"`
	Version string `json:"version"`
	Data    any    `json:"data"`
}

// NewEnvelope builds an envelope, defaulting host and version.
func NewEnvelope(host, service, action, version string, data any) Envelope {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultEnvelopeHost
	}
	version = strings.TrimSpace(version)
	if version == "" {
		version = DefaultEnvelopeVersion
	}
	return Envelope{
		Host:    host,
		Service: strings.TrimSpace(service),
		Action:  strings.TrimSpace(action),
		Version: version,
		Data:    data,
	}
}

// Validate reports whether the routing keys are present.
func (e Envelope) Validate() error {
	if e.Service == "" {
		return errors.Join(ErrInvalidEnvelope, errors.New("missing service"))
	}
	if e.Action == "" {
		return errors.Join(ErrInvalidEnvelope, errors.New("missing action"))
	}
	return nil
}
