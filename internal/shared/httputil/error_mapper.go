package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorInfo is the status and client-safe message chosen for an error.
type HTTPErrorInfo struct {
	Status  int
	Message string
}

type mapping struct {
	target error
	info   HTTPErrorInfo
}

// ErrorMapper turns errors into HTTP responses. Registered mappings are
// tried in order with errors.Is, then context errors, then the default.
type ErrorMapper struct {
	mappings []mapping
	fallback HTTPErrorInfo
}

var contextMappings = []mapping{
	{context.DeadlineExceeded, HTTPErrorInfo{http.StatusGatewayTimeout, "request timeout"}},
	{context.Canceled, HTTPErrorInfo{http.StatusServiceUnavailable, "request cancelled"}},
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{fallback: HTTPErrorInfo{http.StatusInternalServerError, "internal server error"}}
}

// WithMapping maps err, and anything wrapping it, to status and message.
func (m *ErrorMapper) WithMapping(err error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, mapping{err, HTTPErrorInfo{status, message}})
	return m
}

// WithDefault sets the response for unmatched errors.
func (m *ErrorMapper) WithDefault(status int, message string) *ErrorMapper {
	m.fallback = HTTPErrorInfo{status, message}
	return m
}

func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}
	for _, group := range [][]mapping{m.mappings, contextMappings} {
		for _, candidate := range group {
			if errors.Is(err, candidate.target) {
				return candidate.info
			}
		}
	}
	return m.fallback
}

// HTTPError is Map as an echo error. The original error is kept as Internal
// for logging and never sent to the client.
func (m *ErrorMapper) HTTPError(err error) *echo.HTTPError {
	info := m.Map(err)
	return echo.NewHTTPError(info.Status, info.Message).SetInternal(err)
}
