package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/domain"
)

const (
	DefaultQueryPath   = "/portal/query"
	DefaultCommandPath = "/portal/command"
	DefaultCSRFCookie  = "csrf"
	CSRFHeader         = "X-CSRF-TOKEN"

	maxPortalBody = 16 << 20
	maxErrorBody  = 4096
)

// PortalClientConfig locates the two portal endpoints.
type PortalClientConfig struct {
	BaseURL     string
	QueryPath   string
	CommandPath string
	CSRFCookie  string
	Timeout     time.Duration
}

// PortalHTTPClient sends envelopes to the portal with the session's cookies
// and the CSRF header read from the jar on every request.
type PortalHTTPClient struct {
	rest        *RESTClient
	queryPath   string
	commandPath string
	csrfCookie  string
}

func NewPortalHTTPClient(cfg PortalClientConfig, client *http.Client) *PortalHTTPClient {
	return &PortalHTTPClient{
		rest:        NewRESTClient(cfg.BaseURL, cfg.Timeout, client),
		queryPath:   firstNonEmpty(cfg.QueryPath, DefaultQueryPath),
		commandPath: firstNonEmpty(cfg.CommandPath, DefaultCommandPath),
		csrfCookie:  firstNonEmpty(cfg.CSRFCookie, DefaultCSRFCookie),
	}
}

// Query issues GET <queryPath>?cmd=<envelope json>.
func (c *PortalHTTPClient) Query(ctx context.Context, envelope domain.Envelope) ([]byte, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encode query envelope: %w", err)
	}
	req, err := c.rest.NewRequest(ctx, http.MethodGet, c.queryPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.URL.RawQuery = url.Values{"cmd": []string{string(encoded)}}.Encode()
	req.Header.Set("Accept", "application/json")
	return c.send(req, envelope)
}

// Command issues POST <commandPath> with the envelope as JSON body. A 2xx body
// carrying an error member is still a failure.
func (c *PortalHTTPClient) Command(ctx context.Context, envelope domain.Envelope) ([]byte, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encode command envelope: %w", err)
	}
	req, err := c.rest.NewRequest(ctx, http.MethodPost, c.commandPath, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build command request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.send(req, envelope)
	if err != nil {
		return nil, err
	}
	if perr := commandBodyError(body); perr != nil {
		slog.Warn("portal command rejected", slog.String("service", envelope.Service), slog.String("action", envelope.Action), slog.String("description", perr.Description))
		return nil, perr
	}
	return body, nil
}

func (c *PortalHTTPClient) send(req *http.Request, envelope domain.Envelope) ([]byte, error) {
	if token := c.rest.Cookie(req.URL, c.csrfCookie); token != "" {
		req.Header.Set(CSRFHeader, token)
	}

	start := time.Now()
	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("portal request error", slog.String("method", req.Method), slog.String("action", envelope.Action), slog.Any("error", err))
		return nil, fmt.Errorf("portal %s failed: %w", envelope.Action, err)
	}
	defer res.Body.Close()
	slog.Debug("portal response",
		slog.String("method", req.Method),
		slog.String("service", envelope.Service),
		slog.String("action", envelope.Action),
		slog.Int("status", res.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		perr := decodeStatusError(res.StatusCode, raw)
		slog.Warn("portal unexpected status", slog.Int("status", res.StatusCode), slog.String("action", envelope.Action), slog.String("code", perr.Code), slog.String("description", perr.Description))
		return nil, perr
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxPortalBody))
	if err != nil {
		return nil, fmt.Errorf("read portal response: %w", err)
	}
	return body, nil
}

// statusBody is the error object the portal returns for failed calls.
type statusBody struct {
	StatusCode  int    `json:"statusCode"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (s statusBody) text() string {
	return firstNonEmpty(s.Description, s.Message)
}

func decodeStatusError(status int, raw []byte) *port.PortalError {
	perr := &port.PortalError{Status: status}
	var body statusBody
	if err := json.Unmarshal(raw, &body); err == nil {
		perr.Code = strings.TrimSpace(body.Code)
		perr.Description = strings.TrimSpace(body.text())
		return perr
	}
	perr.Description = strings.TrimSpace(string(raw))
	return perr
}

func commandBodyError(body []byte) *port.PortalError {
	var wrapper struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil
	}
	raw := bytes.TrimSpace(wrapper.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("false")) {
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return &port.PortalError{Description: strings.TrimSpace(text)}
	}
	var status statusBody
	if err := json.Unmarshal(raw, &status); err == nil {
		return &port.PortalError{Status: status.StatusCode, Code: strings.TrimSpace(status.Code), Description: strings.TrimSpace(status.text())}
	}
	return &port.PortalError{Description: string(raw)}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var _ port.Portal = (*PortalHTTPClient)(nil)
