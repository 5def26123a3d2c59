package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const defaultPortalBaseURL = "https://localhost"

// RESTClient resolves endpoints against the portal base URL. A zero timeout
// keeps the timeout of the given client.
type RESTClient struct {
	baseURL string
	client  *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration, client *http.Client) *RESTClient {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultPortalBaseURL
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if client == nil {
		client = &http.Client{Timeout: timeout}
	} else if timeout > 0 {
		copied := *client
		copied.Timeout = timeout
		client = &copied
	}
	return &RESTClient{baseURL: trimmed, client: client}
}

func (c *RESTClient) BaseURL() string { return c.baseURL }

func (c *RESTClient) NewRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	return http.NewRequestWithContext(ctx, method, url, body)
}

func (c *RESTClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// Cookie returns the value the jar would send to u under name.
func (c *RESTClient) Cookie(u *url.URL, name string) string {
	if c.client.Jar == nil || u == nil || name == "" {
		return ""
	}
	for _, cookie := range c.client.Jar.Cookies(u) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

// NewSessionHTTPClient returns a client whose jar holds cookies for baseURL.
// Cookies without a domain become host-only cookies of baseURL.
func NewSessionHTTPClient(baseURL string, cookies []*http.Cookie) (*http.Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultPortalBaseURL
	}
	target, err := url.Parse(strings.TrimRight(trimmed, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse portal url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	forwarded := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || strings.TrimSpace(c.Name) == "" {
			continue
		}
		forwarded = append(forwarded, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(target, forwarded)
	return &http.Client{Jar: jar}, nil
}
