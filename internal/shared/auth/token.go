package auth

import (
	"net/http"
	"strings"
)

// DefaultTokenCookie is the cookie the portal SPA stores its access token in.
const DefaultTokenCookie = "accessToken"

const defaultTokenParam = "token"

// BearerToken returns the token of an "Authorization: Bearer" header value,
// or "" for any other scheme.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ExtractToken finds the session token of a browser request. The
// Authorization header wins, then the queryParam query value, then the
// cookie. Empty names fall back to "token" and DefaultTokenCookie.
func ExtractToken(r *http.Request, queryParam, cookieName string) string {
	if r == nil {
		return ""
	}
	if token := BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if queryParam == "" {
		queryParam = defaultTokenParam
	}
	if r.URL != nil {
		if token := strings.TrimSpace(r.URL.Query().Get(queryParam)); token != "" {
			return token
		}
	}
	if cookieName == "" {
		cookieName = DefaultTokenCookie
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
