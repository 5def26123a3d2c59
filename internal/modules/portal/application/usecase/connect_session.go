package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/shared/auth"
)

type ConnectViewInput struct {
	Token  string
	Entity string
	// HostID selects a tenant other than the one in the token.
	HostID string
}

type ConnectViewOutput struct {
	Claims  *auth.Claims
	Session domain.Session
	Entry   Entry
}

type ConnectViewUseCase struct {
	Validator auth.TokenValidator
	Catalog   *Catalog
}

var (
	ErrMissingToken  = errors.New("missing token")
	ErrMissingEntity = errors.New("missing entity")
)

func NewConnectViewUseCase(validator auth.TokenValidator, catalog *Catalog) *ConnectViewUseCase {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &ConnectViewUseCase{Validator: validator, Catalog: catalog}
}

// Execute validates the token and resolves the entity a view is opened for.
func (uc *ConnectViewUseCase) Execute(ctx context.Context, input ConnectViewInput) (*ConnectViewOutput, error) {
	if strings.TrimSpace(input.Entity) == "" {
		return nil, ErrMissingEntity
	}
	entry, err := uc.Catalog.Lookup(input.Entity)
	if err != nil {
		slog.Warn("connect-view unknown entity", slog.String("entity", input.Entity))
		return nil, err
	}
	claims, session, err := uc.Authenticate(ctx, input.Token, input.HostID)
	if err != nil {
		return nil, err
	}
	return &ConnectViewOutput{Claims: claims, Session: session, Entry: entry}, nil
}

// Authenticate validates the token and derives the read-only session.
func (uc *ConnectViewUseCase) Authenticate(ctx context.Context, token, hostID string) (*auth.Claims, domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Session{}, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, domain.Session{}, ErrMissingToken
	}
	claims, err := uc.Validator.Validate(token)
	if err != nil {
		slog.Warn("connect-view token validation failed", slog.Any("error", err))
		return nil, domain.Session{}, err
	}
	host := strings.TrimSpace(hostID)
	if host == "" {
		host = strings.TrimSpace(claims.Host)
	}
	session := domain.Session{
		ID:     claims.SessionID,
		HostID: host,
		UserID: claims.User(),
		Email:  claims.Email,
		Roles:  append([]string(nil), claims.Roles...),
	}
	slog.Info("connect-view token valid", slog.String("sessionId", session.ID), slog.String("userId", session.UserID), slog.String("hostId", session.HostID))
	return claims, session, nil
}
