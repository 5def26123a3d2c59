package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"portalConsole/internal/shared/auth"
)

type stubValidator struct {
	claims *auth.Claims
	err    error
}

func (s stubValidator) Validate(string) (*auth.Claims, error) { return s.claims, s.err }

func TestConnectViewBuildsSession(t *testing.T) {
	claims := &auth.Claims{SessionID: "sid-1", Host: "H1", Email: "a@b.c", Roles: []string{"admin"}, RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}
	uc := NewConnectViewUseCase(stubValidator{claims: claims}, nil)

	out, err := uc.Execute(context.Background(), ConnectViewInput{Token: "t", Entity: "rolePermission"})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if out.Entry.Entity != "role-permissions" {
		t.Fatalf("unexpected entity %s", out.Entry.Entity)
	}
	if out.Session.ID != "sid-1" || out.Session.HostID != "H1" || out.Session.UserID != "user-1" || out.Session.Email != "a@b.c" {
		t.Fatalf("unexpected session %+v", out.Session)
	}

	out, err = uc.Execute(context.Background(), ConnectViewInput{Token: "t", Entity: "roles", HostID: "H2"})
	if err != nil || out.Session.HostID != "H2" {
		t.Fatalf("host override ignored: %+v %v", out, err)
	}
}

func TestConnectViewErrors(t *testing.T) {
	invalid := errors.New("bad signature")
	uc := NewConnectViewUseCase(stubValidator{err: invalid}, nil)

	if _, err := uc.Execute(context.Background(), ConnectViewInput{Token: "t"}); !errors.Is(err, ErrMissingEntity) {
		t.Fatalf("expected ErrMissingEntity, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), ConnectViewInput{Token: "t", Entity: "tables"}); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), ConnectViewInput{Entity: "roles"}); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), ConnectViewInput{Token: "t", Entity: "roles"}); !errors.Is(err, invalid) {
		t.Fatalf("expected validator error, got %v", err)
	}
}
