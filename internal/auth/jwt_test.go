package auth

import (
	"errors"
	"meteoapi/internal/entity/db"
	"testing"
	"time"
)

func TestNewManagerAndTokenLifecycle(t *testing.T) {
	mgr, err := NewManager("test-secret", "issuer", time.Minute*30, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	user := &db.User{ID: 42, Username: "observer", Email: "user@example.com", Role: db.UserRoleAdmin}
	token, expiresAt, err := mgr.GenerateToken(user)
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("expected future expiry time")
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error parsing token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %d, got %d", user.ID, claims.UserID)
	}
	if claims.Username != user.Username {
		t.Fatalf("expected username %s, got %s", user.Username, claims.Username)
	}
	if claims.Role != user.Role {
		t.Fatalf("expected role %s, got %s", user.Role, claims.Role)
	}
}

func TestTokenPairTypesAreNotInterchangeable(t *testing.T) {
	mgr, err := NewManager("test-secret", "issuer", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}
	pair, err := mgr.GenerateTokenPair(&db.User{ID: 7, Username: "u", Role: db.UserRoleUser})
	if err != nil {
		t.Fatalf("unexpected error generating pair: %v", err)
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatal("expected refresh token to outlive access token")
	}

	if _, err := mgr.ParseRefreshToken(pair.RefreshToken); err != nil {
		t.Fatalf("refresh token rejected: %v", err)
	}
	if _, err := mgr.ParseToken(pair.RefreshToken); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for refresh token used as access, got %v", err)
	}
	if _, err := mgr.ParseRefreshToken(pair.AccessToken); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for access token used as refresh, got %v", err)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	issuer, _ := NewManager("secret-a", "issuer", time.Minute, time.Hour)
	verifier, _ := NewManager("secret-b", "issuer", time.Minute, time.Hour)

	token, _, err := issuer.GenerateToken(&db.User{ID: 1, Username: "u"})
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("   ", "", time.Hour, time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
