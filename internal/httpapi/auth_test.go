package httpapi

import (
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"petcare/backend/internal/domain"
)

func newTestAuth(t *testing.T) *AuthManager {
	t.Helper()
	auth, err := NewAuthManager("test-secret-key-with-enough-length", time.Hour, "Operator", "Sup3r-secret!")
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	return auth
}

func TestAuthManagerKeepsOnlyPasswordHash(t *testing.T) {
	auth := newTestAuth(t)
	if strings.Contains(string(auth.passwordHash), "Sup3r-secret!") {
		t.Fatal("expected operator password to be stored as a hash")
	}
	if !strings.HasPrefix(string(auth.passwordHash), "$2") {
		t.Fatalf("expected bcrypt hash prefix, got %s", auth.passwordHash)
	}
}

func TestLoginIssuesTokenForOperator(t *testing.T) {
	auth := newTestAuth(t)

	resp, err := auth.Login(domain.LoginRequest{Username: " operator ", Password: "Sup3r-secret!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !resp.Success || resp.AccessToken == "" || resp.ExpiresAt == "" {
		t.Fatalf("unexpected login response %+v", resp)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "operator" || actor.Role != operatorRole {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newTestAuth(t)
	cases := []domain.LoginRequest{
		{Username: "operator", Password: "wrong"},
		{Username: "someone", Password: "Sup3r-secret!"},
		{Username: "operator", Password: ""},
	}
	for _, req := range cases {
		if _, err := auth.Login(req); err == nil {
			t.Fatalf("expected login failure for %+v", req)
		}
	}
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	auth, err := NewAuthManager("secret", time.Hour, "operator", "")
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	if _, err := auth.Login(domain.LoginRequest{Username: "operator", Password: "anything"}); err == nil {
		t.Fatal("expected login to be disabled without a configured password")
	}
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	auth := newTestAuth(t)
	resp, err := auth.Login(domain.LoginRequest{Username: "operator", Password: "Sup3r-secret!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	auth := newTestAuth(t)

	claims := operatorClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "operator",
			Issuer:    tokenIssuer,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: operatorRole,
	}
	forged, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(forged); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}

	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := auth.ParseToken(unsigned); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
}
