package jwt

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func parse(t *testing.T, token, secret string) jwt.MapClaims {
	t.Helper()

	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	return claims
}

func TestIssueAndSubject(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	tok, err := Issue(secret, userID, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := Subject(parse(t, tok, secret))
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if got != userID {
		t.Fatalf("subject = %v, want %v", got, userID)
	}
}

func TestIssue_WrongSecretRejected(t *testing.T) {
	tok, err := Issue("secret-a", uuid.New(), 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	}, jwt.WithValidMethods([]string{"HS256"})); err == nil {
		t.Fatal("token signed with a different secret should be rejected")
	}
}

func TestSubject_MissingOrMalformed(t *testing.T) {
	if _, err := Subject(jwt.MapClaims{}); err == nil {
		t.Fatal("missing sub should be rejected")
	}
	if _, err := Subject(jwt.MapClaims{"sub": "not-a-uuid"}); err == nil {
		t.Fatal("malformed sub should be rejected")
	}
	if _, err := Subject(jwt.MapClaims{"sub": 42}); err == nil {
		t.Fatal("non-string sub should be rejected")
	}
}
