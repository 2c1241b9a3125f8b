package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret-at-least-32-chars-long-for-security"

func TestTokenManager_IssueAndValidate_Success(t *testing.T) {
	t.Parallel()

	manager := NewTokenManager(testSecret, "learnify-test", 15*time.Minute)
	sessionID := uuid.New()

	token, expiresAt, err := manager.IssueToken(sessionID)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if time.Until(expiresAt) <= 14*time.Minute {
		t.Errorf("expiresAt = %v, want ~15m from now", expiresAt)
	}

	got, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if got != sessionID {
		t.Errorf("expected sessionID %s, got %s", sessionID, got)
	}
}

func TestTokenManager_ValidateToken_Expired(t *testing.T) {
	t.Parallel()

	manager := NewTokenManager(testSecret, "learnify-test", time.Minute)
	manager.nowFn = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := manager.IssueToken(uuid.New())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	manager.nowFn = time.Now
	_, err = manager.ValidateToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected jwt.ErrTokenExpired, got %v", err)
	}
}

func TestTokenManager_ValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenManager(testSecret, "learnify-test", time.Minute)
	other := NewTokenManager("another-secret-that-is-also-32-chars-long!!", "learnify-test", time.Minute)

	token, _, err := issuer.IssueToken(uuid.New())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_ValidateToken_WrongIssuer(t *testing.T) {
	t.Parallel()

	a := NewTokenManager(testSecret, "issuer-a", time.Minute)
	b := NewTokenManager(testSecret, "issuer-b", time.Minute)

	token, _, err := a.IssueToken(uuid.New())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, err := b.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_ValidateToken_Empty(t *testing.T) {
	t.Parallel()

	manager := NewTokenManager(testSecret, "learnify-test", time.Minute)
	if _, err := manager.ValidateToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_ValidateToken_Garbage(t *testing.T) {
	t.Parallel()

	manager := NewTokenManager(testSecret, "learnify-test", time.Minute)
	if _, err := manager.ValidateToken("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_ValidateToken_WrongAlgorithm(t *testing.T) {
	t.Parallel()

	manager := NewTokenManager(testSecret, "learnify-test", time.Minute)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    "learnify-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Type: tokenType,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_ValidateToken_WrongType(t *testing.T) {
	t.Parallel()

	manager := NewTokenManager(testSecret, "learnify-test", time.Minute)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    "learnify-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Type: "access",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	_, err = manager.ValidateToken(token)
	if err == nil || !strings.Contains(err.Error(), "unexpected type") {
		t.Fatalf("expected unexpected type error, got %v", err)
	}
}
