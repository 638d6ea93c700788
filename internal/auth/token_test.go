package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	dom "taskmanager/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()
	tk, err := NewTokens("test-secret", "task-manager")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tk
}

func TestTokens_IssueThenVerify(t *testing.T) {
	tk := newTestTokens(t)
	u := dom.User{ID: 42, Email: "alice@example.com", Name: "Alice"}

	raw, err := tk.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := tk.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != (dom.Identity{ID: 42, Email: "alice@example.com"}) {
		t.Fatalf("identity = %+v", id)
	}

	c, err := tk.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Name != "Alice" || c.Subject != "42" {
		t.Fatalf("claims = %+v", c)
	}
	if got := c.ExpiresAt.Sub(c.IssuedAt.Time); got != TokenTTL {
		t.Fatalf("validity window = %v, want %v", got, TokenTTL)
	}
}

func TestTokens_RejectsExpired(t *testing.T) {
	tk := newTestTokens(t)
	tk.now = func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) }
	raw, err := tk.Issue(dom.User{ID: 1, Email: "a@b.c"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tk.now = time.Now
	if _, err := tk.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokens_RejectsWrongSecret(t *testing.T) {
	raw, err := newTestTokens(t).Issue(dom.User{ID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other, _ := NewTokens("other-secret", "task-manager")
	if _, err := other.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokens_RejectsWrongIssuer(t *testing.T) {
	raw, err := newTestTokens(t).Issue(dom.User{ID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other, _ := NewTokens("test-secret", "someone-else")
	if _, err := other.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokens_RejectsUnsignedAndMalformed(t *testing.T) {
	tk := newTestTokens(t)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "task-manager",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "task-manager"},
	})
	noExpRaw, err := noExp.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-number",
			Issuer:    "task-manager",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	badSubjectRaw, err := badSubject.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	valid, _ := tk.Issue(dom.User{ID: 5})
	tampered := valid[:strings.LastIndex(valid, ".")+1] + "AAAA"

	for name, raw := range map[string]string{
		"empty":       "",
		"garbage":     "not.a.token",
		"alg none":    unsigned,
		"no expiry":   noExpRaw,
		"bad subject": badSubjectRaw,
		"tampered":    tampered,
	} {
		if _, err := tk.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestNewTokens_RequiresSecret(t *testing.T) {
	if _, err := NewTokens("", "x"); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	h, err := HashPassword("Passw0rd!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == "Passw0rd!" || !strings.HasPrefix(h, "$2a$10$") {
		t.Fatalf("unexpected hash %q", h)
	}
	if !CheckPassword(h, "Passw0rd!") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(h, "passw0rd!") {
		t.Fatal("wrong password accepted")
	}
	h2, _ := HashPassword("Passw0rd!")
	if h == h2 {
		t.Fatal("hashes of the same password must differ by salt")
	}
}
