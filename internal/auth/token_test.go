package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/formpost/formpost/internal/model"
)

var testOwner = &model.Owner{
	ID:      "01HZX0000000000000000000AA",
	Email:   "owner@example.com",
	SiteKey: "0123456789abcdef0123456789abcdef",
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret", time.Hour)
	tok, err := issuer.Issue(testOwner)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	want := model.TokenClaims{OwnerID: testOwner.ID, SiteKey: testOwner.SiteKey, Email: testOwner.Email}
	if *claims != want {
		t.Errorf("claims = %+v, want %+v", *claims, want)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret", 0).WithClock(func() time.Time { return issued })

	tok, err := issuer.Issue(testOwner)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	inside := issuer.WithClock(func() time.Time { return issued.Add(DefaultTokenTTL - time.Minute) })
	if _, err := inside.Verify(tok); err != nil {
		t.Errorf("token should be valid before expiry: %v", err)
	}

	after := issuer.WithClock(func() time.Time { return issued.Add(DefaultTokenTTL + time.Minute) })
	if _, err := after.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _ := NewTokenIssuer("secret-a", time.Hour).Issue(testOwner)
	if _, err := NewTokenIssuer("secret-b", time.Hour).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		SiteKey: testOwner.SiteKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer("test-secret", time.Hour).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("HS512 token error = %v, want ErrInvalidToken", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := NewTokenIssuer("test-secret", time.Hour).Verify(none); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("none token error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_Garbage(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := NewTokenIssuer("s", time.Hour).Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestClaimsContext(t *testing.T) {
	t.Parallel()

	if ClaimsFromContext(context.Background()) != nil {
		t.Error("empty context should have no claims")
	}
	if SiteKeyFromContext(context.Background()) != "" {
		t.Error("empty context should have no site key")
	}

	ctx := ContextWithClaims(context.Background(), &model.TokenClaims{SiteKey: "abc"})
	if got := SiteKeyFromContext(ctx); got != "abc" {
		t.Errorf("SiteKeyFromContext = %q, want abc", got)
	}
}
