package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
)

func newAuthority(t *testing.T, secret, algorithm string, ttlMinutes int) *auth.Authority {
	t.Helper()
	authority, err := auth.NewAuthority(config.AuthConfig{
		SecretKey:             secret,
		Algorithm:             algorithm,
		AccessTokenTTLMinutes: ttlMinutes,
	})
	if err != nil {
		t.Fatalf("NewAuthority returned an error: %v", err)
	}
	return authority
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	subjects := []string{"42", "user-abc", "b5c1e8a0-0000-4000-8000-000000000000"}

	for _, subject := range subjects {
		authority := newAuthority(t, "test-secret", "HS256", 90)

		token, expiresAt, err := authority.Issue(subject)
		if err != nil {
			t.Fatalf("Issue(%q) returned an error: %v", subject, err)
		}
		if token == "" {
			t.Fatalf("Issue(%q) returned an empty token", subject)
		}
		if until := time.Until(expiresAt); until < 89*time.Minute || until > 91*time.Minute {
			t.Errorf("expiry %v away from now, want about 90m", until)
		}

		identity, err := authority.Verify(token)
		if err != nil {
			t.Fatalf("Verify returned an error: %v", err)
		}
		if identity.SubjectID != subject {
			t.Errorf("SubjectID = %q, want %q", identity.SubjectID, subject)
		}
		if identity.TokenID == "" {
			t.Error("TokenID is empty, want a jti")
		}
	}
}

func TestVerifyExpiry(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := t0

	authority := newAuthority(t, "test-secret", "HS256", 90).
		WithClock(func() time.Time { return now })

	token, expiresAt, err := authority.Issue("42")
	if err != nil {
		t.Fatalf("Issue returned an error: %v", err)
	}
	if want := t0.Add(90 * time.Minute); !expiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", expiresAt, want)
	}

	now = t0.Add(89 * time.Minute)
	identity, err := authority.Verify(token)
	if err != nil {
		t.Fatalf("Verify at t0+89m returned an error: %v", err)
	}
	if identity.SubjectID != "42" {
		t.Errorf("SubjectID = %q, want %q", identity.SubjectID, "42")
	}

	now = t0.Add(91 * time.Minute)
	if _, err := authority.Verify(token); auth.FailureKindOf(err) != auth.FailureMalformed {
		t.Errorf("Verify at t0+91m = %v, want %s failure", err, auth.FailureMalformed)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	authority := newAuthority(t, "test-secret", "HS256", 90)

	token, _, err := authority.Issue("42")
	if err != nil {
		t.Fatalf("Issue returned an error: %v", err)
	}

	// Flip the final signature character.
	last := token[len(token)-1]
	replacement := byte('A')
	if last == replacement {
		replacement = 'B'
	}
	tampered := token[:len(token)-1] + string(replacement)

	if _, err := authority.Verify(tampered); auth.FailureKindOf(err) != auth.FailureMalformed {
		t.Errorf("Verify(tampered) = %v, want %s failure", err, auth.FailureMalformed)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	issuer := newAuthority(t, "secret-one", "HS256", 90)
	verifier := newAuthority(t, "secret-two", "HS256", 90)

	token, _, err := issuer.Issue("42")
	if err != nil {
		t.Fatalf("Issue returned an error: %v", err)
	}

	if _, err := verifier.Verify(token); auth.FailureKindOf(err) != auth.FailureMalformed {
		t.Errorf("Verify with wrong key = %v, want %s failure", err, auth.FailureMalformed)
	}
}

func TestVerifyAlgorithmMismatch(t *testing.T) {
	issuer := newAuthority(t, "test-secret", "HS512", 90)
	verifier := newAuthority(t, "test-secret", "HS256", 90)

	token, _, err := issuer.Issue("42")
	if err != nil {
		t.Fatalf("Issue returned an error: %v", err)
	}

	if _, err := verifier.Verify(token); auth.FailureKindOf(err) != auth.FailureMalformed {
		t.Errorf("Verify with mismatched algorithm = %v, want %s failure", err, auth.FailureMalformed)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	authority := newAuthority(t, "test-secret", "HS256", 90)

	token, _, err := authority.Issue("")
	if err != nil {
		t.Fatalf("Issue returned an error: %v", err)
	}

	if _, err := authority.Verify(token); auth.FailureKindOf(err) != auth.FailureMissingSubject {
		t.Errorf("Verify(no subject) = %v, want %s failure", err, auth.FailureMissingSubject)
	}
}

func TestVerifyGarbage(t *testing.T) {
	authority := newAuthority(t, "test-secret", "HS256", 90)

	for _, input := range []string{"", "garbage", "a.b", strings.Repeat("x", 512)} {
		if _, err := authority.Verify(input); auth.FailureKindOf(err) != auth.FailureMalformed {
			t.Errorf("Verify(%q) = %v, want %s failure", input, err, auth.FailureMalformed)
		}
	}
}

func TestIssueDistinctTokensSameSubject(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := t0

	authority := newAuthority(t, "test-secret", "HS256", 90).
		WithClock(func() time.Time { return now })

	first, _, err := authority.Issue("42")
	if err != nil {
		t.Fatalf("Issue returned an error: %v", err)
	}

	now = t0.Add(time.Second)
	second, _, err := authority.Issue("42")
	if err != nil {
		t.Fatalf("Issue returned an error: %v", err)
	}

	if first == second {
		t.Error("two issuances produced identical tokens")
	}

	for _, token := range []string{first, second} {
		identity, err := authority.Verify(token)
		if err != nil {
			t.Fatalf("Verify returned an error: %v", err)
		}
		if identity.SubjectID != "42" {
			t.Errorf("SubjectID = %q, want %q", identity.SubjectID, "42")
		}
	}
}

func TestNewAuthorityRejectsNonHMAC(t *testing.T) {
	_, err := auth.NewAuthority(config.AuthConfig{
		SecretKey: "test-secret",
		Algorithm: "RS256",
	})
	if err == nil {
		t.Fatal("NewAuthority accepted RS256, want an error")
	}
}
