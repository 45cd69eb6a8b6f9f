package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/config"
)

// Authority issues and verifies signed bearer tokens. It is stateless apart
// from the signing key and clock, so a single instance is safe under
// unbounded concurrent use.
type Authority struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// Claims is the fixed-shape token payload: subject, expiry, issue time and a
// unique token id used by the revocation list. No open claim map is accepted
// or produced.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIdentity is the result of a successful verification.
type TokenIdentity struct {
	SubjectID string
	TokenID   string
	ExpiresAt time.Time
}

// NewAuthority builds an authority from validated configuration. The config
// layer guarantees a non-empty secret and a known algorithm name; an unknown
// name here is a programming error and is reported, not defaulted.
func NewAuthority(cfg config.AuthConfig) (*Authority, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", cfg.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("algorithm %q is not an HMAC method", cfg.Algorithm)
	}
	return &Authority{
		secret: []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.AccessTokenTTL(),
		now:    time.Now,
	}, nil
}

// WithClock overrides the time source. Used by tests to probe expiry.
func (a *Authority) WithClock(now func() time.Time) *Authority {
	a.now = now
	return a
}

// TTL reports the configured token lifetime.
func (a *Authority) TTL() time.Duration {
	return a.ttl
}

// Issue signs a token binding the subject for the configured TTL. It performs
// no I/O; the only failure mode is the signing step itself.
func (a *Authority) Issue(subjectID string) (string, time.Time, error) {
	issuedAt := a.now()
	expiresAt := issuedAt.Add(a.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(a.method, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify decodes an attacker-controlled token string. Signature, algorithm
// and expiry are checked in a single parse step; any of them failing yields
// FailureMalformed. A structurally valid token without a subject claim yields
// FailureMissingSubject. On success the subject id is returned unmodified;
// resolving it against the credential store is the caller's job.
func (a *Authority) Verify(tokenStr string) (*TokenIdentity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{a.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, NewFailure(FailureMalformed, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, NewFailure(FailureMalformed, nil)
	}
	if claims.Subject == "" {
		return nil, NewFailure(FailureMissingSubject, nil)
	}

	identity := &TokenIdentity{
		SubjectID: claims.Subject,
		TokenID:   claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
