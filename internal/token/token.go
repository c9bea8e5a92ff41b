// Package token mints and verifies the stateless bearer tokens used for
// request authentication. Tokens are signed with a symmetric secret and
// carry only a subject and an expiry; there is no server-side session
// table and therefore no revocation before expiry.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/taskdeck/backend/domain"
)

// Issuer signs and verifies access tokens.
type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

// Config carries the signing parameters, normally sourced from
// config.JWTConfig.
type Config struct {
	Secret     string
	Algorithm  string
	TTLMinutes int
}

// New builds an Issuer. Unknown algorithm names fall back to HS256; only
// HMAC methods are supported because the secret is symmetric.
func New(cfg Config) *Issuer {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		method = jwt.SigningMethodHS256
	}
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed token whose subject is subjectID and whose
// expiry is now plus the configured TTL.
func (i *Issuer) Issue(subjectID string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "token signing failed", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the subject. Malformed,
// tampered and expired tokens all map to the same domain error.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{i.method.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(i.now()) {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

// TTL exposes the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
