// Package auth issues and verifies bearer tokens, resolves them to accounts
// and decides who may touch which resource.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenErrorKind tells why a token failed verification. It is meant for logs
// and metrics; callers outside this package only see ErrInvalidToken.
type TokenErrorKind string

const (
	TokenMalformed TokenErrorKind = "malformed"
	TokenSignature TokenErrorKind = "signature"
	TokenExpired   TokenErrorKind = "expired"
)

// TokenError is returned by TokenService.Verify. It matches ErrInvalidToken
// under errors.Is.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid token (%s): %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

func (e *TokenError) Is(target error) bool { return target == ErrInvalidToken }

// Claims is the token payload: subject, expiry, issue time and token id.
type Claims struct {
	jwt.RegisteredClaims
}

// AccountID parses the subject as an account id.
func (c *Claims) AccountID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenService signs and verifies tokens with a single process-wide secret
// and HMAC algorithm.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService accepts HS256, HS384 or HS512.
func NewTokenService(secret []byte, alg string, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenService{secret: secret, method: method, ttl: ttl, now: time.Now}, nil
}

// DefaultTTL is the validity window used when Issue receives a zero ttl.
func (s *TokenService) DefaultTTL() time.Duration { return s.ttl }

// Issue mints a token for subjectID valid for ttl. A zero ttl means the
// configured default; a negative ttl yields an already expired token.
func (s *TokenService) Issue(subjectID int64, ttl time.Duration) (string, *Claims, error) {
	if ttl == 0 {
		ttl = s.ttl
	}
	now := s.now()
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subjectID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))
	if err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: TokenExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &TokenError{Kind: TokenSignature, Err: err}
	default:
		return &TokenError{Kind: TokenMalformed, Err: err}
	}
}
