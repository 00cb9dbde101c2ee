package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("super-secret")

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, "HS256", 30*time.Minute)
	require.NoError(t, err)
	return s
}

func kindOf(t *testing.T, err error) TokenErrorKind {
	t.Helper()
	var tokErr *TokenError
	require.True(t, errors.As(err, &tokErr), "expected *TokenError, got %T", err)
	return tokErr.Kind
}

func TestNewTokenServiceRejectsBadConfig(t *testing.T) {
	_, err := NewTokenService(nil, "HS256", time.Minute)
	assert.Error(t, err)

	_, err = NewTokenService(testSecret, "RS256", time.Minute)
	assert.Error(t, err)

	_, err = NewTokenService(testSecret, "none", time.Minute)
	assert.Error(t, err)

	_, err = NewTokenService(testSecret, "HS256", 0)
	assert.Error(t, err)

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		_, err := NewTokenService(testSecret, alg, time.Minute)
		assert.NoError(t, err, alg)
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	s := newTestTokens(t)

	tok, issued, err := s.Issue(42, time.Hour)
	require.NoError(t, err)

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, issued.ID, claims.ID)

	id, err := claims.AccountID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestIssueDefaultTTL(t *testing.T) {
	s := newTestTokens(t)

	before := time.Now()
	_, claims, err := s.Issue(1, 0)
	require.NoError(t, err)

	exp := claims.ExpiresAt.Time
	assert.WithinDuration(t, before.Add(30*time.Minute), exp, 2*time.Second)
}

func TestIssueProducesDistinctTokens(t *testing.T) {
	s := newTestTokens(t)

	a, _, err := s.Issue(7, 0)
	require.NoError(t, err)
	b, _, err := s.Issue(7, 0)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyExpired(t *testing.T) {
	s := newTestTokens(t)

	tok, _, err := s.Issue(1, -1*time.Minute)
	require.NoError(t, err)

	_, err = s.Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, TokenExpired, kindOf(t, err))
}

func TestVerifyTamperedSignature(t *testing.T) {
	s := newTestTokens(t)

	tok, _, err := s.Issue(1, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	for _, i := range []int{0, len(sig) / 2, len(sig) - 2} {
		tampered := append([]byte(nil), sig...)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		forged := parts[0] + "." + parts[1] + "." + string(tampered)

		_, err := s.Verify(forged)
		require.Error(t, err, "byte %d", i)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Equal(t, TokenSignature, kindOf(t, err))
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	s := newTestTokens(t)
	other, err := NewTokenService([]byte("other-secret"), "HS256", time.Hour)
	require.NoError(t, err)

	tok, _, err := other.Issue(1, time.Hour)
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, TokenSignature, kindOf(t, err))
}

func TestVerifyRejectsOtherAlgorithm(t *testing.T) {
	s := newTestTokens(t)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	s := newTestTokens(t)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	s := newTestTokens(t)

	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := s.Verify(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Equal(t, TokenMalformed, kindOf(t, err))
	}
}
