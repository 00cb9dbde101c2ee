package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"task-manager-api/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	users map[int64]*models.User
	err   error
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memoryDenylist) Revoke(_ context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]time.Time{}
	}
	m.revoked[id] = until
	return nil
}

func (m *memoryDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok, nil
}

func newTestResolver(t *testing.T, users ...*models.User) (*Resolver, *TokenService, *memoryDenylist) {
	t.Helper()
	tokens := newTestTokens(t)
	accounts := &fakeAccounts{users: map[int64]*models.User{}}
	for _, u := range users {
		accounts.users[u.ID] = u
	}
	deny := &memoryDenylist{}
	return NewResolver(tokens, accounts, deny), tokens, deny
}

func signRaw(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return tok
}

func TestResolveSuccess(t *testing.T) {
	alice := &models.User{ID: 1, Email: "alice@example.com", IsActive: true}
	r, tokens, _ := newTestResolver(t, alice)

	tok, _, err := tokens.Issue(1, 0)
	require.NoError(t, err)

	user, claims, err := r.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, alice, user)
	assert.Equal(t, "1", claims.Subject)
}

func TestResolveDoesNotCheckActive(t *testing.T) {
	bob := &models.User{ID: 2, IsActive: false}
	r, tokens, _ := newTestResolver(t, bob)

	tok, _, err := tokens.Issue(2, 0)
	require.NoError(t, err)

	user, _, err := r.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	_, err = RequireActive(user)
	assert.ErrorIs(t, err, ErrInactive)
}

func TestResolveFailuresCollapse(t *testing.T) {
	alice := &models.User{ID: 1, IsActive: true}
	r, tokens, _ := newTestResolver(t, alice)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	expired, _, err := tokens.Issue(1, -time.Minute)
	require.NoError(t, err)
	unknown, _, err := tokens.Issue(99, 0)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":           "",
		"garbage":         "not.a.jwt",
		"expired":         expired,
		"no subject":      signRaw(t, jwt.RegisteredClaims{ExpiresAt: future}),
		"non-numeric sub": signRaw(t, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: future}),
		"unknown account": unknown,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			user, claims, err := r.Resolve(context.Background(), raw)
			assert.Nil(t, user)
			assert.Nil(t, claims)
			assert.Equal(t, ErrUnauthenticated, err)
		})
	}
}

func TestResolveRevokedToken(t *testing.T) {
	alice := &models.User{ID: 1, IsActive: true}
	r, tokens, deny := newTestResolver(t, alice)

	tok, claims, err := tokens.Issue(1, 0)
	require.NoError(t, err)

	require.NoError(t, r.Revoke(context.Background(), claims))
	assert.Contains(t, deny.revoked, claims.ID)

	_, _, err = r.Resolve(context.Background(), tok)
	assert.Equal(t, ErrUnauthenticated, err)
}

func TestResolveStoreFailureIsNotUnauthenticated(t *testing.T) {
	tokens := newTestTokens(t)
	boom := errors.New("connection refused")
	r := NewResolver(tokens, &fakeAccounts{err: boom}, nil)

	tok, _, err := tokens.Issue(1, 0)
	require.NoError(t, err)

	_, _, err = r.Resolve(context.Background(), tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestRequireAdmin(t *testing.T) {
	admin := &models.User{ID: 1, IsActive: true, IsAdmin: true}
	user := &models.User{ID: 2, IsActive: true}
	inactiveAdmin := &models.User{ID: 3, IsAdmin: true}

	got, err := RequireAdmin(admin)
	require.NoError(t, err)
	assert.Equal(t, admin, got)

	_, err = RequireAdmin(user)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = RequireAdmin(inactiveAdmin)
	assert.ErrorIs(t, err, ErrInactive)

	_, err = RequireActive(nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
