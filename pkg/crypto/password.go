// Package crypto hashes and verifies account passwords.
package crypto

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Hasher wraps bcrypt behind a bounded pool so that a burst of logins or
// registrations cannot occupy every CPU at once.
type Hasher struct {
	cost int
	pool *semaphore.Weighted
}

// NewHasher returns a Hasher using the given bcrypt cost and at most
// workers concurrent hash computations.
func NewHasher(cost, workers int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if workers < 1 {
		workers = 1
	}
	return &Hasher{cost: cost, pool: semaphore.NewWeighted(int64(workers))}
}

// Hash returns a bcrypt hash of password with a fresh random salt.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.pool.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A malformed hash is a
// mismatch, not an error; only context cancellation is returned as error.
func (h *Hasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.pool.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}
