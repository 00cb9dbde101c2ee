package auth

import (
	"context"
	"errors"
	"fmt"

	"task-manager-api/internal/models"
	"task-manager-api/pkg/logger"
	"task-manager-api/pkg/metrics"

	"go.uber.org/zap"
)

// AccountLookup is the slice of the user store the resolver needs.
type AccountLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Resolver turns a bearer token into the account it was issued for.
type Resolver struct {
	tokens   *TokenService
	accounts AccountLookup
	denylist Denylist
}

func NewResolver(tokens *TokenService, accounts AccountLookup, denylist Denylist) *Resolver {
	if denylist == nil {
		denylist = NopDenylist{}
	}
	return &Resolver{tokens: tokens, accounts: accounts, denylist: denylist}
}

// Resolve returns the account behind raw together with the verified claims.
// Every credential problem yields ErrUnauthenticated; the specific cause is
// only logged. Store failures are returned as-is.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*models.User, *Claims, error) {
	if raw == "" {
		return nil, nil, reject("missing_token")
	}

	claims, err := r.tokens.Verify(raw)
	if err != nil {
		var tokErr *TokenError
		if errors.As(err, &tokErr) {
			return nil, nil, reject("token_" + string(tokErr.Kind))
		}
		return nil, nil, reject("token_invalid")
	}

	if claims.Subject == "" {
		return nil, nil, reject("missing_subject")
	}
	id, err := claims.AccountID()
	if err != nil {
		return nil, nil, reject("bad_subject")
	}

	if claims.ID != "" {
		revoked, err := r.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, err
		}
		if revoked {
			return nil, nil, reject("revoked")
		}
	}

	user, err := r.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, reject("unknown_account")
		}
		return nil, nil, fmt.Errorf("load account: %w", err)
	}
	return user, claims, nil
}

// Revoke puts the token described by claims on the denylist until it expires.
func (r *Resolver) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return r.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// RequireActive rejects deactivated accounts.
func RequireActive(user *models.User) (*models.User, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !user.IsActive {
		logger.SecurityLogger.Warn("inactive account rejected", zap.Int64("user_id", user.ID))
		metrics.AuthFailures.WithLabelValues("inactive").Inc()
		return nil, ErrInactive
	}
	return user, nil
}

// RequireAdmin rejects accounts without the admin flag. It implies RequireActive.
func RequireAdmin(user *models.User) (*models.User, error) {
	user, err := RequireActive(user)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		logger.SecurityLogger.Warn("admin privileges required", zap.Int64("user_id", user.ID))
		return nil, ErrForbidden
	}
	return user, nil
}

func reject(reason string) error {
	logger.SecurityLogger.Warn("authentication rejected", zap.String("reason", reason))
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	return ErrUnauthenticated
}
