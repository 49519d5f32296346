package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const revokedKeyPrefix = "revoked:"

// revocationBackend is the slice of the Redis client the revoker needs
type revocationBackend interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Revoker implements sign-out: a revoked token id is denylisted until
// the token would have expired anyway, so the entry cleans itself up.
type Revoker struct {
	backend revocationBackend
	logger  *slog.Logger
}

// NewRevoker creates a new token revoker
func NewRevoker(backend revocationBackend, logger *slog.Logger) *Revoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Revoker{backend: backend, logger: logger}
}

// Revoke denylists the token carried by the claims for its remaining
// validity. An already-expired token needs no entry.
func (r *Revoker) Revoke(ctx context.Context, claims *Claims) error {
	if claims.ID == "" {
		return fmt.Errorf("token has no id")
	}
	if claims.ExpiresAt == nil {
		return fmt.Errorf("token has no expiry")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := r.backend.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	r.logger.Info("token revoked",
		slog.String("profile_id", claims.ProfileID),
		slog.Duration("remaining", ttl),
	)
	return nil
}

// IsRevoked reports whether a token id has been signed out. A backend
// failure is logged and treated as not revoked so an unreachable
// denylist does not lock everyone out.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) bool {
	if tokenID == "" {
		return false
	}
	revoked, err := r.backend.Exists(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		r.logger.Warn("revocation check failed", slog.String("error", err.Error()))
		return false
	}
	return revoked
}
