package service

import (
	"context"
	"time"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	"github.com/coursekit/identity/internal/metrics"
	userDomain "github.com/coursekit/identity/internal/user/domain"
)

// tokenServiceWithMetrics decorates TokenService with metrics instrumentation.
type tokenServiceWithMetrics struct {
	next    TokenService
	metrics metrics.BusinessMetrics
}

// NewTokenServiceWithMetrics wraps a TokenService with metrics recording.
// Verification failures are counted but not broken down by reason, so the
// metrics pipeline learns nothing about individual tokens.
func NewTokenServiceWithMetrics(next TokenService, m metrics.BusinessMetrics) TokenService {
	return &tokenServiceWithMetrics{
		next:    next,
		metrics: m,
	}
}

// Issue records metrics for token issuance.
func (t *tokenServiceWithMetrics) Issue(
	userID int64,
	email string,
	role userDomain.Role,
	ttl time.Duration,
) (string, error) {
	start := time.Now()
	token, err := t.next.Issue(userID, email, role, ttl)

	status := "success"
	if err != nil {
		status = "error"
	}

	ctx := context.Background()
	t.metrics.RecordOperation(ctx, "auth", "token_issue", status)
	t.metrics.RecordDuration(ctx, "auth", "token_issue", time.Since(start), status)

	return token, err
}

// Verify records metrics for token verification.
func (t *tokenServiceWithMetrics) Verify(token string) (*authDomain.Claims, error) {
	start := time.Now()
	claims, err := t.next.Verify(token)

	status := "success"
	if err != nil {
		status = "error"
	}

	ctx := context.Background()
	t.metrics.RecordOperation(ctx, "auth", "token_verify", status)
	t.metrics.RecordDuration(ctx, "auth", "token_verify", time.Since(start), status)

	return claims, err
}
