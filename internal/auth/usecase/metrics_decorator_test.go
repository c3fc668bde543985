package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	"github.com/coursekit/identity/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

// mockAuthUseCase is a mock implementation of AuthUseCase.
type mockAuthUseCase struct {
	mock.Mock
}

func (m *mockAuthUseCase) Login(ctx context.Context, email string, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func TestAuthUseCaseWithMetrics_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success records success status", func(t *testing.T) {
		next := &mockAuthUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewAuthUseCaseWithMetrics(next, m)

		next.On("Login", ctx, "alice@example.com", "Sup3rSecret!").Return("signed-token", nil)
		m.On("RecordOperation", ctx, "auth", "login", "success").Return().Once()
		m.On("RecordDuration", ctx, "auth", "login", mock.AnythingOfType("time.Duration"), "success").Return().Once()

		token, err := decorated.Login(ctx, "alice@example.com", "Sup3rSecret!")
		assert.NoError(t, err)
		assert.Equal(t, "signed-token", token)

		m.AssertExpectations(t)
	})

	t.Run("failure records error status", func(t *testing.T) {
		next := &mockAuthUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewAuthUseCaseWithMetrics(next, m)

		next.On("Login", ctx, "alice@example.com", "WrongPassword1").
			Return("", authDomain.ErrInvalidCredentials)
		m.On("RecordOperation", ctx, "auth", "login", "error").Return().Once()
		m.On("RecordDuration", ctx, "auth", "login", mock.AnythingOfType("time.Duration"), "error").Return().Once()

		token, err := decorated.Login(ctx, "alice@example.com", "WrongPassword1")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		assert.Empty(t, token)

		m.AssertExpectations(t)
	})
}
