package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("preserves the error chain", func(t *testing.T) {
		wrapped := Wrap(ErrNotFound, "user lookup")
		assert.True(t, Is(wrapped, ErrNotFound))
		assert.Equal(t, "user lookup: not found", wrapped.Error())
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "context"))
	})

	t.Run("multiple layers", func(t *testing.T) {
		inner := Wrap(ErrConflict, "duplicate email")
		outer := Wrap(inner, "registration")
		assert.True(t, Is(outer, ErrConflict))
	})
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnauthorized, ErrForbidden}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "%v should not match %v", a, b)
		}
	}
}
