package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("WrapNilReturnsNil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "context"))
	})

	t.Run("WrapPreservesErrorChain", func(t *testing.T) {
		err := Wrap(ErrNotFound, "share token lookup")
		assert.True(t, Is(err, ErrNotFound))
		assert.Equal(t, "share token lookup: not found", err.Error())
	})

	t.Run("DoubleWrapStillMatchesSentinel", func(t *testing.T) {
		err := Wrap(Wrap(ErrExpired, "token"), "accept")
		assert.True(t, Is(err, ErrExpired))
		assert.False(t, Is(err, ErrNotFound))
	})
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrExpired,
		ErrDecryptFailed,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "sentinel %v should not match %v", a, b)
		}
	}
}
