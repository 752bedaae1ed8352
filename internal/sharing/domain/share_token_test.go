package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShareToken_IsUsable(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		active   bool
		expires  time.Time
		expected bool
	}{
		{"ActiveAndUnexpired", true, now.Add(time.Hour), true},
		{"ActiveButExpired", true, now.Add(-time.Hour), false},
		{"DeactivatedAndUnexpired", false, now.Add(time.Hour), false},
		{"DeactivatedAndExpired", false, now.Add(-time.Hour), false},
		{"ExpiresExactlyNow", true, now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := &ShareToken{
				ID:        uuid.Must(uuid.NewV7()),
				OwnerID:   uuid.Must(uuid.NewV7()),
				Active:    tt.active,
				ExpiresAt: tt.expires,
			}
			assert.Equal(t, tt.expected, token.IsUsable(now))
		})
	}
}
