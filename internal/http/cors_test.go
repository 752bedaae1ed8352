package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := testLogger()

	t.Run("Disabled", func(t *testing.T) {
		middleware := createCORSMiddleware(false, "https://app.example.com", logger)
		assert.Nil(t, middleware)
	})

	t.Run("EnabledWithoutOrigins", func(t *testing.T) {
		middleware := createCORSMiddleware(true, "", logger)
		assert.Nil(t, middleware)
	})

	t.Run("EnabledWithOrigins", func(t *testing.T) {
		middleware := createCORSMiddleware(true, "https://app.example.com", logger)
		assert.NotNil(t, middleware)
	})

	t.Run("EnabledWithOnlyWhitespaceOrigins", func(t *testing.T) {
		middleware := createCORSMiddleware(true, " , ,", logger)
		assert.Nil(t, middleware)
	})
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Empty", "", nil},
		{"Single", "https://app.example.com", []string{"https://app.example.com"}},
		{
			"MultipleWithWhitespace",
			"https://a.example.com , https://b.example.com",
			[]string{"https://a.example.com", "https://b.example.com"},
		},
		{"SkipsEmptyParts", "https://a.example.com,,", []string{"https://a.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origins := parseOrigins(tt.input)
			if tt.expected == nil {
				assert.Empty(t, origins)
				return
			}
			assert.Equal(t, tt.expected, origins)
		})
	}
}
