package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCreateLinkKey(t *testing.T) {
	ctx := context.Background()

	t.Run("plain-mode", func(t *testing.T) {
		err := RunCreateLinkKey(ctx, "")
		require.NoError(t, err)
	})

	t.Run("invalid-kms-uri", func(t *testing.T) {
		err := RunCreateLinkKey(ctx, "invalid://not-a-keeper")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}
