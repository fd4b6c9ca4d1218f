package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentIDFromSecret(t *testing.T) {
	t.Run("well-formed secret", func(t *testing.T) {
		id, err := intentIDFromSecret("pi_3Abc123_secret_xyz789")

		require.NoError(t, err)
		assert.Equal(t, "pi_3Abc123", id)
	})

	t.Run("missing secret suffix", func(t *testing.T) {
		_, err := intentIDFromSecret("pi_3Abc123")

		require.Error(t, err)
	})

	t.Run("not an intent secret", func(t *testing.T) {
		_, err := intentIDFromSecret("seti_1Abc_secret_xyz")

		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := intentIDFromSecret("")

		require.Error(t, err)
	})
}
