package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncatingWriter(t *testing.T) {
	t.Run("clips oversized output field", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(NewTruncatingWriter(&buf))

		logger.Info().Str("output", strings.Repeat("x", MaxOutputLen+500)).Msg("gate passed")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

		output, ok := entry["output"].(string)
		require.True(t, ok)
		assert.Len(t, output, MaxOutputLen+len(truncationMarker))
		assert.True(t, strings.HasSuffix(output, truncationMarker))
		assert.Equal(t, "gate passed", entry["message"])
	})

	t.Run("short fields pass through untouched", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(NewTruncatingWriter(&buf))

		logger.Info().Str("output", "all good").Msg("gate passed")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "all good", entry["output"])
	})

	t.Run("non-JSON writes pass through", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewTruncatingWriter(&buf)

		n, err := w.Write([]byte("plain text line\n"))
		require.NoError(t, err)
		assert.Equal(t, 16, n)
		assert.Equal(t, "plain text line\n", buf.String())
	})
}
