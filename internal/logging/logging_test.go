package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/aquamind/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "sessions", "PROD")
	logger.Info().Str("user_id", "u-1").Msg("session saved")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "sessions", line["module"])
	require.Equal(t, "u-1", line["user_id"])
	require.Equal(t, "session saved", line["message"])
}

func TestConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "guard", "dev")
	logger.Info().Msg("navigation allowed")

	require.Contains(t, buf.String(), "GUARD")
	require.Contains(t, buf.String(), "navigation allowed")
}
