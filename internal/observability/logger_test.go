package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerTo_JSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	InitLoggerTo(&buf, "debug", "json")

	log.Debug().Str("stage", "intent").Msg("classified")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "classified", entry["message"])
	assert.Equal(t, "intent", entry["stage"])
	assert.Equal(t, serviceName, entry["service"])
}

func TestInitLoggerTo_LevelFilters(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	InitLoggerTo(&buf, "warn", "json")

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitLoggerTo_InvalidLevelDefaultsToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	InitLoggerTo(&buf, "loud", "console")

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx, logger := WithRequestID(context.Background(), base, "req-123")
	logger.Info().Msg("one")
	fromCtx := LoggerFromContext(ctx)
	fromCtx.Info().Msg("two")

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"request_id":"req-123"`)))
}

func TestLoggerFromContext_Default(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	assert.NotNil(t, logger)
}
