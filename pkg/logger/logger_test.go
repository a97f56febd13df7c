package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jhoicas/Consignacion-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONConOperacion(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	log.Component("ledger").Operation("recordMovement").Error().
		Str("variant_id", "v-1").
		Msg("falla de persistencia")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "recordMovement", entry["op"])
	assert.Equal(t, "v-1", entry["variant_id"])
	assert.Equal(t, "error", entry["level"])
}

func TestLogger_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())
}
