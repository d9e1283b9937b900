package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabled(t *testing.T) {
	var out bytes.Buffer

	tel, err := Setup(context.Background(), Options{
		ServiceName: "mimetest",
		LogOutput:   &out,
	})
	require.NoError(t, err)
	require.NotNil(t, tel.Logger)

	tel.Logger.Info("request served", "route", "res/pdf1")
	assert.Contains(t, out.String(), "route=res/pdf1")

	tel.Logger.Debug("hidden")
	assert.NotContains(t, out.String(), "hidden")

	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupLogLevel(t *testing.T) {
	var out bytes.Buffer

	tel, err := Setup(context.Background(), Options{LogOutput: &out, LogLevel: slog.LevelDebug})
	require.NoError(t, err)

	tel.Logger.Debug("visible")
	assert.Contains(t, out.String(), "visible")
}

func TestOptionsEnabled(t *testing.T) {
	assert.False(t, Options{}.Enabled())
	assert.True(t, Options{Endpoint: "127.0.0.1:4317"}.Enabled())
}
