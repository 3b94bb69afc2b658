package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUsaPadroesSemArquivo(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 33*time.Millisecond, cfg.Tracker.SampleRate)
	assert.Equal(t, 0.5, cfg.Tracker.MinConfidence)
	assert.Equal(t, 5, cfg.Session.SmoothingWindow)
	assert.Equal(t, 3*time.Second, cfg.Session.DefaultHoldTime)
	assert.Equal(t, "fisiotrack", cfg.Redis.Prefix)
}

func TestVariaveisDeAmbienteSobrescrevem(t *testing.T) {
	t.Setenv("FISIOTRACK_SERVER_PORT", "9090")
	t.Setenv("FISIOTRACK_TRACKER_HOST", "192.168.0.40")
	t.Setenv("FISIOTRACK_SAMPLE_RATE", "50ms")
	t.Setenv("FISIOTRACK_MIN_CONFIDENCE", "0.7")
	t.Setenv("FISIOTRACK_SMOOTHING_WINDOW", "9")
	t.Setenv("FISIOTRACK_REDIS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "192.168.0.40", cfg.Tracker.Host)
	assert.Equal(t, 50*time.Millisecond, cfg.Tracker.SampleRate)
	assert.Equal(t, 0.7, cfg.Tracker.MinConfidence)
	assert.Equal(t, 9, cfg.Session.SmoothingWindow)
	assert.False(t, cfg.Redis.Enabled)
}

func TestVariavelInvalidaMantemPadrao(t *testing.T) {
	t.Setenv("FISIOTRACK_SERVER_PORT", "não é número")
	t.Setenv("FISIOTRACK_SAMPLE_RATE", "rápido")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 33*time.Millisecond, cfg.Tracker.SampleRate)
}
