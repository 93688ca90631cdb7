package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestConfigSetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, DefaultLevel, cfg.Level)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}

func TestNewBuildsLogger(t *testing.T) {
	t.Parallel()

	l, err := New(Config{Level: "debug", Format: "json", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestWithCarriesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core)).With(String("site", "Oxford"))
	l.Info("seed fetched", Int("links", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Oxford", fields["site"])
	assert.Equal(t, int64(3), fields["links"])
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	l := NewNop()
	assert.Same(t, l, l.With(String("k", "v")))
	assert.NoError(t, l.Sync())
}
