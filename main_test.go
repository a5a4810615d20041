package main

import (
	"testing"

	"pension720/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	require.NoError(t, applyFlags(cfg, []string{
		"-skip-fetch", "-count", "10", "-cycle", "-3", "-seed", "weekly", "-format", "markdown",
	}))

	assert.True(t, cfg.SkipFetch)
	assert.Equal(t, 10, cfg.TicketCount)
	assert.Equal(t, int64(-3), cfg.Cycle)
	assert.Equal(t, "weekly", cfg.Seed)
	assert.Equal(t, "markdown", cfg.OutputFormat)
}

func TestApplyFlags_KeepsEnvironmentValues(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.Seed = "from-env"
	require.NoError(t, applyFlags(cfg, nil))
	assert.Equal(t, "from-env", cfg.Seed)
	assert.Equal(t, 5, cfg.TicketCount)
}

func TestApplyFlags_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"negative count", []string{"-count", "-1"}},
		{"unknown format", []string{"-format", "html"}},
		{"unknown backend", []string{"-storage", "s3"}},
		{"stray argument", []string{"extra"}},
		{"unknown flag", []string{"-verbose"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, applyFlags(config.NewTestConfig(), tt.args))
		})
	}
}
