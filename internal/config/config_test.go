package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLOW_STRICT_ORDER", "")
	t.Setenv("SESSION_STALE_MINUTES", "not-a-number")

	cfg := Load()

	assert.False(t, cfg.Flow.StrictOrder)
	assert.True(t, cfg.Flow.IncludeSummary)
	assert.Equal(t, 60, cfg.Session.StaleMinutes)
	assert.Equal(t, 10, cfg.Session.MaxSessionsPerIP)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FLOW_STRICT_ORDER", "true")
	t.Setenv("FLOW_INCLUDE_SUMMARY", "false")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SESSION_STALE_MINUTES", "5")

	cfg := Load()

	assert.True(t, cfg.Flow.StrictOrder)
	assert.False(t, cfg.Flow.IncludeSummary)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Session.StaleMinutes)
}
