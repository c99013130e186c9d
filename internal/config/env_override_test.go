package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Logging(t *testing.T) {
	t.Run("ROLO_DEBUG enables debug logging", func(t *testing.T) {
		t.Setenv("ROLO_DEBUG", "true")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.Debug)
	})

	t.Run("ROLO_DEBUG invalid value is ignored", func(t *testing.T) {
		t.Setenv("ROLO_DEBUG", "yes please")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Logging.Debug)
	})

	t.Run("ROLO_LOG_LEVEL overrides level", func(t *testing.T) {
		t.Setenv("ROLO_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestEnvOverrides_Book(t *testing.T) {
	t.Run("ROLO_BIRTHDAY_HORIZON overrides horizon", func(t *testing.T) {
		t.Setenv("ROLO_BIRTHDAY_HORIZON", "30")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 30, cfg.Book.BirthdayHorizonDays)
	})

	t.Run("non-numeric horizon keeps default", func(t *testing.T) {
		t.Setenv("ROLO_BIRTHDAY_HORIZON", "not-a-number")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 7, cfg.Book.BirthdayHorizonDays)
	})

	t.Run("negative horizon keeps default", func(t *testing.T) {
		t.Setenv("ROLO_BIRTHDAY_HORIZON", "-3")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 7, cfg.Book.BirthdayHorizonDays)
	})
}

func TestEnvOverrides_Storage(t *testing.T) {
	t.Setenv("ROLO_DB", "/tmp/env.db")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "/tmp/env.db", cfg.Storage.DatabasePath)
}

func TestEnvOverrides_AppliedByLoad(t *testing.T) {
	t.Setenv("ROLO_DEBUG", "true")
	t.Setenv("ROLO_BIRTHDAY_HORIZON", "30")

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.True(t, cfg.Logging.Debug)
	assert.Equal(t, 30, cfg.Book.BirthdayHorizonDays)
}
