package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/config"
)

type testConfig struct {
	Name  string `env:"CONFIG_TEST_NAME" envDefault:"fallback"`
	Count int    `env:"CONFIG_TEST_COUNT" envDefault:"3"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults apply when env is unset", func(t *testing.T) {
		cfg, err := config.Load[testConfig]()
		require.NoError(t, err)
		assert.Equal(t, "fallback", cfg.Name)
		assert.Equal(t, 3, cfg.Count)
	})

	t.Run("env values override defaults", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_NAME", "from-env")
		t.Setenv("CONFIG_TEST_COUNT", "7")

		cfg, err := config.Load[testConfig]()
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Name)
		assert.Equal(t, 7, cfg.Count)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		_, err := config.Load[requiredConfig]()
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("malformed value fails", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_COUNT", "not-a-number")
		_, err := config.Load[testConfig]()
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})
}
