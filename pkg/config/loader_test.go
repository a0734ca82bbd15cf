package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/config"
)

type defaultsConfig struct {
	Issuer string `env:"CFG_TEST_ISSUER" envDefault:"Acme"`
	Window int    `env:"CFG_TEST_WINDOW" envDefault:"1"`
	Strict bool   `env:"CFG_TEST_STRICT" envDefault:"false"`
}

type envConfig struct {
	Issuer string `env:"CFG_TEST_ENV_ISSUER"`
	Window int    `env:"CFG_TEST_ENV_WINDOW"`
}

type cachedConfig struct {
	Value string `env:"CFG_TEST_CACHED"`
}

type requiredConfig struct {
	Value string `env:"CFG_TEST_REQUIRED,required"`
}

type prefixedConfig struct {
	URL string `env:"URL,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "Acme", cfg.Issuer)
	assert.Equal(t, 1, cfg.Window)
	assert.False(t, cfg.Strict)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CFG_TEST_ENV_ISSUER", "Example")
	t.Setenv("CFG_TEST_ENV_WINDOW", "2")

	var cfg envConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "Example", cfg.Issuer)
	assert.Equal(t, 2, cfg.Window)
}

func TestLoad_CachesPerType(t *testing.T) {
	t.Setenv("CFG_TEST_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CFG_TEST_CACHED", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)

	config.Reset()
	var third cachedConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, "second", third.Value)
}

func TestLoad_Required(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}

func TestLoad_NilPointer(t *testing.T) {
	assert.ErrorIs(t, config.Load[defaultsConfig](nil), config.ErrNilPointer)
	assert.ErrorIs(t, config.Parse[defaultsConfig](nil, ""), config.ErrNilPointer)
}

func TestParse_Prefix(t *testing.T) {
	t.Setenv("PRIMARY_URL", "postgres://primary")
	t.Setenv("REPLICA_URL", "postgres://replica")

	var primary, replica prefixedConfig
	require.NoError(t, config.Parse(&primary, "PRIMARY_"))
	require.NoError(t, config.Parse(&replica, "REPLICA_"))
	assert.Equal(t, "postgres://primary", primary.URL)
	assert.Equal(t, "postgres://replica", replica.URL)

	var missing prefixedConfig
	assert.ErrorIs(t, config.Parse(&missing, "MISSING_"), config.ErrParsingConfig)
}
