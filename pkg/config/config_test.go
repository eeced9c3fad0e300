package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverConfig struct {
	Port     int      `env:"CFGTEST_PORT" envDefault:"8010"`
	Host     string   `env:"CFGTEST_HOST" envDefault:"localhost"`
	LogLevel string   `env:"CFGTEST_LOG_LEVEL" envDefault:"info"`
	Debug    bool     `env:"CFGTEST_DEBUG" envDefault:"false"`
	Brokers  []string `env:"CFGTEST_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg serverConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("CFGTEST_PORT", "9090")
	t.Setenv("CFGTEST_HOST", "0.0.0.0")
	t.Setenv("CFGTEST_LOG_LEVEL", "debug")
	t.Setenv("CFGTEST_DEBUG", "true")
	t.Setenv("CFGTEST_BROKERS", "kafka-1:9092,kafka-2:9092")

	var cfg serverConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
}

type secretConfig struct {
	DSN string `env:"CFGTEST_DSN,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg secretConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_RequiredFieldPresent(t *testing.T) {
	t.Setenv("CFGTEST_DSN", "postgres://localhost/rewards_db")

	var cfg secretConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/rewards_db", cfg.DSN)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("CFGTEST_PORT", "not-a-number")

	var cfg serverConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
