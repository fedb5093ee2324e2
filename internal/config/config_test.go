package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 5000
  shutdown_timeout: 10

redis:
  enabled: true
  addr: "redis:6379"
  password: "secret"
  db: 1

game:
  max_rounds: 5
  round_time: 60
  word_options: 4
  word_choice_time: 10
  intermission: 0
  words: ["cat", "dog"]

security:
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"
  message_limit:
    max_per_second: 50
    burst: 100
  allowed_ips: ["10.0.0.1"]
  blocked_ips:
    - "192.168.1.66"
    - "192.168.1.67"

log:
  level: debug
  pretty: true
`
	cfg, err := Load(writeConfig(t, "config.yaml", content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5000, cfg.Server.MaxConnections)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeoutDuration())
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, 5, cfg.Game.MaxRounds)
	assert.Equal(t, 0, cfg.Game.IntermissionSeconds(), "explicit zero intermission is kept")
	assert.Equal(t, []string{"cat", "dog"}, cfg.Game.Words)
	assert.Len(t, cfg.Security.AllowedOrigins, 2)
	assert.InDelta(t, 50.0, cfg.Security.MessageLimit.MaxPerSecond, 0.001)
	assert.Equal(t, 100, cfg.Security.MessageLimit.Burst)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.Security.AllowedIPs)
	assert.Equal(t, []string{"192.168.1.66", "192.168.1.67"}, cfg.Security.BlockedIPs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid.yaml", "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "empty.yaml", "{}"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, DefaultWords, cfg.Game.Words)
}

func TestGameConfig_DefaultSettings(t *testing.T) {
	t.Parallel()

	cfg := Default()
	settings := cfg.Game.DefaultSettings()

	assert.Equal(t, 3, settings.MaxRounds)
	assert.Equal(t, 75, settings.RoundTimeSeconds)
	assert.Equal(t, 3, settings.WordOptionsPerTurn)
	assert.Equal(t, 15, settings.WordChoiceTimeSeconds)
	assert.Equal(t, 3, settings.IntermissionSeconds)

	assert.Equal(t, 3, (&GameConfig{}).IntermissionSeconds())
	assert.Equal(t, 10*time.Minute, cfg.Game.RoomTimeoutDuration())
}

func TestApplyEnv(t *testing.T) {
	// Not parallel because it modifies environment variables
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvRedisAddr, "env-redis:6380")

	envFile := writeConfig(t, ".env", "DG_LOG_LEVEL=warn\nDG_PORT=1234\n")
	t.Cleanup(func() { _ = os.Unsetenv(EnvLogLevel) })

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envFile))

	assert.Equal(t, 9000, cfg.Server.Port, "process env wins over .env")
	assert.Equal(t, "env-redis:6380", cfg.Redis.Addr)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyEnv_MissingFileIgnored(t *testing.T) {
	t.Setenv(EnvHost, "10.0.0.1")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "10.0.0.1", cfg.Server.Host)
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")

	cfg := Default()
	assert.Error(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))
}
