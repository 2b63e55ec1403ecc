package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(&logger, path)
	require.NoError(t, err)
	require.Equal(t, path, resolved)
	require.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`addr: ":9000"
shutdown_timeout: 2s
outbound_queue_limit: 16
well_known_rooms: [lobby]
metrics_enabled: false
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("ROOMRELAY_ADDR", ":9100")
	t.Setenv("ROOMRELAY_LOG_LEVEL", "debug")

	cfg, _, err := Load(&logger, path)
	require.NoError(t, err)
	require.Equal(t, ":9100", cfg.Addr, "env beats file")
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, 16, cfg.OutboundQueueLimit)
	require.Equal(t, []string{"lobby"}, cfg.WellKnownRooms)
	require.False(t, cfg.MetricsEnabled)
	require.Equal(t, int64(1<<20), cfg.MaxMessageBytes, "unset keys keep defaults")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outbound_queue_limit: -1\n"), 0o600))

	_, _, err := Load(&logger, path)
	require.ErrorContains(t, err, "outbound_queue_limit")
}

func TestNewViperRegistersEveryKey(t *testing.T) {
	v, err := newViper(Default())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"addr",
		"read_header_timeout",
		"shutdown_timeout",
		"log_level",
		"log_file",
		"max_message_bytes",
		"outbound_queue_limit",
		"rate_limit_per_minute",
		"well_known_rooms",
		"metrics_enabled",
	}, v.AllKeys())
	require.Equal(t, 5*time.Second, v.GetDuration("shutdown_timeout"))
}

func TestLoadEnvOverridesKeyMissingFromFile(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\n"), 0o600))
	t.Setenv("ROOMRELAY_RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("ROOMRELAY_READ_HEADER_TIMEOUT", "750ms")

	cfg, _, err := Load(&logger, path)
	require.NoError(t, err)
	require.Equal(t, 30, cfg.RateLimitPerMinute)
	require.Equal(t, 750*time.Millisecond, cfg.ReadHeaderTimeout)
	require.Equal(t, ":9000", cfg.Addr)
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	base := filepath.Join(t.TempDir(), "etc")
	t.Setenv(envConfigDefaultPath, base)

	require.Equal(t, filepath.Join(base, defaultConfigName), resolveConfigPath(""))
	require.Equal(t, "/explicit.yaml", resolveConfigPath("/explicit.yaml"))
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1", LogLevel: "warn"})

	require.Equal(t, ":1", cfg.Addr)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 1024, cfg.OutboundQueueLimit)
	require.Equal(t, []string{"sys", "t1"}, cfg.WellKnownRooms)
}
