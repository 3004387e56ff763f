package initializer

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/iebank/infra/repository/memory"
	"github.com/amirasaad/iebank/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogConfig() *config.Log {
	return &config.Log{Format: "text", TimeFormat: "15:04:05", Prefix: "[test]"}
}

func TestInitializeDependencies_Memory(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.App{
		Log: testLogConfig(),
		DB:  &config.DB{Driver: DriverMemory},
	}

	deps, cleanup, err := InitializeDependencies(cfg)
	require.NoError(t, err)
	require.IsType(t, &memory.UoW{}, deps.Uow)
	require.NotNil(t, deps.Logger)
	require.NoError(t, cleanup())
}

func TestInitializeDependencies_UnknownDriver(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.App{
		Log: testLogConfig(),
		DB:  &config.DB{Driver: "sqlite"},
	}

	_, _, err := InitializeDependencies(cfg)
	require.Error(t, err)
}

func TestInitializeDependencies_PostgresWithoutURL(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.App{
		Log: testLogConfig(),
		DB:  &config.DB{Driver: DriverPostgres},
	}

	_, _, err := InitializeDependencies(cfg)
	require.Error(t, err)
}

func TestNewLogger_RespectsLevelAndFormat(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	var buf bytes.Buffer
	logger := newLogger(&config.Log{Level: int(slog.LevelWarn), Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "op", "Transfer")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"op":"Transfer"`)
}
