package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("dpi", 160, "")
	flags.String("out-dir", "", "")
	flags.String("log-level", "error", "")
	flags.Bool("no-graph-model", false, "")
	flags.Uint64("graph-seed", 42, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, 160.0, cfg.Render.DPI)
	assert.Equal(t, 6.0, cfg.Render.WidthIn)
	assert.Equal(t, 4.0, cfg.Render.HeightIn)
	assert.True(t, cfg.Graph.ModelEnabled)
	assert.Equal(t, uint64(42), cfg.Graph.Seed)
	assert.Equal(t, 50, cfg.Graph.Iterations)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Empty(t, cfg.Log.Output)
	assert.Equal(t, 3, cfg.Telegram.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Telegram.Timeout)
}

func TestLoadConfigPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "charts.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
render:
  dpi: 96
  width_in: 8
output:
  dir: from-file
graph:
  iterations: 10
`), 0644))

	t.Setenv("CHARTS_OUTPUT_DIR", "from-env")
	t.Setenv("TELEGRAM_TIMEOUT", "5s")

	cfg, err := LoadConfig(file, testFlags(t, "--dpi", "200", "--no-graph-model"))
	require.NoError(t, err)

	assert.Equal(t, 200.0, cfg.Render.DPI, "flag beats file")
	assert.Equal(t, 8.0, cfg.Render.WidthIn, "file beats default")
	assert.Equal(t, "from-env", cfg.Output.Dir, "env beats file")
	assert.Equal(t, 10, cfg.Graph.Iterations)
	assert.False(t, cfg.Graph.ModelEnabled)
	assert.Equal(t, 5*time.Second, cfg.Telegram.Timeout)
}

func TestLoadConfigRejectsInvalidDPI(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), testFlags(t, "--dpi", "0"))
	require.Error(t, err)
}

func TestValidatePublish(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{RatePerSecond: 1}}
	err := cfg.ValidatePublish()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot_token")
	assert.Contains(t, err.Error(), "chat_id")

	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.ChatID = "-1001234567890"
	require.NoError(t, cfg.ValidatePublish())

	id, err := cfg.ChatID()
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234567890), id)

	cfg.Telegram.ChatID = "general"
	require.Error(t, cfg.ValidatePublish())
}
