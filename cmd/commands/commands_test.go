package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"strategy-charts/internal/features/tg_publish"
	"strategy-charts/internal/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHARTS_DPI", "CHARTS_FONT_PATH", "CHARTS_GRAPH_MODEL", "CHARTS_GRAPH_SEED",
		"CHARTS_OUTPUT_DIR", "CHARTS_LOG_LEVEL", "CHARTS_LOG_OUTPUT",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(key, "")
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decode(t *testing.T, raw string) report.Output {
	t.Helper()
	var out report.Output
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestRenderEmptyInput(t *testing.T) {
	out, err := run(t, `{}`, "--no-graph-model")
	require.NoError(t, err)
	assert.Equal(t, `{"images":[],"meta":{"nx_mcp_used":false,"count":0}}`+"\n", out)
}

func TestRenderMalformedInput(t *testing.T) {
	out, err := run(t, `{"picks": [`, "render", "--no-graph-model")
	require.NoError(t, err)
	assert.Equal(t, 0, decode(t, out).Meta.Count)
}

func TestRenderPicksAndSites(t *testing.T) {
	in := `{"picks": [{"id": "A", "cost": 100, "benefit": 0.5}], "sites": [{"Risk": 0.3}]}`
	out, err := run(t, in, "render", "--no-graph-model")
	require.NoError(t, err)

	res := decode(t, out)
	assert.Equal(t, 3, res.Meta.Count)
	assert.False(t, res.Meta.NxMcpUsed)
	require.Len(t, res.Images, 3)
	for _, img := range res.Images {
		assert.True(t, strings.HasPrefix(img.DataURL, "data:image/png;base64,"))
	}
}

func TestRenderSavesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	_, err := run(t, `{"sites": [{"Risk": 0.3}]}`, "--no-graph-model", "--out-dir", dir)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "risk_distribution.png"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRenderInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sites": [{"Risk": 0.9}]}`), 0644))

	out, err := run(t, `{}`, "--no-graph-model", "--input", path)
	require.NoError(t, err)
	assert.Equal(t, 1, decode(t, out).Meta.Count)

	out, err = run(t, `{}`, "--no-graph-model", "--input", filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, decode(t, out).Meta.Count)
}

func TestRenderRejectsInvalidDPI(t *testing.T) {
	_, err := run(t, `{}`, "--no-graph-model", "--dpi", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.dpi")
}

func TestPublishRequiresTelegramSettings(t *testing.T) {
	out, err := run(t, `{"sites": [{"Risk": 0.3}]}`, "publish", "--no-graph-model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.bot_token")
	assert.Empty(t, out)
}

type fakeSender struct{ photos []tgbotapi.PhotoConfig }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.photos = append(f.photos, c.(tgbotapi.PhotoConfig))
	return tgbotapi.Message{}, nil
}

func TestPublishSendsCharts(t *testing.T) {
	sender := &fakeSender{}
	var gotToken string
	orig := newSender
	newSender = func(token string, _ time.Duration) (tg_publish.Sender, error) {
		gotToken = token
		return sender, nil
	}
	t.Cleanup(func() { newSender = orig })

	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(`{"picks": [{"id": "A", "cost": 100, "benefit": 0.5}]}`))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"publish", "--no-graph-model", "--chat-id", "-100200"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "123:abc", gotToken)
	assert.Equal(t, 2, decode(t, out.String()).Meta.Count)
	require.Len(t, sender.photos, 2)
	assert.Equal(t, int64(-100200), sender.photos[0].ChatID)
	assert.Equal(t, "<b>Benefit vs Cost</b>\nScatter plot of strategy cost vs expected risk reduction.", sender.photos[0].Caption)
}
