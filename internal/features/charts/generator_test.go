package charts

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"strings"
	"testing"

	"strategy-charts/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingModeler struct {
	calls      int
	name       string
	hubs       []string
	strategies []string
	err        error
	panicWith  any
}

func (m *recordingModeler) Mirror(_ context.Context, name string, hubs, strategies []string) error {
	m.calls++
	m.name, m.hubs, m.strategies = name, hubs, strategies
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	return m.err
}

func generate(t *testing.T, raw string, modeler GraphModeler) Result {
	t.Helper()
	return NewGenerator(DefaultOptions(), modeler).Generate(context.Background(), report.ParseInput([]byte(raw)))
}

func titles(res Result) []string {
	var out []string
	for _, img := range res.Output.Images {
		out = append(out, img.Title)
	}
	return out
}

func requireValidPNG(t *testing.T, dataURL string) {
	t.Helper()
	require.True(t, strings.HasPrefix(dataURL, DataURLPrefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, DataURLPrefix))
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 960, cfg.Width)
	assert.Equal(t, 640, cfg.Height)
}

func TestGenerateEmptyInput(t *testing.T) {
	for _, raw := range []string{`{}`, ``, `{"picks": [{"id": "A", "cost": 1`} {
		res := generate(t, raw, nil)
		assert.Empty(t, res.Output.Images)
		assert.NotNil(t, res.Output.Images)
		assert.Equal(t, report.Meta{NxMcpUsed: false, Count: 0}, res.Output.Meta)
	}
}

func TestGenerateSinglePick(t *testing.T) {
	res := generate(t, `{"picks": [{"id": "A", "cost": 100, "benefit": 0.5}], "sites": []}`, nil)

	assert.Equal(t, []string{"Benefit vs Cost", "Strategy Graph"}, titles(res))
	assert.Equal(t, 2, res.Output.Meta.Count)
	for _, img := range res.Output.Images {
		requireValidPNG(t, img.DataURL)
	}
	require.Len(t, res.Charts, 2)
	assert.Equal(t, "benefit_vs_cost", res.Charts[0].Name)
	assert.Equal(t, "strategy_graph", res.Charts[1].Name)
	assert.Equal(t, ToDataURL(res.Charts[1].PNG), res.Charts[1].DataURL)
}

func TestGenerateSitesOnly(t *testing.T) {
	res := generate(t, `{"picks": [], "sites": [{"Risk": 0.1}, {"Risk": 0.9}]}`, nil)

	require.Equal(t, []string{"Risk Distribution"}, titles(res))
	assert.Equal(t, 1, res.Output.Meta.Count)
	assert.Equal(t, "Histogram of site risk scores across the portfolio.", res.Output.Images[0].Description)
	requireValidPNG(t, res.Output.Images[0].DataURL)
}

func TestGenerateAllChartsInOrder(t *testing.T) {
	raw := `{
		"picks": [
			{"id": "Levee", "cost": 12000000, "benefit": 0.42},
			{"id": "Sensors", "cost": 25000, "benefit": 0.08},
			{"id": "Relocate", "cost": 3500000, "benefit": 0.3}
		],
		"sites": [{"Risk": 0.05}, {"Risk": 0.2}, {"Risk": 0.55}, {"Risk": 1.0}, {"Risk": 1.7}]
	}`
	res := generate(t, raw, nil)

	assert.Equal(t, []string{"Benefit vs Cost", "Risk Distribution", "Strategy Graph"}, titles(res))
	for _, img := range res.Output.Images {
		requireValidPNG(t, img.DataURL)
	}
}

func TestGenerateDegenerateValues(t *testing.T) {
	raw := `{
		"picks": [{"id": "A"}, {"id": "A", "cost": -5}, {"id": "Budget", "cost": 0, "benefit": -1}],
		"sites": [{"Risk": -3}, {"Risk": 42}]
	}`
	res := generate(t, raw, nil)

	assert.Equal(t, []string{"Benefit vs Cost", "Risk Distribution", "Strategy Graph"}, titles(res))
}

func TestGenerateEmptyPickID(t *testing.T) {
	for _, raw := range []string{
		`{"picks": [{"id": "", "cost": 10, "benefit": 0.1}]}`,
		`{"picks": [{"id": "  ", "cost": 10}, {"id": "B", "cost": 2000, "benefit": 0.4}]}`,
	} {
		res := generate(t, raw, nil)
		require.Equal(t, []string{"Benefit vs Cost", "Strategy Graph"}, titles(res))
		for _, img := range res.Output.Images {
			requireValidPNG(t, img.DataURL)
		}
	}
}

func TestPointLabelsSkipBlankIDs(t *testing.T) {
	picks := []report.Pick{{ID: ""}, {ID: "A"}, {ID: " \t"}}
	labels := pointLabels(picks, []float64{1, 2, 3}, []float64{4, 5, 6})
	require.Len(t, labels, 1)
	assert.Equal(t, "A", labels[0].Label)
	assert.Equal(t, 2.0, labels[0].XValue)
	assert.Equal(t, 5.0, labels[0].YValue)
}

func TestGenerateHugeBenefits(t *testing.T) {
	res := generate(t, `{"picks": [{"id": "up", "cost": 10, "benefit": 1e308}, {"id": "down", "cost": 20, "benefit": -1e308}]}`, nil)
	require.Equal(t, []string{"Benefit vs Cost", "Strategy Graph"}, titles(res))
	requireValidPNG(t, res.Output.Images[0].DataURL)
}

func TestGenerateWideCostSpread(t *testing.T) {
	res := generate(t, `{"picks": [{"id": "cheap", "cost": 10, "benefit": 0.1}, {"id": "dear", "cost": 5000000, "benefit": 0.9}]}`, nil)
	require.Len(t, res.Output.Images, 2)
	requireValidPNG(t, res.Output.Images[0].DataURL)
}

func TestGenerateMirrorsGraphModel(t *testing.T) {
	modeler := &recordingModeler{}
	res := generate(t, `{"picks": [{"id": "A", "cost": 100}, {"id": "B"}, {"id": "A"}]}`, modeler)

	assert.True(t, res.Output.Meta.NxMcpUsed)
	assert.Equal(t, 1, modeler.calls)
	assert.Equal(t, GraphModelName, modeler.name)
	assert.Equal(t, []string{report.HubBudget, report.HubRiskReduction}, modeler.hubs)
	assert.Equal(t, []string{"A", "B"}, modeler.strategies)
}

func TestGenerateIgnoresGraphModelFailures(t *testing.T) {
	input := `{"picks": [{"id": "A", "cost": 100, "benefit": 0.5}]}`
	baseline := generate(t, input, nil)

	for name, modeler := range map[string]*recordingModeler{
		"error": {err: errors.New("graphviz unavailable")},
		"panic": {panicWith: "wasm trap"},
	} {
		t.Run(name, func(t *testing.T) {
			res := generate(t, input, modeler)
			assert.True(t, res.Output.Meta.NxMcpUsed)
			require.Len(t, res.Output.Images, 2)
			assert.Equal(t, baseline.Output.Images[1].DataURL, res.Output.Images[1].DataURL,
				"graph image does not depend on the model")
		})
	}
}

func TestGenerateSkipsModelWithoutPicks(t *testing.T) {
	modeler := &recordingModeler{}
	res := generate(t, `{"sites": [{"Risk": 0.5}]}`, modeler)
	assert.Equal(t, 0, modeler.calls)
	assert.True(t, res.Output.Meta.NxMcpUsed)
}

func TestGuardBuildRecoversPanic(t *testing.T) {
	chart, err := guardBuild(func() (*Chart, error) { panic("invalid data range") })
	assert.Nil(t, chart)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data range")
}
