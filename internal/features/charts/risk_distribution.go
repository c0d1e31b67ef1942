package charts

import (
	"io"
	"math"
	"strconv"

	"strategy-charts/internal/report"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	riskName        = "risk_distribution"
	riskTitle       = "Risk Distribution"
	riskDescription = "Histogram of site risk scores across the portfolio."
	riskChartTitle  = "Portfolio Risk Distribution"
)

// RiskBins are the fixed histogram edges.
var RiskBins = []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0}

var riskBinLabels = []string{"0.0-0.2", "0.2-0.4", "0.4-0.6", "0.6-0.8", "0.8-1.0"}

var (
	barFill = drawing.ColorFromHex("9be9a8").WithAlpha(217)
	barEdge = drawing.ColorFromHex("2c4c2e")
)

// histogram counts values per bin. Bins are half-open except the last, which
// includes its upper edge; values outside the edges are not counted.
func histogram(values, edges []float64) []int {
	if len(edges) < 2 {
		return nil
	}
	counts := make([]int, len(edges)-1)
	last := len(edges) - 1
	for _, v := range values {
		if v < edges[0] || v > edges[last] {
			continue
		}
		if v == edges[last] {
			counts[last-1]++
			continue
		}
		for i := 0; i < last; i++ {
			if v >= edges[i] && v < edges[i+1] {
				counts[i]++
				break
			}
		}
	}
	return counts
}

// riskDistribution renders the site risk histogram, nil when no site has a risk value.
func (g *Generator) riskDistribution(sites []report.Site) (*Chart, error) {
	if len(sites) == 0 {
		return nil, nil
	}
	risks := make([]float64, len(sites))
	for i, s := range sites {
		risks[i] = s.Risk
	}

	counts := histogram(risks, RiskBins)
	maxCount := 0
	bars := make([]chart.Value, len(counts))
	for i, c := range counts {
		maxCount = max(maxCount, c)
		bars[i] = chart.Value{
			Label: riskBinLabels[i],
			Value: float64(c),
			Style: chart.Style{FillColor: barFill, StrokeColor: barEdge, StrokeWidth: 1},
		}
	}

	yMax := countAxisMax(maxCount)
	yTicks := make([]chart.Tick, 0, 6)
	step := math.Max(1, math.Ceil(yMax/5))
	for v := 0.0; v <= yMax; v += step {
		yTicks = append(yTicks, chart.Tick{Value: v, Label: strconv.Itoa(int(v))})
	}

	width, height := g.opts.size()
	barWidth := width / 10
	graph := chart.BarChart{
		Title:      riskChartTitle,
		TitleStyle: chart.Style{FontSize: 12},
		Width:      width,
		Height:     height,
		DPI:        g.opts.DPI,
		Font:       g.font,
		Background: chart.Style{
			FillColor: canvasColor,
			Padding:   chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 12},
		},
		BarWidth:   barWidth,
		BarSpacing: barWidth / 3,
		YAxis: chart.YAxis{
			Name:  "Number of sites",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: yTicks,
		},
		Bars: bars,
	}

	png, url, err := encodePNG(g.opts.DPI, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
	if err != nil {
		return nil, err
	}
	return newChart(riskName, riskTitle, riskDescription, png, url), nil
}

// countAxisMax leaves headroom above the tallest bar and never collapses to 0.
func countAxisMax(maxCount int) float64 {
	if maxCount <= 0 {
		return 1
	}
	return math.Ceil(float64(maxCount) * 1.1)
}
