package charts

import (
	"io"
	"math"
	"strings"

	"strategy-charts/internal/report"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	benefitCostName        = "benefit_vs_cost"
	benefitCostTitle       = "Benefit vs Cost"
	benefitCostDescription = "Scatter plot of strategy cost vs expected risk reduction."
	benefitCostChartTitle  = "Benefit vs Cost of Selected Strategies"

	// log x-axis once the largest cost is more than this multiple of the smallest
	logScaleRatio = 50.0
)

var (
	pointFill   = drawing.ColorFromHex("7ac7ff").WithAlpha(230)
	pointEdge   = drawing.ColorFromHex("1b3b5f")
	labelColor  = drawing.ColorFromHex("1b3b5f")
	gridColor   = drawing.ColorFromHex("000000").WithAlpha(77)
	gridDashes  = []float64{1, 3}
	canvasColor = drawing.ColorWhite
)

// costAxisValues floors costs at 1 so a log axis never sees non-positive values.
func costAxisValues(picks []report.Pick) []float64 {
	xs := make([]float64, len(picks))
	for i, p := range picks {
		xs[i] = clampPlot(math.Max(1, p.Cost))
	}
	return xs
}

// useLogScale reports whether the cost spread warrants a logarithmic axis.
func useLogScale(xs []float64) bool {
	if len(xs) == 0 {
		return false
	}
	lo, hi := bounds(xs)
	return hi/math.Max(1, lo) > logScaleRatio
}

func bounds(vs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// pointLabels annotates each point with its pick id. Blank ids get no box:
// go-chart never finishes flattening the path of an empty annotation.
func pointLabels(picks []report.Pick, xs, ys []float64) []chart.Value2 {
	var out []chart.Value2
	for i, p := range picks {
		if strings.TrimSpace(p.ID) == "" {
			continue
		}
		out = append(out, chart.Value2{XValue: xs[i], YValue: ys[i], Label: p.ID})
	}
	return out
}

// benefitVsCost renders the cost/benefit scatter plot, nil when there are no picks.
func (g *Generator) benefitVsCost(picks []report.Pick) (*Chart, error) {
	if len(picks) == 0 {
		return nil, nil
	}

	xs := costAxisValues(picks)
	ys := make([]float64, len(picks))
	for i, p := range picks {
		ys[i] = clampPlot(p.Benefit)
	}

	logX := useLogScale(xs)
	plotXs := xs
	if logX {
		plotXs = make([]float64, len(xs))
		for i, x := range xs {
			plotXs[i] = math.Log10(x)
		}
	}

	xMin, xMax := bounds(plotXs)
	xMin, xMax = paddedRange(xMin, xMax, 0.05)
	var xTicks []chart.Tick
	if logX {
		xTicks = decadeTicks(xMin, xMax)
	} else {
		xTicks = niceTicks(xMin, xMax, 6, usdTickLabel)
	}

	yMin, yMax := bounds(ys)
	yMin, yMax = paddedRange(yMin, yMax, 0.08)
	yTicks := niceTicks(yMin, yMax, 6, numberLabel)

	annotations := pointLabels(picks, plotXs, ys)

	width, height := g.opts.size()
	grid := chart.Style{StrokeColor: gridColor, StrokeWidth: 1, StrokeDashArray: gridDashes}

	graph := chart.Chart{
		Title:      benefitCostChartTitle,
		TitleStyle: chart.Style{FontSize: 12},
		Width:      width,
		Height:     height,
		DPI:        g.opts.DPI,
		Font:       g.font,
		Background: chart.Style{
			FillColor: canvasColor,
			Padding:   chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 12},
		},
		XAxis: chart.XAxis{
			Name:           "Cost (USD)",
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks:          xTicks,
			GridMajorStyle: grid,
			GridMinorStyle: chart.Hidden(),
		},
		YAxis: chart.YAxis{
			Name:           "Benefit (risk reduction)",
			Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
			Ticks:          yTicks,
			GridMajorStyle: grid,
			GridMinorStyle: chart.Hidden(),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "Strategies",
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					StrokeColor: pointEdge,
					DotWidth:    g.opts.px(3),
					DotColor:    pointFill,
				},
				XValues: plotXs,
				YValues: ys,
			},
		},
	}
	if len(annotations) > 0 {
		graph.Series = append(graph.Series, chart.AnnotationSeries{
			Name: "Labels",
			Style: chart.Style{
				FontSize:    8,
				FontColor:   labelColor,
				FillColor:   drawing.ColorWhite.WithAlpha(200),
				StrokeColor: pointEdge.WithAlpha(120),
				StrokeWidth: 1,
			},
			Annotations: annotations,
		})
	}

	png, url, err := encodePNG(g.opts.DPI, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
	if err != nil {
		return nil, err
	}
	return newChart(benefitCostName, benefitCostTitle, benefitCostDescription, png, url), nil
}
