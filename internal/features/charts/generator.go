package charts

// Chart generation for the strategy report
// Runs the three builders in a fixed order, each one isolated from the others
// A builder that fails or panics only drops its own chart

import (
	"context"
	"fmt"
	"time"

	logging "strategy-charts/internal/infra/log"
	"strategy-charts/internal/report"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
)

// Chart is one rendered image plus the raw PNG for storage and delivery.
type Chart struct {
	Name string // file-safe identifier, e.g. "risk_distribution"
	report.ImageDescriptor
	PNG []byte
}

func newChart(name, title, description string, png []byte, url string) *Chart {
	return &Chart{
		Name: name,
		ImageDescriptor: report.ImageDescriptor{
			Title:       title,
			Description: description,
			DataURL:     url,
		},
		PNG: png,
	}
}

// Result of one generation run.
type Result struct {
	Charts []Chart
	Output report.Output
}

type Generator struct {
	opts    Options
	font    *truetype.Font
	modeler GraphModeler
}

// NewGenerator prepares fonts once for all charts. modeler may be nil, in which
// case the output reports the graph model as unused.
func NewGenerator(opts Options, modeler GraphModeler) *Generator {
	return &Generator{
		opts:    opts,
		font:    loadFont(opts.FontPath),
		modeler: modeler,
	}
}

// Generate renders every chart the input supports, in report order.
func (g *Generator) Generate(ctx context.Context, in report.Input) Result {
	start := time.Now()

	builders := []struct {
		name  string
		build func() (*Chart, error)
	}{
		{benefitCostName, func() (*Chart, error) { return g.benefitVsCost(in.Picks) }},
		{riskName, func() (*Chart, error) { return g.riskDistribution(in.Sites) }},
		{graphName, func() (*Chart, error) { return g.strategyRelationshipGraph(ctx, in.Picks) }},
	}

	var res Result
	images := make([]report.ImageDescriptor, 0, len(builders))
	for _, b := range builders {
		chart, err := guardBuild(b.build)
		if err != nil {
			logging.LogDebug("Chart skipped after failure", zap.String("chart", b.name), zap.Error(err))
			continue
		}
		if chart == nil {
			logging.LogDebug("Chart skipped, nothing to draw", zap.String("chart", b.name))
			continue
		}
		res.Charts = append(res.Charts, *chart)
		images = append(images, chart.ImageDescriptor)
	}

	res.Output = report.NewOutput(images, g.modeler != nil)
	logging.LogSuccess("Charts generated",
		zap.Int("count", len(images)),
		zap.Int("picks", len(in.Picks)),
		zap.Int("sites", len(in.Sites)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return res
}

// guardBuild turns a panic inside a builder into an error.
func guardBuild(build func() (*Chart, error)) (chart *Chart, err error) {
	defer func() {
		if r := recover(); r != nil {
			chart, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return build()
}

func guardCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
