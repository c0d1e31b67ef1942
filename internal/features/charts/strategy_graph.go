package charts

import (
	"context"
	"image/color"
	"math"

	logging "strategy-charts/internal/infra/log"
	"strategy-charts/internal/report"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	graphName        = "strategy_graph"
	graphTitle       = "Strategy Graph"
	graphDescription = "Network diagram linking strategies to budget and risk-reduction hubs."
	graphChartTitle  = "Strategy Relationship Graph"

	// GraphModelName is the name the graph is registered under in the graph model backend.
	GraphModelName = "optimization_graph"

	// node sizes are areas in pt², as in a scatter marker
	strategyNodeArea = 400.0
	hubNodeArea      = 700.0
	nodeOutlinePt    = 1.0
	edgeWidthPt      = 1.2
	labelSizePt      = 8.0
	titleSizePt      = 12.0
)

const (
	strategyFill    = "#d1e8ff"
	strategyOutline = "#1b3b5f"
	hubFill         = "#ffd6a5"
	hubOutline      = "#5f3b1b"
	edgeColor       = "#8888aa"
)

// GraphModeler mirrors the strategy graph into an external graph model.
type GraphModeler interface {
	Mirror(ctx context.Context, name string, hubs, strategies []string) error
}

// strategyRelationshipGraph renders picks linked to the two hub nodes, nil when there are no picks.
func (g *Generator) strategyRelationshipGraph(ctx context.Context, picks []report.Pick) (*Chart, error) {
	if len(picks) == 0 {
		return nil, nil
	}

	sg := buildStrategyGraph(picks)
	g.mirrorGraph(ctx, sg)

	pos := springLayout(sg, g.opts.Seed, g.opts.Iterations)

	width, height := g.opts.size()
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	titleFace := face(g.font, titleSizePt, g.opts.DPI)
	labelFace := face(g.font, labelSizePt, g.opts.DPI)

	hubRadius := g.opts.px(math.Sqrt(hubNodeArea) / 2)
	strategyRadius := g.opts.px(math.Sqrt(strategyNodeArea) / 2)

	margin := hubRadius + g.opts.px(6)
	titleBand := g.opts.px(titleSizePt) * 2
	left, right := margin, float64(width)-margin
	top, bottom := titleBand+margin, float64(height)-margin
	toCanvas := func(p [2]float64) (float64, float64) {
		return left + (p[0]+1)/2*(right-left), bottom - (p[1]+1)/2*(bottom-top)
	}

	dc.SetHexColor(edgeColor)
	dc.SetLineWidth(g.opts.px(edgeWidthPt))
	for _, e := range sg.edgeList() {
		if e[0] == e[1] {
			continue
		}
		x1, y1 := toCanvas(pos[e[0]])
		x2, y2 := toCanvas(pos[e[1]])
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	// strategies first so hubs stay on top
	for _, hubs := range []bool{false, true} {
		for i := range sg.nodes {
			if sg.isHub(i) != hubs {
				continue
			}
			x, y := toCanvas(pos[i])
			fill, outline, radius := strategyFill, strategyOutline, strategyRadius
			if hubs {
				fill, outline, radius = hubFill, hubOutline, hubRadius
			}
			dc.DrawCircle(x, y, radius)
			dc.SetHexColor(fill)
			dc.FillPreserve()
			dc.SetHexColor(outline)
			dc.SetLineWidth(g.opts.px(nodeOutlinePt))
			dc.Stroke()
		}
	}

	if labelFace != nil {
		dc.SetFontFace(labelFace)
	}
	dc.SetColor(color.Black)
	for i, name := range sg.nodes {
		x, y := toCanvas(pos[i])
		dc.DrawStringAnchored(name, x, y, 0.5, 0.5)
	}

	if titleFace != nil {
		dc.SetFontFace(titleFace)
	}
	dc.DrawStringAnchored(graphChartTitle, float64(width)/2, titleBand/2+g.opts.px(4), 0.5, 0.5)

	png, url, err := encodePNG(g.opts.DPI, dc.EncodePNG)
	if err != nil {
		return nil, err
	}
	return newChart(graphName, graphTitle, graphDescription, png, url), nil
}

// mirrorGraph registers the same structure with the graph model, if any.
// The model never influences the rendered image and its failures are dropped.
func (g *Generator) mirrorGraph(ctx context.Context, sg *strategyGraph) {
	if g.modeler == nil {
		return
	}
	err := guardCall(func() error {
		return g.modeler.Mirror(ctx, GraphModelName,
			[]string{report.HubBudget, report.HubRiskReduction}, sg.strategies())
	})
	if err != nil {
		logging.LogDebug("Graph model mirror failed", zap.Error(err))
	}
}
