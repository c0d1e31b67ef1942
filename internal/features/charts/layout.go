package charts

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"strategy-charts/internal/report"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
)

// Budget edges are weighted by cost in millions, risk edges by benefit; the weights
// only pull nodes together during layout and are never drawn.
const (
	minBudgetWeight = 1.0
	minRiskWeight   = 0.01
	costUnit        = 1_000_000.0
)

// Eades parameters. Theta 0 makes Barnes-Hut exact, which is cheap at this size.
const (
	layoutRepulsion = 1.0
	layoutRate      = 0.1
	layoutTheta     = 0.0
)

// strategyGraph is an undirected weighted graph whose node IDs are the indexes
// of nodes, so names keep insertion order.
type strategyGraph struct {
	*simple.WeightedUndirectedGraph
	nodes []string
	index map[string]int64
}

func newStrategyGraph() *strategyGraph {
	return &strategyGraph{
		WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, 0),
		index:                   make(map[string]int64),
	}
}

func (sg *strategyGraph) addNode(name string) int64 {
	if id, ok := sg.index[name]; ok {
		return id
	}
	id := int64(len(sg.nodes))
	sg.nodes = append(sg.nodes, name)
	sg.index[name] = id
	sg.AddNode(simple.Node(id))
	return id
}

// addEdge adds or reweights the edge a-b. Self-loops are not kept.
func (sg *strategyGraph) addEdge(a, b string, weight float64) {
	u, v := sg.addNode(a), sg.addNode(b)
	if u == v {
		return
	}
	sg.SetWeightedEdge(sg.NewWeightedEdge(simple.Node(u), simple.Node(v), weight))
}

// Nodes returns nodes ordered by ID so layouts do not depend on map order.
func (sg *strategyGraph) Nodes() graph.Nodes {
	return orderedByID(sg.WeightedUndirectedGraph.Nodes())
}

// From returns neighbours ordered by ID.
func (sg *strategyGraph) From(id int64) graph.Nodes {
	return orderedByID(sg.WeightedUndirectedGraph.From(id))
}

func orderedByID(it graph.Nodes) graph.Nodes {
	nodes := graph.NodesOf(it)
	slices.SortFunc(nodes, func(a, b graph.Node) int { return cmp.Compare(a.ID(), b.ID()) })
	return iterator.NewOrderedNodes(nodes)
}

func (sg *strategyGraph) isHub(i int) bool {
	return sg.nodes[i] == report.HubBudget || sg.nodes[i] == report.HubRiskReduction
}

// weight of the edge i-j, 0 when absent.
func (sg *strategyGraph) weight(i, j int) float64 {
	w, _ := sg.Weight(int64(i), int64(j))
	return w
}

// edgeList returns every edge once as {low, high} node indexes, sorted.
func (sg *strategyGraph) edgeList() [][2]int {
	var out [][2]int
	edges := sg.WeightedEdges()
	for edges.Next() {
		e := edges.WeightedEdge()
		u, v := int(e.From().ID()), int(e.To().ID())
		out = append(out, [2]int{min(u, v), max(u, v)})
	}
	slices.SortFunc(out, func(a, b [2]int) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return out
}

// strategies returns the non-hub node names in insertion order.
func (sg *strategyGraph) strategies() []string {
	var out []string
	for i, n := range sg.nodes {
		if !sg.isHub(i) {
			out = append(out, n)
		}
	}
	return out
}

// buildStrategyGraph links every pick to both hubs.
func buildStrategyGraph(picks []report.Pick) *strategyGraph {
	sg := newStrategyGraph()
	sg.addNode(report.HubBudget)
	sg.addNode(report.HubRiskReduction)
	for _, p := range picks {
		sg.addNode(p.ID)
		sg.addEdge(p.ID, report.HubBudget, math.Max(minBudgetWeight, p.Cost/costUnit))
		sg.addEdge(p.ID, report.HubRiskReduction, math.Max(minRiskWeight, p.Benefit))
	}
	return sg
}

// layoutGraph scales edge weights into (0, 1]; larger spring constants make the
// Eades update overshoot.
type layoutGraph struct {
	*strategyGraph
	scale float64
}

func (g layoutGraph) Weight(xid, yid int64) (float64, bool) {
	w, ok := g.strategyGraph.Weight(xid, yid)
	return w * g.scale, ok
}

func newLayoutGraph(sg *strategyGraph) layoutGraph {
	maxWeight := 0.0
	edges := sg.WeightedEdges()
	for edges.Next() {
		maxWeight = math.Max(maxWeight, edges.WeightedEdge().Weight())
	}
	scale := 1.0
	if maxWeight > 0 && !math.IsInf(maxWeight, 0) {
		scale = 1 / maxWeight
	}
	return layoutGraph{strategyGraph: sg, scale: scale}
}

// springLayout runs a seeded Eades force-directed layout, then centres and scales
// the positions into [-1, 1]. Positions are indexed like sg.nodes.
func springLayout(sg *strategyGraph, seed uint64, iterations int) [][2]float64 {
	n := len(sg.nodes)
	pos := make([][2]float64, n)
	if n < 2 {
		return pos
	}

	eades := layout.EadesR2{
		Updates:   max(1, iterations),
		Repulsion: layoutRepulsion,
		Rate:      layoutRate,
		Theta:     layoutTheta,
		Src:       rand.NewPCG(seed, seed),
	}
	optimizer := layout.NewOptimizerR2(newLayoutGraph(sg), eades.Update)
	for optimizer.Update() {
	}

	for i := range pos {
		c := optimizer.Coord2(int64(i))
		pos[i] = [2]float64{c.X, c.Y}
	}
	if !finiteSpread(pos) {
		pos = circle(n)
	}
	return rescale(pos)
}

// finiteSpread reports whether every position is finite and not all coincide.
func finiteSpread(pos [][2]float64) bool {
	for _, p := range pos {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return false
		}
	}
	for _, p := range pos[1:] {
		if p != pos[0] {
			return true
		}
	}
	return false
}

// circle places n nodes evenly on the unit circle.
func circle(n int) [][2]float64 {
	pos := make([][2]float64, n)
	for i := range pos {
		a := 2 * math.Pi * float64(i) / float64(n)
		pos[i] = [2]float64{math.Cos(a), math.Sin(a)}
	}
	return pos
}

// rescale centres positions on the origin and scales the largest coordinate to 1.
func rescale(pos [][2]float64) [][2]float64 {
	var cx, cy float64
	for _, p := range pos {
		cx += p[0]
		cy += p[1]
	}
	cx /= float64(len(pos))
	cy /= float64(len(pos))

	var lim float64
	for i := range pos {
		pos[i][0] -= cx
		pos[i][1] -= cy
		lim = math.Max(lim, math.Max(math.Abs(pos[i][0]), math.Abs(pos[i][1])))
	}
	if lim > 0 {
		for i := range pos {
			pos[i][0] /= lim
			pos[i][1] /= lim
		}
	}
	return pos
}
