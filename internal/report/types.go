package report

// Report payload types shared by the input reader, the chart builders and the output writer

// Hub node names of the strategy relationship graph.
const (
	HubBudget        = "Budget"
	HubRiskReduction = "RiskReduction"
)

// UnknownID is used for picks that carry no id.
const UnknownID = "?"

// Pick is a candidate strategy selected for the report.
type Pick struct {
	ID      string  `json:"id"`
	Cost    float64 `json:"cost"`    // USD
	Benefit float64 `json:"benefit"` // expected risk reduction
}

// Site is a risk-scored location.
type Site struct {
	Risk float64 `json:"Risk"`
}

// Input is the decoded request document.
type Input struct {
	Picks []Pick
	Sites []Site
}

// ImageDescriptor is one rendered chart as it appears in the output document.
type ImageDescriptor struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DataURL     string `json:"dataUrl"`
}

// Meta describes how the output was produced.
type Meta struct {
	NxMcpUsed bool `json:"nx_mcp_used"` // graph model backend was available at startup
	Count     int  `json:"count"`
}

// Output is the document written to stdout.
type Output struct {
	Images []ImageDescriptor `json:"images"`
	Meta   Meta              `json:"meta"`
}

// NewOutput builds the output document; images is never encoded as null.
func NewOutput(images []ImageDescriptor, graphModelUsed bool) Output {
	if images == nil {
		images = []ImageDescriptor{}
	}
	return Output{
		Images: images,
		Meta: Meta{
			NxMcpUsed: graphModelUsed,
			Count:     len(images),
		},
	}
}
