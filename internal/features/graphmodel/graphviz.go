// Package graphmodel mirrors the strategy graph into an embedded Graphviz
// engine. The engine is optional: charts are drawn without it.
package graphmodel

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
)

// Modeler holds a live Graphviz instance.
type Modeler struct {
	gv *graphviz.Graphviz
}

// Start loads the Graphviz runtime. A failure means graph modelling is unavailable.
func Start(ctx context.Context) (*Modeler, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	return &Modeler{gv: gv}, nil
}

// Close releases the runtime.
func (m *Modeler) Close() error {
	if m == nil || m.gv == nil {
		return nil
	}
	return m.gv.Close()
}

// ToDOT builds an undirected graph linking every strategy to every hub.
func ToDOT(name string, hubs, strategies []string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "strict graph %q {\n", name)
	buf.WriteString("  node [style=filled, fontsize=8];\n")
	for _, h := range hubs {
		fmt.Fprintf(&buf, "  %q [kind=hub, fillcolor=\"#ffd6a5\"];\n", h)
	}
	for _, s := range strategies {
		fmt.Fprintf(&buf, "  %q [kind=strategy, fillcolor=\"#d1e8ff\"];\n", s)
	}
	buf.WriteString("\n")
	for _, s := range strategies {
		for _, h := range hubs {
			fmt.Fprintf(&buf, "  %q -- %q;\n", s, h)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

// Mirror parses the graph and lays it out once. The output is discarded; only
// success matters.
func (m *Modeler) Mirror(ctx context.Context, name string, hubs, strategies []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m == nil || m.gv == nil {
		return fmt.Errorf("graphviz not initialised")
	}

	g, err := graphviz.ParseBytes([]byte(ToDOT(name, hubs, strategies)))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if err := m.gv.Render(ctx, g, graphviz.SVG, io.Discard); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
