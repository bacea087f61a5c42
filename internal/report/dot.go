package report

import (
	"bytes"
	"fmt"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"javamap/internal/resolver"
)

// RenderDOT renders the bean dependency graph in Graphviz DOT format.
// Parallel dependencies between the same two beans collapse to one arrow.
func RenderDOT(project string, edges []resolver.Edge) (string, error) {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, e := range edges {
		_ = g.AddVertex(e.Src(), graph.VertexAttribute("label", e.SrcClass+"\\n"+e.SrcBean))
		_ = g.AddVertex(e.Dst(), graph.VertexAttribute("label", e.DstClass+"\\n"+e.DstBean))
	}
	for _, e := range edges {
		_ = g.AddEdge(e.Src(), e.Dst(), graph.EdgeAttribute("label", e.Kind+":"+e.Name))
	}

	var buf bytes.Buffer
	if err := draw.DOT(g, &buf, draw.GraphAttribute("label", project)); err != nil {
		return "", fmt.Errorf("render dot: %w", err)
	}
	return buf.String(), nil
}
