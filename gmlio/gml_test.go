package gmlio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kingsford-group/cdbg/graph"
)

type fakeGraph struct {
	nodes []*graph.Node
	edges []*graph.CompactEdge
}

func (g *fakeGraph) NNodes() int { return len(g.nodes) }
func (g *fakeGraph) NEdges() int { return len(g.edges) }
func (g *fakeGraph) GetNodeByID(id uint64) *graph.Node {
	for _, n := range g.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
func (g *fakeGraph) AllEdges() []*graph.CompactEdge { return g.edges }

func TestWriteRendersHeaderNodesAndEdges(t *testing.T) {
	g := &fakeGraph{
		nodes: []*graph.Node{
			{ID: 0, Sequence: "AAAAA", VisitCount: 3},
		},
		edges: []*graph.CompactEdge{
			{ID: 7, InNodeID: 0, OutNodeID: graph.NullID, Meta: graph.Tip, Sequence: "AAAAACC"},
		},
	}

	var buf strings.Builder
	require.NoError(t, Write(&buf, g))
	out := buf.String()

	require.Contains(t, out, "# run_id ")
	require.Contains(t, out, "graph [")
	require.Contains(t, out, `node [ id 0 kmer "AAAAA" visits 3 ]`)
	require.Contains(t, out, "source 0 target -1 id 7 length 7 meta \"TIP\"")
	require.True(t, strings.HasSuffix(out, "]\n"))
}

func TestWriteEmptyGraphStillProducesValidHeaderAndFooter(t *testing.T) {
	g := &fakeGraph{}
	var buf strings.Builder
	require.NoError(t, Write(&buf, g))
	out := buf.String()
	require.Contains(t, out, "graph [")
	require.True(t, strings.HasSuffix(out, "]\n"))
}
