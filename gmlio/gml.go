// Package gmlio writes the compact graph to GML, spec.md §6 "GML output
// shape". Grounded on the teacher's bufio-based writers in fastq.go/kpath.go
// (buffered io.Writer, explicit error propagation at every Write call).
package gmlio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kingsford-group/cdbg/graph"
)

// Graph is the minimal read surface gmlio needs from a compactor, kept as
// an interface so this package never imports compactor directly.
type Graph interface {
	NNodes() int
	NEdges() int
	GetNodeByID(id uint64) *graph.Node
	AllEdges() []*graph.CompactEdge
}

// nullSentinel is the GML rendering of graph.NullID (spec.md §6: "missing
// endpoints rendered as a distinct sentinel").
const nullSentinel = -1

// Write renders g to w as GML: one node line per HDN (id, canonical
// k-mer, visit count) and one edge line per compact edge (endpoint IDs,
// sequence length, meta tag). A run_id header comment stamps a fresh UUID
// per call so two dumps of the same graph are distinguishable.
func Write(w io.Writer, g Graph) error {
	bw := bufio.NewWriter(w)
	runID := uuid.New()

	if _, err := fmt.Fprintf(bw, "# run_id %s\ngraph [\n  directed 1\n", runID); err != nil {
		return errors.Wrap(err, "gmlio: write header")
	}

	for id := uint64(0); id < uint64(g.NNodes()); id++ {
		n := g.GetNodeByID(id)
		if n == nil {
			continue
		}
		if _, err := fmt.Fprintf(bw, "  node [ id %d kmer %q visits %d ]\n", n.ID, n.Sequence, n.VisitCount); err != nil {
			return errors.Wrap(err, "gmlio: write node")
		}
	}

	for _, e := range g.AllEdges() {
		src, dst := renderEndpoint(e.InNodeID), renderEndpoint(e.OutNodeID)
		if _, err := fmt.Fprintf(bw, "  edge [ source %d target %d id %d length %d meta %q ]\n",
			src, dst, e.ID, e.Length(), e.Meta); err != nil {
			return errors.Wrap(err, "gmlio: write edge")
		}
	}

	if _, err := fmt.Fprint(bw, "]\n"); err != nil {
		return errors.Wrap(err, "gmlio: write footer")
	}
	return bw.Flush()
}

func renderEndpoint(id uint64) int64 {
	if id == graph.NullID {
		return nullSentinel
	}
	return int64(id)
}
