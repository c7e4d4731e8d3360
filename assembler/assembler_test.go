package assembler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kingsford-group/cdbg/graph"
	"github.com/kingsford-group/cdbg/kmer"
	"github.com/kingsford-group/cdbg/oracle"
)

func TestAssembleDirectedWalksRight(t *testing.T) {
	hg, err := oracle.NewHashgraph(4)
	require.NoError(t, err)
	_, err = hg.ConsumeString("ACTGGTCAATGC")
	require.NoError(t, err)

	codec, _ := kmer.NewCodec(4)
	first, _ := codec.Encode("ACTG")
	cur := hg.NewCursor(first.Forward, oracle.Right)
	got := AssembleDirected(cur, codec)
	require.Equal(t, "ACTGGTCAATGC", got)
}

func TestAssembleDirectedWalksLeft(t *testing.T) {
	hg, err := oracle.NewHashgraph(4)
	require.NoError(t, err)
	_, err = hg.ConsumeString("ACTGGTCAATGC")
	require.NoError(t, err)

	codec, _ := kmer.NewCodec(4)
	last, _ := codec.Encode("ATGC")
	cur := hg.NewCursor(last.Forward, oracle.Left)
	got := AssembleDirected(cur, codec)
	require.Equal(t, "ACTGGTCAATGC", got)
}

func TestAssembleDirectedStopsAtBranch(t *testing.T) {
	hg, err := oracle.NewHashgraph(4)
	require.NoError(t, err)
	_, err = hg.ConsumeString("AAAACCCC")
	require.NoError(t, err)
	_, err = hg.ConsumeString("AAAAGGGG")
	require.NoError(t, err)

	codec, _ := kmer.NewCodec(4)
	first, _ := codec.Encode("AAAA")
	cur := hg.NewCursor(first.Forward, oracle.Right)
	got := AssembleDirected(cur, codec)
	require.Equal(t, "AAAA", got)
}

// A convergence point reached partway through a walk, not at the cursor's
// starting k-mer, must still stop the walk one k-mer short of it: CGAT
// gathers a left-degree of 2 (from ACGA and GCGA) once both "ACGATG" and
// "GCGAT" are consumed, making it a real branch point. A cursor seeded at
// TACG (from a third, unrelated insertion "GTACG") walks right through the
// unambiguous ACGA before reaching CGAT; it must land on ACGA and refuse
// to step onto CGAT, rather than sailing through CGAT's interior to GATG.
func TestAssembleDirectedStopsAtConvergencePartwayThroughWalk(t *testing.T) {
	hg, err := oracle.NewHashgraph(4)
	require.NoError(t, err)
	_, err = hg.ConsumeString("ACGATG")
	require.NoError(t, err)
	_, err = hg.ConsumeString("GCGAT")
	require.NoError(t, err)
	_, err = hg.ConsumeString("GTACG")
	require.NoError(t, err)

	codec, _ := kmer.NewCodec(4)
	seed, _ := codec.Encode("TACG")
	cur := hg.NewCursor(seed.Forward, oracle.Right)
	got := AssembleDirected(cur, codec)

	require.Equal(t, "TACGA", got)
	require.NotContains(t, got, "GATG")
}

func TestTagStopperRejectsTaggedKmer(t *testing.T) {
	hg, err := oracle.NewHashgraph(4)
	require.NoError(t, err)
	_, err = hg.ConsumeString("AAAACCCCGGGG")
	require.NoError(t, err)

	codec, _ := kmer.NewCodec(4)
	clock := &graph.Clock{}
	edges := graph.NewEdgeStore(clock)

	mid, _ := codec.Encode("CCCC")
	tag := kmer.TagHash(mid.Canonical)
	edges.BuildEdge(graph.NullID, graph.NullID, graph.Full, "CCCC", map[uint64]struct{}{tag: {}})

	filter, hit := TagStopper(edges)
	first, _ := codec.Encode("AAAA")
	cur := hg.NewCursor(first.Forward, oracle.Right)
	cur.PushFilter(filter)

	got := AssembleDirected(cur, codec)
	require.Equal(t, "AAAACCC", got)
	require.True(t, hit.Hit)
	require.Equal(t, tag, hit.Tag)
}
