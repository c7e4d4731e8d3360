package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kingsford-group/cdbg/kmer"
)

func TestBuildOrGetReportsNewOnlyOnce(t *testing.T) {
	codec, err := kmer.NewCodec(5)
	require.NoError(t, err)
	clock := &Clock{}
	nodes := NewNodeStore(clock)

	tr, err := codec.Encode("AAAAA")
	require.NoError(t, err)

	n1, wasNew1 := nodes.BuildOrGet(tr, codec)
	require.True(t, wasNew1)
	require.EqualValues(t, 1, n1.VisitCount)

	n2, wasNew2 := nodes.BuildOrGet(tr, codec)
	require.False(t, wasNew2)
	require.Same(t, n1, n2)
	require.EqualValues(t, 2, n2.VisitCount)
	require.Equal(t, 1, nodes.Len())
}

func TestBuildOrGetInitializesSlotsToNullID(t *testing.T) {
	codec, _ := kmer.NewCodec(5)
	clock := &Clock{}
	nodes := NewNodeStore(clock)
	tr, _ := codec.Encode("ACGTA")
	n, _ := nodes.BuildOrGet(tr, codec)
	for _, id := range n.In {
		require.Equal(t, NullID, id)
	}
	for _, id := range n.Out {
		require.Equal(t, NullID, id)
	}
	require.Equal(t, 0, n.Degree())
}

func TestEdgeStoreBuildAndDelete(t *testing.T) {
	codec, _ := kmer.NewCodec(5)
	clock := &Clock{}
	nodes := NewNodeStore(clock)
	edges := NewEdgeStore(clock)

	leftTr, _ := codec.Encode("AAAAC")
	rightTr, _ := codec.Encode("CCCCC")
	left, _ := nodes.BuildOrGet(leftTr, codec)
	right, _ := nodes.BuildOrGet(rightTr, codec)

	tags := map[uint64]struct{}{42: {}}
	e := edges.BuildEdge(left.ID, right.ID, Full, "AAAACCCCC", tags)
	require.Equal(t, 1, edges.Len())
	require.Same(t, e, edges.Get(e.ID))
	require.Same(t, e, edges.GetByTag(42))

	_, err := AddEdgeFromRight(left, e, 5)
	require.NoError(t, err)
	_, err = AddEdgeFromLeft(right, e, 5)
	require.NoError(t, err)
	require.Equal(t, 1, left.Degree())
	require.Equal(t, 1, right.Degree())

	DeleteEdge(nodes, edges, e)
	require.Equal(t, 0, edges.Len())
	require.Nil(t, edges.GetByTag(42))
	require.Equal(t, 0, left.Degree())
	require.Equal(t, 0, right.Degree())
}

func TestAllEdgesReturnsAscendingByID(t *testing.T) {
	clock := &Clock{}
	edges := NewEdgeStore(clock)
	e1 := edges.BuildEdge(NullID, NullID, Island, "AAAAA", nil)
	e2 := edges.BuildEdge(NullID, NullID, Island, "CCCCC", nil)
	e3 := edges.BuildEdge(NullID, NullID, Island, "GGGGG", nil)

	all := edges.AllEdges()
	require.Len(t, all, 3)
	require.True(t, all[0].ID < all[1].ID)
	require.True(t, all[1].ID < all[2].ID)
	ids := map[uint64]bool{e1.ID: true, e2.ID: true, e3.ID: true}
	for _, e := range all {
		require.True(t, ids[e.ID])
	}
}

func TestDeduceMeta(t *testing.T) {
	require.Equal(t, Island, DeduceMeta(false, false, 10, 5))
	require.Equal(t, Tip, DeduceMeta(true, false, 10, 5))
	require.Equal(t, Tip, DeduceMeta(false, true, 10, 5))
	require.Equal(t, Trivial, DeduceMeta(true, true, 6, 5))
	require.Equal(t, Full, DeduceMeta(true, true, 10, 5))
}

func TestFuseEndpointMatchesForwardStrand(t *testing.T) {
	codec, _ := kmer.NewCodec(5)
	clock := &Clock{}
	nodes := NewNodeStore(clock)
	tr, _ := codec.Encode("CCCCC") // canonical sequence CCCCC, RC is GGGGG
	node, _ := nodes.BuildOrGet(tr, codec)

	// segment's last 4 bases are CCCC; the 5th (final) base should be
	// filled in to complete the node's own window.
	fused, same, err := FuseEndpoint(node, "AACCCC", 5, true)
	require.NoError(t, err)
	require.True(t, same)
	require.Equal(t, "AACCCCC", fused)
}

func TestFuseEndpointMatchesReverseComplementStrand(t *testing.T) {
	codec, _ := kmer.NewCodec(5)
	clock := &Clock{}
	nodes := NewNodeStore(clock)
	tr, _ := codec.Encode("AAAAA") // canonical sequence AAAAA, RC is TTTTT
	node, _ := nodes.BuildOrGet(tr, codec)

	// fromLeft with the segment's tail being TTTT should pick T to
	// complete the reverse-complement window TTTTT.
	fused, same, err := FuseEndpoint(node, "CCTTTT", 5, true)
	require.NoError(t, err)
	require.False(t, same)
	require.Equal(t, "CCTTTTT", fused)
}

func TestGetEdgeFromLeftMirrorsAddEdgeFromLeft(t *testing.T) {
	codec, _ := kmer.NewCodec(5)
	clock := &Clock{}
	nodes := NewNodeStore(clock)
	edges := NewEdgeStore(clock)

	tr, _ := codec.Encode("CCCCC")
	node, _ := nodes.BuildOrGet(tr, codec)
	e := edges.BuildEdge(NullID, node.ID, Full, "AACCCCC", nil)

	same, err := AddEdgeFromLeft(node, e, 5)
	require.NoError(t, err)
	require.True(t, same)

	_, pivot, perr := orientationAt(node, e.Sequence, 5, true)
	require.NoError(t, perr)
	id, side, ok := GetEdgeFromLeft(node, pivot, same)
	require.True(t, ok)
	require.Equal(t, e.ID, id)
	require.Equal(t, SideIn, side)
}

func TestSlotForRejectsConflictingOccupant(t *testing.T) {
	codec, _ := kmer.NewCodec(5)
	clock := &Clock{}
	nodes := NewNodeStore(clock)
	tr, _ := codec.Encode("AAAAA")
	node, _ := nodes.BuildOrGet(tr, codec)

	require.NoError(t, slotFor(node, 'C', SideIn, 1))
	require.NoError(t, slotFor(node, 'C', SideIn, 1)) // same edge id is fine
	require.Error(t, slotFor(node, 'C', SideIn, 2))   // different edge id conflicts
}

func TestClockSharedSequenceAdvancesOnNodeAndEdgeEvents(t *testing.T) {
	clock := &Clock{}
	nodes := NewNodeStore(clock)
	edges := NewEdgeStore(clock)
	codec, _ := kmer.NewCodec(5)

	before := clock.Value()
	tr, _ := codec.Encode("AAAAA")
	nodes.BuildOrGet(tr, codec)
	require.Greater(t, clock.Value(), before)

	afterNode := clock.Value()
	e := edges.BuildEdge(NullID, NullID, Island, "AAAAA", nil)
	require.Greater(t, e.ID, afterNode-1)

	afterEdge := clock.Value()
	DeleteEdge(nodes, edges, e)
	require.Greater(t, clock.Value(), afterEdge)
}
