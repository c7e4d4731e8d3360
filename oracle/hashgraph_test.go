package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kingsford-group/cdbg/kmer"
)

func TestConsumeStringCountsDeltaOnce(t *testing.T) {
	hg, err := NewHashgraph(4)
	require.NoError(t, err)

	delta, err := hg.ConsumeString("ACGTAC")
	require.NoError(t, err)
	require.Equal(t, uint64(3), delta) // ACGT, CGTA, GTAC

	delta2, err := hg.ConsumeString("ACGTAC")
	require.NoError(t, err)
	require.Equal(t, uint64(0), delta2)
	require.Equal(t, uint64(3), hg.NUniqueKmers())
}

func TestRightNeighborsFindsAllBranches(t *testing.T) {
	hg, err := NewHashgraph(4)
	require.NoError(t, err)
	_, err = hg.ConsumeString("AAAAC")
	require.NoError(t, err)
	_, err = hg.ConsumeString("AAAAG")
	require.NoError(t, err)
	_, err = hg.ConsumeString("AAAAT")
	require.NoError(t, err)

	codec, err := kmer.NewCodec(4)
	require.NoError(t, err)
	tr, err := codec.Encode("AAAA")
	require.NoError(t, err)

	nb := hg.RightNeighbors(tr.Forward)
	require.Len(t, nb, 3)
	require.EqualValues(t, 3, hg.RightDegree(tr.Forward))
	require.EqualValues(t, 0, hg.LeftDegree(tr.Forward))
}

func TestHashgraphKSizeMismatchRejected(t *testing.T) {
	hg, err := NewHashgraph(4)
	require.NoError(t, err)
	_, err = hg.ConsumeString("AC")
	require.Error(t, err)
}

func TestWithBloomApproximatesMembership(t *testing.T) {
	hg, err := NewHashgraph(4, WithBloom(1<<12, 3))
	require.NoError(t, err)
	_, err = hg.ConsumeString("ACGTACGT")
	require.NoError(t, err)
	codec, _ := kmer.NewCodec(4)
	tr, _ := codec.Encode("ACGT")
	require.True(t, hg.Contains(tr.Canonical))
}

func TestCursorWalksUnambiguousRegion(t *testing.T) {
	hg, err := NewHashgraph(4)
	require.NoError(t, err)
	_, err = hg.ConsumeString("ACTGGTCAATGC")
	require.NoError(t, err)

	codec, _ := kmer.NewCodec(4)
	first, _ := codec.Encode("ACTG")
	cur := hg.NewCursor(first.Forward, Right)
	seq := cur.Kmer()
	_ = seq
	steps := 0
	for cur.Step() {
		steps++
	}
	require.Equal(t, 8, steps) // ACTGGTCAATGC has 12 bases, 4-mer walk advances 8 times
}
