package oracle

import (
	"github.com/pkg/errors"
	"github.com/willf/bloom"

	"github.com/kingsford-group/cdbg/kmer"
)

// membership is the pluggable storage backing Hashgraph: either an exact
// set (the default, for deterministic tests) or a Bloom filter (via
// WithBloom) for the "probabilistic, false positives tolerated" behavior
// spec.md §1 describes as the oracle's defining trait.
type membership interface {
	add(u kmer.Kmer) (wasNew bool)
	contains(u kmer.Kmer) bool
	count() uint64
}

// exactSet is the default backing: a plain map, so Δ-unique-kmer bookkeeping
// in tests is exact and reproducible.
type exactSet struct {
	seen map[kmer.Kmer]struct{}
}

func newExactSet() *exactSet { return &exactSet{seen: make(map[kmer.Kmer]struct{})} }

func (s *exactSet) add(u kmer.Kmer) bool {
	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = struct{}{}
	return true
}

func (s *exactSet) contains(u kmer.Kmer) bool {
	_, ok := s.seen[u]
	return ok
}

func (s *exactSet) count() uint64 { return uint64(len(s.seen)) }

// bloomSet backs Hashgraph with a willf/bloom.BloomFilter: membership is
// approximate (false positives possible, false negatives impossible),
// matching spec.md's "the oracle is probabilistic and false positives are
// tolerated" framing. A separate counter tracks inserts since a Bloom
// filter cannot report its own exact cardinality.
type bloomSet struct {
	filter   *bloom.BloomFilter
	inserted uint64
}

func newBloomSet(m uint64, k uint) *bloomSet {
	return &bloomSet{filter: bloom.New(uint(m), k)}
}

func (b *bloomSet) keyBytes(u kmer.Kmer) []byte {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> uint(8*i))
	}
	return buf[:]
}

func (b *bloomSet) add(u kmer.Kmer) bool {
	key := b.keyBytes(u)
	wasNew := !b.filter.Test(key)
	b.filter.Add(key)
	if wasNew {
		b.inserted++
	}
	return wasNew
}

func (b *bloomSet) contains(u kmer.Kmer) bool {
	return b.filter.Test(b.keyBytes(u))
}

func (b *bloomSet) count() uint64 { return b.inserted }

// Hashgraph is the reference Oracle implementation: a membership store
// keyed by canonical k-mer, grounded on oxli's Nodegraph/counting-table
// role but with the storage swappable via functional options.
type Hashgraph struct {
	codec *kmer.Codec
	store membership
}

// Option configures a Hashgraph at construction.
type Option func(*Hashgraph)

// WithBloom swaps the default exact map for a Bloom filter of m bits and k
// hash functions, matching how i5heu-ouroboros-db and the partitioner's own
// guard wire willf/bloom for approximate membership.
func WithBloom(m uint64, k uint) Option {
	return func(h *Hashgraph) {
		h.store = newBloomSet(m, k)
	}
}

// NewHashgraph builds a Hashgraph for k-mers of length k. Defaults to an
// exact map; pass WithBloom to switch to approximate membership.
func NewHashgraph(k int, opts ...Option) (*Hashgraph, error) {
	codec, err := kmer.NewCodec(k)
	if err != nil {
		return nil, errors.Wrap(err, "oracle: new hashgraph")
	}
	h := &Hashgraph{codec: codec, store: newExactSet()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Hashgraph) KSize() int { return h.codec.K }

// ConsumeString inserts every k-mer of s and returns how many canonical
// k-mers were previously unseen.
func (h *Hashgraph) ConsumeString(s string) (uint64, error) {
	if len(s) < h.codec.K {
		return 0, errors.Errorf("oracle: sequence length %d shorter than k=%d", len(s), h.codec.K)
	}
	it := kmer.NewIterator(h.codec, s)
	var delta uint64
	found := false
	for it.Next() {
		found = true
		if h.store.add(it.Triple().Canonical) {
			delta++
		}
	}
	if !found {
		return 0, errors.Errorf("oracle: sequence %q contains no valid k-mers", s)
	}
	return delta, nil
}

func (h *Hashgraph) NUniqueKmers() uint64 { return h.store.count() }

func (h *Hashgraph) Contains(u kmer.Kmer) bool { return h.store.contains(u) }

// extendRight/extendLeft build the forward encoding of appending/prepending
// base b to the forward k-mer fwd; callers canonicalize it themselves.
func (h *Hashgraph) extendRight(fwd kmer.Kmer, baseBits kmer.Kmer) kmer.Kmer {
	mask := (kmer.Kmer(1) << uint(2*h.codec.K)) - 1
	if h.codec.K == 32 {
		mask = ^kmer.Kmer(0)
	}
	return ((fwd << 2) | baseBits) & mask
}

func (h *Hashgraph) extendLeft(fwd kmer.Kmer, baseBits kmer.Kmer) kmer.Kmer {
	mask := (kmer.Kmer(1) << uint(2*h.codec.K)) - 1
	if h.codec.K == 32 {
		mask = ^kmer.Kmer(0)
	}
	return ((fwd >> 2) | (baseBits << uint(2*(h.codec.K-1)))) & mask
}

// canonicalOf computes min(fwd, reverseComplement(fwd)), avoiding a string
// round-trip for every neighbor probed.
func (h *Hashgraph) canonicalOf(fwd kmer.Kmer) kmer.Kmer {
	return h.codec.Canonical(fwd)
}

var bases = []kmer.Kmer{0, 1, 2, 3} // A, C, G, T

// RightNeighbors returns the canonical k-mers of fwd+{A,C,G,T} present in
// the store, in base order A,C,G,T. A k-mer is never its own neighbor
// (AAAA+A is not counted for AAAA).
func (h *Hashgraph) RightNeighbors(fwd kmer.Kmer) []kmer.Kmer {
	var out []kmer.Kmer
	self := h.canonicalOf(fwd)
	for _, b := range bases {
		cand := h.extendRight(fwd, b)
		u := h.canonicalOf(cand)
		if u != self && h.store.contains(u) {
			out = append(out, u)
		}
	}
	return out
}

// LeftNeighbors returns the canonical k-mers of {A,C,G,T}+fwd present in
// the store, in base order A,C,G,T, excluding fwd's own canonical k-mer.
func (h *Hashgraph) LeftNeighbors(fwd kmer.Kmer) []kmer.Kmer {
	var out []kmer.Kmer
	self := h.canonicalOf(fwd)
	for _, b := range bases {
		cand := h.extendLeft(fwd, b)
		u := h.canonicalOf(cand)
		if u != self && h.store.contains(u) {
			out = append(out, u)
		}
	}
	return out
}

func (h *Hashgraph) LeftDegree(fwd kmer.Kmer) uint8  { return uint8(len(h.LeftNeighbors(fwd))) }
func (h *Hashgraph) RightDegree(fwd kmer.Kmer) uint8 { return uint8(len(h.RightNeighbors(fwd))) }

// Codec exposes the underlying codec so packages that only hold an Oracle
// interface value but need to encode/decode strings (compactor, assembler)
// can type-assert down to it when constructing a *Hashgraph directly in
// tests; production code should thread a *kmer.Codec alongside the Oracle
// instead of relying on this.
func (h *Hashgraph) Codec() *kmer.Codec { return h.codec }
