// Package graph implements the node store (C3), edge store (C4), and
// orientation algebra (C5) from spec.md §§3-4: the append-only HDN vector,
// the ID-keyed compact edge map, and the 4-way incidence slot bookkeeping
// that ties them together. Grounded on _examples/original_source's
// CompactNodeFactory/CompactEdgeFactory and on other_examples/
// mudesheng-ga__mapngs.go's DBGNode/DBGEdge naming.
package graph

import "github.com/kingsford-group/cdbg/kmer"

// NullID is the sentinel for "no node"/"no edge" used throughout slot
// arrays and edge endpoint fields.
const NullID = kmer.NullID

// Node is a high-degree k-mer (HDN), spec.md §3 "Compact node".
type Node struct {
	// ID is this node's dense, append-only index; stable for the process
	// lifetime (I1).
	ID uint64
	// Kmer is the canonical 2-bit encoding U; the map key (I2).
	Kmer kmer.Kmer
	// Sequence is the reconstructed K-length canonical string.
	Sequence string
	// Forward records whether F == U the first time this k-mer was seen.
	Forward bool
	// VisitCount is bumped every time build_or_get resolves to this node,
	// whether newly allocated or already present.
	VisitCount uint64
	// In holds, for each pivot base 0..3, the edge ID ending at this node
	// from that base (or NullID).
	In [4]uint64
	// Out holds, for each pivot base 0..3, the edge ID starting at this
	// node from that base (or NullID).
	Out [4]uint64
}

// Degree is out_degree + in_degree == non-null slot count (I4).
func (n *Node) Degree() int {
	d := 0
	for _, e := range n.In {
		if e != NullID {
			d++
		}
	}
	for _, e := range n.Out {
		if e != NullID {
			d++
		}
	}
	return d
}

// SlotOccupancy is an alias for Degree, named to match the spec.md §4.6
// Phase 2 "stored total slot-occupancy" language used to detect staleness.
func (n *Node) SlotOccupancy() int { return n.Degree() }

// NodeStore is the append-only HDN vector plus its canonical-kmer index
// (spec.md §4.3).
type NodeStore struct {
	clock *Clock
	nodes []*Node
	byU   map[kmer.Kmer]uint64
}

// NewNodeStore creates an empty node store sharing clock with the rest of
// the graph (see Clock's doc comment for why edge/node events share one
// counter).
func NewNodeStore(clock *Clock) *NodeStore {
	return &NodeStore{clock: clock, byU: make(map[kmer.Kmer]uint64)}
}

// GetByKmer returns the node for canonical k-mer u, or nil if absent.
func (s *NodeStore) GetByKmer(u kmer.Kmer) *Node {
	id, ok := s.byU[u]
	if !ok {
		return nil
	}
	return s.nodes[id]
}

// GetByID returns the node with the given dense ID, or nil if id is out of
// range or NullID.
func (s *NodeStore) GetByID(id uint64) *Node {
	if id == NullID || id >= uint64(len(s.nodes)) {
		return nil
	}
	return s.nodes[id]
}

// Len returns the number of nodes ever created (n_nodes()).
func (s *NodeStore) Len() int { return len(s.nodes) }

// BuildOrGet resolves the node for triple t, allocating one if none exists
// yet. It returns the node and whether it was newly allocated ("had to
// allocate it just now" in spec.md §4.6 Phase 2, resolved per SPEC_FULL.md
// item 4 as "VisitCount == 1 after increment").
func (s *NodeStore) BuildOrGet(t kmer.Triple, codec *kmer.Codec) (node *Node, wasNew bool) {
	if id, ok := s.byU[t.Canonical]; ok {
		n := s.nodes[id]
		n.VisitCount++
		return n, false
	}
	id := uint64(len(s.nodes))
	n := &Node{
		ID:       id,
		Kmer:     t.Canonical,
		Sequence: codec.CanonicalString(t.Canonical),
		Forward:  t.IsForward(),
	}
	n.VisitCount = 1
	for i := range n.In {
		n.In[i] = NullID
		n.Out[i] = NullID
	}
	s.nodes = append(s.nodes, n)
	s.byU[t.Canonical] = id
	s.clock.Next() // node creation is an update event
	return n, n.VisitCount == 1
}

// GetNodes does a linear sweep of sequence's k-mers, returning the
// existing nodes found along the way (spec.md §4.3 get_nodes); k-mers with
// no node are simply skipped.
func (s *NodeStore) GetNodes(sequence string, codec *kmer.Codec) []*Node {
	var out []*Node
	it := kmer.NewIterator(codec, sequence)
	for it.Next() {
		if n := s.GetByKmer(it.Triple().Canonical); n != nil {
			out = append(out, n)
		}
	}
	return out
}
