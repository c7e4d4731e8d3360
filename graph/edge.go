package graph

import (
	"strconv"

	"github.com/kingsford-group/cdbg/kmer"
)

// Meta classifies a compact edge per spec.md §3.
type Meta int

const (
	Full Meta = iota
	Tip
	Island
	Trivial
)

func (m Meta) String() string {
	switch m {
	case Full:
		return "FULL"
	case Tip:
		return "TIP"
	case Island:
		return "ISLAND"
	case Trivial:
		return "TRIVIAL"
	default:
		return "UNKNOWN"
	}
}

// DeduceMeta implements spec.md §4.6's endpoint-presence rule, shared by
// Phase 4 (induced-HDN repair) and Phase 5 (pure-linear case) per
// SPEC_FULL.md item 1: FULL unless an endpoint is missing (TIP) or both
// are missing (ISLAND); a FULL edge of exactly K+1 bases is TRIVIAL (the
// two endpoint HDNs are adjacent with no intervening sequence).
func DeduceMeta(hasLeft, hasRight bool, length, k int) Meta {
	switch {
	case !hasLeft && !hasRight:
		return Island
	case !hasLeft || !hasRight:
		return Tip
	case length == k+1:
		return Trivial
	default:
		return Full
	}
}

// CompactEdge is a maximal unitig between two endpoints, spec.md §3.
type CompactEdge struct {
	// ID is monotone (see Clock) and doubles as this edge's "update
	// clock" value at creation time.
	ID uint64
	// InNodeID is the endpoint the edge's sequence starts from, or
	// NullID.
	InNodeID uint64
	// OutNodeID is the endpoint the edge's sequence ends at, or NullID.
	OutNodeID uint64
	Meta      Meta
	// Sequence includes both endpoint k-mers in full when the
	// corresponding endpoint is an HDN (spec.md §3).
	Sequence string
	// Tags is the sparse interior tag index: hash(interior k-mer) -> true.
	// A nil/empty Tags is valid; tags are advisory (spec.md §3 "Tag").
	Tags map[uint64]struct{}
}

// Length returns the edge's sequence length in bases.
func (e *CompactEdge) Length() int { return len(e.Sequence) }

// ReverseComplementSequence returns the edge's sequence reverse
// complemented -- SPEC_FULL.md item 3. Nothing in this module calls it.
func (e *CompactEdge) ReverseComplementSequence() string {
	return kmer.ReverseComplement(e.Sequence)
}

// TagViz renders the edge's tag set as a short debug string, e.g.
// "3 tags" -- SPEC_FULL.md item 3. Nothing in this module calls it; the
// update_debug trace lines do not include it.
func (e *CompactEdge) TagViz(k int) string {
	if len(e.Tags) == 0 {
		return "no tags"
	}
	n := len(e.Tags)
	if n == 1 {
		return "1 tag"
	}
	return strconv.Itoa(n) + " tags"
}

// EdgeStore is the ID-keyed compact edge map plus the tag->edge index
// (spec.md §4's C4).
type EdgeStore struct {
	clock     *Clock
	edges     map[uint64]*CompactEdge
	tagToEdge map[uint64]uint64
}

// NewEdgeStore creates an empty edge store sharing clock with the node
// store.
func NewEdgeStore(clock *Clock) *EdgeStore {
	return &EdgeStore{
		clock:     clock,
		edges:     make(map[uint64]*CompactEdge),
		tagToEdge: make(map[uint64]uint64),
	}
}

// Len is n_compact_edges (I7): the live size of the edge map.
func (s *EdgeStore) Len() int { return len(s.edges) }

// Get returns the edge with the given ID, or nil.
func (s *EdgeStore) Get(id uint64) *CompactEdge {
	return s.edges[id]
}

// GetByTag returns the edge a tag hash points into, or nil (I6: tags->edge
// is a partial function whose range is a subset of live edges).
func (s *EdgeStore) GetByTag(tag uint64) *CompactEdge {
	id, ok := s.tagToEdge[tag]
	if !ok {
		return nil
	}
	return s.edges[id]
}

// AllEdges returns every live edge in ascending ID order, for GML/FASTA
// export.
func (s *EdgeStore) AllEdges() []*CompactEdge {
	ids := make([]uint64, 0, len(s.edges))
	for id := range s.edges {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	out := make([]*CompactEdge, len(ids))
	for i, id := range ids {
		out[i] = s.edges[id]
	}
	return out
}

// BuildEdge allocates and registers a new compact edge. The caller is
// responsible for slotting it into both endpoints via the orientation
// algebra (AddEdgeFromLeft/AddEdgeFromRight) before or after this call;
// BuildEdge only owns the edge object and the tag index.
func (s *EdgeStore) BuildEdge(inNode, outNode uint64, meta Meta, sequence string, tags map[uint64]struct{}) *CompactEdge {
	id := s.clock.Next()
	e := &CompactEdge{
		ID:        id,
		InNodeID:  inNode,
		OutNodeID: outNode,
		Meta:      meta,
		Sequence:  sequence,
		Tags:      tags,
	}
	s.edges[id] = e
	for tag := range tags {
		s.tagToEdge[tag] = id
	}
	return e
}

// DeleteEdge unlinks e from both endpoint slots, scrubs its tag entries,
// removes it from the edge map, and bumps the update clock (spec.md §3
// "Lifecycles": "destroyed only via delete_edge (unlink from both
// endpoint slots, remove tag entries, remove from the edge map, bump
// update counter)").
func DeleteEdge(nodes *NodeStore, edges *EdgeStore, e *CompactEdge) {
	if e == nil {
		return
	}
	unlinkEndpoint(nodes, e.InNodeID, e.ID)
	unlinkEndpoint(nodes, e.OutNodeID, e.ID)
	for tag := range e.Tags {
		if edges.tagToEdge[tag] == e.ID {
			delete(edges.tagToEdge, tag)
		}
	}
	delete(edges.edges, e.ID)
	edges.clock.Next()
}

func unlinkEndpoint(nodes *NodeStore, nodeID, edgeID uint64) {
	if nodeID == NullID {
		return
	}
	n := nodes.GetByID(nodeID)
	if n == nil {
		return
	}
	clearSlot(n, edgeID)
}
