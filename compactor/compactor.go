// Package compactor implements the streaming compactor (C7), spec.md §4.6:
// the five-phase update(s) algorithm that repairs a compact de Bruijn graph
// incrementally as sequences arrive. Grounded on
// _examples/original_source/include/oxli/cdbg.hh's
// StreamingCompactor::update_compact_dbg.
package compactor

import (
	"strconv"
	"strings"

	"github.com/kingsford-group/cdbg/assembler"
	"github.com/kingsford-group/cdbg/graph"
	"github.com/kingsford-group/cdbg/internal/cdbgerr"
	"github.com/kingsford-group/cdbg/internal/config"
	"github.com/kingsford-group/cdbg/internal/xlog"
	"github.com/kingsford-group/cdbg/kmer"
	"github.com/kingsford-group/cdbg/oracle"
)

// Compactor binds a node store, edge store, and oracle together and drives
// spec.md §4.6's per-sequence repair. It is single-writer (spec.md §5):
// callers must not invoke ConsumeSequenceAndUpdate concurrently.
type Compactor struct {
	codec        *kmer.Codec
	oracle       oracle.Oracle
	clock        *graph.Clock
	Nodes        *graph.NodeStore
	Edges        *graph.EdgeStore
	log          *xlog.Logger
	islandPolicy config.IslandPolicy
	tagDensity   uint32
	nSeqAdded    uint64
}

// New binds a Compactor to o. OracleMismatch is returned (fatal at
// construction, per spec.md §7) if o's K disagrees with cfg.K.
func New(o oracle.Oracle, cfg config.Config) (*Compactor, error) {
	if o.KSize() != cfg.K {
		return nil, cdbgerr.Newf(cdbgerr.OracleMismatch, "oracle k=%d != engine k=%d", o.KSize(), cfg.K)
	}
	codec, err := kmer.NewCodec(cfg.K)
	if err != nil {
		return nil, cdbgerr.Wrap(cdbgerr.OracleMismatch, err, "compactor: bad k")
	}
	clock := &graph.Clock{}
	log := xlog.New("compactor").With("k", cfg.K)
	log.SetDebug(cfg.UpdateDebug)
	return &Compactor{
		codec:        codec,
		oracle:       o,
		clock:        clock,
		Nodes:        graph.NewNodeStore(clock),
		Edges:        graph.NewEdgeStore(clock),
		log:          log,
		islandPolicy: cfg.IslandPolicy,
		tagDensity:   cfg.TagDensity,
	}, nil
}

// validateSequence rejects anything shorter than K or containing a
// non-ACGT byte (spec.md §7 InvalidSequence).
func (c *Compactor) validateSequence(s string) error {
	if len(s) < c.codec.K {
		return cdbgerr.Newf(cdbgerr.InvalidSequence, "sequence length %d shorter than k=%d", len(s), c.codec.K)
	}
	for i := 0; i < len(s); i++ {
		if !kmer.IsValidBase(s[i]) {
			return cdbgerr.Newf(cdbgerr.InvalidSequence, "invalid base %q at position %d", s[i], i)
		}
	}
	return nil
}

// ConsumeSequence consumes s into the oracle only, without touching the
// graph; returns the number of previously-unseen canonical k-mers.
func (c *Compactor) ConsumeSequence(s string) (uint64, error) {
	if err := c.validateSequence(s); err != nil {
		return 0, err
	}
	delta, err := c.oracle.ConsumeString(s)
	if err != nil {
		return 0, cdbgerr.Wrap(cdbgerr.InvalidSequence, err, "oracle rejected sequence")
	}
	return delta, nil
}

// ConsumeSequenceAndUpdate is the engine's main entry point (spec.md §4.6):
// consume s into the oracle, and if it introduced any new k-mer, repair
// the compact graph. Returns the number of update events recorded.
func (c *Compactor) ConsumeSequenceAndUpdate(s string) (uint64, error) {
	if err := c.validateSequence(s); err != nil {
		return 0, err
	}
	delta, err := c.oracle.ConsumeString(s)
	if err != nil {
		return 0, cdbgerr.Wrap(cdbgerr.InvalidSequence, err, "oracle rejected sequence")
	}
	if delta == 0 {
		return 0, nil
	}
	before := c.clock.Value()
	if err := c.update(s); err != nil {
		return 0, err
	}
	c.nSeqAdded++
	return c.clock.Value() - before, nil
}

// canonicalOf returns the canonical form of a forward-encoded k-mer.
func (c *Compactor) canonicalOf(fwd kmer.Kmer) kmer.Kmer { return c.codec.Canonical(fwd) }

// update runs the five-phase repair described in spec.md §4.6.
func (c *Compactor) update(s string) error {
	it := kmer.NewIterator(c.codec, s)
	disturbed := make(map[kmer.Kmer]kmer.Triple)
	var first, last kmer.Triple
	have := false
	for it.Next() {
		t := it.Triple()
		if !have {
			first = t
			have = true
		}
		last = t
		disturbed[t.Canonical] = t
	}
	if !have {
		return cdbgerr.New(cdbgerr.InvalidSequence, "no valid k-mers in sequence")
	}

	for _, u := range c.oracle.LeftNeighbors(first.Forward) {
		if _, ok := disturbed[u]; !ok {
			disturbed[u] = c.syntheticTriple(u)
		}
	}
	for _, u := range c.oracle.RightNeighbors(last.Forward) {
		if _, ok := disturbed[u]; !ok {
			disturbed[u] = c.syntheticTriple(u)
		}
	}

	keys := make([]kmer.Kmer, 0, len(disturbed))
	for u := range disturbed {
		keys = append(keys, u)
	}
	sortKmers(keys)

	var induced, alreadyValid []*graph.Node
	for _, u := range keys {
		t := disturbed[u]
		ld := c.oracle.LeftDegree(u)
		rd := c.oracle.RightDegree(u)
		if int(ld)+int(rd) <= 2 {
			continue // not a high-degree k-mer (spec.md §8 scenario 2)
		}
		node, wasNew := c.Nodes.BuildOrGet(t, c.codec)
		switch {
		case wasNew:
			induced = append(induced, node)
		case node.SlotOccupancy() != int(ld)+int(rd):
			induced = append(induced, node)
		default:
			alreadyValid = append(alreadyValid, node)
		}
	}

	if len(induced) == 0 {
		if len(alreadyValid) == 0 {
			return c.phase5(s, first, last)
		}
		induced = alreadyValid
	}

	for _, v := range induced {
		for _, dir := range [2]oracle.Direction{oracle.Left, oracle.Right} {
			if err := c.repairDirection(v, dir); err != nil {
				return err
			}
		}
	}
	return nil
}

// syntheticTriple builds a Triple for a canonical k-mer discovered only as
// a neighbor (we don't know an original "first sighting" strand for it, so
// Forward==Canonical is a deterministic, harmless default).
func (c *Compactor) syntheticTriple(u kmer.Kmer) kmer.Triple {
	return kmer.Triple{Forward: u, Reverse: u, Canonical: u}
}

func sortKmers(ks []kmer.Kmer) {
	for i := 1; i < len(ks); i++ {
		for j := i; j > 0 && ks[j-1] > ks[j]; j-- {
			ks[j-1], ks[j] = ks[j], ks[j-1]
		}
	}
}

// repairDirection is Phase 3 + Phase 4 for one induced HDN v and one
// direction.
func (c *Compactor) repairDirection(v *graph.Node, dir oracle.Direction) error {
	k := c.codec.K
	vFromLeft := dir == oracle.Left
	wFromLeft := !vFromLeft

	var neighbors []kmer.Kmer
	if dir == oracle.Left {
		neighbors = c.oracle.LeftNeighbors(v.Kmer)
	} else {
		neighbors = c.oracle.RightNeighbors(v.Kmer)
	}

	overlap := kmer.Kmer(1)<<uint(2*(k-1)) - 1
	for _, n := range neighbors {
		// n is canonical; start the walk on whichever strand of n overlaps
		// v's own (canonical) k-mer, so the walk stays on v's strand.
		tr, _ := c.codec.Encode(c.codec.String(n))
		start := tr.Forward
		if (dir == oracle.Left && start&overlap != v.Kmer>>2) || (dir == oracle.Right && start>>2 != v.Kmer&overlap) {
			start = tr.Reverse
		}
		cur := c.oracle.NewCursor(start, dir)
		filter, _ := assembler.TagStopper(c.Edges)
		cur.PushFilter(filter)
		walked := assembler.AssembleDirected(cur, c.codec)

		finalCanon := c.canonicalOf(cur.Kmer())
		var w *graph.Node
		if finalCanon != v.Kmer {
			w = c.Nodes.GetByKmer(finalCanon)
		}

		vFused, _, err := graph.FuseEndpoint(v, walked, k, vFromLeft)
		if err != nil {
			return cdbgerr.Wrap(cdbgerr.CorruptIndex, err, "fusing induced node endpoint")
		}
		// If w is non-nil, the walk already landed exactly on w's own
		// k-mer (the cursor's single-neighbor-back-degree check in
		// oracle.Cursor.Step stops it there), so vFused already carries
		// w's full k-mer at its tail; fusing w a second time would shift
		// the window past it and corrupt the join.
		finalSeq := vFused

		var inID, outID uint64 = graph.NullID, graph.NullID
		if dir == oracle.Left {
			outID = v.ID
			if w != nil {
				inID = w.ID
			}
		} else {
			inID = v.ID
			if w != nil {
				outID = w.ID
			}
		}

		if err := c.replaceSegment(v, w, finalSeq, inID, outID, vFromLeft, wFromLeft); err != nil {
			return err
		}
	}
	return nil
}

// replaceSegment is Phase 4: validate the freshly computed segment against
// whatever is already slotted at v (and w, if present); if it already
// matches, leave it alone; otherwise delete the stale edge(s) and build
// the replacement.
func (c *Compactor) replaceSegment(v, w *graph.Node, seq string, inID, outID uint64, vFromLeft, wFromLeft bool) error {
	k := c.codec.K

	vEdgeID, err := graph.ExistingEdgeFrom(v, seq, k, vFromLeft)
	if err != nil {
		return cdbgerr.Wrap(cdbgerr.CorruptIndex, err, "locating existing edge at induced node")
	}
	var vExisting *graph.CompactEdge
	if vEdgeID != graph.NullID {
		vExisting = c.Edges.Get(vEdgeID)
	}

	var wExisting *graph.CompactEdge
	wEdgeID := graph.NullID
	if w != nil {
		wEdgeID, err = graph.ExistingEdgeFrom(w, seq, k, wFromLeft)
		if err != nil {
			return cdbgerr.Wrap(cdbgerr.CorruptIndex, err, "locating existing edge at far endpoint")
		}
		if wEdgeID != graph.NullID {
			wExisting = c.Edges.Get(wEdgeID)
		}
	}

	valid := false
	switch {
	case w == nil:
		valid = vExisting != nil && validateSegment(vExisting, v.ID, graph.NullID, len(seq))
	default:
		valid = vExisting != nil && wExisting != nil && vEdgeID == wEdgeID &&
			validateSegment(vExisting, v.ID, w.ID, len(seq))
	}
	if valid {
		c.log.Debugf("segment at node %d dir unchanged, edge %d validated", v.ID, vExisting.ID)
		return nil
	}

	if vExisting != nil {
		graph.DeleteEdge(c.Nodes, c.Edges, vExisting)
	}
	if wExisting != nil && (vExisting == nil || wExisting.ID != vExisting.ID) {
		graph.DeleteEdge(c.Nodes, c.Edges, wExisting)
	}

	meta := graph.DeduceMeta(inID != graph.NullID, outID != graph.NullID, len(seq), k)
	tags := c.plantTags(seq)
	edge := c.Edges.BuildEdge(inID, outID, meta, seq, tags)
	if _, err := graph.AddEdgeFrom(v, edge, k, vFromLeft); err != nil {
		return cdbgerr.Wrap(cdbgerr.CorruptIndex, err, "slotting new edge at induced node")
	}
	if w != nil {
		if _, err := graph.AddEdgeFrom(w, edge, k, wFromLeft); err != nil {
			return cdbgerr.Wrap(cdbgerr.CorruptIndex, err, "slotting new edge at far endpoint")
		}
	}
	c.log.Debugf("built %s edge %d (len %d) between %d and %d", edge.Meta, edge.ID, len(seq), inID, outID)
	return nil
}

// validateSegment implements spec.md §4.6 Phase 4's predicate.
func validateSegment(existing *graph.CompactEdge, rootID, otherID uint64, length int) bool {
	switch existing.Meta {
	case graph.Full, graph.Trivial:
		match := (existing.InNodeID == rootID && existing.OutNodeID == otherID) ||
			(existing.OutNodeID == rootID && existing.InNodeID == otherID)
		return match && existing.Length() == length
	case graph.Tip:
		nonNull := existing.InNodeID
		if nonNull == graph.NullID {
			nonNull = existing.OutNodeID
		}
		return nonNull == rootID && existing.Length() == length
	default:
		return false
	}
}

// phase5 is spec.md §4.6 Phase 5: the pure-linear case, reached when no
// HDN was induced or disturbed by this sequence.
func (c *Compactor) phase5(s string, first, last kmer.Triple) error {
	k := c.codec.K

	curLeft := c.oracle.NewCursor(first.Forward, oracle.Left)
	leftFilter, _ := assembler.TagStopper(c.Edges)
	curLeft.PushFilter(leftFilter)
	leftSeg := assembler.AssembleDirected(curLeft, c.codec)

	curRight := c.oracle.NewCursor(last.Forward, oracle.Right)
	rightFilter, _ := assembler.TagStopper(c.Edges)
	curRight.PushFilter(rightFilter)
	rightSeg := assembler.AssembleDirected(curRight, c.codec)

	fullSeq := leftSeg[:len(leftSeg)-k] + s + rightSeg[k:]

	wLeft := c.Nodes.GetByKmer(c.canonicalOf(curLeft.Kmer()))
	wRight := c.Nodes.GetByKmer(c.canonicalOf(curRight.Kmer()))

	staleLeft, staleRight := graph.NullID, graph.NullID
	if wLeft != nil {
		if id, err := graph.ExistingEdgeFrom(wLeft, fullSeq, k, false); err == nil {
			staleLeft = id
		}
	}
	if wRight != nil {
		if id, err := graph.ExistingEdgeFrom(wRight, fullSeq, k, true); err == nil {
			staleRight = id
		}
	}
	if staleLeft != graph.NullID {
		graph.DeleteEdge(c.Nodes, c.Edges, c.Edges.Get(staleLeft))
	}
	if staleRight != graph.NullID && staleRight != staleLeft {
		graph.DeleteEdge(c.Nodes, c.Edges, c.Edges.Get(staleRight))
	}

	inID, outID := graph.NullID, graph.NullID
	if wLeft != nil {
		inID = wLeft.ID
	}
	if wRight != nil {
		outID = wRight.ID
	}

	meta := graph.DeduceMeta(wLeft != nil, wRight != nil, len(fullSeq), k)
	if meta == graph.Island && c.islandPolicy == config.IslandSkip {
		c.log.Debugf("skipping island segment of length %d (island_policy=skip)", len(fullSeq))
		return nil
	}

	tags := c.plantTags(fullSeq)
	edge := c.Edges.BuildEdge(inID, outID, meta, fullSeq, tags)
	if wLeft != nil {
		if _, err := graph.AddEdgeFrom(wLeft, edge, k, false); err != nil {
			return cdbgerr.Wrap(cdbgerr.CorruptIndex, err, "slotting linear edge at left endpoint")
		}
	}
	if wRight != nil {
		if _, err := graph.AddEdgeFrom(wRight, edge, k, true); err != nil {
			return cdbgerr.Wrap(cdbgerr.CorruptIndex, err, "slotting linear edge at right endpoint")
		}
	}
	c.log.Debugf("built linear %s edge %d (len %d)", edge.Meta, edge.ID, len(fullSeq))
	return nil
}

// plantTags plants a tag every tagDensity k-mers along seq, matching
// DESIGN.md's Open Question decision 3 (tag planting is implemented and
// the assembler's tag-stopper filter honors it).
func (c *Compactor) plantTags(seq string) map[uint64]struct{} {
	if c.tagDensity == 0 {
		return nil
	}
	var tags map[uint64]struct{}
	it := kmer.NewIterator(c.codec, seq)
	i := 0
	for it.Next() {
		if i%int(c.tagDensity) == 0 {
			if tags == nil {
				tags = make(map[uint64]struct{})
			}
			tags[kmer.TagHash(it.Triple().Canonical)] = struct{}{}
		}
		i++
	}
	return tags
}

// NNodes is n_nodes().
func (c *Compactor) NNodes() int { return c.Nodes.Len() }

// NEdges is n_edges() (P4: equals the edge map's cardinality).
func (c *Compactor) NEdges() int { return c.Edges.Len() }

// NUpdates is n_updates(): the engine's monotone event counter.
func (c *Compactor) NUpdates() uint64 { return c.clock.Value() }

// NSequencesAdded is n_sequences_added().
func (c *Compactor) NSequencesAdded() uint64 { return c.nSeqAdded }

// GetNodeByKmer resolves a node by its canonical k-mer.
func (c *Compactor) GetNodeByKmer(u kmer.Kmer) *graph.Node { return c.Nodes.GetByKmer(u) }

// GetNodeByID resolves a node by dense ID.
func (c *Compactor) GetNodeByID(id uint64) *graph.Node { return c.Nodes.GetByID(id) }

// GetNodes sweeps s's k-mers and returns whichever already have nodes.
func (c *Compactor) GetNodes(s string) []*graph.Node { return c.Nodes.GetNodes(s, c.codec) }

// AllEdges returns every live edge in ascending ID order.
func (c *Compactor) AllEdges() []*graph.CompactEdge { return c.Edges.AllEdges() }

// GetEdge resolves the edge a tag hash points into.
func (c *Compactor) GetEdge(tag uint64) *graph.CompactEdge { return c.Edges.GetByTag(tag) }

// GetTagEdgePair resolves a tag to both itself and its edge, or (tag, nil)
// if the tag is unknown.
func (c *Compactor) GetTagEdgePair(tag uint64) (uint64, *graph.CompactEdge) {
	return tag, c.Edges.GetByTag(tag)
}

// Codec exposes the engine's k-mer codec, needed by gmlio/fastaio writers
// and by cmd/cdbg to stream input.
func (c *Compactor) Codec() *kmer.Codec { return c.codec }

// Report renders human-readable counters, SPEC_FULL.md item 2 (the
// original's report()), used by cmd/cdbg's stats subcommand.
func (c *Compactor) Report() string {
	var b strings.Builder
	b.WriteString("cdbg report\n")
	b.WriteString("  n_nodes: ")
	b.WriteString(strconv.Itoa(c.NNodes()))
	b.WriteString("\n  n_edges: ")
	b.WriteString(strconv.Itoa(c.NEdges()))
	b.WriteString("\n  n_updates: ")
	b.WriteString(strconv.FormatUint(c.NUpdates(), 10))
	b.WriteString("\n  n_sequences_added: ")
	b.WriteString(strconv.FormatUint(c.NSequencesAdded(), 10))
	b.WriteString("\n")
	return b.String()
}
