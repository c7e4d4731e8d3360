// Package assembler implements the linear assembler (C6): given a
// direction cursor over the oracle, walk one base at a time while the walk
// stays unambiguous, producing the maximal unitig string. Grounded on
// cdbg.hh's assemble_left/assemble_right/assemble_directed.
package assembler

import (
	"github.com/kingsford-group/cdbg/graph"
	"github.com/kingsford-group/cdbg/kmer"
	"github.com/kingsford-group/cdbg/oracle"
)

// Filter is a stop predicate over a candidate next k-mer; an alias of
// oracle.KmerFilter so callers can push the same value onto a Cursor and
// pass it here interchangeably.
type Filter = oracle.KmerFilter

// AssembleDirected walks cur one base at a time via Step (which already
// enforces in/out-degree <= 1 and consults any pushed filters), appending
// each new base to a growing buffer. The returned string includes the
// starting k-mer (spec.md §4.5): cur is a pure function of oracle state
// plus its own position and filters, so AssembleDirected has no side
// effects beyond advancing cur.
func AssembleDirected(cur oracle.Cursor, codec *kmer.Codec) string {
	seq := codec.String(cur.Kmer())
	dir := cur.Direction()
	for cur.Step() {
		full := codec.String(cur.Kmer())
		if dir == oracle.Right {
			seq += string(full[len(full)-1])
		} else {
			seq = string(full[0]) + seq
		}
	}
	return seq
}

// TagHit records which tag (and which edge it already belongs to) stopped
// an assembler walk, the Go shape of SPEC_FULL.md item 5's explicit
// return value in place of the original's KmerFilter output parameter.
type TagHit struct {
	Tag    uint64
	EdgeID uint64
	Hit    bool
}

// TagStopper builds a Filter that rejects any candidate k-mer already
// planted as a tag on a live edge, so repair never walks past a segment
// whose identity is already resolved (spec.md §4.5: "stop on any k-mer
// that is already a tag"). The returned *TagHit is filled in the moment
// the filter fires; callers should create one TagStopper per walk.
func TagStopper(edges *graph.EdgeStore) (Filter, *TagHit) {
	hit := &TagHit{}
	f := func(candidate kmer.Kmer) bool {
		tag := kmer.TagHash(candidate)
		if e := edges.GetByTag(tag); e != nil {
			hit.Tag = tag
			hit.EdgeID = e.ID
			hit.Hit = true
			return false
		}
		return true
	}
	return f, hit
}
