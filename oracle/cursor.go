package oracle

import "github.com/kingsford-group/cdbg/kmer"

// hgCursor is the Hashgraph's Cursor implementation, the Go shape of
// cdbg.hh's CompactingAT<TRAVERSAL_LEFT|TRAVERSAL_RIGHT>: it owns its
// current forward k-mer and walks strictly one base at a time, refusing to
// move through any branch point or filter rejection.
type hgCursor struct {
	hg      *Hashgraph
	cur     kmer.Kmer
	dir     Direction
	filters []KmerFilter
}

// NewCursorLeft returns a Cursor over hg starting at fwd, walking left
// (prepending bases).
func NewCursorLeft(hg *Hashgraph, fwd kmer.Kmer) Cursor {
	return &hgCursor{hg: hg, cur: fwd, dir: Left}
}

// NewCursorRight returns a Cursor over hg starting at fwd, walking right
// (appending bases).
func NewCursorRight(hg *Hashgraph, fwd kmer.Kmer) Cursor {
	return &hgCursor{hg: hg, cur: fwd, dir: Right}
}

// NewCursor implements Oracle.NewCursor for *Hashgraph.
func (hg *Hashgraph) NewCursor(fwd kmer.Kmer, dir Direction) Cursor {
	if dir == Left {
		return NewCursorLeft(hg, fwd)
	}
	return NewCursorRight(hg, fwd)
}

func (c *hgCursor) Kmer() kmer.Kmer { return c.cur }

func (c *hgCursor) Direction() Direction { return c.dir }

func (c *hgCursor) Neighbors() []kmer.Kmer {
	if c.dir == Left {
		return c.hg.LeftNeighbors(c.cur)
	}
	return c.hg.RightNeighbors(c.cur)
}

func (c *hgCursor) PushFilter(f KmerFilter) {
	c.filters = append(c.filters, f)
}

// Step moves exactly one base in c.dir if there is a single neighbor (the
// current k-mer itself is never counted as one, so a homopolymer k-mer does
// not step onto itself forever), that neighbor is not itself a branch point
// approached from this side, and no
// registered filter rejects it. The neighbor returned by Neighbors is
// canonical; Step must re-derive the actual forward-extended k-mer (which
// may differ in strand from the canonical form) so the walk stays on a
// single, consistent strand.
func (c *hgCursor) Step() bool {
	k := c.hg.codec.K
	mask := (kmer.Kmer(1) << uint(2*k)) - 1
	if k == 32 {
		mask = ^kmer.Kmer(0)
	}
	var count int
	var nextFwd kmer.Kmer
	for _, b := range bases {
		var cand kmer.Kmer
		if c.dir == Right {
			cand = ((c.cur << 2) | b) & mask
		} else {
			cand = ((c.cur >> 2) | (b << uint(2*(k-1)))) & mask
		}
		if u := c.hg.canonicalOf(cand); u == c.hg.canonicalOf(c.cur) || !c.hg.Contains(u) {
			continue
		}
		count++
		nextFwd = cand
	}
	if count != 1 {
		return false
	}
	// A unique forward neighbor is not enough: if the candidate itself has
	// more than one neighbor back toward c.cur, it's a convergence point
	// (real or future HDN) reached from multiple sides, and stepping onto
	// it would splice its interior into this walk instead of stopping one
	// k-mer short of it (spec.md C6 requires in/out-degree <=1 in both
	// directions at every step, not just the direction of travel).
	var backDegree uint8
	if c.dir == Right {
		backDegree = c.hg.LeftDegree(nextFwd)
	} else {
		backDegree = c.hg.RightDegree(nextFwd)
	}
	if backDegree > 1 {
		return false
	}
	if !c.passesFilters(nextFwd) {
		return false
	}
	c.cur = nextFwd
	return true
}

func (c *hgCursor) passesFilters(cand kmer.Kmer) bool {
	u := c.hg.canonicalOf(cand)
	for _, f := range c.filters {
		if !f(u) {
			return false
		}
	}
	return true
}
