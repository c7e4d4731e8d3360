// Package oracle defines the external k-mer membership collaborator the
// compactor and partitioner consume (spec.md §6 "Oracle interface") and
// ships one concrete, in-memory implementation so the rest of the module
// is testable standalone. The interfaces here are the contract; nothing
// in compactor/partition/assembler may depend on Hashgraph directly.
package oracle

import "github.com/kingsford-group/cdbg/kmer"

// KmerFilter is a stop predicate consulted by a Cursor before accepting a
// candidate next k-mer -- the Go shape of cdbg.hh's KmerFilter closures.
type KmerFilter func(candidate kmer.Kmer) bool

// Oracle is the thin contract over the membership structure, mirroring
// spec.md §4.2's contains/neighbors/degree/consume_sequence operations.
type Oracle interface {
	// KSize returns the fixed k-mer length this oracle was built for.
	KSize() int
	// ConsumeString inserts every k-mer of s and returns the number of
	// previously-unseen (canonical) k-mers it introduced.
	ConsumeString(s string) (uint64, error)
	// NUniqueKmers returns the total distinct canonical k-mer count seen.
	NUniqueKmers() uint64
	// Contains reports whether the canonical k-mer u is present.
	Contains(u kmer.Kmer) bool
	// LeftNeighbors returns the canonical k-mers reachable by prepending a
	// base to kmer's forward encoding and testing membership, i.e. the set
	// of k-mers k' such that k' extended on the right by one base (in
	// k''s own forward orientation) ends in kmer. kmer itself is never
	// listed as its own neighbor.
	LeftNeighbors(fwd kmer.Kmer) []kmer.Kmer
	// RightNeighbors returns the canonical k-mers reachable by appending
	// each of A/C/G/T to kmer's forward encoding, other than kmer itself.
	RightNeighbors(fwd kmer.Kmer) []kmer.Kmer
	// LeftDegree is len(LeftNeighbors(kmer)), exposed directly so callers
	// don't have to allocate a slice just to count.
	LeftDegree(fwd kmer.Kmer) uint8
	// RightDegree is len(RightNeighbors(kmer)).
	RightDegree(fwd kmer.Kmer) uint8
	// NewCursor returns a Cursor positioned at fwd, walking in dir. This
	// is how compactor/assembler obtain a cursor without depending on the
	// concrete Hashgraph type.
	NewCursor(fwd kmer.Kmer, dir Direction) Cursor
}

// Direction is a traversal direction for a Cursor.
type Direction int

const (
	Left Direction = iota
	Right
)

// Cursor walks the oracle one base at a time in a fixed direction, the Go
// shape of cdbg.hh's CompactingAT<TRAVERSAL_LEFT|TRAVERSAL_RIGHT>.
type Cursor interface {
	// Kmer returns the forward encoding of the current k-mer.
	Kmer() kmer.Kmer
	// Step advances one base in the cursor's direction if exactly one
	// neighbor exists and no registered filter rejects it; reports
	// whether it moved.
	Step() bool
	// Neighbors returns the current k-mer's neighbors in this cursor's
	// direction (oracle.LeftNeighbors or oracle.RightNeighbors).
	Neighbors() []kmer.Kmer
	// PushFilter registers an additional stop predicate; Step refuses to
	// move onto a candidate any pushed filter rejects.
	PushFilter(f KmerFilter)
	// Direction reports which way this cursor walks.
	Direction() Direction
}
