// Package kmer implements the canonical two-bit k-mer encoding that every
// other package in this module keys its maps on: a fixed-length DNA
// substring is represented as a forward 2-bit code, a reverse-complement
// code, and a canonical code (the smaller of the two). See kpath.go in the
// teacher repo for the ancestor of acgt/stringToKmer/kmerToString/RC.
package kmer

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Kmer is the two-bit packed encoding of a DNA string of some fixed length
// K. Only the low 2*K bits are meaningful; K is never carried alongside the
// value, so callers must track it out of band (every Codec does).
type Kmer = uint64

// NullID is the sentinel used throughout the graph packages for "no such
// node/edge"; it is defined here because node/edge stores and the kmer
// codec both need a value no real dense ID or kmer bit-pattern can collide
// with when used as a map key guard.
const NullID = ^uint64(0)

// Codec packs and unpacks DNA strings of a fixed length K.
type Codec struct {
	K    int
	mask Kmer
}

// NewCodec builds a codec for k-mers of length k. k must be at least 3 and
// fit in a 64-bit two-bit encoding (k <= 32).
func NewCodec(k int) (*Codec, error) {
	if k < 3 {
		return nil, fmt.Errorf("kmer: K must be >= 3, got %d", k)
	}
	if k > 32 {
		return nil, fmt.Errorf("kmer: K must be <= 32 to fit a uint64 encoding, got %d", k)
	}
	var mask Kmer
	if k == 32 {
		mask = ^Kmer(0)
	} else {
		mask = (Kmer(1) << uint(2*k)) - 1
	}
	return &Codec{K: k, mask: mask}, nil
}

// baseBits maps an uppercase ACGT base to its 2-bit code; any other byte
// (including lowercase and 'N') is reported as invalid via ok=false.
func baseBits(b byte) (bits Kmer, ok bool) {
	switch b {
	case 'A':
		return 0, true
	case 'C':
		return 1, true
	case 'G':
		return 2, true
	case 'T':
		return 3, true
	default:
		return 0, false
	}
}

func bitsToBase(bits Kmer) byte {
	return "ACGT"[bits&0x3]
}

// BaseCode returns the 2-bit code (0=A,1=C,2=G,3=T) for an uppercase ACGT
// base, used by the graph package to index a node's 4-way incidence slots
// by pivot base.
func BaseCode(b byte) (uint8, bool) {
	bits, ok := baseBits(b)
	return uint8(bits), ok
}

// CodeToBase is the inverse of BaseCode.
func CodeToBase(code uint8) byte {
	return bitsToBase(Kmer(code))
}

// complementBits flips A<->T, C<->G at the 2-bit level: bits ^ 0x3.
func complementBits(bits Kmer) Kmer {
	return bits ^ 0x3
}

// RC returns the complement of a single uppercase ACGT base.
func RC(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'T':
		return 'A'
	default:
		return b
	}
}

// ReverseComplement reverse-complements an ACGT string.
func ReverseComplement(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[len(s)-1-i] = RC(s[i])
	}
	return string(out)
}

// IsValidBase reports whether b is an uppercase A/C/G/T.
func IsValidBase(b byte) bool {
	_, ok := baseBits(b)
	return ok
}

// Triple holds the three encodings of a single k-mer position: the forward
// code, the reverse-complement code, and the canonical code U = min(F, R).
type Triple struct {
	Forward, Reverse, Canonical Kmer
}

// IsForward reports whether this k-mer's canonical form equals its forward
// encoding -- used to set a node's direction flag (spec C3 "direction
// flag").  Palindromes (F==R) report true, which is the deterministic
// tie-break spec.md §4.1 requires.
func (t Triple) IsForward() bool {
	return t.Forward == t.Canonical
}

// Encode packs a string of exactly c.K uppercase ACGT bases into a Triple.
// Returns an error on any non-ACGT byte or on a length mismatch.
func (c *Codec) Encode(s string) (Triple, error) {
	if len(s) != c.K {
		return Triple{}, fmt.Errorf("kmer: expected length %d, got %d", c.K, len(s))
	}
	var f, r Kmer
	for i := 0; i < c.K; i++ {
		bits, ok := baseBits(s[i])
		if !ok {
			return Triple{}, fmt.Errorf("kmer: invalid base %q at position %d", s[i], i)
		}
		f = (f << 2) | bits
		// the i'th forward base, complemented, lands at the i'th position
		// from the low end of the reverse-complement code (its (K-1-i)'th
		// base as a string)
		r |= complementBits(bits) << uint(2*i)
	}
	return c.canonicalize(f, r), nil
}

func (c *Codec) canonicalize(f, r Kmer) Triple {
	u := f
	if r < f {
		u = r
	}
	return Triple{Forward: f, Reverse: r, Canonical: u}
}

// String decodes a (forward-orientation) packed k-mer back to its DNA
// string. It does not know which strand a canonical key came from -- callers
// that need the canonical *string* should use CanonicalString, which always
// produces the lexicographically smaller of the two strands.
func (c *Codec) String(code Kmer) string {
	out := make([]byte, c.K)
	for i := c.K - 1; i >= 0; i-- {
		out[i] = bitsToBase(code & 0x3)
		code >>= 2
	}
	return string(out)
}

// CanonicalString decodes a canonical key U into the lexicographically
// smaller of {forward string, reverse-complement string}; this is what
// spec.md §4.1 calls "reverse-hash U back to the lexicographically
// canonical string" and is what graph.Node stores as its Sequence.
func (c *Codec) CanonicalString(u Kmer) string {
	fwd := c.String(u)
	rc := ReverseComplement(fwd)
	if rc < fwd {
		return rc
	}
	return fwd
}

// Canonical returns min(fwd, reverseComplement(fwd)) for a forward-encoded
// k-mer, computed purely at the bit level -- used whenever only a forward
// code is in hand (e.g. after walking a cursor) and the canonical map key
// is needed.
func (c *Codec) Canonical(fwd Kmer) Kmer {
	var r Kmer
	f := fwd
	for i := 0; i < c.K; i++ {
		base := f & 0x3
		r = (r << 2) | (base ^ 0x3)
		f >>= 2
	}
	if r < fwd {
		return r
	}
	return fwd
}

// TagHash returns the advisory hash used to plant/match a tag for a
// canonical k-mer (spec.md "Tag: a hash value of an internal k-mer"). Using
// a real hash (rather than the k-mer code itself) keeps tag identity
// independent of K and of the underlying 2-bit packing scheme, matching how
// an external oracle's own hash function is used to hash k-mers for its own
// membership tables.
func TagHash(u Kmer) uint64 {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> uint(8*i))
	}
	return xxhash.Sum64(buf[:])
}

// Iterator scans a string's k-mers left to right, updating the forward and
// reverse-complement codes incrementally rather than re-encoding from
// scratch at each position -- the rolling-hash technique grounded on
// grailbio-bio's kmerizer (other_examples/grailbio-bio__kmer.go): each step
// shifts the forward code left and ORs in the new base, and shifts the
// reverse-complement code right and ORs in the complemented new base at the
// top.
type Iterator struct {
	codec  *Codec
	seq    string
	pos    int // index of the next base to consume
	cur    Triple
	shift  uint
	primed bool
}

// NewIterator creates an iterator over seq's k-mers using codec. seq may be
// shorter than codec.K, in which case Next always returns false.
func NewIterator(codec *Codec, seq string) *Iterator {
	return &Iterator{codec: codec, seq: seq, shift: uint(2 * (codec.K - 1))}
}

// Next advances to the next k-mer and reports whether one was available. On
// encountering an invalid base, it resynchronizes by restarting the window
// just past the offending character -- a run of Ns or other ambiguity codes
// is skipped rather than aborting the whole scan, matching how the graph
// packages only ever see sequences that passed InvalidSequence validation,
// but an iterator used directly (e.g. by the partitioner's tag planting)
// should stay robust.
func (it *Iterator) Next() bool {
	k := it.codec.K
	if !it.primed {
		for it.pos+k <= len(it.seq) {
			t, err := it.codec.Encode(it.seq[it.pos : it.pos+k])
			if err != nil {
				it.pos++
				continue
			}
			it.cur = t
			it.pos += k
			it.primed = true
			return true
		}
		return false
	}

	if it.pos >= len(it.seq) {
		return false
	}
	bits, ok := baseBits(it.seq[it.pos])
	if !ok {
		// fall back to a cold re-sync from the next position
		it.primed = false
		it.pos = it.pos - k + 1
		return it.Next()
	}
	f := ((it.cur.Forward << 2) | bits) & it.codec.mask
	r := (it.cur.Reverse >> 2) | (complementBits(bits) << it.shift)
	it.cur = it.codec.canonicalize(f, r)
	it.pos++
	return true
}

// Triple returns the current k-mer triple; only valid after Next returns
// true.
func (it *Iterator) Triple() Triple {
	return it.cur
}
