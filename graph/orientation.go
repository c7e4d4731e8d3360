package graph

import (
	"github.com/pkg/errors"

	"github.com/kingsford-group/cdbg/kmer"
)

// Side records which endpoint array (In or Out) an edge was slotted into.
type Side int

const (
	SideIn Side = iota
	SideOut
)

// orientationAt computes whether segment's K-length window at the given
// node-facing end is in the same canonical strand as node, and returns the
// pivot base (spec.md §4.4): the base immediately outside the K-length
// overlap, complemented when the strands differ.
//
// fromLeft selects which end of segment abuts the node: true means the
// node is attached at the segment's end (its last K bases), false means
// the node is attached at the segment's start (its first K bases).
func orientationAt(node *Node, segment string, k int, fromLeft bool) (sameOrientation bool, pivot byte, err error) {
	if len(segment) < k+1 {
		return false, 0, errors.Errorf("graph: segment shorter than k+1 (%d < %d), no pivot base available", len(segment), k+1)
	}
	var window string
	var outside byte
	if fromLeft {
		window = segment[len(segment)-k:]
		outside = segment[len(segment)-k-1]
	} else {
		window = segment[:k]
		outside = segment[k]
	}

	switch {
	case window == node.Sequence:
		return true, outside, nil
	case window == kmer.ReverseComplement(node.Sequence):
		return false, kmer.RC(outside), nil
	default:
		return false, 0, errors.Errorf("graph: segment end %q matches neither %q nor its reverse complement", window, node.Sequence)
	}
}

// slotFor stores edgeID into node's In or Out array at the 2-bit code of
// pivot, returning an error if that slot is already occupied by a
// different edge (which would violate I3/I5).
func slotFor(node *Node, pivot byte, side Side, edgeID uint64) error {
	code, ok := kmer.BaseCode(pivot)
	if !ok {
		return errors.Errorf("graph: invalid pivot base %q", pivot)
	}
	var arr *[4]uint64
	if side == SideIn {
		arr = &node.In
	} else {
		arr = &node.Out
	}
	if arr[code] != NullID && arr[code] != edgeID {
		return errors.Errorf("graph: node %d slot %s[%c] already occupied by edge %d", node.ID, sideName(side), pivot, arr[code])
	}
	arr[code] = edgeID
	return nil
}

func sideName(s Side) string {
	if s == SideIn {
		return "in"
	}
	return "out"
}

// clearSlot removes edgeID from node's slots wherever it appears (used
// when a stale edge is unlinked ahead of a replacement being slotted in,
// see DeleteEdge).
func clearSlot(node *Node, edgeID uint64) {
	for i := range node.In {
		if node.In[i] == edgeID {
			node.In[i] = NullID
		}
		if node.Out[i] == edgeID {
			node.Out[i] = NullID
		}
	}
}

// AddEdgeFromLeft connects edge e to node from the left (e's sequence ends
// at node): same orientation slots into node's in-array, opposite slots
// into the out-array (spec.md §4.4 rule). Returns the orientation outcome.
func AddEdgeFromLeft(node *Node, e *CompactEdge, k int) (sameOrientation bool, err error) {
	same, pivot, err := orientationAt(node, e.Sequence, k, true)
	if err != nil {
		return false, err
	}
	side := SideIn
	if !same {
		side = SideOut
	}
	if err := slotFor(node, pivot, side, e.ID); err != nil {
		return false, err
	}
	return same, nil
}

// AddEdgeFromRight connects edge e to node from the right (e's sequence
// starts at node): same orientation slots into node's out-array, opposite
// slots into the in-array (mirror of AddEdgeFromLeft per spec.md §4.4).
func AddEdgeFromRight(node *Node, e *CompactEdge, k int) (sameOrientation bool, err error) {
	same, pivot, err := orientationAt(node, e.Sequence, k, false)
	if err != nil {
		return false, err
	}
	side := SideOut
	if !same {
		side = SideIn
	}
	if err := slotFor(node, pivot, side, e.ID); err != nil {
		return false, err
	}
	return same, nil
}

// GetEdgeFromLeft looks up the edge slotted for the pivot base that
// segment-ending-at-node would compute, without needing the segment: given
// the raw pivot base observed while walking into node from direction d,
// resolve which of node's slots to consult. same selects in-array vs
// out-array exactly as AddEdgeFromLeft would have slotted it.
func GetEdgeFromLeft(node *Node, pivot byte, sameOrientation bool) (edgeID uint64, side Side, ok bool) {
	code, valid := kmer.BaseCode(pivot)
	if !valid {
		return NullID, SideIn, false
	}
	if sameOrientation {
		id := node.In[code]
		return id, SideIn, id != NullID
	}
	id := node.Out[code]
	return id, SideOut, id != NullID
}

// GetEdgeFromRight mirrors GetEdgeFromLeft for the from-right case.
func GetEdgeFromRight(node *Node, pivot byte, sameOrientation bool) (edgeID uint64, side Side, ok bool) {
	code, valid := kmer.BaseCode(pivot)
	if !valid {
		return NullID, SideOut, false
	}
	if sameOrientation {
		id := node.Out[code]
		return id, SideOut, id != NullID
	}
	id := node.In[code]
	return id, SideIn, id != NullID
}

// FuseEndpoint completes a walked sub-segment with an HDN endpoint's own
// k-mer: it tries each of A/C/G/T at the position just outside segment's
// node-facing end and keeps whichever makes that end's K-length window
// equal to node's canonical sequence or its reverse complement (spec.md
// §4.4's overlap/pivot test, run in the direction that discovers the pivot
// instead of assuming it). fromLeft=true fuses onto segment's right end
// (segment ends at node); false fuses onto its left end (segment starts
// at node).
func FuseEndpoint(node *Node, segment string, k int, fromLeft bool) (fused string, sameOrientation bool, err error) {
	rcSeq := kmer.ReverseComplement(node.Sequence)
	for _, b := range [4]byte{'A', 'C', 'G', 'T'} {
		var cand string
		if fromLeft {
			cand = segment + string(b)
		} else {
			cand = string(b) + segment
		}
		if len(cand) < k {
			continue
		}
		var window string
		if fromLeft {
			window = cand[len(cand)-k:]
		} else {
			window = cand[:k]
		}
		if window == node.Sequence {
			return cand, true, nil
		}
		if window == rcSeq {
			return cand, false, nil
		}
	}
	return "", false, errors.Errorf("graph: no base fuses segment end with node %d (%s)", node.ID, node.Sequence)
}

// ExistingEdgeFrom reports the edge ID (or NullID) already occupying the
// slot a segment's node-facing end would compute, without mutating node --
// used by the compactor's validation step (Phase 4) to compare a freshly
// assembled segment against what is already slotted.
func ExistingEdgeFrom(node *Node, segment string, k int, fromLeft bool) (uint64, error) {
	same, pivot, err := orientationAt(node, segment, k, fromLeft)
	if err != nil {
		return NullID, err
	}
	if fromLeft {
		id, _, _ := GetEdgeFromLeft(node, pivot, same)
		return id, nil
	}
	id, _, _ := GetEdgeFromRight(node, pivot, same)
	return id, nil
}

// AddEdgeFrom is AddEdgeFromLeft/AddEdgeFromRight chosen by fromLeft.
func AddEdgeFrom(node *Node, e *CompactEdge, k int, fromLeft bool) (bool, error) {
	if fromLeft {
		return AddEdgeFromLeft(node, e, k)
	}
	return AddEdgeFromRight(node, e, k)
}
