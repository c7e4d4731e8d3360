package graph

import "sync/atomic"

// Clock is the engine's single monotone update counter (spec.md glossary:
// "Update event: any change that increments the engine's monotone update
// counter — node creation, edge creation, edge deletion, or slot change").
// Edge IDs are drawn from the same sequence (spec.md §3: "edge_id
// (monotone, also used as an 'update clock')"), so EdgeStore.BuildEdge
// calls Next() to mint both the event count and the new edge's ID.
type Clock struct {
	n uint64
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() uint64 {
	return atomic.AddUint64(&c.n, 1)
}

// Value returns the current count without advancing it -- this is
// n_updates() (spec.md §6).
func (c *Clock) Value() uint64 {
	return atomic.LoadUint64(&c.n)
}
