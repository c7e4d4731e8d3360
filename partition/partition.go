// Package partition implements the streaming partitioner (C8), spec.md
// §4.7/§5: a Bloom-guarded tag→component map with test-and-set spinlock
// concurrency and a fixed components-before-tagmap lock order. Grounded on
// _examples/original_source/include/oxli/partitioning.hh's
// GuardedKmerMap<T>/Component/StreamingPartitioner, with the spinlock
// primitive itself grounded on other_examples/mudesheng-ga__mapngs.go's
// ParaSetProcessFlag/ParaResetProcessFlag (CompareAndSwapUint8 busy-loop).
package partition

import (
	"sort"
	"sync/atomic"

	"github.com/willf/bloom"

	"github.com/kingsford-group/cdbg/kmer"
	"github.com/kingsford-group/cdbg/oracle"
)

// spinlock is a test-and-set lock built directly on CompareAndSwapUint32,
// the same primitive other_examples/mudesheng-ga__mapngs.go uses for its
// ParaSetProcessFlag/ParaResetProcessFlag pair, standing in for the
// original's __sync_bool_compare_and_swap.
type spinlock struct {
	flag uint32
}

func (l *spinlock) Lock() {
	for !atomic.CompareAndSwapUint32(&l.flag, 0, 1) {
		// busy-wait; critical sections here are short (map ops only, no
		// I/O or oracle calls per spec.md §5).
	}
}

func (l *spinlock) Unlock() {
	atomic.StoreUint32(&l.flag, 0)
}

var (
	componentsCreated   uint64
	componentsDestroyed uint64
)

// Component is a dense-ID partition with a tag set, spec.md §3 "Partition
// component". Two components are equal iff their IDs match.
type Component struct {
	ID   uint64
	Tags map[uint64]struct{}
}

func newComponent(id uint64) *Component {
	atomic.AddUint64(&componentsCreated, 1)
	return &Component{ID: id, Tags: make(map[uint64]struct{})}
}

// merge moves every tag of other into c (the survivor keeps the smaller
// ID per spec.md §3 "Lifecycles").
func (c *Component) merge(other *Component) {
	for t := range other.Tags {
		c.Tags[t] = struct{}{}
	}
	atomic.AddUint64(&componentsDestroyed, 1)
}

// guardedTagMap is the Bloom-guarded tag→component map, the direct Go
// descendant of GuardedKmerMap<T> (SPEC_FULL.md item 6): a Bloom filter
// gives a fast, safe "definitely absent" answer; a positive hit falls
// through to the real map.
type guardedTagMap struct {
	lock   spinlock
	filter *bloom.BloomFilter
	m      map[uint64]*Component
}

func newGuardedTagMap(estimatedTags uint) *guardedTagMap {
	return &guardedTagMap{
		filter: bloom.New(estimatedTags*8+64, 4),
		m:      make(map[uint64]*Component),
	}
}

// get is the unlocked read, used only while the caller already holds the
// lock (e.g. during a merge remap) -- SPEC_FULL.md item 6's get/Get split.
func (g *guardedTagMap) get(tag uint64) *Component {
	if !g.filter.TestString(tagKey(tag)) {
		return nil
	}
	return g.m[tag]
}

// Get acquires the spinlock for a guarded read.
func (g *guardedTagMap) Get(tag uint64) *Component {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.get(tag)
}

// set is the unlocked write counterpart to get.
func (g *guardedTagMap) set(tag uint64, c *Component) {
	g.filter.AddString(tagKey(tag))
	g.m[tag] = c
}

func (g *guardedTagMap) Set(tag uint64, c *Component) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.set(tag, c)
}

func tagKey(tag uint64) string {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(tag >> uint(8*i))
	}
	return string(buf[:])
}

// Partitioner is the streaming tag-based connected-components tracker
// (spec.md §4.7). It is safe for concurrent use by multiple writers
// (spec.md §5): the tag map and the component set are each guarded by
// their own spinlock, with components always acquired before the tag map.
type Partitioner struct {
	codec      *kmer.Codec
	o          oracle.Oracle
	tagDensity uint32
	breadth    int

	componentsLock spinlock
	components     map[uint64]*Component
	nextComponent  uint64

	tagMap *guardedTagMap
}

// New builds a Partitioner over o, planting a tag every tagDensity k-mers
// and bounding connected-tag search to breadth hops (spec.md §5
// "Cancellation/timeouts: none... bounded by MAX_KEEPER_SIZE").
func New(o oracle.Oracle, codec *kmer.Codec, tagDensity uint32, breadth int) *Partitioner {
	if tagDensity == 0 {
		tagDensity = 1
	}
	if breadth <= 0 {
		breadth = 200
	}
	return &Partitioner{
		codec:      codec,
		o:          o,
		tagDensity: tagDensity,
		breadth:    breadth,
		components: make(map[uint64]*Component),
		tagMap:     newGuardedTagMap(4096),
	}
}

// ComponentStats exposes the package-level create/destroy lifetime
// counters, SPEC_FULL.md item 7.
func ComponentStats() (created, destroyed uint64) {
	return atomic.LoadUint64(&componentsCreated), atomic.LoadUint64(&componentsDestroyed)
}

// NComponents returns the number of live components.
func (p *Partitioner) NComponents() int {
	p.componentsLock.Lock()
	defer p.componentsLock.Unlock()
	return len(p.components)
}

// NTags returns the number of tags currently mapped to a component.
func (p *Partitioner) NTags() int {
	p.tagMap.lock.Lock()
	defer p.tagMap.lock.Unlock()
	return len(p.tagMap.m)
}

// Consume plants tags along s and folds any newly touched components
// together, implementing spec.md §4.7's three steps.
func (p *Partitioner) Consume(s string) error {
	planted := p.plantTags(s)
	if len(planted) == 0 {
		return nil
	}
	touched := p.findConnectedComponents(planted)
	p.createOrMergeComponents(planted, touched)
	return nil
}

// plantTags returns the canonical k-mers chosen as tags for s, one every
// tagDensity positions.
func (p *Partitioner) plantTags(s string) []kmer.Kmer {
	var tags []kmer.Kmer
	it := kmer.NewIterator(p.codec, s)
	i := 0
	for it.Next() {
		if i%int(p.tagDensity) == 0 {
			tags = append(tags, it.Triple().Canonical)
		}
		i++
	}
	return tags
}

// findConnectedComponents searches outward in the oracle from each planted
// tag for reachable existing tags, bounded by p.breadth, and returns the
// set of distinct components discovered (spec.md §4.7 step 2).
func (p *Partitioner) findConnectedComponents(planted []kmer.Kmer) map[uint64]*Component {
	found := make(map[uint64]*Component)
	seen := make(map[kmer.Kmer]struct{})
	for _, start := range planted {
		queue := []kmer.Kmer{start}
		seen[start] = struct{}{}
		steps := 0
		for len(queue) > 0 && steps < p.breadth {
			cur := queue[0]
			queue = queue[1:]
			steps++
			tag := kmer.TagHash(cur)
			if c := p.tagMap.Get(tag); c != nil {
				found[c.ID] = c
				continue // no need to expand past an already-tagged kmer
			}
			for _, nb := range p.o.LeftNeighbors(cur) {
				if _, ok := seen[nb]; !ok {
					seen[nb] = struct{}{}
					queue = append(queue, nb)
				}
			}
			for _, nb := range p.o.RightNeighbors(cur) {
				if _, ok := seen[nb]; !ok {
					seen[nb] = struct{}{}
					queue = append(queue, nb)
				}
			}
		}
	}
	return found
}

// createOrMergeComponents is spec.md §4.7 step 3: with no touched
// components, create one owning the new tags; with one or more, merge
// everything into the smallest-ID survivor.
func (p *Partitioner) createOrMergeComponents(planted []kmer.Kmer, touched map[uint64]*Component) {
	p.componentsLock.Lock()
	defer p.componentsLock.Unlock()

	var survivor *Component
	if len(touched) == 0 {
		p.nextComponent++
		survivor = newComponent(p.nextComponent)
		p.components[survivor.ID] = survivor
	} else {
		ids := make([]uint64, 0, len(touched))
		for id := range touched {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		survivor = touched[ids[0]]
		for _, id := range ids[1:] {
			loser := touched[id]
			survivor.merge(loser)
			delete(p.components, loser.ID)
		}
	}

	p.tagMap.lock.Lock()
	defer p.tagMap.lock.Unlock()
	for t := range survivor.Tags {
		p.tagMap.set(t, survivor)
	}
	for _, u := range planted {
		tag := kmer.TagHash(u)
		survivor.Tags[tag] = struct{}{}
		p.tagMap.set(tag, survivor)
	}
}

// GetComponent returns the component owning tag, or nil.
func (p *Partitioner) GetComponent(tag uint64) *Component {
	return p.tagMap.Get(tag)
}

// GetNearestComponent returns the component of the nearest tag reachable
// from kmer within the partitioner's breadth budget, or nil if none is
// reachable -- the read-only counterpart to findConnectedComponents used
// for queries rather than merges.
func (p *Partitioner) GetNearestComponent(start kmer.Kmer) *Component {
	found := p.findConnectedComponents([]kmer.Kmer{start})
	for _, c := range found {
		return c
	}
	return nil
}
