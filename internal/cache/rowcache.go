package cache

import (
	"github.com/hupe1980/svmgo/resource"
)

const (
	// DefaultMinBytes is the lower bound of the row cache budget.
	DefaultMinBytes = 40 << 20
	// DefaultMaxBytes is the upper bound of the row cache budget.
	DefaultMaxBytes = 500 << 20

	rowElemSize = 4 // bytes per float32
	nilIndex    = -1
)

// FillFunc computes the row for sample i into row (len n).
type FillFunc func(i int, row []float32)

// RowConfig configures a RowCache.
type RowConfig struct {
	// MinBytes and MaxBytes bound the storage budget.
	// Zero values select DefaultMinBytes / DefaultMaxBytes.
	MinBytes int64
	MaxBytes int64

	// Controller, if set, accounts the row storage. When it cannot grant the
	// full budget the cache halves its row count until it fits (minimum one row).
	Controller *resource.Controller
}

// RowCacheStats holds hit/miss counters.
type RowCacheStats struct {
	Hits   int64
	Misses int64
}

// RowCache keeps the most recently used kernel rows of an n-sample problem
// in a fixed rows×n matrix allocated once.
//
// Entries form an index-linked LRU list: nodes[i] describes sample i, slot is
// its storage row (or -1 when not resident).
//
// RowCache is not safe for concurrent use.
type RowCache struct {
	n        int
	capacity int
	used     int
	data     []float32
	nodes    []rowNode
	head     int
	tail     int
	fill     FillFunc

	rc       *resource.Controller
	reserved int64

	hits   int64
	misses int64
}

type rowNode struct {
	slot int
	prev int
	next int
}

// RowCapacity derives how many rows of an n-sample problem fit the budget:
// clamp(n²/4, minBytes/4, maxBytes/4) elements, rounded up to whole rows and
// clamped to [1, n].
func RowCapacity(n int, minBytes, maxBytes int64) int {
	if n <= 0 {
		return 0
	}
	if minBytes <= 0 {
		minBytes = DefaultMinBytes
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	budget := int64(n) * int64(n) / 4
	budget = max(budget, minBytes/rowElemSize)
	budget = min(budget, maxBytes/rowElemSize)

	rows := (budget + int64(n) - 1) / int64(n)
	return int(min(max(rows, 1), int64(n)))
}

// NewRowCache creates a cache for n samples; fill computes missing rows.
func NewRowCache(n int, fill FillFunc, cfg RowConfig) *RowCache {
	capacity := RowCapacity(n, cfg.MinBytes, cfg.MaxBytes)

	var reserved int64
	if cfg.Controller != nil {
		for capacity > 0 {
			bytes := int64(capacity) * int64(n) * rowElemSize
			if cfg.Controller.TryAcquireMemory(bytes) {
				reserved = bytes
				break
			}
			if capacity == 1 {
				// Proceed untracked; a solver needs at least one row.
				break
			}
			capacity /= 2
		}
	}

	c := &RowCache{
		n:        n,
		capacity: capacity,
		data:     make([]float32, capacity*n),
		nodes:    make([]rowNode, n),
		head:     nilIndex,
		tail:     nilIndex,
		fill:     fill,
		rc:       cfg.Controller,
		reserved: reserved,
	}
	for i := range c.nodes {
		c.nodes[i] = rowNode{slot: nilIndex, prev: nilIndex, next: nilIndex}
	}
	return c
}

// Get returns the row for sample i and whether it was already resident.
// On a miss the least recently used row is evicted if the cache is full and
// the row is filled by the FillFunc. The returned slice is valid until the
// next Get that evicts it.
func (c *RowCache) Get(i int) ([]float32, bool) {
	node := &c.nodes[i]
	existed := node.slot != nilIndex

	if existed {
		c.hits++
		c.unlink(i)
	} else {
		c.misses++
		if c.used < c.capacity {
			node.slot = c.used
			c.used++
		} else {
			victim := c.tail
			c.unlink(victim)
			node.slot = c.nodes[victim].slot
			c.nodes[victim].slot = nilIndex
		}
	}
	c.pushFront(i)

	row := c.row(node.slot)
	if !existed {
		c.fill(i, row)
	}
	return row, existed
}

// Contains reports whether row i is resident without touching the LRU order.
func (c *RowCache) Contains(i int) bool {
	return c.nodes[i].slot != nilIndex
}

// Keys returns the resident sample indices from most to least recently used.
func (c *RowCache) Keys() []int {
	keys := make([]int, 0, c.used)
	for i := c.head; i != nilIndex; i = c.nodes[i].next {
		keys = append(keys, i)
	}
	return keys
}

// Len returns the number of resident rows.
func (c *RowCache) Len() int { return c.used }

// Cap returns the maximum number of resident rows.
func (c *RowCache) Cap() int { return c.capacity }

// Stats returns hit/miss counters.
func (c *RowCache) Stats() RowCacheStats {
	return RowCacheStats{Hits: c.hits, Misses: c.misses}
}

// Close releases the storage reservation.
func (c *RowCache) Close() {
	if c.reserved > 0 {
		c.rc.ReleaseMemory(c.reserved)
		c.reserved = 0
	}
	c.data = nil
}

func (c *RowCache) row(slot int) []float32 {
	off := slot * c.n
	return c.data[off : off+c.n : off+c.n]
}

func (c *RowCache) unlink(i int) {
	node := &c.nodes[i]
	if node.prev != nilIndex {
		c.nodes[node.prev].next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nilIndex {
		c.nodes[node.next].prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.prev, node.next = nilIndex, nilIndex
}

func (c *RowCache) pushFront(i int) {
	node := &c.nodes[i]
	node.prev = nilIndex
	node.next = c.head
	if c.head != nilIndex {
		c.nodes[c.head].prev = i
	}
	c.head = i
	if c.tail == nilIndex {
		c.tail = i
	}
}
