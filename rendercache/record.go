package rendercache

import (
	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/surface"
)

// cacheRecord is one backing surface in the pool, doubly linked into
// CacheRecordManager's MRU/LRU list (head is most recently used). The
// linked-list shape is grounded on internal/cache/lru.go's lruList[K],
// reimplemented directly on the record rather than through a generic node
// type, since the record itself is already the thing being ordered — no
// separate node-to-key indirection is needed here the way lruList needs
// one to let a map look up a node by key.
type cacheRecord struct {
	surface surface.Surface
	region  vecboard.Rect2

	onDealloc func()

	lastUsedCycle uint64

	prev, next *cacheRecord
}

// Surface returns the record's backing surface, for the cache to render
// onto or snapshot from.
func (r *cacheRecord) Surface() surface.Surface { return r.surface }

// Region returns the canvas-space region this record currently backs.
func (r *cacheRecord) Region() vecboard.Rect2 { return r.region }

// CacheRecordManager is the LRU pool of backing surfaces spec.md §4.5
// names: up to ceil(cache_size / (4*BR*BR)) records, each reused
// round-robin until the pool is full, then reclaimed oldest-first.
type CacheRecordManager struct {
	capacity int
	count    int
	head     *cacheRecord
	tail     *cacheRecord

	newSurface func(width, height int) surface.Surface
	resolution int
}

// NewCacheRecordManager builds a pool sized to hold as many
// resolution x resolution RGBA8 surfaces as cacheSizeBytes allows (at
// least one), each created on demand via newSurface.
func NewCacheRecordManager(cacheSizeBytes, resolution int, newSurface func(width, height int) surface.Surface) *CacheRecordManager {
	bytesPerRecord := 4 * resolution * resolution
	capacity := 1
	if bytesPerRecord > 0 {
		capacity = (cacheSizeBytes + bytesPerRecord - 1) / bytesPerRecord
		if capacity < 1 {
			capacity = 1
		}
	}
	return &CacheRecordManager{
		capacity:   capacity,
		newSurface: newSurface,
		resolution: resolution,
	}
}

// Alloc returns a record backing region. If the pool has spare capacity,
// a fresh surface is created; otherwise the least-recently-used record is
// reclaimed, firing its previous owner's onDealloc (clearing that tile's
// reference to it) before being handed to the new owner. The returned
// record is pushed to the front (most recently used).
func (m *CacheRecordManager) Alloc(region vecboard.Rect2, onDealloc func()) *cacheRecord {
	var rec *cacheRecord
	if m.count < m.capacity {
		rec = &cacheRecord{surface: m.newSurface(m.resolution, m.resolution)}
		m.count++
		m.pushFront(rec)
	} else {
		rec = m.tail
		m.unlink(rec)
		if rec.onDealloc != nil {
			rec.onDealloc()
		}
		m.pushFront(rec)
	}
	rec.region = region
	rec.onDealloc = onDealloc
	return rec
}

// Touch moves rec to the front of the list (most recently used) and
// records cycle as its last-used rendering cycle.
func (m *CacheRecordManager) Touch(rec *cacheRecord, cycle uint64) {
	rec.lastUsedCycle = cycle
	m.unlink(rec)
	m.pushFront(rec)
}

// Release removes rec from the pool entirely (used when a tile's region
// no longer holds any leaf to render), firing
// onDealloc and freeing its slot for reuse.
func (m *CacheRecordManager) Release(rec *cacheRecord) {
	if rec == nil {
		return
	}
	m.unlink(rec)
	if rec.onDealloc != nil {
		rec.onDealloc()
	}
	m.count--
}

func (m *CacheRecordManager) pushFront(rec *cacheRecord) {
	rec.prev = nil
	rec.next = m.head
	if m.head != nil {
		m.head.prev = rec
	}
	m.head = rec
	if m.tail == nil {
		m.tail = rec
	}
}

func (m *CacheRecordManager) unlink(rec *cacheRecord) {
	if rec.prev != nil {
		rec.prev.next = rec.next
	} else if m.head == rec {
		m.head = rec.next
	}
	if rec.next != nil {
		rec.next.prev = rec.prev
	} else if m.tail == rec {
		m.tail = rec.prev
	}
	rec.prev = nil
	rec.next = nil
}

// Len reports how many records are currently allocated (not necessarily
// the full capacity, until the pool fills up).
func (m *CacheRecordManager) Len() int { return m.count }

// Capacity reports the pool's maximum record count.
func (m *CacheRecordManager) Capacity() int { return m.capacity }
