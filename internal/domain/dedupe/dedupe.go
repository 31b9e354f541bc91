// Package dedupe provides idempotency tracking for batch assessment jobs.
// Re-submitting a run must not recompute subjects the run already covered.
package dedupe

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Key builds the idempotency key for one subject inside one batch run. Two
// runs over the same subject produce distinct keys; a retried job inside the
// same run collides.
func Key(runID string, domain types.Domain, subjectID string) string {
	return strings.Join([]string{runID, string(domain), subjectID}, ":")
}

// Deduper records seen job keys for at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it
	// if not. Returns true when the key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key so the job can be retried. Used when a job was
	// recorded but could not be enqueued (queue backpressure).
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type node struct {
	key  string
	next *node
}

func (n *node) reset() {
	n.key = ""
	n.next = nil
}

// inMemoryDeduper keeps keys in a map, with an intrusive linked list driving
// oldest-first eviction when bounded. maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

const defaultMaxSize = 50000

// NewInMemoryDeduper creates an in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*node)
	if d.maxSize > 0 {
		d.nodePool = sync.Pool{New: func() interface{} { return &node{} }}
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
		n := d.nodePool.Get().(*node)
		n.key = key
		n.next = d.head
		d.head = n
		d.seen[key] = n
	} else {
		d.seen[key] = nil
	}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, exists := d.seen[key]
	if !exists {
		return
	}
	delete(d.seen, key)
	d.size.Add(-1)
	if d.maxSize <= 0 {
		return
	}

	if d.head == n {
		d.head = n.next
	} else {
		cur := d.head
		for cur != nil && cur.next != n {
			cur = cur.next
		}
		if cur != nil {
			cur.next = n.next
		}
	}
	n.reset()
	d.nodePool.Put(n)
}

// evictOldest drops the tail of the list. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	if d.head == nil {
		return
	}
	if d.head.next == nil {
		delete(d.seen, d.head.key)
		d.head.reset()
		d.nodePool.Put(d.head)
		d.head = nil
		d.size.Add(-1)
		return
	}

	prev := d.head
	cur := d.head.next
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}
	prev.next = nil
	delete(d.seen, cur.key)
	cur.reset()
	d.nodePool.Put(cur)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
