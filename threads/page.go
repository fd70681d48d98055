package threads

import "sync"

// PageSize is the simulated page size backing each thread's stack region.
// Its value is immaterial to the scheduler logic; it only needs to be
// large enough that the simulated magic-sentinel overflow check has
// somewhere to live.
const PageSize = 4096

// Page is a zeroed, page-aligned region returned by a PageAllocator,
// standing in for the reference kernel's palloc_get_page. The kernel never
// inspects its contents directly; it exists so the "successor frees
// predecessor's stack page" protocol has something concrete to free.
type Page struct {
	id   int
	data [PageSize]byte
}

// PageAllocator returns zeroed page-aligned regions, or ErrNoPages when
// exhausted. It is consumed, not owned, by the scheduler, so a caller can
// swap in a bounded allocator to exercise exhaustion deterministically.
type PageAllocator interface {
	Alloc() (*Page, error)
	Free(*Page)
}

// arenaPageAllocator is an in-memory PageAllocator with a fixed capacity,
// grounded on the reference kernel's palloc, which hands out pages from a
// fixed-size pool and panics (via PANIC, not this port's softer sentinel
// error) only in contexts where exhaustion is truly unexpected. Here,
// exhaustion is always reported as the softer ErrNoPages instead.
type arenaPageAllocator struct {
	mu       sync.Mutex
	free     []*Page
	capacity int
	nextID   int
}

// defaultPageCapacity is generous: this simulation never pages real
// memory, so the only reason to bound it at all is to exercise the
// ErrNoPages path in tests.
const defaultPageCapacity = 4096

func newArenaPageAllocator() *arenaPageAllocator {
	return &arenaPageAllocator{capacity: defaultPageCapacity}
}

// NewBoundedPageAllocator constructs an allocator with a caller-chosen
// capacity, so tests can exercise thread-creation failure deterministically.
func NewBoundedPageAllocator(capacity int) PageAllocator {
	return &arenaPageAllocator{capacity: capacity}
}

func (a *arenaPageAllocator) Alloc() (*Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.free) > 0 {
		p := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		return p, nil
	}
	if a.nextID >= a.capacity {
		return nil, ErrNoPages
	}
	a.nextID++
	return &Page{id: a.nextID}, nil
}

func (a *arenaPageAllocator) Free(p *Page) {
	if p == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, p)
}
