package threads

// RWLock is a reader-writer lock built from a Lock and two condition
// variables, with writer priority: once a writer is waiting, new readers
// block behind it rather than continuing to starve it, the way a
// request/holding state table would forbid a new IS registration while an
// X request is pending. The monitor structure itself (an inner mutex plus
// condvars that loop on a predicate and broadcast/signal on release) is
// the same shape as an intention lock's ISLock/XLock pair, generalized
// from "compatible bitmask states" down to the two states this kernel
// needs.
//
// Method naming follows sync.RWMutex: RLock/RUnlock are the acquire_read/
// release_read pair, Lock/Unlock the acquire_write/release_write pair.
type RWLock struct {
	mu             *Lock
	readersOK      *Cond
	writerOK       *Cond
	activeReaders  int
	activeWriter   bool
	waitingWriters int
}

// NewRWLock constructs an unheld reader-writer lock.
func NewRWLock(k *Kernel) *RWLock {
	mu := NewLock(k)
	return &RWLock{
		mu:        mu,
		readersOK: NewCond(k),
		writerOK:  NewCond(k),
	}
}

// RLock blocks until no writer holds or is waiting for the lock, then
// registers the caller as an active reader.
func (rw *RWLock) RLock() {
	rw.mu.Acquire()
	for rw.activeWriter || rw.waitingWriters > 0 {
		rw.readersOK.Wait(rw.mu)
	}
	rw.activeReaders++
	rw.mu.Release()
}

// RUnlock removes the caller from the active-reader count, waking a
// waiting writer if this was the last reader.
func (rw *RWLock) RUnlock() {
	rw.mu.Acquire()
	rw.activeReaders--
	if rw.activeReaders == 0 {
		rw.writerOK.Signal(rw.mu)
	}
	rw.mu.Release()
}

// Lock blocks until no reader or writer holds the lock, then takes it for
// exclusive access. Registers as a waiting writer first so that any reader
// arriving afterward blocks behind it instead of extending the current
// read episode indefinitely.
func (rw *RWLock) Lock() {
	rw.mu.Acquire()
	rw.waitingWriters++
	for rw.activeWriter || rw.activeReaders > 0 {
		rw.writerOK.Wait(rw.mu)
	}
	rw.waitingWriters--
	rw.activeWriter = true
	rw.mu.Release()
}

// Unlock releases exclusive access, preferring to wake a single waiting
// writer over the full set of waiting readers, preserving writer priority
// across a chain of writers.
func (rw *RWLock) Unlock() {
	rw.mu.Acquire()
	rw.activeWriter = false
	if rw.waitingWriters > 0 {
		rw.writerOK.Signal(rw.mu)
	} else {
		rw.readersOK.Broadcast(rw.mu)
	}
	rw.mu.Release()
}
