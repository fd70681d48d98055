package threads

// Semaphore is a non-negative counter plus a waiter list. Up hands the
// unit directly to the highest-effective-priority waiter when one is
// present, rather than incrementing the count and letting down race to
// claim it. The count is decremented (by down, implicitly, by simply not
// incrementing on handoff) only when a waiter is actually released.
type Semaphore struct {
	k       *Kernel
	value   int
	waiters *list
}

// NewSemaphore constructs a semaphore with the given non-negative initial
// count.
func NewSemaphore(k *Kernel, initial int) *Semaphore {
	assert(initial >= 0, "semaphore: negative initial value %d", initial)
	return &Semaphore{k: k, value: initial, waiters: newList()}
}

// Down must not be called from interrupt context. If the count is
// positive, it is decremented and Down returns immediately; otherwise the
// caller blocks until a matching Up hands it the unit directly.
func (s *Semaphore) Down() {
	lvl := s.k.gate.disable()
	cur := s.k.current
	assertThread(!s.k.gate.isInInterruptContext(), cur, "sema.down called from interrupt context")

	if s.value > 0 {
		s.value--
		s.k.gate.restore(lvl)
		return
	}

	s.waiters.pushBack(&cur.linkNode)
	s.k.blockCurrentLocked(cur)
	// Resumed: up() handed this unit directly to us; the count was never
	// incremented for our sake, so there is nothing left to decrement.
	s.k.gate.restore(lvl)
}

// TryDown decrements and returns true if the count is positive without
// blocking, otherwise returns false immediately.
func (s *Semaphore) TryDown() bool {
	lvl := s.k.gate.disable()
	defer s.k.gate.restore(lvl)
	if s.value > 0 {
		s.value--
		return true
	}
	return false
}

// Up selects the highest-effective-priority waiter (if any) and unblocks
// it directly; otherwise increments the count. If a waiter was woken, Up
// preempts the current thread on return if the woken thread now outranks
// it.
func (s *Semaphore) Up() {
	lvl := s.k.gate.disable()
	woke := s.upGateHeld()
	s.k.gate.restore(lvl)

	if woke != nil {
		s.k.Preempt()
	}
}

// upGateHeld performs the handoff with the gate already held, returning
// the woken thread if any. Used directly by the exit teardown, which holds
// the gate across the whole release loop.
func (s *Semaphore) upGateHeld() *Thread {
	if n := s.waiters.removeMaxBy(priorityLess); n != nil {
		woke := n.owner
		s.k.unblockLocked(woke)
		return woke
	}
	s.value++
	return nil
}
