package threads

// condWaiter is one outstanding Wait call: a per-wait semaphore the waiter
// blocks on, paired with the thread so Signal can pick the
// highest-priority one. Unlike ready/sleep/lock waiter lists, this list is
// expected to stay short-lived and small, so a plain slice is simplest.
type condWaiter struct {
	thread *Thread
	sema   *Semaphore
}

// Cond is a condition variable. It holds no lock of its own: callers must
// hold the associated Lock across Wait, Signal, and Broadcast, exactly as
// with the reference kernel's cond_wait/cond_signal/cond_broadcast.
type Cond struct {
	k       *Kernel
	waiters []*condWaiter
}

// NewCond constructs an empty condition variable.
func NewCond(k *Kernel) *Cond {
	return &Cond{k: k}
}

// Wait atomically releases lock and blocks the caller until a matching
// Signal or Broadcast, then reacquires lock before returning. lock must be
// held by the caller on entry.
func (c *Cond) Wait(lock *Lock) {
	assertThread(lock.HeldByCurrent(), c.k.current, "cond.wait: lock not held by current thread")

	w := &condWaiter{thread: c.k.current, sema: NewSemaphore(c.k, 0)}
	lvl := c.k.gate.disable()
	c.waiters = append(c.waiters, w)
	c.k.gate.restore(lvl)

	lock.Release()
	w.sema.Down()
	lock.Acquire()
}

// Signal wakes the highest-priority waiter, if any. lock must be held by
// the caller.
func (c *Cond) Signal(lock *Lock) {
	assertThread(lock.HeldByCurrent(), c.k.current, "cond.signal: lock not held by current thread")

	lvl := c.k.gate.disable()
	chosen := c.popHighestLocked()
	c.k.gate.restore(lvl)

	if chosen != nil {
		chosen.sema.Up()
	}
}

// Broadcast wakes every waiter, highest priority first. lock must be held
// by the caller.
func (c *Cond) Broadcast(lock *Lock) {
	assertThread(lock.HeldByCurrent(), c.k.current, "cond.broadcast: lock not held by current thread")

	for {
		lvl := c.k.gate.disable()
		chosen := c.popHighestLocked()
		c.k.gate.restore(lvl)
		if chosen == nil {
			return
		}
		chosen.sema.Up()
	}
}

// popHighestLocked removes and returns the waiter with the highest
// Priority(), or nil if there are none. Must be called with the gate held.
func (c *Cond) popHighestLocked() *condWaiter {
	if len(c.waiters) == 0 {
		return nil
	}
	best := 0
	for i, w := range c.waiters {
		if w.thread.Priority() > c.waiters[best].thread.Priority() {
			best = i
		}
	}
	chosen := c.waiters[best]
	c.waiters[best] = c.waiters[len(c.waiters)-1]
	c.waiters = c.waiters[:len(c.waiters)-1]
	return chosen
}
