package threads

// maxDonationDepth bounds the priority-donation chain walk. The reference
// kernel's chain is bounded only by active lock nesting depth in practice;
// this cap is a safety valve against a malformed cycle, set well above the
// depth-8 chain the test suite exercises. Chains deeper than
// donationWarnDepth are worth a warning: they indicate lock nesting deep
// enough that the O(depth) walk on every contended acquire starts to
// matter.
const (
	maxDonationDepth  = 64
	donationWarnDepth = 8
)

// Lock wraps a binary semaphore with a holder field and donation
// bookkeeping. Locks are not recursive: acquiring a lock you already hold
// is a contract violation.
type Lock struct {
	k      *Kernel
	sema   *Semaphore
	holder *Thread
}

// NewLock constructs an unheld lock.
func NewLock(k *Kernel) *Lock {
	return &Lock{k: k, sema: NewSemaphore(k, 1)}
}

// Acquire donates the caller's effective priority along the holder chain
// if the lock is currently held, then blocks until it becomes available.
func (l *Lock) Acquire() {
	cur := l.k.current

	lvl := l.k.gate.disable()
	assertThread(l.holder != cur, cur, "lock: acquiring a lock already held by self")
	if l.holder != nil && !l.k.cfg.mlfqs {
		cur.lockWaitedOn = l
		l.donate(cur)
	}
	l.k.gate.restore(lvl)

	l.sema.Down()

	lvl = l.k.gate.disable()
	cur.lockWaitedOn = nil
	l.holder = cur
	cur.addHeldLock(l)
	l.k.gate.restore(lvl)
}

// donate walks waiter.blocked_on -> lock.holder -> holder.blocked_on -> ...
// raising each underprivileged holder's effective priority to the
// acquiring thread's, bounded by maxDonationDepth.
func (l *Lock) donate(cur *Thread) {
	lk := l
	depth := 0
	for ; lk != nil && depth < maxDonationDepth; depth++ {
		holder := lk.holder
		if holder == nil || holder.effectivePriority >= cur.effectivePriority {
			break
		}
		holder.effectivePriority = cur.effectivePriority
		lk = holder.lockWaitedOn
	}
	if depth > donationWarnDepth {
		l.k.cfg.logger.Warn("deep donation chain", "depth", depth, "donor", cur.Name, "donor_id", cur.ID)
	}
}

// TryAcquire acquires the lock without blocking, returning false if it is
// already held.
func (l *Lock) TryAcquire() bool {
	cur := l.k.current
	lvl := l.k.gate.disable()
	assertThread(l.holder != cur, cur, "lock: acquiring a lock already held by self")
	l.k.gate.restore(lvl)

	if !l.sema.TryDown() {
		return false
	}

	lvl = l.k.gate.disable()
	l.holder = cur
	cur.addHeldLock(l)
	l.k.gate.restore(lvl)
	return true
}

// Release removes the lock from the holder's held-set, recomputes the
// holder's effective priority over its remaining held locks, and wakes the
// highest-priority waiter (if any), preempting if it now outranks the
// current thread.
func (l *Lock) Release() {
	lvl := l.k.gate.disable()
	woke := l.releaseGateHeld()
	l.k.gate.restore(lvl)

	if woke != nil {
		l.k.Preempt()
	}
}

// releaseGateHeld is the no-preempt release variant: it does the release
// bookkeeping and waiter handoff with the gate already held, returning the
// woken thread if any. exitCurrent calls this directly for each remaining
// held lock, where preemption is illegal and the gate stays held for the
// whole teardown, so re-disabling it there would deadlock.
func (l *Lock) releaseGateHeld() *Thread {
	holder := l.holder
	assertThread(holder == l.k.current, l.k.current, "lock: release of a lock not held by current thread")
	holder.removeHeldLock(l)
	l.holder = nil
	if !l.k.cfg.mlfqs {
		holder.recomputeEffectivePriority()
	}
	return l.sema.upGateHeld()
}

// HeldByCurrent reports whether the calling thread holds this lock.
func (l *Lock) HeldByCurrent() bool {
	lvl := l.k.gate.disable()
	defer l.k.gate.restore(lvl)
	return l.holder == l.k.current
}
