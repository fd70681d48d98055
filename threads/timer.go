package threads

// MarkTimerGoroutine records the calling goroutine as the logical interrupt
// source: the only goroutine from which Tick may subsequently be called.
// Call this once, from whichever goroutine drives the simulated timer,
// before the first call to Tick.
func (k *Kernel) MarkTimerGoroutine() {
	k.gate.markInterruptContext()
}

// SleepUntil blocks the calling thread until the kernel's tick counter
// reaches or passes wakeTick. Threads are parked on an ascending,
// tick-ordered sleep queue so Tick only ever needs to inspect the front of
// it. Must not be called from interrupt context. A wakeTick that has
// already passed returns immediately without blocking.
func (k *Kernel) SleepUntil(wakeTick int64) {
	lvl := k.gate.disable()
	cur := k.current
	assertThread(!k.gate.isInInterruptContext(), cur, "sleep_until called from interrupt context")

	if wakeTick <= k.ticks {
		k.gate.restore(lvl)
		return
	}

	cur.wakeTick = wakeTick
	k.sleepQueue.insertOrdered(&cur.linkNode, wakeTickLess)
	k.blockCurrentLocked(cur)
	k.gate.restore(lvl)
}

func wakeTickLess(a, b *Thread) bool {
	return a.wakeTick < b.wakeTick
}

// wakeSleepersLocked unblocks every thread at the front of the sleep queue
// whose wake tick is <= now. Must be called with the gate held; removal
// happens before unblock, matching thread_check_sleeping's discipline of
// taking a thread off the sleeping list before waking it (unblock reuses
// the same list node).
func (k *Kernel) wakeSleepersLocked(now int64) {
	for !k.sleepQueue.empty() {
		n := k.sleepQueue.head.next
		if n.owner.wakeTick > now {
			return
		}
		k.sleepQueue.remove(n)
		k.unblockLocked(n.owner)
	}
}

// CheckSleeping wakes every sleeping thread whose wake tick is <= now. Tick
// already does this on every tick; this entry point exists for callers that
// drive the sleep queue directly, and is safe in interrupt context.
func (k *Kernel) CheckSleeping(now int64) {
	lvl := k.gate.disable()
	k.wakeSleepersLocked(now)
	k.gate.restore(lvl)
}

// Tick is the simulated timer interrupt: it must be called only from the
// goroutine registered via the gate's markInterruptContext, once per
// simulated tick. It advances the tick counter, attributes the tick to
// idle or kernel time, drives the active ready policy's onTick hook (a
// no-op under priority-donation, the MLFQS recompute boundaries under
// MLFQS), wakes any threads whose sleep has elapsed, and marks the time
// slice exhausted once TimeSlice ticks have passed without a voluntary
// yield. The next call to MaybeYield on the running thread's own call
// site is what actually performs that yield, since a real preemption of
// arbitrary running code is not something this simulation can do (see
// MaybeYield's doc comment).
func (k *Kernel) Tick() {
	lvl := k.gate.disable()
	assert(k.gate.isInInterruptContext(), "Tick called from a goroutine other than the registered interrupt source")

	k.ticks++
	if k.current == k.idle {
		k.idleTicks++
	} else {
		k.kernelTicks++
	}

	k.ready.onTick(k, k.current, k.ticks)
	k.wakeSleepersLocked(k.ticks)

	k.sliceTicks++
	if k.sliceTicks >= k.cfg.timeSlice {
		k.yieldOnReturn = true
	}
	// A wakeup or an MLFQS recompute may have left a strictly
	// higher-priority thread ready; request the yield now rather than
	// waiting out the rest of the slice.
	if hp, ok := k.ready.highestReadyPriority(); ok && hp > k.current.Priority() {
		k.yieldOnReturn = true
	}

	k.gate.restore(lvl)
}

// Ticks returns the number of simulated timer ticks since boot.
func (k *Kernel) Ticks() int64 {
	lvl := k.gate.disable()
	defer k.gate.restore(lvl)
	return k.ticks
}
