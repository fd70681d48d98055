package threads

// Exit is the public entry point mirroring thread_exit: it releases every
// lock the current thread still holds, marks it DYING, and hands control to
// the scheduler. Never returns. Must not be called from interrupt context.
func (k *Kernel) Exit() {
	k.exitCurrent()
}

// SetPriority changes the current thread's base priority. Under the
// priority-donation policy, effective priority is recomputed as the max of
// the new base and any donors across its remaining held locks, and the
// caller preempts immediately if some other ready thread now outranks it.
// Under MLFQS this is a no-op: priority there is derived entirely from
// recent_cpu and nice.
func (k *Kernel) SetPriority(p int) error {
	if p < PriMin || p > PriMax {
		return wrapf(ErrInvalidPriority, "set_priority: %d out of range", p)
	}
	if k.cfg.mlfqs {
		return nil
	}

	lvl := k.gate.disable()
	cur := k.current
	cur.basePriority = p
	cur.recomputeEffectivePriority()
	k.preemptLocked()
	k.gate.restore(lvl)
	return nil
}

// GetPriority returns the priority the scheduler currently uses for the
// calling thread: effective priority under donation, base priority (the
// only one tracked) under MLFQS.
func (k *Kernel) GetPriority() int {
	lvl := k.gate.disable()
	defer k.gate.restore(lvl)
	return k.current.Priority()
}

// SetNice adjusts the current thread's niceness, immediately recomputes its
// own priority from the MLFQS formula, and preempts if it no longer
// outranks the best ready thread. A no-op (beyond storing the value) under
// the priority-donation policy, where nice is unused.
func (k *Kernel) SetNice(n int) error {
	if n < NiceMin || n > NiceMax {
		return wrapf(ErrInvalidNice, "set_nice: %d out of range", n)
	}

	lvl := k.gate.disable()
	cur := k.current
	cur.nice = n
	if m, ok := k.ready.(*mlfqsReady); ok {
		m.recalculatePriority(cur)
	}
	k.preemptLocked()
	k.gate.restore(lvl)
	return nil
}

// GetNice returns the current thread's niceness.
func (k *Kernel) GetNice() int {
	lvl := k.gate.disable()
	defer k.gate.restore(lvl)
	return k.current.nice
}
