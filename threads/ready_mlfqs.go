package threads

// mlfqsReady is the multi-level feedback queue scheduler: 64 ready queues
// indexed by priority. Insertion is O(1) at the tail of the queue for the
// thread's current priority; next scans from highest to lowest and pops
// the front of the first non-empty queue.
type mlfqsReady struct {
	queues      [PriMax + 1]*list
	recomputing bool // guards against double-move while a bulk recompute is in progress
}

func newMLFQSReady() *mlfqsReady {
	m := &mlfqsReady{}
	for i := range m.queues {
		m.queues[i] = newList()
	}
	return m
}

func clampPriority(p int) int {
	if p < PriMin {
		return PriMin
	}
	if p > PriMax {
		return PriMax
	}
	return p
}

func (m *mlfqsReady) insert(t *Thread) {
	idx := clampPriority(t.basePriority)
	t.queueIndex = idx
	m.queues[idx].pushBack(&t.linkNode)
}

func (m *mlfqsReady) popNext() *Thread {
	for i := PriMax; i >= PriMin; i-- {
		if n := m.queues[i].popFront(); n != nil {
			return n.owner
		}
	}
	return nil
}

func (m *mlfqsReady) empty() bool {
	for _, q := range m.queues {
		if !q.empty() {
			return false
		}
	}
	return true
}

func (m *mlfqsReady) highestReadyPriority() (int, bool) {
	for i := PriMax; i >= PriMin; i-- {
		if !m.queues[i].empty() {
			return i, true
		}
	}
	return 0, false
}

func (m *mlfqsReady) name() string { return "mlfqs" }

// switchQueue moves a READY thread from its current queue to the queue
// matching its (already updated) base priority. Guarded by the
// recomputing flag the same way the reference kernel's
// mlfqs_switch_queue is guarded by switchQueues == NULL, so a thread being
// actively relocated during a bulk recomputation pass is never moved
// twice.
func (m *mlfqsReady) switchQueue(t *Thread) {
	if t.state != Ready {
		return
	}
	newIdx := clampPriority(t.basePriority)
	if newIdx == t.queueIndex {
		return
	}
	m.queues[t.queueIndex].remove(&t.linkNode)
	t.queueIndex = newIdx
	m.queues[newIdx].pushBack(&t.linkNode)
}

// recalculatePriority applies priority = clamp(PRI_MAX - recent_cpu/4 -
// nice*2). The whole expression stays in fixed-point and is converted to
// an integer exactly once at the end, so the fractional part of
// recent_cpu/4 survives into the final value rather than being truncated
// away mid-expression. Skips the queue move if a bulk recompute
// (recomputing == true) is already relocating queues; it will be picked
// up by the caller's own loop instead of being moved here, mirroring
// mlfqs_switch_queue's switchQueues-in-progress guard.
func (m *mlfqsReady) recalculatePriority(t *Thread) {
	p := FixedFromInt(PriMax).Sub(t.recentCPU.DivInt(4)).SubInt(t.nice * 2)
	t.basePriority = clampPriority(p.ToIntRound())
	if !m.recomputing {
		m.switchQueue(t)
	}
}

// readyCount returns the number of threads that are RUNNING or READY,
// excluding the idle thread, following the reference kernel's
// count_thread_if_ready exactly (see DESIGN.md for why the running
// thread counts).
func readyCount(k *Kernel) int {
	n := 0
	k.allThreads.forEach(func(node *listNode) {
		t := node.owner
		if t == k.idle {
			return
		}
		if t.state == Running || t.state == Ready {
			n++
		}
	})
	return n
}

// onTick drives the three MLFQS recomputation boundaries: every tick,
// recent_cpu of the running thread advances; every 4 ticks, every
// thread's priority is recomputed; every TIMER_FREQ ticks (once per
// simulated second), load_avg and every thread's recent_cpu are
// recomputed first.
func (m *mlfqsReady) onTick(k *Kernel, running *Thread, ticks int64) {
	if running != nil && running != k.idle {
		running.recentCPU = running.recentCPU.AddInt(1)
	}

	if ticks%int64(k.cfg.timerFreq) == 0 {
		m.recalculateLoadAvg(k)
		m.recalculateAllRecentCPU(k)
	}

	if ticks%4 == 0 {
		m.recalculateAllPriorities(k)
		k.cfg.logger.Debug("mlfqs priorities recomputed", "ticks", ticks)
	}
}

// recalculateLoadAvg: load_avg = (59/60)*load_avg + (1/60)*ready_count.
func (m *mlfqsReady) recalculateLoadAvg(k *Kernel) {
	fiftyNine := FixedFromInt(59).DivInt(60)
	oneSixtieth := FixedFromInt(1).DivInt(60)
	k.loadAvg = fiftyNine.Mul(k.loadAvg).Add(oneSixtieth.MulInt(readyCount(k)))
}

// recalculateAllRecentCPU: recent_cpu = (2*load_avg)/(2*load_avg+1) *
// recent_cpu + nice, for every thread.
func (m *mlfqsReady) recalculateAllRecentCPU(k *Kernel) {
	twoLoad := k.loadAvg.MulInt(2)
	coeff := twoLoad.Div(twoLoad.AddInt(1))
	k.allThreads.forEach(func(n *listNode) {
		t := n.owner
		t.recentCPU = coeff.Mul(t.recentCPU).AddInt(t.nice)
	})
}

// recalculateAllPriorities recomputes every thread's priority under the
// recomputing guard, then moves each READY thread to its new queue in one
// pass (rather than per-thread inside recalculatePriority, avoiding the
// double-move the reference kernel's switchQueues guard exists to
// prevent).
func (m *mlfqsReady) recalculateAllPriorities(k *Kernel) {
	m.recomputing = true
	type move struct {
		t   *Thread
		old int
	}
	var moves []move
	k.allThreads.forEach(func(n *listNode) {
		t := n.owner
		if t == k.idle {
			return
		}
		old := t.queueIndex
		wasReady := t.state == Ready
		m.recalculatePriority(t)
		if wasReady {
			moves = append(moves, move{t: t, old: old})
		}
	})
	m.recomputing = false
	for _, mv := range moves {
		newIdx := clampPriority(mv.t.basePriority)
		if newIdx != mv.old {
			m.queues[mv.old].remove(&mv.t.linkNode)
			mv.t.queueIndex = newIdx
			m.queues[newIdx].pushBack(&mv.t.linkNode)
		}
	}
}
