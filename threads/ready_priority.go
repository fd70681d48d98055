package threads

// priorityReady is the default ready-selection policy: a single ready
// list; next() pops the element with maximum effective_priority, ties
// broken by FIFO among equals. Donation is implemented in lock.go and
// thread.go (recomputeEffectivePriority); this policy only needs to
// compare whatever effective_priority currently says.
type priorityReady struct {
	list *list
}

func newPriorityReady() *priorityReady {
	return &priorityReady{list: newList()}
}

func (p *priorityReady) insert(t *Thread) {
	p.list.pushBack(&t.linkNode)
}

// priorityLess is the shared FIFO-tiebreak comparator used by the ready
// list, semaphore waiter lists, and lock waiter lists alike: it compares
// whatever Priority() currently reports (effective priority under
// donation, base priority under MLFQS), so waiter selection stays correct
// under either active policy.
func priorityLess(a, b *Thread) bool {
	return a.Priority() < b.Priority()
}

func (p *priorityReady) popNext() *Thread {
	n := p.list.removeMaxBy(priorityLess)
	if n == nil {
		return nil
	}
	return n.owner
}

func (p *priorityReady) empty() bool {
	return p.list.empty()
}

func (p *priorityReady) highestReadyPriority() (int, bool) {
	n := p.list.maxBy(priorityLess)
	if n == nil {
		return 0, false
	}
	return n.owner.effectivePriority, true
}

func (p *priorityReady) onTick(*Kernel, *Thread, int64) {}

func (p *priorityReady) name() string { return "priority-donation" }
