package threads

import (
	"runtime"
	"sync"
)

// Kernel is the thread scheduler core: the process-wide singleton holding
// the all-threads list, the active ready-selection policy, the sleep
// queue, and tick accounting. It is constructed once at boot and its
// pointer is threaded through or queried at every entry point, rather than
// hidden behind package-level globals, so field ownership stays explicit.
type Kernel struct {
	cfg config

	gate *gate

	allThreads *list
	sleepQueue *list
	ready      readyPolicy

	current *Thread
	idle    *Thread
	initial *Thread

	tidMu  sync.Mutex
	nextID ThreadID

	ticks       int64
	sliceTicks  int
	idleTicks   int64
	kernelTicks int64
	userTicks   int64

	loadAvg Fixed

	yieldOnReturn bool
	pendingFree   *Thread

	started bool
}

// New constructs a Kernel. Call Init to promote the calling goroutine into
// the initial thread, then Start to launch the idle thread.
func New(opts ...KernelOption) *Kernel {
	cfg := resolveKernelOptions(opts)
	k := &Kernel{
		cfg:        cfg,
		gate:       newGate(),
		allThreads: newList(),
		sleepQueue: newList(),
	}
	if cfg.mlfqs {
		k.ready = newMLFQSReady()
	} else {
		k.ready = newPriorityReady()
	}
	k.cfg.logger.Info("kernel configured", "policy", k.ready.name(), "timer_freq", cfg.timerFreq, "time_slice", cfg.timeSlice)
	return k
}

func (k *Kernel) allocTID() ThreadID {
	k.tidMu.Lock()
	defer k.tidMu.Unlock()
	k.nextID++
	return k.nextID
}

// Init promotes the calling goroutine into the initial thread: it gets an
// id, is marked RUNNING, and is added to the all-threads list. Must be
// called exactly once, before any other Kernel method.
func (k *Kernel) Init(name string, priority int) *Thread {
	assert(k.initial == nil, "Init called more than once")
	t := newThread(k, k.allocTID(), name, priority)
	t.state = Running
	k.allThreads.pushBack(&t.allNode)
	k.initial = t
	k.current = t
	return t
}

// Start creates the idle thread, then blocks the calling goroutine (the
// initial thread) until the idle thread has initialized and yielded
// control at least once, the Go analog of thread_start's idle_started
// semaphore handshake. Rather than a separate handshake channel, the
// initial thread simply blocks: with the ready list still empty, that
// block is what hands reschedule's idle fallback its first run, and
// idleLoop unblocks the initial thread right back before parking itself.
func (k *Kernel) Start() {
	assert(k.initial != nil, "Start called before Init")
	assert(!k.started, "Start called more than once")
	k.started = true

	idle := newThread(k, k.allocTID(), "idle", PriMin)
	idle.fn = func(any) { k.idleLoop(idle) }
	k.idle = idle
	k.allThreads.pushBack(&idle.allNode)

	go k.runThread(idle)

	lvl := k.gate.disable()
	k.blockCurrentLocked(k.initial)
	k.gate.restore(lvl)
}

// Create allocates a page, builds a thread control block for it, and adds
// it to the all-threads list in the BLOCKED state, then unblocks it. Under
// MLFQS, priority is forced to PRI_MAX and recomputed immediately. Returns
// ErrInvalidPriority if priority is out of [PriMin, PriMax], ErrNoPages if
// the page allocator is exhausted.
func (k *Kernel) Create(name string, priority int, fn func(aux any), aux any) (*Thread, error) {
	if priority < PriMin || priority > PriMax {
		return nil, wrapf(ErrInvalidPriority, "create %q: priority %d out of range", name, priority)
	}
	page, err := k.cfg.pageAllocator.Alloc()
	if err != nil {
		return nil, wrapf(ErrNoPages, "create %q", name)
	}

	lvl := k.gate.disable()
	defer k.gate.restore(lvl)

	if k.cfg.mlfqs {
		priority = PriMax
	}
	t := newThread(k, k.allocTID(), name, priority)
	t.page = page
	t.fn = fn
	t.aux = aux
	if k.cfg.mlfqs {
		cur := k.current
		t.nice = cur.nice
		t.recentCPU = cur.recentCPU
		t.basePriority = PriMax
		k.ready.(*mlfqsReady).recalculatePriority(t)
	}
	k.allThreads.pushBack(&t.allNode)

	go k.runThread(t)

	k.unblockLocked(t)
	k.preemptLocked()

	k.cfg.logger.Debug("thread created", "id", t.ID, "name", t.Name, "priority", t.Priority())
	return t, nil
}

// Current returns the currently running thread.
func (k *Kernel) Current() *Thread {
	return k.current
}

// Name returns the currently running thread's name.
func (k *Kernel) Name() string {
	return k.current.Name
}

// Tid returns the currently running thread's id.
func (k *Kernel) Tid() ThreadID {
	return k.current.ID
}

// ForEach invokes fn for every thread on the all-threads list. Requires
// the gate to be held by the caller; it does not take the gate itself, so
// it is not a blocking-safe public entry point on its own.
func (k *Kernel) ForEach(fn func(*Thread)) {
	k.allThreads.forEach(func(n *listNode) { fn(n.owner) })
}

// IsAlive reports whether a thread with the given id is still on the
// all-threads list.
func (k *Kernel) IsAlive(id ThreadID) bool {
	lvl := k.gate.disable()
	defer k.gate.restore(lvl)
	alive := false
	k.allThreads.forEach(func(n *listNode) {
		if n.owner.ID == id {
			alive = true
		}
	})
	return alive
}

// Block transitions the current thread to BLOCKED and invokes the
// scheduler. Must not be called from interrupt context.
func (k *Kernel) Block() {
	lvl := k.gate.disable()
	k.blockCurrentLocked(k.current)
	k.gate.restore(lvl)
}

func (k *Kernel) blockCurrentLocked(t *Thread) {
	assertThread(!k.gate.isInInterruptContext(), t, "block() called from interrupt context")
	t.state = Blocked
	k.reschedule()
}

// Unblock transitions t from BLOCKED to READY and inserts it into the
// ready structure. Does not preempt; callers batch unblocks.
func (k *Kernel) Unblock(t *Thread) {
	lvl := k.gate.disable()
	k.unblockLocked(t)
	k.gate.restore(lvl)
}

func (k *Kernel) unblockLocked(t *Thread) {
	assertThread(t.state == Blocked, t, "unblock: thread is not BLOCKED (state=%s)", t.state)
	t.state = Ready
	k.ready.insert(t)
}

// Yield enqueues the current thread (unless it is the idle thread) into
// the ready structure and invokes the scheduler. Must not be called from
// interrupt context.
func (k *Kernel) Yield() {
	lvl := k.gate.disable()
	k.yieldCurrentLocked()
	k.gate.restore(lvl)
}

func (k *Kernel) yieldCurrentLocked() {
	cur := k.current
	assertThread(!k.gate.isInInterruptContext(), cur, "yield() called from interrupt context")
	cur.state = Ready
	if cur != k.idle {
		k.ready.insert(cur)
	}
	k.reschedule()
}

// exitCurrent removes the current thread from the all-threads list,
// releases every lock it still holds without triggering preemption, marks
// it DYING, and invokes the scheduler. Never returns.
func (k *Kernel) exitCurrent() {
	lvl := k.gate.disable()
	cur := k.current
	assertThread(!k.gate.isInInterruptContext(), cur, "exit() called from interrupt context")
	k.allThreads.remove(&cur.allNode)
	for len(cur.heldLocks) > 0 {
		cur.heldLocks[len(cur.heldLocks)-1].releaseGateHeld()
	}
	cur.state = Dying
	k.cfg.logger.Debug("thread exiting", "id", cur.ID, "name", cur.Name)
	_ = lvl // the gate is never restored on this goroutine: reschedule hands the
	// still-held gate to whichever thread runs next, which releases it from
	// its own call site when it eventually yields or blocks in turn.
	k.reschedule()
	// reschedule returns once the successor has been handed the baton (a
	// DYING thread is never scheduled again). Goexit ends the goroutine so
	// control can never unwind back into the dead thread's body, the Go
	// analog of thread_exit's NOT_REACHED.
	runtime.Goexit()
}

// Preempt yields immediately if some ready thread outranks the
// current thread.
func (k *Kernel) Preempt() {
	lvl := k.gate.disable()
	k.preemptLocked()
	k.gate.restore(lvl)
}

func (k *Kernel) preemptLocked() {
	hp, ok := k.ready.highestReadyPriority()
	if ok && hp > k.current.Priority() {
		k.yieldCurrentLocked()
	}
}

// reschedule picks the next thread to run per the active policy (falling
// back to idle when the ready structure is empty) and performs the
// context switch via baton handoff. Requires the gate held and
// current.state != Running.
func (k *Kernel) reschedule() {
	cur := k.current
	assertThread(cur.state != Running, cur, "schedule: current thread must not be RUNNING")

	next := k.ready.popNext()
	if next == nil {
		next = k.idle
	}

	if next == cur {
		k.scheduleTail(cur)
		return
	}

	dying := cur.state == Dying
	if dying && cur != k.initial {
		k.pendingFree = cur
	}

	k.current = next
	next.baton <- struct{}{}

	if dying {
		return
	}

	<-cur.baton
	k.scheduleTail(cur)
}

// scheduleTail runs on whichever thread just became RUNNING (by direct
// continuation or by baton wakeup): sets state RUNNING, resets the
// time-slice counter, and frees the predecessor's page if it exited and
// isn't the initial thread.
func (k *Kernel) scheduleTail(t *Thread) {
	t.checkMagic()
	t.state = Running
	k.sliceTicks = 0
	if k.pendingFree != nil {
		k.cfg.pageAllocator.Free(k.pendingFree.page)
		k.pendingFree = nil
	}
}

// MaybeYield is the cooperative preemption checkpoint: well-behaved thread
// bodies call it at loop back-edges. If the timer handler requested a
// yield-on-return (the time slice was exhausted, or a strictly
// higher-priority thread became ready), this yields; otherwise it returns
// immediately. A CPU-bound thread body that never calls this (or Yield,
// or any other suspension point) cannot be preempted mid-instruction the
// way real hardware would: an accepted simplification of simulating a
// single logical CPU with goroutines.
func (k *Kernel) MaybeYield() {
	lvl := k.gate.disable()
	if k.yieldOnReturn {
		k.yieldOnReturn = false
		k.yieldCurrentLocked()
	}
	k.gate.restore(lvl)
}
