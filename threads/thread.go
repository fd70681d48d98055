package threads

import "fmt"

// Scheduling constants, matching the reference kernel exactly.
const (
	PriMin     = 0
	PriDefault = 31
	PriMax     = 63

	TimeSlice = 4   // ticks between enforced preemptions
	TimerFreq = 100 // ticks per simulated second

	NiceMin = -20
	NiceMax = 20

	maxNameLen = 15

	threadMagic = 0xcd6abf4b
)

// ThreadID identifies a thread, monotonically increasing from 1.
type ThreadID int64

// State is a thread's scheduling state.
type State int

const (
	Blocked State = iota
	Ready
	Running
	Dying
)

func (s State) String() string {
	switch s {
	case Blocked:
		return "BLOCKED"
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Dying:
		return "DYING"
	default:
		return fmt.Sprintf("STATE(%d)", int(s))
	}
}

// Thread is the unit of scheduling: a control block with an identity,
// priority fields, scheduling linkage, and a simulated stack page. Every
// field here is mutated only with the kernel's gate held.
type Thread struct {
	ID    ThreadID
	Name  string
	state State

	basePriority      int
	effectivePriority int

	nice       int   // MLFQS only
	recentCPU  Fixed // MLFQS only
	queueIndex int   // MLFQS only: which ready queue this thread is linked into, while READY

	lockWaitedOn *Lock   // non-owning; set while blocked acquiring a lock
	heldLocks    []*Lock // locks currently held by this thread

	wakeTick int64 // valid only while linked into the sleep queue

	allNode  listNode // permanent membership of the all-threads list
	linkNode listNode // shared slot: ready queue, sleep queue, or a waiter list

	page  *Page
	magic uint32

	fn  func(aux any)
	aux any

	baton chan struct{} // baton-pass handoff token; buffered, capacity 1

	k *Kernel // owning kernel, non-owning reference
}

func newThread(k *Kernel, id ThreadID, name string, priority int) *Thread {
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	t := &Thread{
		ID:                id,
		Name:              name,
		state:             Blocked,
		basePriority:      priority,
		effectivePriority: priority,
		magic:             threadMagic,
		baton:             make(chan struct{}, 1),
		k:                 k,
	}
	t.allNode.owner = t
	t.linkNode.owner = t
	if k.cfg.mlfqs {
		t.recentCPU = 0
	}
	return t
}

func (t *Thread) checkMagic() {
	assertThread(t.magic == threadMagic, t, "stack overflow detected: thread magic corrupted")
}

// Priority returns the priority the scheduler currently uses to compare
// this thread: effective priority under donation, base priority (the only
// one tracked) under MLFQS.
func (t *Thread) Priority() int {
	if t.k.cfg.mlfqs {
		return t.basePriority
	}
	return t.effectivePriority
}

// BasePriority returns the thread's un-donated priority.
func (t *Thread) BasePriority() int {
	return t.basePriority
}

// Nice returns the thread's MLFQS niceness.
func (t *Thread) Nice() int {
	return t.nice
}

// State returns the thread's current scheduling state.
func (t *Thread) State() State {
	return t.state
}

// recomputeEffectivePriority sets effective_priority = max(base_priority,
// max over every waiter blocked on any lock this thread holds). Must be
// called with the gate held. Mirrors update_temp_priority / the donation
// recompute performed on lock release.
func (t *Thread) recomputeEffectivePriority() {
	best := t.basePriority
	for _, l := range t.heldLocks {
		l.sema.waiters.forEach(func(n *listNode) {
			if p := n.owner.effectivePriority; p > best {
				best = p
			}
		})
	}
	t.effectivePriority = best
}

func (t *Thread) addHeldLock(l *Lock) {
	t.heldLocks = append(t.heldLocks, l)
}

func (t *Thread) removeHeldLock(l *Lock) {
	for i, h := range t.heldLocks {
		if h == l {
			t.heldLocks[i] = t.heldLocks[len(t.heldLocks)-1]
			t.heldLocks = t.heldLocks[:len(t.heldLocks)-1]
			return
		}
	}
}
