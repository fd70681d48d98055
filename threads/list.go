package threads

// listNode is an intrusive doubly-linked list node. A node belongs to at
// most one list at a time; callers embed a listNode in the owning struct
// (Thread carries two: one for the all-threads list, one shared slot for
// whichever of {ready queue, sleep queue, waiter list} currently owns it).
type listNode struct {
	prev, next *listNode
	owner      *Thread
}

// list is a sentinel-headed doubly-linked list. The zero value is not
// usable; construct one with newList.
type list struct {
	head, tail listNode // sentinels; head.next is the front, tail.prev the back
	len        int
}

func newList() *list {
	l := &list{}
	l.head.next = &l.tail
	l.tail.prev = &l.head
	return l
}

func (l *list) empty() bool {
	return l.head.next == &l.tail
}

func (l *list) Len() int {
	return l.len
}

func (l *list) pushBack(n *listNode) {
	n.prev = l.tail.prev
	n.next = &l.tail
	l.tail.prev.next = n
	l.tail.prev = n
	l.len++
}

// popFront removes and returns the front node, or nil if empty.
func (l *list) popFront() *listNode {
	if l.empty() {
		return nil
	}
	n := l.head.next
	l.remove(n)
	return n
}

// remove detaches n from whichever list it is linked into. O(1) because
// the node is self-referential (doubly-linked with sentinels).
func (l *list) remove(n *listNode) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
	l.len--
}

// forEach visits every node front to back. fn must not mutate the list.
func (l *list) forEach(fn func(*listNode)) {
	for n := l.head.next; n != &l.tail; n = n.next {
		fn(n)
	}
}

// maxBy returns the node maximizing less(candidate, best) == false for all
// others, i.e. the first node for which no later node compares greater,
// ties broken toward the earliest (FIFO among equals). less(a, b) reports
// whether a has lower priority than b.
func (l *list) maxBy(less func(a, b *Thread) bool) *listNode {
	if l.empty() {
		return nil
	}
	best := l.head.next
	for n := best.next; n != &l.tail; n = n.next {
		if less(best.owner, n.owner) {
			best = n
		}
	}
	return best
}

// removeMaxBy removes and returns the maximal node per maxBy, or nil if
// empty.
func (l *list) removeMaxBy(less func(a, b *Thread) bool) *listNode {
	n := l.maxBy(less)
	if n == nil {
		return nil
	}
	l.remove(n)
	return n
}

// insertOrdered inserts n before the first existing element for which
// less(n.owner, existing.owner) is true, preserving ascending order (used
// by the sleep queue, keyed on wake tick).
func (l *list) insertOrdered(n *listNode, less func(a, b *Thread) bool) {
	for cur := l.head.next; cur != &l.tail; cur = cur.next {
		if less(n.owner, cur.owner) {
			n.prev = cur.prev
			n.next = cur
			cur.prev.next = n
			cur.prev = n
			l.len++
			return
		}
	}
	l.pushBack(n)
}
