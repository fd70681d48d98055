package threads

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestThread(name string, prio int) *Thread {
	t := &Thread{Name: name, basePriority: prio, effectivePriority: prio}
	t.allNode.owner = t
	t.linkNode.owner = t
	return t
}

func TestListPushPopOrder(t *testing.T) {
	l := newList()
	require.True(t, l.empty())

	a := newTestThread("a", 1)
	b := newTestThread("b", 1)
	l.pushBack(&a.linkNode)
	l.pushBack(&b.linkNode)
	require.Equal(t, 2, l.Len())

	front := l.popFront()
	require.Equal(t, a, front.owner)
	require.Equal(t, 1, l.Len())
	require.True(t, l.popFront().owner == b)
	require.True(t, l.empty())
}

func TestListRemoveByNode(t *testing.T) {
	l := newList()
	a := newTestThread("a", 1)
	b := newTestThread("b", 1)
	c := newTestThread("c", 1)
	l.pushBack(&a.linkNode)
	l.pushBack(&b.linkNode)
	l.pushBack(&c.linkNode)

	l.remove(&b.linkNode)
	require.Equal(t, 2, l.Len())

	var names []string
	l.forEach(func(n *listNode) { names = append(names, n.owner.Name) })
	require.Equal(t, []string{"a", "c"}, names)
}

func TestListMaxByFIFOTiebreak(t *testing.T) {
	l := newList()
	a := newTestThread("a", 10)
	b := newTestThread("b", 20)
	c := newTestThread("c", 20)
	l.pushBack(&a.linkNode)
	l.pushBack(&b.linkNode)
	l.pushBack(&c.linkNode)

	less := func(x, y *Thread) bool { return x.basePriority < y.basePriority }
	max := l.maxBy(less)
	require.Equal(t, "b", max.owner.Name, "ties broken toward earliest-inserted")
}

func TestListRemoveMaxBy(t *testing.T) {
	l := newList()
	a := newTestThread("a", 10)
	b := newTestThread("b", 30)
	c := newTestThread("c", 20)
	l.pushBack(&a.linkNode)
	l.pushBack(&b.linkNode)
	l.pushBack(&c.linkNode)

	less := func(x, y *Thread) bool { return x.basePriority < y.basePriority }
	n := l.removeMaxBy(less)
	require.Equal(t, "b", n.owner.Name)
	require.Equal(t, 2, l.Len())
}

func TestListInsertOrdered(t *testing.T) {
	l := newList()
	a := newTestThread("a", 0)
	a.wakeTick = 30
	b := newTestThread("b", 0)
	b.wakeTick = 10
	c := newTestThread("c", 0)
	c.wakeTick = 20

	less := func(x, y *Thread) bool { return x.wakeTick < y.wakeTick }
	l.insertOrdered(&a.linkNode, less)
	l.insertOrdered(&b.linkNode, less)
	l.insertOrdered(&c.linkNode, less)

	var ticks []int64
	l.forEach(func(n *listNode) { ticks = append(ticks, n.owner.wakeTick) })
	require.Equal(t, []int64{10, 20, 30}, ticks)
}
