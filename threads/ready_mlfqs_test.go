package threads

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMLFQSReadyPopsHighestPriorityQueue(t *testing.T) {
	k := New(WithMLFQS(true))
	k.Init("main", PriDefault)
	m := newMLFQSReady()

	low := newThread(k, k.allocTID(), "low", 10)
	high := newThread(k, k.allocTID(), "high", 50)

	m.insert(low)
	m.insert(high)

	require.Equal(t, high, m.popNext())
	require.Equal(t, low, m.popNext())
	require.Nil(t, m.popNext())
}

func TestMLFQSReadyInsertClampsOutOfRangePriority(t *testing.T) {
	m := newMLFQSReady()
	k := New(WithMLFQS(true))
	k.Init("main", PriDefault)
	th := newThread(k, k.allocTID(), "t", 10)
	th.basePriority = PriMax + 5

	m.insert(th)
	require.Equal(t, PriMax, th.queueIndex)
}

func TestMLFQSRecalculatePriorityFormula(t *testing.T) {
	m := newMLFQSReady()
	k := New(WithMLFQS(true))
	k.Init("main", PriDefault)
	th := newThread(k, k.allocTID(), "t", PriDefault)

	th.recentCPU = FixedFromInt(80) // 80/4 = 20
	th.nice = 5                     // 5*2 = 10

	m.recalculatePriority(th)
	require.Equal(t, PriMax-20-10, th.basePriority)
}

// TestMLFQSRecalculatePriorityConvertsOnce pins down the conversion
// discipline: the fractional part of recent_cpu/4 must survive into the
// final subtraction. Truncating the term to an integer first would yield
// 63 here (63 - trunc(0.975) - 0); keeping the whole expression in
// fixed-point yields 62 (63 - 0.975 = 62.025, converted once at the end).
func TestMLFQSRecalculatePriorityConvertsOnce(t *testing.T) {
	m := newMLFQSReady()
	k := New(WithMLFQS(true))
	k.Init("main", PriDefault)
	th := newThread(k, k.allocTID(), "t", PriDefault)

	th.recentCPU = FixedFromInt(39).DivInt(10) // 3.9, so recent_cpu/4 = 0.975
	th.nice = 0

	m.recalculatePriority(th)
	require.Equal(t, 62, th.basePriority)
}

func TestMLFQSRecalculatePriorityClampsToRange(t *testing.T) {
	m := newMLFQSReady()
	k := New(WithMLFQS(true))
	k.Init("main", PriDefault)

	high := newThread(k, k.allocTID(), "high", PriDefault)
	high.recentCPU = FixedFromInt(0)
	high.nice = NiceMin
	m.recalculatePriority(high)
	require.Equal(t, PriMax, high.basePriority)

	low := newThread(k, k.allocTID(), "low", PriDefault)
	low.recentCPU = FixedFromInt(1000)
	low.nice = NiceMax
	m.recalculatePriority(low)
	require.Equal(t, PriMin, low.basePriority)
}

func TestMLFQSSwitchQueueMovesReadyThread(t *testing.T) {
	m := newMLFQSReady()
	k := New(WithMLFQS(true))
	k.Init("main", PriDefault)
	th := newThread(k, k.allocTID(), "t", 20)
	th.state = Ready
	m.insert(th)
	require.Equal(t, 20, th.queueIndex)

	th.basePriority = 40
	m.switchQueue(th)
	require.Equal(t, 40, th.queueIndex)
	require.True(t, m.queues[20].empty())
	require.False(t, m.queues[40].empty())
}

func TestReadyCountExcludesIdle(t *testing.T) {
	k := newTestKernel(WithMLFQS(true))
	require.Equal(t, 1, readyCount(k), "only the running main thread counts, idle excluded")
}

func TestMLFQSOnTickAdvancesRecentCPUOfRunningThread(t *testing.T) {
	k := New(WithMLFQS(true))
	main := k.Init("main", PriDefault)
	m := k.ready.(*mlfqsReady)

	m.onTick(k, main, 1)
	require.Equal(t, FixedFromInt(1), main.recentCPU)

	m.onTick(k, main, 2)
	require.Equal(t, FixedFromInt(2), main.recentCPU)
}

func TestMLFQSOnTickSkipsIdle(t *testing.T) {
	k := New(WithMLFQS(true))
	k.Init("main", PriDefault)
	k.Start()
	m := k.ready.(*mlfqsReady)

	before := k.idle.recentCPU
	m.onTick(k, k.idle, 1)
	require.Equal(t, before, k.idle.recentCPU)
}

func TestMLFQSRecalculateLoadAvgFormula(t *testing.T) {
	k := newTestKernel(WithMLFQS(true))
	m := k.ready.(*mlfqsReady)
	k.loadAvg = 0

	m.recalculateLoadAvg(k)

	// load_avg = (59/60)*0 + (1/60)*readyCount(1) = 1/60
	want := FixedFromInt(1).DivInt(60)
	require.Equal(t, want, k.loadAvg)
}
