package threads

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitPromotesCallingGoroutine(t *testing.T) {
	k := New()
	main := k.Init("main", PriDefault)

	require.Equal(t, Running, main.State())
	require.Equal(t, main, k.Current())
}

func TestStartLaunchesIdleAndReturnsToInitial(t *testing.T) {
	k := New()
	main := k.Init("main", PriDefault)
	k.Start()

	require.Equal(t, main, k.Current(), "Start hands control straight back to main once idle parks itself")
	require.NotNil(t, k.idle)
	require.Equal(t, Blocked, k.idle.State())
}

func TestNameAndTidReportCurrentThread(t *testing.T) {
	k := newTestKernel()
	require.Equal(t, "main", k.Name())
	require.Equal(t, k.Current().ID, k.Tid())
}

func TestCreateTruncatesLongName(t *testing.T) {
	k := newTestKernel()
	th, err := k.Create("a-name-well-beyond-the-limit", PriDefault-1, func(any) {
		k.Exit()
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "a-name-well-bey", th.Name)
	require.Len(t, th.Name, 15)
}

func TestCreateRejectsOutOfRangePriority(t *testing.T) {
	k := newTestKernel()
	_, err := k.Create("bad", PriMax+1, func(any) {}, nil)
	require.ErrorIs(t, err, ErrInvalidPriority)
}

func TestCreatePreemptsWhenHigherPriority(t *testing.T) {
	k := newTestKernel()
	var ran bool
	_, err := k.Create("urgent", PriDefault+10, func(any) {
		ran = true
		k.Exit()
	}, nil)
	require.NoError(t, err)
	require.True(t, ran, "a strictly higher priority thread preempts its creator immediately")
}

func TestCreateDoesNotPreemptOnEqualPriority(t *testing.T) {
	k := newTestKernel()
	var ran bool
	_, err := k.Create("peer", PriDefault, func(any) {
		ran = true
		k.Exit()
	}, nil)
	require.NoError(t, err)
	require.False(t, ran, "equal priority never preempts at create time")

	k.Yield()
	require.True(t, ran)
}

func TestForEachVisitsEveryThread(t *testing.T) {
	k := newTestKernel()
	_, err := k.Create("other", PriDefault-1, func(any) {
		k.Block()
	}, nil)
	require.NoError(t, err)

	var names []string
	lvl := k.gate.disable()
	k.ForEach(func(th *Thread) { names = append(names, th.Name) })
	k.gate.restore(lvl)

	require.Contains(t, names, "main")
	require.Contains(t, names, "idle")
	require.Contains(t, names, "other")
}

func TestIsAliveReflectsMembership(t *testing.T) {
	k := newTestKernel()
	th, err := k.Create("short", PriDefault+1, func(any) {
		k.Exit()
	}, nil)
	require.NoError(t, err)

	require.False(t, k.IsAlive(th.ID), "short preempted main, ran to completion, and exited within Create")
	require.True(t, k.IsAlive(k.Current().ID))
}

func TestBlockUnblockRoundTrip(t *testing.T) {
	k := newTestKernel()
	var resumed bool
	th, err := k.Create("waiter", PriDefault+1, func(any) {
		k.Block()
		resumed = true
		k.Exit()
	}, nil)
	require.NoError(t, err)
	require.False(t, resumed, "waiter preempted main, ran up to its own Block() call, then parked")
	require.Equal(t, Blocked, th.State())

	k.Unblock(th)
	require.False(t, resumed, "Unblock only readies the thread, it does not itself preempt")
	require.Equal(t, Ready, th.State())

	k.Yield()
	require.True(t, resumed)
}

func TestYieldReturnsImmediatelyWithEmptyReadyList(t *testing.T) {
	k := newTestKernel()
	k.Yield() // nothing else ready besides idle; must not hang
	require.Equal(t, "main", k.Current().Name)
}

func TestPreemptYieldsWhenOutranked(t *testing.T) {
	k := newTestKernel()
	var ran bool
	th, err := k.Create("high", PriDefault+1, func(any) {
		k.Block()
		ran = true
		k.Exit()
	}, nil)
	require.NoError(t, err)
	require.False(t, ran, "high preempted main, ran up to its own Block() call, then parked")

	k.Unblock(th)
	require.False(t, ran, "Unblock alone does not preempt")

	k.Preempt()
	require.True(t, ran, "high now outranks main again, so Preempt must switch to it")
}

func TestExitFreesPageOfPriorThread(t *testing.T) {
	k := newTestKernel()
	_, err := k.Create("ephemeral", PriDefault+5, func(any) {
		k.Exit()
	}, nil)
	require.NoError(t, err)
	// exit cascades back to main within Create's call; reaching here without
	// hanging demonstrates pendingFree was drained by scheduleTail.
	require.Equal(t, "main", k.Current().Name)
}
