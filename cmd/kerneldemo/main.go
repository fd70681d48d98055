// Command kerneldemo drives the scheduler core through a handful of
// scenarios, printing what happens at each step:
//   - round-robin among equal-priority threads
//   - priority preempt on create
//   - priority donation through a contended lock
//   - sleep/wake ordering
//
// Run with: go run ./cmd/kerneldemo/
package main

import (
	"fmt"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/soluwalana/cs140/threads"
)

func main() {
	logger := threads.NewLogifaceLogger(os.Stdout, logiface.LevelInformational)
	k := threads.New(threads.WithLogger(logger))
	k.Init("main", threads.PriDefault)
	k.Start()

	roundRobinDemo(k)
	preemptOnCreateDemo(k)
	donationDemo(k)
	sleepDemo(k)

	k.PrintStats()
}

func roundRobinDemo(k *threads.Kernel) {
	fmt.Println("--- round-robin among equal-priority threads ---")
	var done int
	for _, name := range []string{"A", "B", "C"} {
		name := name
		_, err := k.Create(name, threads.PriDefault, func(any) {
			for i := 0; i < 2; i++ {
				fmt.Printf("%s\n", name)
				k.Yield()
			}
			done++
			k.Exit()
		}, nil)
		if err != nil {
			panic(err)
		}
	}
	for done < 3 {
		k.Yield()
	}
}

func preemptOnCreateDemo(k *threads.Kernel) {
	fmt.Println("--- priority preempt on create ---")
	_, err := k.Create("urgent", threads.PriDefault+10, func(any) {
		fmt.Println("hi, printed before thread_create returns")
		k.Exit()
	}, nil)
	if err != nil {
		panic(err)
	}
}

func donationDemo(k *threads.Kernel) {
	fmt.Println("--- priority donation ---")
	if err := k.SetPriority(10); err != nil {
		panic(err)
	}

	l := threads.NewLock(k)
	l.Acquire()

	_, err := k.Create("waiter", 30, func(any) {
		l.Acquire()
		fmt.Println("waiter acquired the lock")
		l.Release()
		k.Exit()
	}, nil)
	if err != nil {
		panic(err)
	}
	fmt.Printf("donated priority: %d\n", k.GetPriority())

	l.Release()
	k.Yield()

	if err := k.SetPriority(threads.PriDefault); err != nil {
		panic(err)
	}
}

func sleepDemo(k *threads.Kernel) {
	fmt.Println("--- sleep/wake ordering ---")
	start := k.Ticks()
	var woke int

	// Each sleeper is created above main's priority so it preempts and
	// calls SleepUntil immediately, landing on the sleep queue before the
	// next is even created. Durations are listed out of order (30, 10, 20)
	// to show the wakeups come back sorted by wake tick, not creation
	// order.
	for i, d := range []int64{30, 10, 20} {
		d := d
		_, err := k.Create("sleeper", threads.PriDefault+1+i, func(any) {
			k.SleepUntil(start + d)
			fmt.Printf("woke after %d ticks\n", d)
			woke++
			k.Exit()
		}, nil)
		if err != nil {
			panic(err)
		}
	}

	req := make(chan struct{})
	done := make(chan struct{})
	stop := make(chan struct{})
	go func() {
		k.MarkTimerGoroutine()
		for range req {
			k.Tick()
			done <- struct{}{}
		}
		close(stop)
	}()
	for i := 0; i < 31; i++ {
		req <- struct{}{}
		<-done
		k.MaybeYield() // dispatch any sleeper woken by this tick
	}
	close(req)
	<-stop
	k.Yield()
}
