package threads

// newTestKernel builds a Kernel, promotes the calling goroutine into the
// initial thread, and starts the idle thread: the common setup shared by
// every test in this package that needs a live scheduler rather than a bare
// data structure.
func newTestKernel(opts ...KernelOption) *Kernel {
	k := New(opts...)
	k.Init("main", PriDefault)
	k.Start()
	return k
}

// newTickDriver starts a dedicated goroutine as the kernel's interrupt
// source (the only goroutine ever allowed to call Tick, per the gate's
// goroutine-identity check) and returns a function that synchronously
// advances exactly one tick, plus a function to retire the goroutine.
// Tests that also call into the kernel from their own goroutine must never
// call Tick directly themselves; it would be indistinguishable, to the
// gate, from calling block/yield from interrupt context.
func newTickDriver(k *Kernel) (tick func(), stop func()) {
	req := make(chan struct{})
	done := make(chan struct{})
	go func() {
		k.MarkTimerGoroutine()
		for range req {
			k.Tick()
			done <- struct{}{}
		}
	}()
	tick = func() {
		req <- struct{}{}
		<-done
	}
	stop = func() { close(req) }
	return tick, stop
}
