package threads

// KernelOption configures a Kernel at construction time, in the functional
// options style.
type KernelOption func(*config)

type config struct {
	mlfqs         bool
	logger        Logger
	pageAllocator PageAllocator
	timerFreq     int
	timeSlice     int
}

func resolveKernelOptions(opts []KernelOption) config {
	c := config{
		logger:        NopLogger{},
		pageAllocator: newArenaPageAllocator(),
		timerFreq:     TimerFreq,
		timeSlice:     TimeSlice,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithMLFQS selects the multi-level feedback queue scheduler instead of
// priority round-robin with donation. This is the Go analog of the "-o
// mlfqs" boot command-line token; it is latched once Kernel.Init runs.
func WithMLFQS(enabled bool) KernelOption {
	return func(c *config) { c.mlfqs = enabled }
}

// WithLogger installs a Logger. The default is NopLogger.
func WithLogger(l Logger) KernelOption {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPageAllocator installs a PageAllocator. The default is an in-memory
// arena allocator sized generously for simulation purposes.
func WithPageAllocator(a PageAllocator) KernelOption {
	return func(c *config) {
		if a != nil {
			c.pageAllocator = a
		}
	}
}

// WithTimerFreq overrides TIMER_FREQ (ticks per simulated second), mainly
// useful to shrink MLFQS-decay tests from real seconds to a handful of
// ticks.
func WithTimerFreq(hz int) KernelOption {
	return func(c *config) {
		if hz > 0 {
			c.timerFreq = hz
		}
	}
}

// WithTimeSlice overrides TIME_SLICE (ticks between enforced preemptions).
func WithTimeSlice(ticks int) KernelOption {
	return func(c *config) {
		if ticks > 0 {
			c.timeSlice = ticks
		}
	}
}
