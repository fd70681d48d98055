// Package threads implements the thread control block, scheduler, and
// synchronization primitives of a small preemptive kernel. It models a
// single logical CPU: exactly one thread's user code runs at a time, and
// every mutation of scheduler state happens under the interrupt gate.
//
// Two interchangeable ready-selection policies are supported: priority
// round-robin with donation (the default) and a multi-level feedback
// queue scheduler (MLFQS), selected once at boot via WithMLFQS and never
// switched at runtime.
package threads
