package threads

import (
	"errors"
	"fmt"
)

// Resource-exhaustion and invalid-argument sentinels. These are normal
// return values, inspectable with errors.Is, never panics: the caller's
// state is unchanged when one of these is returned.
var (
	ErrNoPages         = errors.New("threads: page allocator exhausted")
	ErrInvalidPriority = errors.New("threads: priority out of range")
	ErrInvalidNice     = errors.New("threads: nice out of range")
)

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}

// ContractViolation is the panic value raised when the kernel detects a
// broken invariant: a contract breach that can only mean a bug in the
// caller or the kernel itself, never a condition to recover from.
type ContractViolation struct {
	Message  string
	ThreadID ThreadID
	Name     string
}

func (e *ContractViolation) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("contract violation (thread %d %q): %s", e.ThreadID, e.Name, e.Message)
	}
	return fmt.Sprintf("contract violation: %s", e.Message)
}

// assert panics with a *ContractViolation when cond is false. Used for
// unblock of a non-blocked thread, block/yield/exit from interrupt
// context, and corrupted magic (stack overflow). An out-of-range priority
// or nice value is not asserted: it is returned as ErrInvalidPriority or
// ErrInvalidNice.
func assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(&ContractViolation{Message: fmt.Sprintf(format, args...)})
}

func assertThread(cond bool, t *Thread, format string, args ...any) {
	if cond {
		return
	}
	v := &ContractViolation{Message: fmt.Sprintf(format, args...)}
	if t != nil {
		v.ThreadID = t.ID
		v.Name = t.Name
	}
	panic(v)
}
