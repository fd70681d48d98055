package threads

import (
	"os"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logging interface consulted by the kernel:
// policy selection at boot, threads crossing DYING, donation chains
// exceeding a warn threshold, and MLFQS recomputation boundaries. It is
// deliberately a handful of leveled methods rather than a single
// event-struct sink, matching the shape of a thread control block's own
// small, fixed set of lifecycle events.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// NopLogger discards everything. It is the default when no logger option
// is supplied, so callers never need to nil-check.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// logifaceLogger adapts logiface's typed, builder-style logger (backed by
// stumpy, the JSON reference Event implementation) to the Logger
// interface. High-frequency debug events (MLFQS recomputation fires every
// 4 ticks) are category rate-limited so a long-running kernel with
// debug-level logging enabled doesn't flood its console.
type logifaceLogger struct {
	l *logiface.Logger[*stumpy.Event]
}

// NewLogifaceLogger builds the default Logger, writing newline-delimited
// JSON to w at minLevel and above, with debug-level events from any single
// caller rate-limited to 20 per second.
func NewLogifaceLogger(w *os.File, minLevel logiface.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	l := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(minLevel),
		stumpy.L.WithCategoryRateLimits(map[time.Duration]int{
			time.Second: 20,
		}),
	)
	return &logifaceLogger{l: l}
}

func fields(b *logiface.Builder[*stumpy.Event], kv []any) *logiface.Builder[*stumpy.Event] {
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		if key == "" {
			continue
		}
		b = b.Any(key, kv[i+1])
	}
	return b
}

func (g *logifaceLogger) Debug(msg string, kv ...any) {
	fields(g.l.Debug().Limit(), kv).Log(msg)
}

func (g *logifaceLogger) Info(msg string, kv ...any) {
	fields(g.l.Info(), kv).Log(msg)
}

func (g *logifaceLogger) Warn(msg string, kv ...any) {
	fields(g.l.Warning(), kv).Log(msg)
}

func (g *logifaceLogger) Error(msg string, kv ...any) {
	fields(g.l.Err(), kv).Log(msg)
}
