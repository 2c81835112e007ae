package blocklog

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// registry is the process-wide set of named loggers the manager attaches
// sinks to. Names form a dotted hierarchy rooted at the empty name;
// states are created lazily so a child can be fetched before its
// ancestors are configured.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*namedLogger
}

// namedLogger holds the per-name logging state: the accumulated sinks
// behind a mutable fan-out, and the currently built zerolog logger.
// Sinks accumulate across attach calls; nothing deduplicates them.
type namedLogger struct {
	name   string
	fan    *fanout
	logger atomic.Pointer[zerolog.Logger]
}

// fanout forwards one event to every attached sink and, when propagation
// is on, up to the ancestor fan-out. Each sink still applies its own
// severity threshold.
type fanout struct {
	mu        sync.RWMutex
	sinks     []Sink
	propagate bool
	parent    *fanout
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*namedLogger)}
}

func (r *registry) state(name string) *namedLogger {
	r.mu.RLock()
	nl, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		return nl
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked(name)
}

func (r *registry) stateLocked(name string) *namedLogger {
	if nl, ok := r.entries[name]; ok {
		return nl
	}
	var parent *fanout
	if name != emptyString {
		parentName := emptyString
		if i := strings.LastIndex(name, "."); i >= 0 {
			parentName = name[:i]
		}
		parent = r.stateLocked(parentName).fan
	}
	nl := &namedLogger{
		name: name,
		fan:  &fanout{propagate: true, parent: parent},
	}
	// Unconfigured names log at trace so events still reach any sinks an
	// ancestor has attached.
	lg := newNamedZerolog(nl.fan, name, zerolog.TraceLevel)
	nl.logger.Store(&lg)
	r.entries[name] = nl
	return nl
}

// attach appends sinks to the named logger's fan-out and rebuilds the
// logger with the effective level and propagation flag. Repeated calls
// are additive.
func (r *registry) attach(name string, sinks []Sink, level zerolog.Level, propagate bool) *zerolog.Logger {
	nl := r.state(name)

	nl.fan.mu.Lock()
	nl.fan.sinks = append(nl.fan.sinks, sinks...)
	nl.fan.propagate = propagate
	nl.fan.mu.Unlock()

	lg := newNamedZerolog(nl.fan, name, level)
	nl.logger.Store(&lg)
	return &lg
}

func (r *registry) get(name string) *zerolog.Logger {
	return r.state(name).logger.Load()
}

func (r *registry) sinkCount(name string) int {
	nl := r.state(name)
	nl.fan.mu.RLock()
	defer nl.fan.mu.RUnlock()
	return len(nl.fan.sinks)
}

func newNamedZerolog(w zerolog.LevelWriter, name string, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().
		Timestamp().
		Caller().
		Str(loggerFieldName, name).
		Logger()
}

func (f *fanout) Write(p []byte) (int, error) {
	return f.WriteLevel(zerolog.NoLevel, p)
}

func (f *fanout) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	f.mu.RLock()
	sinks := f.sinks
	parent, propagate := f.parent, f.propagate
	f.mu.RUnlock()

	var firstErr error
	for _, s := range sinks {
		if _, err := s.WriteLevel(level, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if propagate && parent != nil {
		if _, err := parent.WriteLevel(level, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return len(p), nil
}
