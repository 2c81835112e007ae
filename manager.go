package blocklog

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// Manager resolves verbosity and the log directory, builds sinks and
// attaches them to a named logger. It holds no per-setup state; every
// Setup call computes its own immutable configuration, so concurrent
// setups for different identifiers are safe.
type Manager struct {
	// Env supplies the current environment string. Nil falls back to the
	// process environment.
	Env EnvironmentResolver

	reg *registry
}

// NewManager returns a Manager with its own logger registry, reading the
// process environment.
func NewManager() *Manager {
	return &Manager{Env: OSEnvironment{}, reg: newRegistry()}
}

var std = NewManager()

// Setup configures the named logger on the package-level manager.
func Setup(identifier, target string, opts *Options) error {
	return std.Setup(identifier, target, opts)
}

// GetLogger returns the current logger for the given name from the
// package-level manager.
func GetLogger(name string) *zerolog.Logger {
	return std.GetLogger(name)
}

var zerologSetupOnce sync.Once

// configureZerolog installs the process-wide zerolog tuning the sinks
// rely on: RFC3339 timestamps, caller rendered as the originating
// function, and errors serialized with their full cause chain.
func configureZerolog() {
	zerologSetupOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
			if fn := runtime.FuncForPC(pc); fn != nil {
				return fn.Name()
			}
			return file + ":" + strconv.Itoa(line)
		}
		zerolog.ErrorMarshalFunc = func(err error) interface{} {
			if info := marshalErrorInfo(err); info != nil {
				return info
			}
			return err
		}
	})
}

// Setup computes the effective level and log directory, constructs the
// requested sinks bound to a formatter carrying the identifier, attaches
// them to the logger named by target and emits the bootstrap records.
//
// Level and directory resolution always degrade to a usable default;
// the only fatal conditions are an empty identifier or target, invalid
// options, and a sink that cannot be constructed. Re-invoking Setup for
// the same target is additive: sinks accumulate, nothing deduplicates.
func (m *Manager) Setup(identifier, target string, opts *Options) error {
	const op smerrors.Op = "blocklog.Setup"
	if m == nil {
		return smerrors.New(op).Msg(errMsgNilManager)
	}
	if target == emptyString {
		return smerrors.New(op).Msg(errMsgEmptyTarget)
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validateOptions(opts); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgOptionsInvalid)
	}

	fmtr, err := NewFormatter(identifier)
	if err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgEmptyIdentifier)
	}
	if opts.TimeFormat != emptyString {
		fmtr.TimeFormat = opts.TimeFormat
	}

	configureZerolog()

	level := m.resolveLevel(opts)
	dir, located := resolveLogDir(opts)

	var sinks []Sink
	if opts.Console {
		sinks = append(sinks, newConsoleSink(fmtr, level))
	}
	if opts.File {
		fs, err := newFileSink(fmtr, level, dir)
		if err != nil {
			return smerrors.New(op).Err(err).Msg(errMsgFileSink)
		}
		sinks = append(sinks, fs)
	}
	for _, w := range opts.ExtraSinks {
		if s := WrapSink(w, fmtr, level); s != nil {
			sinks = append(sinks, s)
		}
	}

	lg := m.reg.attach(target, sinks, level, opts.Propagate)

	// The bootstrap records double as a smoke test that the sinks are
	// wired. WithLevel logs at the highest severity without exiting.
	lg.WithLevel(zerolog.FatalLevel).Msg("LOGGER LEVEL: " + strings.ToUpper(level.String()))
	lg.Info().Msg("LOG DIRECTORY: " + dir)
	if !located {
		lg.Warn().Msg("failed to locate a caller directory; defaulting logs directory to " + dir)
	}
	return nil
}

// GetLogger returns the current logger for name, creating an
// unconfigured one when nothing has been attached yet.
func (m *Manager) GetLogger(name string) *zerolog.Logger {
	return m.reg.get(name)
}

// ResolveLevel reports the verbosity Setup would choose for the given
// options without attaching anything. Resolution is pure: calling it
// twice against an unchanged environment yields the same level.
func (m *Manager) ResolveLevel(opts *Options) zerolog.Level {
	if opts == nil {
		opts = DefaultOptions()
	}
	return m.resolveLevel(opts)
}

func (m *Manager) resolveLevel(opts *Options) zerolog.Level {
	if opts.Level != emptyString {
		if level, err := parseLevel(opts.Level); err == nil {
			return level
		}
	}
	env := m.Env
	if env == nil {
		env = OSEnvironment{}
	}
	return levelFromEnvironment(env)
}

// resolveLogDir picks the base directory for file logging: the explicit
// override first, then the caller-supplied location, then the working
// directory. The fixed _logs subdirectory is always joined on. The
// second return reports whether a real location was found; the fallback
// case is worth a warning but never fails setup.
func resolveLogDir(opts *Options) (string, bool) {
	base := opts.LogDir
	if base == emptyString {
		base = opts.CallerDir
	}
	if base == emptyString {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		return filepath.Join(wd, logsSubdirName), false
	}
	if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}
	return filepath.Join(base, logsSubdirName), true
}

// CallerDir returns the directory of the immediate caller's source file.
// Pass the result in Options.CallerDir to group log files with the
// package that configured them, without any stack walking inside Setup.
func CallerDir() string {
	if _, file, _, ok := runtime.Caller(1); ok {
		return filepath.Dir(file)
	}
	return emptyString
}

// parseLevel parses a string log level into a zerolog.Level.
// Returns zerolog.NoLevel and an error if parsing fails.
func parseLevel(level string) (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}
