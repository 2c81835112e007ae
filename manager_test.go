package blocklog

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threadSafeBuffer guards a bytes.Buffer for use as a concurrent sink
// destination in tests.
type threadSafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *threadSafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// bufferedOptions routes all output to a fresh buffer, with both
// standard sinks disabled.
func bufferedOptions() (*Options, *threadSafeBuffer) {
	buf := &threadSafeBuffer{}
	opts := DefaultOptions()
	opts.Console = false
	opts.File = false
	opts.ExtraSinks = []io.Writer{buf}
	return opts, buf
}

func newDevManager() *Manager {
	m := NewManager()
	m.Env = staticEnv{value: "dev"}
	return m
}

func TestSetup_Errors(t *testing.T) {
	t.Run("nil manager", func(t *testing.T) {
		var m *Manager
		err := m.Setup("Svc", "svc", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgNilManager)
	})

	t.Run("empty target", func(t *testing.T) {
		err := newDevManager().Setup("Svc", "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgEmptyTarget)
	})

	t.Run("empty identifier", func(t *testing.T) {
		opts, _ := bufferedOptions()
		err := newDevManager().Setup("", "svc", opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgEmptyIdentifier)
	})

	t.Run("invalid level option", func(t *testing.T) {
		opts, _ := bufferedOptions()
		opts.Level = "loudest"
		err := newDevManager().Setup("Svc", "svc", opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgOptionsInvalid)
	})

	t.Run("uncreatable log directory fails setup", func(t *testing.T) {
		base := t.TempDir()
		blocker := filepath.Join(base, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

		opts := DefaultOptions()
		opts.Console = false
		opts.LogDir = filepath.Join(blocker, "denied")
		err := newDevManager().Setup("Svc", "svc", opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgFileSink)
	})
}

func TestSetup_FileLogging(t *testing.T) {
	tmp := t.TempDir()
	m := newDevManager()

	opts := DefaultOptions()
	opts.Console = false
	opts.LogDir = tmp
	require.NoError(t, m.Setup("Svc", "svc", opts))

	m.GetLogger("svc").Info().Str("user", "alice").Msg("hello file")

	content, err := os.ReadFile(filepath.Join(tmp, logsSubdirName, logFileName))
	require.NoError(t, err)
	text := string(content)

	// Bootstrap records come first and double as a smoke test.
	assert.Contains(t, text, "LOGGER LEVEL: DEBUG")
	assert.Contains(t, text, "LOG DIRECTORY: "+filepath.Join(tmp, logsSubdirName))
	assert.Contains(t, text, "hello file")
	assert.Contains(t, text, "User:\n\talice")
	assert.Contains(t, text, "[Svc][svc]")
}

func TestSetup_LevelResolution(t *testing.T) {
	t.Run("environment unset means the verbose default", func(t *testing.T) {
		clearEnvironmentAliases(t)
		m := NewManager() // reads the process environment
		assert.Equal(t, zerolog.DebugLevel, m.ResolveLevel(nil))
	})

	t.Run("production environment means info", func(t *testing.T) {
		clearEnvironmentAliases(t)
		t.Setenv("ENVIRONMENT", "prod")
		m := NewManager()
		assert.Equal(t, zerolog.InfoLevel, m.ResolveLevel(nil))
	})

	t.Run("explicit override beats the environment", func(t *testing.T) {
		m := NewManager()
		m.Env = staticEnv{value: "prod"}
		opts := DefaultOptions()
		opts.Level = "warn"
		assert.Equal(t, zerolog.WarnLevel, m.ResolveLevel(opts))
	})

	t.Run("resolution is repeatable", func(t *testing.T) {
		m := newDevManager()
		assert.Equal(t, m.ResolveLevel(nil), m.ResolveLevel(nil))
	})

	t.Run("conservative level suppresses the directory record", func(t *testing.T) {
		m := NewManager()
		m.Env = staticEnv{err: io.ErrUnexpectedEOF} // verbosity cannot be determined
		opts, buf := bufferedOptions()
		require.NoError(t, m.Setup("Svc", "svc", opts))

		assert.Contains(t, buf.String(), "LOGGER LEVEL: FATAL")
		assert.NotContains(t, buf.String(), "LOG DIRECTORY:")
	})
}

func TestSetup_DirectoryResolution(t *testing.T) {
	t.Run("explicit dir wins and no warning is emitted", func(t *testing.T) {
		m := newDevManager()
		opts, buf := bufferedOptions()
		opts.LogDir = t.TempDir()
		require.NoError(t, m.Setup("Svc", "svc", opts))

		assert.Contains(t, buf.String(), "LOG DIRECTORY: "+filepath.Join(opts.LogDir, logsSubdirName))
		assert.NotContains(t, buf.String(), "defaulting logs directory")
	})

	t.Run("caller dir is used when no explicit dir is given", func(t *testing.T) {
		m := newDevManager()
		opts, buf := bufferedOptions()
		opts.CallerDir = t.TempDir()
		require.NoError(t, m.Setup("Svc", "svc", opts))

		assert.Contains(t, buf.String(), "LOG DIRECTORY: "+filepath.Join(opts.CallerDir, logsSubdirName))
		assert.NotContains(t, buf.String(), "defaulting logs directory")
	})

	t.Run("fallback warns but never fails", func(t *testing.T) {
		m := newDevManager()
		opts, buf := bufferedOptions()
		require.NoError(t, m.Setup("Svc", "svc", opts))

		assert.Contains(t, buf.String(), "defaulting logs directory to ")
	})
}

func TestCallerDir(t *testing.T) {
	dir := CallerDir()
	require.NotEmpty(t, dir)
	assert.True(t, filepath.IsAbs(dir))
}

func TestSetup_UserAuthRendering(t *testing.T) {
	m := newDevManager()
	opts, buf := bufferedOptions()
	require.NoError(t, m.Setup("Svc", "svc", opts))

	m.GetLogger("svc").Info().
		Str("user", "alice").
		Str("auth_info", "token-1").
		Msg("signed in")

	assert.Contains(t, buf.String(), "User:\n\talice\n\n\tAuth Info:\n\t\ttoken-1\n")
}

func TestSetup_ExceptionRendering(t *testing.T) {
	m := newDevManager()
	opts, buf := bufferedOptions()
	require.NoError(t, m.Setup("Svc", "svc", opts))

	inner := smerrors.New(smerrors.Op("db.Connect")).Msg("connection refused")
	outer := smerrors.New(smerrors.Op("server.Start")).Err(inner).Msg("startup failed")

	m.GetLogger("svc").Error().Err(outer).Msg("boom")

	out := buf.String()
	assert.Contains(t, out, "Function Name:\n\t")
	assert.Contains(t, out, "TestSetup_ExceptionRendering")
	assert.Contains(t, out, "Exception Details:")
	assert.Contains(t, out, "startup failed")
	assert.Contains(t, out, "connection refused")
	// The exception block is never blank-line terminated.
	assert.False(t, strings.HasSuffix(out, "\n\n"))
}

func TestSetup_AdditiveReconfiguration(t *testing.T) {
	m := newDevManager()

	opts := DefaultOptions()
	opts.File = false
	require.NoError(t, m.Setup("Svc", "svc", opts))
	require.NoError(t, m.Setup("Svc", "svc", opts))

	// Two console sinks, independently attached; nothing deduplicates.
	assert.Equal(t, 2, m.reg.sinkCount("svc"))
}

func TestSetup_ExtraSinks(t *testing.T) {
	m := newDevManager()

	opts, buf := bufferedOptions()
	second := &threadSafeBuffer{}
	opts.ExtraSinks = append(opts.ExtraSinks, nil, second) // nils silently skipped
	require.NoError(t, m.Setup("Svc", "svc", opts))

	m.GetLogger("svc").Info().Msg("fanned out")

	assert.Contains(t, buf.String(), "fanned out")
	assert.Contains(t, second.String(), "fanned out")
	assert.Equal(t, 2, m.reg.sinkCount("svc"))
}

func TestPackageLevelSetup(t *testing.T) {
	opts, buf := bufferedOptions()
	require.NoError(t, Setup("Pkg", "pkgtest.svc", opts))

	GetLogger("pkgtest.svc").Info().Msg("via default manager")
	assert.Contains(t, buf.String(), "via default manager")
}

func TestOptionsFromFile(t *testing.T) {
	t.Run("overlays defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logging.yaml")
		require.NoError(t, os.WriteFile(path, []byte("level: warn\nconsole: false\n"), 0o600))

		opts, err := OptionsFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", opts.Level)
		assert.False(t, opts.Console)
		assert.True(t, opts.File)      // untouched default
		assert.True(t, opts.Propagate) // untouched default
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := OptionsFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgOptionsRead)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("level: [unclosed"), 0o600))

		_, err := OptionsFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgOptionsParse)
	})
}
