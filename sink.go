package blocklog

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink is a destination for rendered log text. It matches
// zerolog.LevelWriter so caller-supplied sinks can be attached verbatim.
type Sink interface {
	io.Writer
	WriteLevel(level zerolog.Level, p []byte) (n int, err error)
}

// blockWriter decodes an event, enforces its own severity threshold and
// writes the rendered report to its destination.
type blockWriter struct {
	out       io.Writer
	fmtr      *Formatter
	threshold zerolog.Level
}

func (w *blockWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w *blockWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level != zerolog.NoLevel && level < w.threshold {
		return len(p), nil
	}
	rec, err := decodeRecord(p)
	if err != nil {
		// Not an event payload; pass it through untouched.
		return w.out.Write(p)
	}
	if _, err := io.WriteString(w.out, w.fmtr.Format(rec)+"\n"); err != nil {
		return 0, err
	}
	return len(p), nil
}

func newConsoleSink(f *Formatter, level zerolog.Level) Sink {
	return &blockWriter{out: os.Stderr, fmtr: f, threshold: level}
}

// WrapSink adapts a caller-supplied destination to the sink contract. A
// value that already satisfies Sink is attached verbatim; a plain
// io.Writer gets block formatting and the effective threshold; nil is
// skipped by returning nil.
func WrapSink(w io.Writer, f *Formatter, level zerolog.Level) Sink {
	if w == nil {
		return nil
	}
	if s, ok := w.(Sink); ok {
		return s
	}
	return &blockWriter{out: w, fmtr: f, threshold: level}
}

// FileSink writes rendered reports to <dir>/logs.log, rotating at each
// daily boundary and retaining at most 14 rotated files. Rotation and
// retention are delegated to lumberjack, whose rename-on-rotate is atomic
// with respect to concurrent writers.
type FileSink struct {
	blockWriter
	roller *lumberjack.Logger

	mu  sync.Mutex
	day string
}

func newFileSink(f *Formatter, level zerolog.Level, dir string) (*FileSink, error) {
	const op smerrors.Op = "blocklog.newFileSink"
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, smerrors.New(op).Err(err).Msg(errMsgLogDirCreate)
	}
	roller := &lumberjack.Logger{
		Filename:   filepath.Join(dir, logFileName),
		MaxBackups: logFileMaxBackups,
		LocalTime:  true,
	}
	fs := &FileSink{
		blockWriter: blockWriter{out: roller, fmtr: f, threshold: level},
		roller:      roller,
	}
	// A log file carried over from an earlier run keeps its writing day,
	// so the first write of a later day rotates it instead of appending.
	if info, err := os.Stat(roller.Filename); err == nil {
		fs.day = info.ModTime().Format(dayFormat)
	}
	return fs, nil
}

func (s *FileSink) Write(p []byte) (int, error) {
	return s.WriteLevel(zerolog.NoLevel, p)
}

func (s *FileSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	s.rotateIfNewDay()
	return s.blockWriter.WriteLevel(level, p)
}

// Rotate closes the active file and starts a fresh one, retiring the
// oldest backup beyond the retention count. Useful from a SIGHUP handler.
func (s *FileSink) Rotate() error {
	return s.roller.Rotate()
}

// Close closes the underlying file. The sink must not be written after.
func (s *FileSink) Close() error {
	return s.roller.Close()
}

// Filename returns the path of the active log file.
func (s *FileSink) Filename() string {
	return s.roller.Filename
}

func (s *FileSink) rotateIfNewDay() {
	day := time.Now().Format(dayFormat)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.day == emptyString {
		s.day = day
		return
	}
	if day != s.day {
		s.day = day
		_ = s.roller.Rotate()
	}
}
