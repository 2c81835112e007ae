package blocklog

import (
	"io"
	"os"

	smerrors "github.com/Station-Manager/errors"
	"gopkg.in/yaml.v3"
)

// Options controls one Setup call. Every field is optional and
// independently defaulted; the zero value of DefaultOptions enables both
// standard sinks and ancestor propagation.
type Options struct {
	// Level overrides the environment-derived verbosity when non-empty.
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic"`

	// LogDir is the explicit base directory for file logging. The fixed
	// _logs subdirectory is always joined onto it.
	LogDir string `yaml:"log_dir"`

	// CallerDir is the caller-supplied location used to infer the log
	// directory when LogDir is empty. See CallerDir().
	CallerDir string `yaml:"-"`

	// TimeFormat overrides the header timestamp layout.
	TimeFormat string `yaml:"time_format"`

	Propagate bool `yaml:"propagate"`
	Console   bool `yaml:"console"`
	File      bool `yaml:"file"`

	// ExtraSinks are attached alongside the standard sinks. Values that
	// already satisfy Sink are attached verbatim, plain writers get block
	// formatting, nils are skipped.
	ExtraSinks []io.Writer `yaml:"-" validate:"-"`
}

// DefaultOptions returns the options Setup assumes when given nil.
func DefaultOptions() *Options {
	return &Options{
		Propagate: true,
		Console:   true,
		File:      true,
	}
}

// OptionsFromFile loads Options from a YAML file, overlaying the
// defaults so omitted keys keep their default values.
func OptionsFromFile(path string) (*Options, error) {
	const op smerrors.Op = "blocklog.OptionsFromFile"
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, smerrors.New(op).Err(err).Msg(errMsgOptionsRead)
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(raw, opts); err != nil {
		return nil, smerrors.New(op).Err(err).Msg(errMsgOptionsParse)
	}
	return opts, nil
}
