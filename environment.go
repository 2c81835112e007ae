package blocklog

import (
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// EnvironmentResolver supplies the ambient "current environment" string.
// Implementations try each alias in order and return the first bound
// value. The zero resolver used by the package reads the process
// environment; tests substitute their own.
type EnvironmentResolver interface {
	Resolve(aliases ...string) (string, error)
}

// MissingEnvironmentError is returned by Resolve when none of the given
// aliases are bound and no default was supplied by the caller.
type MissingEnvironmentError struct {
	Aliases []string
}

func (e *MissingEnvironmentError) Error() string {
	upper := make([]string, len(e.Aliases))
	for i, a := range e.Aliases {
		upper[i] = strings.ToUpper(a)
	}
	return "the project environment could not be determined; tried " + strings.Join(upper, ", ")
}

// OSEnvironment resolves aliases against the process environment.
// Alias names are upper-cased before lookup.
type OSEnvironment struct{}

func (OSEnvironment) Resolve(aliases ...string) (string, error) {
	for _, alias := range aliases {
		if v, ok := os.LookupEnv(strings.ToUpper(alias)); ok {
			return v, nil
		}
	}
	return emptyString, &MissingEnvironmentError{Aliases: aliases}
}

// IsProduction reports whether the environment value names a
// production-like deployment.
func IsProduction(environment string) bool {
	switch strings.ToLower(environment) {
	case "prod", "production":
		return true
	}
	return false
}

// levelFromEnvironment derives the default verbosity. Production gets
// info; anything else, an unbound environment included, reads as
// non-production and gets debug. A resolver that fails for any other
// reason means the verbosity cannot be determined, and the quietest
// level wins; setup itself never fails on level resolution.
func levelFromEnvironment(env EnvironmentResolver) zerolog.Level {
	value, err := env.Resolve(environmentAliases...)
	if err != nil {
		var missing *MissingEnvironmentError
		if errors.As(err, &missing) {
			return zerolog.DebugLevel
		}
		return zerolog.FatalLevel
	}
	if IsProduction(value) {
		return zerolog.InfoLevel
	}
	return zerolog.DebugLevel
}
