// Package inputs reads and validates the action inputs passed by the workflow.
package inputs

import (
	"strings"

	"github.com/spf13/viper"
)

// Source looks up raw input values by input name (e.g. "api-key").
// Missing inputs are returned as the empty string.
type Source interface {
	Get(name string) string
}

// EnvSource reads inputs the way the runner passes them to container actions:
// INPUT_<NAME> with the name upper-cased and spaces replaced by underscores.
// Hyphens are kept by the runner; INPUT_API_KEY is also accepted for api-key
// since dotenv files and most shells cannot set hyphenated names.
type EnvSource struct {
	v *viper.Viper
}

// NewEnvSource creates a Source backed by the process environment.
func NewEnvSource() *EnvSource {
	v := viper.New()
	v.SetEnvPrefix("INPUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(" ", "_"))
	v.AutomaticEnv()
	return &EnvSource{v: v}
}

// Get returns the trimmed value of the named input.
func (s *EnvSource) Get(name string) string {
	if strings.Contains(name, "-") {
		upper := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
		_ = s.v.BindEnv(name, upper, strings.ReplaceAll(upper, "-", "_"))
	}
	return strings.TrimSpace(s.v.GetString(name))
}

// MapSource is a Source backed by a plain map. Used for CLI flag overrides and tests.
type MapSource map[string]string

// Get returns the trimmed value of the named input.
func (m MapSource) Get(name string) string {
	return strings.TrimSpace(m[name])
}

// Layered returns a Source that consults each source in order and returns the
// first non-empty value.
func Layered(sources ...Source) Source {
	return layered(sources)
}

type layered []Source

func (l layered) Get(name string) string {
	for _, s := range l {
		if s == nil {
			continue
		}
		if v := s.Get(name); v != "" {
			return v
		}
	}
	return ""
}
