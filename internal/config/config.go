// Package config resolves norflash's CLI flags through Viper, giving the
// CLI surface a config-file default for --chip/--programmer
// alongside the usual flag/env overrides, and parses the comma-separated
// --programmer <name>[:<params>] syntax into a typed ProgrammerSpec.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ProgrammerSpec is the parsed form of --programmer <name>[:<k=v>,...].
type ProgrammerSpec struct {
	Name   string
	Params map[string]string
}

// ParseProgrammerSpec parses "name" or "name:k=v,k2=v2" into a ProgrammerSpec.
func ParseProgrammerSpec(s string) (ProgrammerSpec, error) {
	if s == "" {
		return ProgrammerSpec{}, fmt.Errorf("empty programmer spec")
	}

	name, rest, hasParams := strings.Cut(s, ":")
	spec := ProgrammerSpec{Name: name, Params: map[string]string{}}
	if !hasParams || rest == "" {
		return spec, nil
	}

	for _, kv := range strings.Split(rest, ",") {
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			// Bare flag-style parameter (e.g. "programmer:noreset"), stored with empty value.
			spec.Params[k] = ""
			continue
		}
		spec.Params[k] = v
	}
	return spec, nil
}

// Config is the resolved set of persistent settings, layered: flags override
// environment, which overrides an optional config file, which overrides
// builtin defaults.
type Config struct {
	v *viper.Viper
}

// New builds a Config bound to cmd's persistent flags. configFile may be
// empty, in which case only defaults/env/flags apply.
func New(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NORFLASH")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
			}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// ChipName returns the resolved --chip value.
func (c *Config) ChipName() string { return c.v.GetString("chip") }

// Programmer returns the resolved, parsed --programmer value.
func (c *Config) Programmer() (ProgrammerSpec, error) {
	return ParseProgrammerSpec(c.v.GetString("programmer"))
}

// GetString reads an arbitrary resolved string setting.
func (c *Config) GetString(key string) string { return c.v.GetString(key) }

// GetBool reads an arbitrary resolved boolean setting.
func (c *Config) GetBool(key string) bool { return c.v.GetBool(key) }

// GetInt reads an arbitrary resolved integer setting.
func (c *Config) GetInt(key string) int { return c.v.GetInt(key) }
