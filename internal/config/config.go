// Package config handles the CLI's optional TOML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the optional document a compile's extra bindings and compiler
// flags may be supplied from, as an alternative to setting them in Go code.
type Config struct {
	// Bindings are installed into the script's namespace by name, exactly
	// like a caller-supplied extraBindings map.
	Bindings map[string]any `toml:"bindings"`

	// Deployable, when true, is equivalent to the script itself calling
	// $("deployable", true) - set here so a CLI invocation can request
	// deployment wrapping without editing the script.
	Deployable bool `toml:"deployable"`
}

// Load parses a TOML document at path into a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("evmscript: cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("evmscript: parse error in %s: %w", path, err)
	}
	if c.Bindings == nil {
		c.Bindings = make(map[string]any)
	}
	return &c, nil
}

// ExtraBindings returns a copy of Bindings, suitable for passing straight
// to Preprocess.
func (c *Config) ExtraBindings() map[string]any {
	out := make(map[string]any, len(c.Bindings))
	for k, v := range c.Bindings {
		out[k] = v
	}
	return out
}

// DeployablePrelude returns the statement the CLI prepends to a script's
// source when Deployable is set from config rather than by the script
// itself calling $("deployable", true) - the config file's only lever
// into the runtime context, since that context lives inside one
// evmscript.Preprocess call and isn't otherwise reachable from outside
// the script.
func (c *Config) DeployablePrelude() string {
	if !c.Deployable {
		return ""
	}
	return `$("deployable", true);` + "\n"
}
