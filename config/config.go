/*
Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package config holds kasmc's optional TOML-file configuration,
// grounded on lookbusy1344-arm_emulator/config/config.go: a grouped
// Config struct with toml tags, a DefaultConfig constructor, and a
// Load function that falls back to the defaults when no file is
// present rather than treating a missing config as an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is kasmc's tunable behavior. Everything here has a sensible
// default; a project only needs a kasmc.toml when it wants to deviate.
type Config struct {
	// Memory is loaded and saved with the rest of the file, but nothing
	// passes it on: the parser and code generator use their built-in
	// heap base (0x0200) and scratch addresses (0x0000, 0xFFFE).
	Memory struct {
		HeapBase       uint16 `toml:"heap_base"`
		AddScratch     uint16 `toml:"add_scratch"`
		SysScratch     uint16 `toml:"sys_scratch"`
	} `toml:"memory"`

	Diagnostics struct {
		WarningsAreErrors bool `toml:"warnings_are_errors"`
		Debug             bool `toml:"debug"`
	} `toml:"diagnostics"`

	Output struct {
		EmitStats bool `toml:"emit_stats"`
	} `toml:"output"`
}

// DefaultConfig returns kasmc's built-in defaults (spec §9's reserved
// addresses and heap base, warnings non-fatal, tracing off).
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Memory.HeapBase = 0x0200
	cfg.Memory.AddScratch = 0x0000
	cfg.Memory.SysScratch = 0xFFFE
	cfg.Diagnostics.WarningsAreErrors = false
	cfg.Diagnostics.Debug = false
	cfg.Output.EmitStats = false
	return cfg
}

// Load reads path if it exists, overlaying its values onto the
// defaults; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration out as TOML, creating the parent
// directory if needed. cmd/kasmc does not call it.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
