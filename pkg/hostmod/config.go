/*
 * Copyright 2026 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hostmod

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/srediag/plugin-hostapi/internal/logx"
)

// Config carries the module-core knobs. Modules that never touch it get
// the defaults; the host's environment can override each field.
type Config struct {
	// LogLevel is the internal logger's level, 0 (trace) to 5 (off).
	LogLevel int `env:"HOSTMOD_LOG_LEVEL" envDefault:"3"`

	// DebugMode adds the kernel thread id to internal log lines.
	DebugMode bool `env:"HOSTMOD_DEBUG_MODE" envDefault:"false"`

	// ModuleVersion overrides Module.Version when positive. Lets operators
	// bump the advertised version without a rebuild.
	ModuleVersion int `env:"HOSTMOD_MODULE_VERSION" envDefault:"0"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      logx.LevelWarn,
		ModuleVersion: 0,
	}
}

// VerifyConfig checks c for values the module core cannot run with.
func VerifyConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.LogLevel < logx.LevelTrace || c.LogLevel > logx.LevelNoPrint {
		return fmt.Errorf("log level %d out of range [%d,%d]",
			c.LogLevel, logx.LevelTrace, logx.LevelNoPrint)
	}
	if c.ModuleVersion < 0 {
		return fmt.Errorf("module version %d is negative", c.ModuleVersion)
	}
	return nil
}

// ConfigFromEnv parses the HOSTMOD_* environment and verifies the result.
func ConfigFromEnv() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := VerifyConfig(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply pushes the config into the running module core.
func (c *Config) Apply() error {
	if err := VerifyConfig(c); err != nil {
		return err
	}
	logx.SetLevel(c.LogLevel)
	return nil
}
