// Copyright the Percept authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Options is a string-keyed option map. Analyses look up the options they recognize by key and
// ignore the rest; the keys understood by the built-in analyses are documented on Config.Options.
type Options map[string]string

// String returns the option value for key, or "" when unset
func (o Options) String(key string) string {
	return o[key]
}

// Int returns the integer option value for key, or def when unset or malformed
func (o Options) Int(key string, def int) int {
	s, ok := o[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Config is the top-level analysis configuration.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	// Options is the string-keyed option map passed to every analysis. Recognized keys:
	//
	//	taint-config   path to the taint policy document, relative to the config file
	//	pta            identifier of the pointer-analysis result consumed by the
	//	               interprocedural constant propagation
	//	context        context sensitivity of the pointer analysis: "insens" (default),
	//	               "1-call", "2-call", "1-obj", "2-obj", "1-type" or "2-type"
	Options Options `yaml:"options"`

	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	sourceFile string
}

// NewDefault returns an empty default config
func NewDefault() *Config {
	return &Config{
		Options:  Options{},
		LogLevel: int(InfoLevel),
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := LoadBytes(b)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", filename, err)
	}
	cfg.sourceFile = filename
	return cfg, nil
}

// LoadBytes reads a configuration from raw yaml bytes
func LoadBytes(b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}
	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.Options == nil {
		cfg.Options = Options{}
	}
	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	if path.IsAbs(filename) || c.sourceFile == "" {
		return filename
	}
	return path.Join(path.Dir(c.sourceFile), filename)
}

// TaintConfigPath returns the path of the taint policy document, resolved relative to the config
// source file. Empty when no taint analysis is configured.
func (c Config) TaintConfigPath() string {
	p := c.Options.String("taint-config")
	if p == "" {
		return ""
	}
	return c.RelPath(p)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
