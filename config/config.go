// Package config loads pdfbridge settings from YAML, TOML or JSON files,
// applies environment overrides and validates the result.
package config

import (
	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/formfill"
)

// Defaults.
const (
	DefaultInitialCapacity = 4096
	DefaultMaxTotalBytes   = 256 << 20
	DefaultFormVersion     = 1
	DefaultLogLevel        = "info"
)

// Config is the top-level configuration.
type Config struct {
	Engine Engine `yaml:"engine" toml:"engine" json:"engine"`
	Sink   Sink   `yaml:"sink" toml:"sink" json:"sink"`
	Form   Form   `yaml:"form" toml:"form" json:"form"`
	Log    Log    `yaml:"log" toml:"log" json:"log"`
}

// Engine selects and sizes the pdfium WebAssembly build.
type Engine struct {
	WasmPath         string `yaml:"wasm_path" toml:"wasm_path" json:"wasm_path" validate:"required" jsonschema:"description=Path to the pdfium WebAssembly module"`
	MemoryLimitPages uint32 `yaml:"memory_limit_pages" toml:"memory_limit_pages" json:"memory_limit_pages,omitempty" validate:"lte=65536" jsonschema:"maximum=65536,description=Guest memory limit in 64KiB pages. 0 uses the runtime default"`
	HostModule       string `yaml:"host_module" toml:"host_module" json:"host_module,omitempty" jsonschema:"default=pdfbridge"`
}

// Sink sizes the in-memory write sinks.
type Sink struct {
	InitialCapacity int   `yaml:"initial_capacity" toml:"initial_capacity" json:"initial_capacity" validate:"gte=0" jsonschema:"minimum=0,default=4096"`
	MaxTotalBytes   int64 `yaml:"max_total_bytes" toml:"max_total_bytes" json:"max_total_bytes" validate:"gte=0" jsonschema:"minimum=0,description=Limit on bytes held by all sinks. 0 means unlimited"`
}

// Form sets the form-fill defaults.
type Form struct {
	Version int `yaml:"version" toml:"version" json:"version" validate:"oneof=1 2" jsonschema:"enum=1,enum=2,default=1"`
}

// Log configures the process logger.
type Log struct {
	Level       string `yaml:"level" toml:"level" json:"level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Development bool   `yaml:"development" toml:"development" json:"development,omitempty"`
}

// Default returns a configuration with every default applied. It does not
// validate, since the wasm path has no default.
func Default() *Config {
	return &Config{
		Engine: Engine{HostModule: engine.DefaultHostModule},
		Sink: Sink{
			InitialCapacity: DefaultInitialCapacity,
			MaxTotalBytes:   DefaultMaxTotalBytes,
		},
		Form: Form{Version: DefaultFormVersion},
		Log:  Log{Level: DefaultLogLevel},
	}
}

// EngineConfig converts the engine section for engine.NewWazeroEngine.
func (c *Config) EngineConfig() *engine.Config {
	return &engine.Config{
		HostModule:       c.Engine.HostModule,
		MemoryLimitPages: c.Engine.MemoryLimitPages,
	}
}

// FormVersion returns the configured form-fill structure version.
func (c *Config) FormVersion() formfill.Version {
	return formfill.Version(c.Form.Version)
}
