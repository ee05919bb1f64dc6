package config

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/pdfium-bridge/errors"
)

// Environment variables consulted by Load.
const (
	EnvWasmPath      = "PDFBRIDGE_WASM_PATH"
	EnvLogLevel      = "PDFBRIDGE_LOG_LEVEL"
	EnvMaxTotalBytes = "PDFBRIDGE_MAX_TOTAL_BYTES"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Option adjusts a configuration after environment overrides and before
// validation. Command-line flags use it.
type Option func(*Config)

// Load reads path, applies environment overrides and opts, and validates
// the result. An empty path or a missing file yields the defaults.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Config("read "+path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return errors.Config("unsupported config format "+strconv.Quote(ext), nil)
	}
	if err != nil {
		return errors.Config("decode "+path, err)
	}
	return nil
}

// ApplyEnvOverrides copies PDFBRIDGE_* variables over the loaded values.
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv(EnvWasmPath); v != "" {
		c.Engine.WasmPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvMaxTotalBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Config(EnvMaxTotalBytes, err)
		}
		c.Sink.MaxTotalBytes = n
	}
	return nil
}

// Validate checks field constraints. Failures are reported by their
// file key, such as "engine.wasm_path".
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !stderrors.As(err, &ve) {
		return errors.Config("validate", err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, field+": "+fe.Tag()+"="+fe.Param())
		} else {
			msgs = append(msgs, field+": "+fe.Tag())
		}
	}
	return errors.Config(strings.Join(msgs, "; "), err)
}
