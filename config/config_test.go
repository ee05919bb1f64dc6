package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/pdfium-bridge/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func withWasm(path string) Option {
	return func(c *Config) { c.Engine.WasmPath = path }
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Engine.HostModule != "pdfbridge" {
		t.Errorf("host module = %q", cfg.Engine.HostModule)
	}
	if cfg.Sink.InitialCapacity != 4096 || cfg.Sink.MaxTotalBytes != 256<<20 {
		t.Errorf("sink = %+v", cfg.Sink)
	}
	if cfg.Form.Version != 1 || cfg.FormVersion() != 1 {
		t.Errorf("form version = %d", cfg.Form.Version)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_Formats(t *testing.T) {
	files := map[string]string{
		"cfg.yaml": `
engine:
  wasm_path: /opt/pdfium.wasm
  memory_limit_pages: 1024
sink:
  initial_capacity: 128
form:
  version: 2
log:
  level: debug
`,
		"cfg.toml": `
[engine]
wasm_path = "/opt/pdfium.wasm"
memory_limit_pages = 1024

[sink]
initial_capacity = 128

[form]
version = 2

[log]
level = "debug"
`,
		"cfg.json": `{
  "engine": {"wasm_path": "/opt/pdfium.wasm", "memory_limit_pages": 1024},
  "sink": {"initial_capacity": 128},
  "form": {"version": 2},
  "log": {"level": "debug"}
}`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, name, content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Engine.WasmPath != "/opt/pdfium.wasm" || cfg.Engine.MemoryLimitPages != 1024 {
				t.Errorf("engine = %+v", cfg.Engine)
			}
			if cfg.Sink.InitialCapacity != 128 {
				t.Errorf("initial capacity = %d", cfg.Sink.InitialCapacity)
			}
			// Unset keys keep their defaults.
			if cfg.Sink.MaxTotalBytes != DefaultMaxTotalBytes || cfg.Engine.HostModule != "pdfbridge" {
				t.Errorf("defaults lost: %+v %+v", cfg.Sink, cfg.Engine)
			}
			if cfg.Form.Version != 2 || cfg.Log.Level != "debug" {
				t.Errorf("form=%d level=%s", cfg.Form.Version, cfg.Log.Level)
			}
			ec := cfg.EngineConfig()
			if ec.HostModule != "pdfbridge" || ec.MemoryLimitPages != 1024 {
				t.Errorf("engine config = %+v", ec)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), withWasm("x.wasm"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sink.InitialCapacity != DefaultInitialCapacity {
		t.Errorf("initial capacity = %d", cfg.Sink.InitialCapacity)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvWasmPath, "/env/pdfium.wasm")
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvMaxTotalBytes, "1024")

	path := writeFile(t, "cfg.yaml", "engine:\n  wasm_path: /file/pdfium.wasm\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.WasmPath != "/env/pdfium.wasm" {
		t.Errorf("wasm path = %q", cfg.Engine.WasmPath)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Sink.MaxTotalBytes != 1024 {
		t.Errorf("max total bytes = %d", cfg.Sink.MaxTotalBytes)
	}

	// Options run after the environment.
	cfg, err = Load(path, withWasm("/flag/pdfium.wasm"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.WasmPath != "/flag/pdfium.wasm" {
		t.Errorf("wasm path = %q", cfg.Engine.WasmPath)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv(EnvMaxTotalBytes, "lots")
	_, err := Load("", withWasm("x.wasm"))
	if errors.KindOf(err) != errors.KindConfig {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"no wasm path", "cfg.yaml", "log:\n  level: info\n", "engine.wasm_path: required"},
		{"form version", "cfg.yaml", "engine:\n  wasm_path: a\nform:\n  version: 3\n", "form.version: oneof"},
		{"log level", "cfg.toml", "[engine]\nwasm_path = \"a\"\n[log]\nlevel = \"loud\"\n", "log.level: oneof"},
		{"memory pages", "cfg.json", `{"engine": {"wasm_path": "a", "memory_limit_pages": 70000}}`, "engine.memory_limit_pages: lte=65536"},
		{"negative capacity", "cfg.yaml", "engine:\n  wasm_path: a\nsink:\n  initial_capacity: -1\n", "sink.initial_capacity: gte=0"},
		{"bad yaml", "cfg.yaml", "engine: [", "decode"},
		{"bad extension", "cfg.ini", "wasm_path=a", "unsupported config format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.KindOf(err) != errors.KindConfig {
				t.Errorf("kind = %q", errors.KindOf(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSchema(t *testing.T) {
	out, err := Schema()
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatalf("no properties in %s", out)
	}
	for _, key := range []string{"engine", "sink", "form", "log"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema lacks %q", key)
		}
	}
	if !strings.Contains(string(out), "wasm_path") {
		t.Error("schema lacks wasm_path")
	}
}

func TestNewLogger(t *testing.T) {
	for _, dev := range []bool{false, true} {
		l, err := Log{Level: "debug", Development: dev}.NewLogger()
		if err != nil {
			t.Fatalf("NewLogger(dev=%v): %v", dev, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("debug not enabled (dev=%v)", dev)
		}
	}

	if _, err := (Log{Level: "loud"}).NewLogger(); errors.KindOf(err) != errors.KindConfig {
		t.Fatalf("err = %v", err)
	}
}
