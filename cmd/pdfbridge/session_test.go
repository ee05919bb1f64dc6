package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/blake2b"

	"github.com/wippyai/pdfium-bridge/config"
	"github.com/wippyai/pdfium-bridge/engine/enginetest"
)

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSession_SaveWithForm(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	wasm := writeTemp(t, dir, "guest.wasm", enginetest.Guest(enginetest.GuestConfig{}))
	doc := enginetest.FormDocument()
	input := writeTemp(t, dir, "form.pdf", doc)
	output := filepath.Join(dir, "copy.pdf")

	cfg, err := config.Load("", func(c *config.Config) { c.Engine.WasmPath = wasm })
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	core, logs := observer.New(zap.InfoLevel)
	s, err := openSession(ctx, cfg, zap.New(core), input, output, "")
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	defer s.close(ctx)

	if err := s.bindForm(ctx); err != nil {
		t.Fatalf("bindForm: %v", err)
	}
	if !s.formBound() {
		t.Fatal("form not bound")
	}
	if logs.FilterMessage("form changed").Len() != 1 {
		t.Errorf("form change not logged: %v", logs.All())
	}

	res, err := s.save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, doc) || res.size != len(doc) {
		t.Fatalf("output differs: %d bytes, want %d", len(got), len(doc))
	}
	sum := blake2b.Sum256(doc)
	if res.digest != hex.EncodeToString(sum[:]) {
		t.Errorf("digest = %s", res.digest)
	}

	if err := s.exitForm(ctx); err != nil {
		t.Fatalf("exitForm: %v", err)
	}
	if st := s.bridge.Stats(); st.FormInfos != 0 || st.FormEnvironments != 0 || st.Sinks != 0 {
		t.Fatalf("stats after exit = %+v", st)
	}
	if err := s.close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSession_MissingEngine(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.WasmPath = filepath.Join(t.TempDir(), "absent.wasm")
	if _, err := openSession(context.Background(), cfg, zap.NewNop(), "in.pdf", "out.pdf", ""); err == nil {
		t.Fatal("expected error")
	}
}
