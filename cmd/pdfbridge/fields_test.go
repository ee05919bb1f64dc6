package main

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/pdfium-bridge/config"
	"github.com/wippyai/pdfium-bridge/engine/enginetest"
	"github.com/wippyai/pdfium-bridge/formfill"
)

func TestParseFieldEdit(t *testing.T) {
	tests := []struct {
		in   string
		want fieldEdit
	}{
		{"0:0:text:Ada", fieldEdit{0, 0, formfill.TextValue("Ada")}},
		{"1:2:text:a:b", fieldEdit{1, 2, formfill.TextValue("a:b")}},
		{"0:0:text:", fieldEdit{0, 0, formfill.TextValue("")}},
		{"0:1:select:2", fieldEdit{0, 1, formfill.SelectionValue(2, true)}},
		{"0:1:deselect:0", fieldEdit{0, 1, formfill.SelectionValue(0, false)}},
		{"3:4:check", fieldEdit{3, 4, formfill.CheckedValue()}},
	}
	for _, tt := range tests {
		got, err := parseFieldEdit(tt.in)
		if err != nil {
			t.Errorf("parseFieldEdit(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFieldEdit(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"", "0:0", "x:0:check", "0:-1:check", "0:0:text", "0:0:select:x", "0:0:select:-1", "0:0:check:1", "0:0:radio"} {
		if _, err := parseFieldEdit(in); err == nil {
			t.Errorf("parseFieldEdit(%q) succeeded", in)
		}
	}
}

func TestSession_SetFields(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	wasm := writeTemp(t, dir, "guest.wasm", enginetest.Guest(enginetest.GuestConfig{Fields: 3}))
	input := writeTemp(t, dir, "fields.pdf", enginetest.FieldsDocument())
	cfg, err := config.Load("", func(c *config.Config) { c.Engine.WasmPath = wasm })
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	core, logs := observer.New(zap.InfoLevel)
	s, err := openSession(ctx, cfg, zap.New(core), input, filepath.Join(dir, "copy.pdf"), "")
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	defer s.close(ctx)

	for _, spec := range []string{"0:0:text:Grace", "0:1:select:1", "0:2:check"} {
		e, err := parseFieldEdit(spec)
		if err != nil {
			t.Fatalf("parseFieldEdit(%q): %v", spec, err)
		}
		if err := s.setField(ctx, e); err != nil {
			t.Fatalf("setField(%s): %v", spec, err)
		}
	}
	if n := logs.FilterMessage("field set").Len(); n != 3 {
		t.Errorf("field set entries = %d", n)
	}

	e, _ := parseFieldEdit("0:3:check")
	if err := s.setField(ctx, e); err == nil {
		t.Fatal("edit past the page's fields succeeded")
	}
	if st := s.bridge.Stats(); st.FormPages != 0 {
		t.Fatalf("form pages left open: %+v", st)
	}

	if _, err := s.save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.exitForm(ctx); err != nil {
		t.Fatalf("exitForm: %v", err)
	}
}
