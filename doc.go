// Package pdfbridge hosts a pdfium WebAssembly build and exposes the pieces
// a binding layer needs around it: in-memory write sinks, form-fill
// environments and save-as-copy into a sink.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	pdfbridge/           Root package (documentation only)
//	├── bridge/          Handle-based boundary API owning the engine
//	├── engine/          Engine interface and the wazero-backed implementation
//	│   └── enginetest/  In-Go fake engine, synthetic guest and PDF fixtures
//	├── sink/            Growable in-memory byte sink
//	├── memory/          Allocators and the tracked allocator with limits
//	├── formfill/        Form-fill callback info and environment lifecycle
//	├── saver/           Save-as-copy of a document into a sink
//	├── handle/          Generational handle tables
//	├── config/          YAML/TOML/JSON configuration and JSON schema
//	├── errors/          Structured error types for debugging
//	└── cmd/pdfbridge/   Command-line tool and interactive TUI
//
// # Quick Start
//
// Save a document as a copy into memory:
//
//	eng, err := engine.NewWazeroEngine(ctx, pdfiumWasm, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b, err := bridge.New(ctx, eng)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close(ctx)
//
//	doc, _ := b.LoadDocument(ctx, pdfBytes, "")
//	s, _ := b.OpenSink()
//	if err := b.SaveAsCopy(ctx, doc, s); err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := b.SinkBytes(s)
//
// # Form Filling
//
// A form-fill info carries the callbacks the engine invokes. Binding it to
// a document yields an environment; exiting the environment makes the info
// closable again:
//
//	info, _ := b.OpenFormFillInfo(formfill.WithCallbacks(formfill.Callbacks{
//	    OnChange: func() { dirty = true },
//	}))
//	env, err := b.InitFormFillEnvironment(ctx, doc, info)
//	...
//	b.ExitFormFillEnvironment(ctx, env)
//	b.CloseFormFillInfo(info)
//
// # Thread Safety
//
// A Bridge is NOT thread-safe and should be used by a single goroutine, or
// access must be synchronized. Only memory.Tracker guards its own state.
//
// # Handles
//
// Every object crossing the bridge is addressed by a generational handle.
// A handle that was closed, or whose slot was reused, is rejected with an
// invalid handle error instead of reaching freed state.
package pdfbridge
