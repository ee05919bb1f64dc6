// Package enginetest provides test doubles for engine.Engine.
//
// Fake is an in-process engine that treats documents as opaque bytes and
// echoes them back on save, split into small blocks. Guest builds a tiny
// WebAssembly module speaking the same ABI as a pdfium build, so
// engine.WazeroEngine can be exercised on a real runtime.
package enginetest
