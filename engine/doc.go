// Package engine defines the document engine the bridge drives, and a
// wazero-hosted implementation of it.
//
// The engine is the native PDF library (pdfium compiled to WebAssembly).
// It owns parsing, rendering and serialization. The bridge only needs a
// narrow slice of it, captured by the Engine interface:
//
//	Init                 one-time library bootstrap
//	LoadDocument         open a document from bytes
//	SaveAsCopy           serialize a document through a FileWriter
//	InitFormFill         register a FormCallbacks table for a document
//	ExitFormFill         deregister it
//	LoadPage / ClosePage page handles for form notifications
//
// # Guest ABI
//
// WazeroEngine loads a core module exporting the pdfium C API plus the
// PDFiumExt_* helpers, and provides a host module (named "pdfbridge" by
// default) that the guest calls back into:
//
//	write_block(writer, ptr, len) -> ok     serializer output
//	ffi_invalidate(token, page, l, t, r, b) form callbacks, one per
//	ffi_set_cursor(token, cursor)           FormCallbacks method
//	...
//
// Writers and callback tables never cross into the guest. The host hands
// the guest a small integer token and resolves it when the guest calls
// back, so a stale token simply finds nothing.
//
// # Identifiers
//
// DocumentID, FormID and PageID are host-side identifiers. Zero is never
// issued and always means "none".
package engine
