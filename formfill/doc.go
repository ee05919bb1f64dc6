// Package formfill drives the engine's interactive-form subsystem.
//
// The engine expects a callback table (the form-fill info) that it keeps
// for as long as a document is bound to it. This package splits that into
// two lifetimes:
//
//	Info         the callback record. Created with every callback a no-op,
//	             read-only afterwards, reusable across bindings.
//	Environment  one binding of an Info to a loaded document. Exists only
//	             between Bind and Exit.
//
// Lifecycle:
//
//	info, _ := formfill.NewInfo(formfill.WithCallbacks(formfill.Callbacks{
//	    OnChange: func() { dirty = true },
//	}))
//	env, _ := formfill.Bind(ctx, eng, doc, info)
//	page, _ := env.OpenPage(ctx, 0)
//	...
//	page.Close(ctx)
//	env.Exit(ctx)
//	info.Close()
//
// Bind validates everything before registering with the engine, so a
// failed Bind leaves nothing to undo. An Info cannot be closed while bound,
// and an Environment cannot be exited twice.
package formfill
