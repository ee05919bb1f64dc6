// Package bridge is the host-facing surface over a document engine.
//
// A Bridge owns an engine.Engine and every object created through it.
// Objects are returned as small typed handles rather than pointers:
//
//	Document  a loaded document
//	Sink      an in-memory write sink
//	FormInfo  a form-fill callback record
//	FormEnv   a FormInfo bound to a Document
//	FormPage  a page opened through a FormEnv
//
// Handles are generational. Once an object is closed its handle, and every
// copy of it, is rejected with an invalid handle error, even after the slot
// is reused. Double close and double exit are therefore always detected.
//
// # Basic Usage
//
//	eng, _ := engine.NewWazeroEngine(ctx, wasm, nil)
//	b, err := bridge.New(ctx, eng, bridge.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer b.Close(ctx)
//
//	doc, _ := b.LoadDocument(ctx, pdf, "")
//	s, _ := b.OpenSink()
//	if err := b.SaveAsCopy(ctx, doc, s); err != nil {
//	    return err
//	}
//	out, _ := b.SinkBytes(s)
//
// # Forms
//
//	info, _ := b.OpenFormFillInfo(formfill.WithCallbacks(formfill.Callbacks{
//	    Invalidate: func(page int, r engine.Rect) { ... },
//	}))
//	env, _ := b.InitFormFillEnvironment(ctx, doc, info)
//	...
//	b.ExitFormFillEnvironment(ctx, env)
//	b.CloseFormFillInfo(info)
//
// A document cannot be closed while an environment is bound to it, and an
// info cannot be closed while bound.
//
// # Thread Safety
//
// A Bridge is not safe for concurrent use. Callers serialize access.
package bridge
