// Package saver serializes a document into a write sink.
package saver

import (
	"context"
	"fmt"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/errors"
	"github.com/wippyai/pdfium-bridge/sink"
)

// SaveAsCopy writes a full copy of doc into s.
//
// Every block the engine produces is appended to s in order. If an append
// fails the save is aborted and a write failure wrapping the append error
// is returned; s may then hold a partial prefix, which callers should
// discard. The sink is never closed here.
func SaveAsCopy(ctx context.Context, eng engine.Engine, doc engine.DocumentID, s *sink.Sink, flags engine.SaveFlags) error {
	if s == nil || s.Closed() {
		return errors.InvalidHandle(errors.PhaseSave, "sink", nil)
	}
	if eng == nil {
		return errors.InvalidInput(errors.PhaseSave, "nil engine")
	}
	if doc == 0 || !eng.DocumentLoaded(doc) {
		return errors.UnboundDocument(errors.PhaseSave, fmt.Sprintf("%s is not loaded", doc))
	}

	w := &sinkWriter{sink: s}
	err := eng.SaveAsCopy(ctx, doc, w, flags)
	if w.err != nil {
		return errors.WriteFailed(errors.PhaseSave, w.err)
	}
	if err != nil {
		if errors.KindOf(err) == errors.KindEngine {
			return err
		}
		return errors.Wrap(errors.PhaseSave, errors.KindEngine, err, "save as copy")
	}
	return nil
}

// sinkWriter remembers the first append error so it can be reported
// instead of the engine's generic failure.
type sinkWriter struct {
	sink *sink.Sink
	err  error
}

func (w *sinkWriter) WriteBlock(p []byte) error {
	if w.err != nil {
		return w.err
	}
	if err := w.sink.Append(p); err != nil {
		w.err = err
		return err
	}
	return nil
}
