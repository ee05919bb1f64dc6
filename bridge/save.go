package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/errors"
	"github.com/wippyai/pdfium-bridge/handle"
	"github.com/wippyai/pdfium-bridge/saver"
)

// SaveAsCopy serializes d into s as a full, non-incremental copy.
func (b *Bridge) SaveAsCopy(ctx context.Context, d Document, s Sink) error {
	return b.SaveAsCopyWithFlags(ctx, d, s, engine.SaveNoIncremental)
}

// SaveAsCopyWithFlags serializes d into s. On failure s may hold a partial
// prefix and should be discarded.
func (b *Bridge) SaveAsCopyWithFlags(ctx context.Context, d Document, s Sink, flags engine.SaveFlags) error {
	sk, err := b.sink(errors.PhaseSave, s)
	if err != nil {
		return err
	}
	doc, ok := b.docs.Get(handle.Handle(d))
	if !ok {
		return unboundDocument(errors.PhaseSave, d)
	}

	before := sk.Size()
	if err := saver.SaveAsCopy(ctx, b.eng, doc.id, sk, flags); err != nil {
		b.logger.Warn("save as copy failed",
			zap.Stringer("document", d),
			zap.Stringer("sink", s),
			zap.Int("partial", sk.Size()-before),
			zap.Error(err))
		return err
	}

	b.logger.Debug("saved document",
		zap.Stringer("document", d),
		zap.Stringer("sink", s),
		zap.Stringer("flags", flags),
		zap.Int("size", sk.Size()-before))
	return nil
}
