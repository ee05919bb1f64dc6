package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/errors"
	"github.com/wippyai/pdfium-bridge/handle"
)

// LoadDocument opens a document from data.
func (b *Bridge) LoadDocument(ctx context.Context, data []byte, password string) (Document, error) {
	if err := b.check(errors.PhaseDocument); err != nil {
		return 0, err
	}
	id, err := b.eng.LoadDocument(ctx, data, password)
	if err != nil {
		b.logger.Debug("load document failed", zap.Int("size", len(data)), zap.Error(err))
		return 0, err
	}
	h, err := b.docs.Insert(&document{id: id})
	if err != nil {
		if cerr := b.eng.CloseDocument(ctx, id); cerr != nil {
			b.logger.Warn("rollback close document", zap.Stringer("document", id), zap.Error(cerr))
		}
		return 0, errors.Wrap(errors.PhaseDocument, errors.KindAllocation, err, "register document")
	}
	return Document(h), nil
}

func (b *Bridge) document(phase errors.Phase, d Document) (*document, error) {
	if err := b.check(phase); err != nil {
		return nil, err
	}
	doc, ok := b.docs.Get(handle.Handle(d))
	if !ok {
		return nil, errors.InvalidHandle(phase, "document", d)
	}
	return doc, nil
}

// CloseDocument closes d. It fails while a form-fill environment is bound
// to the document.
func (b *Bridge) CloseDocument(ctx context.Context, d Document) error {
	doc, err := b.document(errors.PhaseDocument, d)
	if err != nil {
		return err
	}
	if doc.envs > 0 {
		return errors.New(errors.PhaseDocument, errors.KindLifecycleViolation).
			Handle(d).
			Detail("document has %d active form-fill environment(s)", doc.envs).
			Build()
	}
	b.docs.Remove(handle.Handle(d))
	return b.eng.CloseDocument(ctx, doc.id)
}

// PageCount returns the number of pages in d.
func (b *Bridge) PageCount(ctx context.Context, d Document) (int, error) {
	doc, err := b.document(errors.PhaseDocument, d)
	if err != nil {
		return 0, err
	}
	return b.eng.PageCount(ctx, doc.id)
}

// unboundDocument reports a missing document the way Bind and SaveAsCopy
// do: an absent or closed document is an unbound document, not a bad handle.
func unboundDocument(phase errors.Phase, d Document) error {
	if d.IsZero() {
		return errors.UnboundDocument(phase, "no document")
	}
	return errors.New(phase, errors.KindUnboundDocument).
		Handle(d).
		Detail("%s is closed or was never loaded", d).
		Build()
}
