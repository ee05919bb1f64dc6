package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/errors"
	"github.com/wippyai/pdfium-bridge/formfill"
	"github.com/wippyai/pdfium-bridge/handle"
)

// OpenFormFillInfo creates a callback record at the bridge's default
// structure version. opts may override the version and install callbacks.
func (b *Bridge) OpenFormFillInfo(opts ...formfill.InfoOption) (FormInfo, error) {
	if err := b.check(errors.PhaseForm); err != nil {
		return 0, err
	}
	all := append([]formfill.InfoOption{formfill.WithVersion(b.formVersion)}, opts...)
	info, err := formfill.NewInfo(all...)
	if err != nil {
		return 0, err
	}
	h, err := b.infos.Insert(info)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseForm, errors.KindAllocation, err, "register form-fill info")
	}
	return FormInfo(h), nil
}

func (b *Bridge) info(h FormInfo) (*formfill.Info, error) {
	if err := b.check(errors.PhaseForm); err != nil {
		return nil, err
	}
	info, ok := b.infos.Get(handle.Handle(h))
	if !ok {
		return nil, errors.InvalidHandle(errors.PhaseForm, "form-fill info", h)
	}
	return info, nil
}

// CloseFormFillInfo releases h. It fails while h is bound, and the handle
// stays valid in that case.
func (b *Bridge) CloseFormFillInfo(h FormInfo) error {
	info, err := b.info(h)
	if err != nil {
		return err
	}
	if err := info.Close(); err != nil {
		return err
	}
	b.infos.Remove(handle.Handle(h))
	return nil
}

// InitFormFillEnvironment binds info to d. A zero or closed document fails
// with an unbound document error, without registering anything.
func (b *Bridge) InitFormFillEnvironment(ctx context.Context, d Document, h FormInfo) (FormEnv, error) {
	info, err := b.info(h)
	if err != nil {
		return 0, err
	}
	doc, ok := b.docs.Get(handle.Handle(d))
	if !ok {
		return 0, unboundDocument(errors.PhaseForm, d)
	}

	env, err := formfill.Bind(ctx, b.eng, doc.id, info)
	if err != nil {
		return 0, err
	}
	eh, err := b.envs.Insert(&formEnv{env: env, doc: d})
	if err != nil {
		if xerr := env.Exit(ctx); xerr != nil {
			b.logger.Warn("rollback form-fill environment", zap.Stringer("document", d), zap.Error(xerr))
		}
		return 0, errors.Wrap(errors.PhaseForm, errors.KindAllocation, err, "register form-fill environment")
	}
	doc.envs++
	b.logger.Debug("form-fill environment bound",
		zap.Stringer("document", d),
		zap.Stringer("info", h),
		zap.Stringer("env", FormEnv(eh)))
	return FormEnv(eh), nil
}

func (b *Bridge) env(h FormEnv) (*formEnv, error) {
	if err := b.check(errors.PhaseForm); err != nil {
		return nil, err
	}
	fe, ok := b.envs.Get(handle.Handle(h))
	if !ok {
		return nil, errors.InvalidHandle(errors.PhaseForm, "form-fill environment", h)
	}
	return fe, nil
}

// ExitFormFillEnvironment closes the environment's pages, unbinds it and
// makes its info closable again. A second exit fails with an invalid handle
// error.
func (b *Bridge) ExitFormFillEnvironment(ctx context.Context, h FormEnv) error {
	fe, err := b.env(h)
	if err != nil {
		return err
	}

	var pages []handle.Handle
	b.pages.Each(func(ph handle.Handle, p *formPage) bool {
		if p.env == h {
			pages = append(pages, ph)
		}
		return true
	})
	for _, ph := range pages {
		b.pages.Remove(ph)
	}

	b.envs.Remove(handle.Handle(h))
	if doc, ok := b.docs.Get(handle.Handle(fe.doc)); ok {
		doc.envs--
	}

	if err := fe.env.Exit(ctx); err != nil {
		b.logger.Warn("form-fill environment exit", zap.Stringer("env", h), zap.Error(err))
		return err
	}
	return nil
}

// OpenFormPage loads page index of the environment's document and delivers
// its form notifications.
func (b *Bridge) OpenFormPage(ctx context.Context, h FormEnv, index int) (FormPage, error) {
	fe, err := b.env(h)
	if err != nil {
		return 0, err
	}
	page, err := fe.env.OpenPage(ctx, index)
	if err != nil {
		return 0, err
	}
	ph, err := b.pages.Insert(&formPage{page: page, env: h})
	if err != nil {
		if cerr := page.Close(ctx); cerr != nil {
			b.logger.Warn("rollback form page", zap.Stringer("env", h), zap.Int("index", index), zap.Error(cerr))
		}
		return 0, errors.Wrap(errors.PhaseForm, errors.KindAllocation, err, "register form page")
	}
	return FormPage(ph), nil
}

// CloseFormPage unloads a page opened with OpenFormPage.
func (b *Bridge) CloseFormPage(ctx context.Context, h FormPage) error {
	if err := b.check(errors.PhaseForm); err != nil {
		return err
	}
	p, ok := b.pages.Remove(handle.Handle(h))
	if !ok {
		return errors.InvalidHandle(errors.PhaseForm, "form page", h)
	}
	return p.page.Close(ctx)
}

// SetFormFieldValue edits widget annot on a page opened with OpenFormPage.
// See formfill.Environment.SetFieldValue for the failure values.
func (b *Bridge) SetFormFieldValue(ctx context.Context, h FormPage, annot int, v formfill.FieldValue) error {
	if err := b.check(errors.PhaseForm); err != nil {
		return err
	}
	p, ok := b.pages.Get(handle.Handle(h))
	if !ok {
		return errors.InvalidHandle(errors.PhaseForm, "form page", h)
	}
	page := p.page
	if err := page.Env().SetFieldValue(ctx, page, annot, v); err != nil {
		b.logger.Debug("set form field failed",
			zap.Stringer("page", h),
			zap.Int("annot", annot),
			zap.Stringer("kind", v.Kind),
			zap.Error(err))
		return err
	}
	return nil
}
