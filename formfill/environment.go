package formfill

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/errors"
)

// Environment is an Info bound to one document.
type Environment struct {
	eng     engine.Engine
	info    *Info
	pages   []*Page
	doc     engine.DocumentID
	form    engine.FormID
	retired bool
}

// Bind registers info's callbacks with eng for doc.
//
// info must be open and doc must be loaded. Validation happens before the
// engine is touched, so on error nothing has been registered.
func Bind(ctx context.Context, eng engine.Engine, doc engine.DocumentID, info *Info) (*Environment, error) {
	if info == nil || info.state == InfoClosed {
		return nil, errors.InvalidHandle(errors.PhaseForm, "form-fill info", nil)
	}
	if info.state == InfoBound {
		return nil, errors.LifecycleViolation(errors.PhaseForm, "form-fill info is already bound")
	}
	if eng == nil {
		return nil, errors.InvalidInput(errors.PhaseForm, "nil engine")
	}
	if doc == 0 {
		return nil, errors.UnboundDocument(errors.PhaseForm, "no document")
	}
	if !eng.DocumentLoaded(doc) {
		return nil, errors.UnboundDocument(errors.PhaseForm, fmt.Sprintf("%s is not loaded", doc))
	}

	form, err := eng.InitFormFill(ctx, doc, int(info.version), info)
	if err != nil {
		return nil, err
	}

	env := &Environment{
		eng:  eng,
		info: info,
		doc:  doc,
		form: form,
	}
	info.state = InfoBound
	info.env = env
	return env, nil
}

func (e *Environment) Document() engine.DocumentID { return e.doc }
func (e *Environment) Form() engine.FormID         { return e.form }
func (e *Environment) Info() *Info                 { return e.info }
func (e *Environment) Active() bool                { return !e.retired }

// OpenPages returns the number of pages opened through this environment
// and not yet closed.
func (e *Environment) OpenPages() int { return len(e.pages) }

// Exit closes the environment's open pages, deregisters the callbacks and
// returns the Info to the open state. The environment is retired even when
// the engine reports an error; the first error is returned.
func (e *Environment) Exit(ctx context.Context) error {
	if e.retired {
		return errors.LifecycleViolation(errors.PhaseForm, "form-fill environment already exited")
	}

	var first error
	for len(e.pages) > 0 {
		if err := e.pages[len(e.pages)-1].Close(ctx); err != nil && first == nil {
			first = err
		}
	}

	if err := e.eng.ExitFormFill(ctx, e.form); err != nil && first == nil {
		first = err
	}

	e.retired = true
	e.info.state = InfoOpen
	e.info.env = nil
	return first
}

// Page is a document page loaded with form notifications enabled.
type Page struct {
	env    *Environment
	id     engine.PageID
	index  int
	closed bool
}

// OpenPage loads page index and tells the form subsystem about it, which
// may deliver Invalidate and OnChange callbacks before returning.
func (e *Environment) OpenPage(ctx context.Context, index int) (*Page, error) {
	if e.retired {
		return nil, errors.LifecycleViolation(errors.PhaseForm, "form-fill environment already exited")
	}

	id, err := e.eng.LoadPage(ctx, e.doc, index)
	if err != nil {
		return nil, err
	}
	if err := e.eng.FormAfterLoadPage(ctx, e.form, id); err != nil {
		if cerr := e.eng.ClosePage(ctx, id); cerr != nil {
			Logger().Warn("rollback page load",
				zap.Stringer("page", id),
				zap.Int("index", index),
				zap.Error(cerr))
		}
		return nil, err
	}

	p := &Page{env: e, id: id, index: index}
	e.pages = append(e.pages, p)
	return p, nil
}

func (p *Page) Index() int        { return p.index }
func (p *Page) ID() engine.PageID { return p.id }
func (p *Page) Env() *Environment { return p.env }
func (p *Page) Closed() bool      { return p.closed }

// Close notifies the form subsystem and unloads the page. The page is
// released even if the notification fails.
func (p *Page) Close(ctx context.Context) error {
	if p.closed {
		return errors.LifecycleViolation(errors.PhaseForm, "form page already closed")
	}
	p.closed = true
	p.env.removePage(p)

	notifyErr := p.env.eng.FormBeforeClosePage(ctx, p.env.form, p.id)
	if err := p.env.eng.ClosePage(ctx, p.id); err != nil {
		return err
	}
	return notifyErr
}

func (e *Environment) removePage(p *Page) {
	for i, q := range e.pages {
		if q == p {
			e.pages = append(e.pages[:i], e.pages[i+1:]...)
			return
		}
	}
}
