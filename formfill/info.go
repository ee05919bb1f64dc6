package formfill

import (
	"fmt"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/errors"
)

// Version is the callback structure version handed to the engine.
type Version int

const (
	// Version1 is the plain AcroForm callback table.
	Version1 Version = 1
	// Version2 adds the XFA entry points on engines built with XFA.
	Version2 Version = 2
)

// Callbacks is the fixed set of notifications the form subsystem sends.
// Nil fields are replaced by no-ops.
type Callbacks struct {
	// Invalidate asks the host to repaint r on page.
	Invalidate func(page int, r engine.Rect)
	// OutputSelectedRect reports one rectangle of the current text selection.
	OutputSelectedRect func(page int, r engine.Rect)
	// SetCursor requests a pointer shape.
	SetCursor func(c engine.Cursor)
	// OnChange reports that form data changed.
	OnChange func()
	// ExecuteNamedAction runs a named action such as "NextPage".
	ExecuteNamedAction func(name string)
	// DoURIAction asks the host to open uri.
	DoURIAction func(uri string)
	// DoGoToAction asks the host to navigate to page.
	DoGoToAction func(page int, zoom engine.ZoomMode)
	// SetTextFieldFocus reports a text field gaining or losing focus, with
	// its current value.
	SetTextFieldFocus func(value string, focused bool)
}

func (c *Callbacks) fillDefaults() {
	if c.Invalidate == nil {
		c.Invalidate = func(int, engine.Rect) {}
	}
	if c.OutputSelectedRect == nil {
		c.OutputSelectedRect = func(int, engine.Rect) {}
	}
	if c.SetCursor == nil {
		c.SetCursor = func(engine.Cursor) {}
	}
	if c.OnChange == nil {
		c.OnChange = func() {}
	}
	if c.ExecuteNamedAction == nil {
		c.ExecuteNamedAction = func(string) {}
	}
	if c.DoURIAction == nil {
		c.DoURIAction = func(string) {}
	}
	if c.DoGoToAction == nil {
		c.DoGoToAction = func(int, engine.ZoomMode) {}
	}
	if c.SetTextFieldFocus == nil {
		c.SetTextFieldFocus = func(string, bool) {}
	}
}

// InfoState is the lifecycle state of an Info.
type InfoState uint8

const (
	InfoOpen InfoState = iota
	InfoBound
	InfoClosed
)

func (s InfoState) String() string {
	switch s {
	case InfoOpen:
		return "open"
	case InfoBound:
		return "bound"
	case InfoClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Info is a form-fill callback record.
type Info struct {
	env     *Environment
	cb      Callbacks
	version Version
	state   InfoState
}

// InfoOption configures an Info.
type InfoOption func(*Info)

// WithVersion selects the structure version. Default Version1.
func WithVersion(v Version) InfoOption {
	return func(i *Info) {
		i.version = v
	}
}

// WithCallbacks installs callback implementations.
func WithCallbacks(cb Callbacks) InfoOption {
	return func(i *Info) {
		i.cb = cb
	}
}

// NewInfo creates an unbound Info.
func NewInfo(opts ...InfoOption) (*Info, error) {
	i := &Info{version: Version1}
	for _, opt := range opts {
		opt(i)
	}
	if i.version != Version1 && i.version != Version2 {
		return nil, errors.InvalidInput(errors.PhaseForm, fmt.Sprintf("unsupported form-fill version %d", i.version))
	}
	i.cb.fillDefaults()
	return i, nil
}

func (i *Info) Version() Version          { return i.version }
func (i *Info) State() InfoState          { return i.state }
func (i *Info) Bound() bool               { return i.state == InfoBound }
func (i *Info) Environment() *Environment { return i.env }

// Close releases the Info. It fails while an Environment is bound to it.
func (i *Info) Close() error {
	switch i.state {
	case InfoBound:
		return errors.LifecycleViolation(errors.PhaseForm, "form-fill info closed while environment is active")
	case InfoClosed:
		return errors.InvalidHandle(errors.PhaseForm, "form-fill info", nil)
	}
	i.state = InfoClosed
	return nil
}

// engine.FormCallbacks

func (i *Info) Invalidate(page int, r engine.Rect)         { i.cb.Invalidate(page, r) }
func (i *Info) OutputSelectedRect(page int, r engine.Rect) { i.cb.OutputSelectedRect(page, r) }
func (i *Info) SetCursor(c engine.Cursor)                  { i.cb.SetCursor(c) }
func (i *Info) OnChange()                                  { i.cb.OnChange() }
func (i *Info) ExecuteNamedAction(name string)             { i.cb.ExecuteNamedAction(name) }
func (i *Info) DoURIAction(uri string)                     { i.cb.DoURIAction(uri) }
func (i *Info) DoGoToAction(page int, zoom engine.ZoomMode) {
	i.cb.DoGoToAction(page, zoom)
}
func (i *Info) SetTextFieldFocus(value string, focused bool) {
	i.cb.SetTextFieldFocus(value, focused)
}

var _ engine.FormCallbacks = (*Info)(nil)
