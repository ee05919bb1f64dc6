package bridge

import (
	"github.com/wippyai/pdfium-bridge/handle"
)

// Document refers to a loaded document.
type Document handle.Handle

// Sink refers to an in-memory write sink.
type Sink handle.Handle

// FormInfo refers to a form-fill callback record.
type FormInfo handle.Handle

// FormEnv refers to a bound form-fill environment.
type FormEnv handle.Handle

// FormPage refers to a page opened through a form-fill environment.
type FormPage handle.Handle

func (h Document) String() string { return "document" + handle.Handle(h).String() }
func (h Sink) String() string     { return "sink" + handle.Handle(h).String() }
func (h FormInfo) String() string { return "info" + handle.Handle(h).String() }
func (h FormEnv) String() string  { return "env" + handle.Handle(h).String() }
func (h FormPage) String() string { return "page" + handle.Handle(h).String() }

func (h Document) IsZero() bool { return handle.Handle(h).IsZero() }
func (h Sink) IsZero() bool     { return handle.Handle(h).IsZero() }
func (h FormInfo) IsZero() bool { return handle.Handle(h).IsZero() }
func (h FormEnv) IsZero() bool  { return handle.Handle(h).IsZero() }
func (h FormPage) IsZero() bool { return handle.Handle(h).IsZero() }
