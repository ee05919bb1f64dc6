package enginetest

import (
	"fmt"

	"github.com/wippyai/pdfium-bridge/engine"
)

// Recorder is an engine.FormCallbacks that logs every call as a string.
type Recorder struct {
	Events []string
}

func (r *Recorder) add(format string, args ...any) {
	r.Events = append(r.Events, fmt.Sprintf(format, args...))
}

func (r *Recorder) Invalidate(page int, rect engine.Rect) {
	r.add("invalidate %d %v", page, rect)
}

func (r *Recorder) OutputSelectedRect(page int, rect engine.Rect) {
	r.add("selected %d %v", page, rect)
}

func (r *Recorder) SetCursor(c engine.Cursor) {
	r.add("cursor %s", c)
}

func (r *Recorder) OnChange() {
	r.add("change")
}

func (r *Recorder) ExecuteNamedAction(name string) {
	r.add("named %s", name)
}

func (r *Recorder) DoURIAction(uri string) {
	r.add("uri %s", uri)
}

func (r *Recorder) DoGoToAction(page int, zoom engine.ZoomMode) {
	r.add("goto %d %s", page, zoom)
}

func (r *Recorder) SetTextFieldFocus(value string, focused bool) {
	r.add("focus %q %v", value, focused)
}

var _ engine.FormCallbacks = (*Recorder)(nil)
