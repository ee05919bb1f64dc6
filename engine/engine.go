package engine

import (
	"context"
)

// Engine is the document engine as seen by the bridge.
//
// Implementations are not safe for concurrent use.
type Engine interface {
	// Init bootstraps the library. A second call fails.
	Init(ctx context.Context) error

	LoadDocument(ctx context.Context, data []byte, password string) (DocumentID, error)
	CloseDocument(ctx context.Context, doc DocumentID) error
	// DocumentLoaded reports whether doc refers to an open document.
	DocumentLoaded(doc DocumentID) bool
	PageCount(ctx context.Context, doc DocumentID) (int, error)

	// SaveAsCopy serializes doc, pushing every produced block through w in
	// order. It stops at the first WriteBlock error.
	SaveAsCopy(ctx context.Context, doc DocumentID, w FileWriter, flags SaveFlags) error

	InitFormFill(ctx context.Context, doc DocumentID, version int, cb FormCallbacks) (FormID, error)
	ExitFormFill(ctx context.Context, form FormID) error

	LoadPage(ctx context.Context, doc DocumentID, index int) (PageID, error)
	ClosePage(ctx context.Context, page PageID) error
	FormAfterLoadPage(ctx context.Context, form FormID, page PageID) error
	FormBeforeClosePage(ctx context.Context, form FormID, page PageID) error

	// FocusAnnot opens annotation annot (a zero-based index into the page's
	// annotations) and gives it form focus. KillFocus releases both. Only one
	// annotation per form is focused at a time.
	FocusAnnot(ctx context.Context, form FormID, page PageID, annot int) error
	SelectAllText(ctx context.Context, form FormID, page PageID) error
	ReplaceSelection(ctx context.Context, form FormID, page PageID, text string) error
	SetIndexSelected(ctx context.Context, form FormID, page PageID, index int, selected bool) error
	OnChar(ctx context.Context, form FormID, page PageID, char rune, modifiers int) error
	KillFocus(ctx context.Context, form FormID) error

	Close(ctx context.Context) error
}

// FileWriter receives serialized output. The block is only valid for the
// duration of the call.
type FileWriter interface {
	WriteBlock(p []byte) error
}

// FileWriterFunc adapts a function to FileWriter.
type FileWriterFunc func(p []byte) error

// WriteBlock calls f(p).
func (f FileWriterFunc) WriteBlock(p []byte) error {
	return f(p)
}

// FormCallbacks is the callback table the form subsystem notifies.
// page is a zero-based page index, or -1 when the engine did not say.
type FormCallbacks interface {
	Invalidate(page int, r Rect)
	OutputSelectedRect(page int, r Rect)
	SetCursor(c Cursor)
	OnChange()
	ExecuteNamedAction(name string)
	DoURIAction(uri string)
	DoGoToAction(page int, zoom ZoomMode)
	SetTextFieldFocus(value string, focused bool)
}
