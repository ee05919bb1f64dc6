package enginetest

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/errors"
)

// DefaultChunkSize is the block size Fake serializes in.
const DefaultChunkSize = 7

// Fake is an in-memory engine.Engine.
//
// Documents must start with "%PDF-". Saving echoes the loaded bytes through
// the writer in ChunkSize blocks. FormAfterLoadPage reports an Invalidate of
// the whole page followed by OnChange.
//
// Annotation indexes address the document's widgets in order, whatever the
// page. Field edits are kept per document and read back with Field.
type Fake struct {
	// SaveErr, when set, fails SaveAsCopy before any block is written.
	SaveErr error
	// InitErr, when set, fails Init.
	InitErr error
	// ChunkSize overrides DefaultChunkSize.
	ChunkSize int
	// FormLoadErr, when set, fails FormAfterLoadPage.
	FormLoadErr error
	// CloseDocumentErr, when set, fails CloseDocument and leaves the
	// document loaded.
	CloseDocumentErr error
	// ClosePageErr, when set, fails ClosePage and leaves the page loaded.
	ClosePageErr error

	// Counters for assertions.
	Inits     int
	FormInits int
	FormExits int
	Saves     int

	docs   map[engine.DocumentID][]byte
	fields map[engine.DocumentID][]*FakeField
	forms  map[engine.FormID]*fakeForm
	pages  map[engine.PageID]*fakePage
	nextID uint32
	ready  bool
	closed bool
}

type fakeForm struct {
	cb      engine.FormCallbacks
	doc     engine.DocumentID
	version int
	focus   *FakeField
	// selectAll is set by SelectAllText until the next ReplaceSelection.
	selectAll bool
}

// FakeField is the state of one widget on Fake.
type FakeField struct {
	// Type is the field type name: Tx, Ch or Btn.
	Type     string
	Text     string
	Selected []int
	Checked  bool
}

type fakePage struct {
	doc   engine.DocumentID
	index int
}

// NewFake creates an uninitialized Fake.
func NewFake() *Fake {
	return &Fake{
		docs:   make(map[engine.DocumentID][]byte),
		fields: make(map[engine.DocumentID][]*FakeField),
		forms:  make(map[engine.FormID]*fakeForm),
		pages:  make(map[engine.PageID]*fakePage),
	}
}

func (f *Fake) id() uint32 {
	f.nextID++
	return f.nextID
}

func (f *Fake) Init(context.Context) error {
	if f.closed {
		return errors.LifecycleViolation(errors.PhaseInit, "engine closed")
	}
	if f.ready {
		return errors.LifecycleViolation(errors.PhaseInit, "engine already initialized")
	}
	f.Inits++
	if f.InitErr != nil {
		return f.InitErr
	}
	f.ready = true
	return nil
}

func (f *Fake) check(phase errors.Phase) error {
	if !f.ready || f.closed {
		return errors.LifecycleViolation(phase, "engine not initialized")
	}
	return nil
}

func (f *Fake) LoadDocument(_ context.Context, data []byte, password string) (engine.DocumentID, error) {
	if err := f.check(errors.PhaseDocument); err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, errors.InvalidInput(errors.PhaseDocument, "empty document data")
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, errors.Engine(errors.PhaseDocument, engine.CodeFormat, "load document: "+engine.CodeFormat.String())
	}
	if bytes.Contains(data, []byte("/Encrypt")) && password != FakePassword {
		return 0, errors.Engine(errors.PhaseDocument, engine.CodePassword, "load document: "+engine.CodePassword.String())
	}

	id := engine.DocumentID(f.id())
	f.docs[id] = bytes.Clone(data)
	for _, typ := range WidgetTypes(data) {
		f.fields[id] = append(f.fields[id], &FakeField{Type: typ})
	}
	return id, nil
}

func (f *Fake) CloseDocument(_ context.Context, doc engine.DocumentID) error {
	if err := f.check(errors.PhaseDocument); err != nil {
		return err
	}
	if _, ok := f.docs[doc]; !ok {
		return errors.UnboundDocument(errors.PhaseDocument, fmt.Sprintf("%s is not loaded", doc))
	}
	if f.CloseDocumentErr != nil {
		return f.CloseDocumentErr
	}
	delete(f.docs, doc)
	delete(f.fields, doc)
	return nil
}

func (f *Fake) DocumentLoaded(doc engine.DocumentID) bool {
	_, ok := f.docs[doc]
	return ok
}

func (f *Fake) document(phase errors.Phase, doc engine.DocumentID) ([]byte, error) {
	if err := f.check(phase); err != nil {
		return nil, err
	}
	data, ok := f.docs[doc]
	if !ok {
		return nil, errors.UnboundDocument(phase, fmt.Sprintf("%s is not loaded", doc))
	}
	return data, nil
}

func (f *Fake) PageCount(_ context.Context, doc engine.DocumentID) (int, error) {
	data, err := f.document(errors.PhaseDocument, doc)
	if err != nil {
		return 0, err
	}
	return CountPages(data), nil
}

func (f *Fake) SaveAsCopy(_ context.Context, doc engine.DocumentID, w engine.FileWriter, _ engine.SaveFlags) error {
	data, err := f.document(errors.PhaseSave, doc)
	if err != nil {
		return err
	}
	f.Saves++
	if f.SaveErr != nil {
		return f.SaveErr
	}

	chunk := f.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	for off := 0; off < len(data); off += chunk {
		end := min(off+chunk, len(data))
		if err := w.WriteBlock(data[off:end]); err != nil {
			return errors.Engine(errors.PhaseSave, engine.CodeUnknown, "save as copy: writer rejected block")
		}
	}
	return nil
}

func (f *Fake) InitFormFill(_ context.Context, doc engine.DocumentID, version int, cb engine.FormCallbacks) (engine.FormID, error) {
	if _, err := f.document(errors.PhaseForm, doc); err != nil {
		return 0, err
	}
	if cb == nil {
		return 0, errors.InvalidInput(errors.PhaseForm, "nil form callbacks")
	}
	id := engine.FormID(f.id())
	f.forms[id] = &fakeForm{cb: cb, doc: doc, version: version}
	f.FormInits++
	return id, nil
}

func (f *Fake) ExitFormFill(_ context.Context, form engine.FormID) error {
	if err := f.check(errors.PhaseForm); err != nil {
		return err
	}
	if _, ok := f.forms[form]; !ok {
		return errors.InvalidHandle(errors.PhaseForm, "form-fill environment", form)
	}
	delete(f.forms, form)
	f.FormExits++
	return nil
}

func (f *Fake) LoadPage(_ context.Context, doc engine.DocumentID, index int) (engine.PageID, error) {
	data, err := f.document(errors.PhaseDocument, doc)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= CountPages(data) {
		return 0, errors.Engine(errors.PhaseDocument, engine.CodePage, fmt.Sprintf("load page %d: %s", index, engine.CodePage))
	}
	id := engine.PageID(f.id())
	f.pages[id] = &fakePage{doc: doc, index: index}
	return id, nil
}

func (f *Fake) ClosePage(_ context.Context, page engine.PageID) error {
	if err := f.check(errors.PhaseDocument); err != nil {
		return err
	}
	if _, ok := f.pages[page]; !ok {
		return errors.InvalidHandle(errors.PhaseDocument, "page", page)
	}
	if f.ClosePageErr != nil {
		return f.ClosePageErr
	}
	delete(f.pages, page)
	return nil
}

func (f *Fake) formPage(form engine.FormID, page engine.PageID) (*fakeForm, *fakePage, error) {
	if err := f.check(errors.PhaseForm); err != nil {
		return nil, nil, err
	}
	ff, ok := f.forms[form]
	if !ok {
		return nil, nil, errors.InvalidHandle(errors.PhaseForm, "form-fill environment", form)
	}
	p, ok := f.pages[page]
	if !ok {
		return nil, nil, errors.InvalidHandle(errors.PhaseForm, "page", page)
	}
	return ff, p, nil
}

func (f *Fake) FormAfterLoadPage(_ context.Context, form engine.FormID, page engine.PageID) error {
	ff, p, err := f.formPage(form, page)
	if err != nil {
		return err
	}
	if f.FormLoadErr != nil {
		return f.FormLoadErr
	}
	ff.cb.Invalidate(p.index, engine.Rect{Right: 612, Bottom: 792})
	ff.cb.OnChange()
	return nil
}

func (f *Fake) FormBeforeClosePage(_ context.Context, form engine.FormID, page engine.PageID) error {
	_, _, err := f.formPage(form, page)
	return err
}

func (f *Fake) Close(context.Context) error {
	f.closed = true
	f.ready = false
	clear(f.docs)
	clear(f.fields)
	clear(f.forms)
	clear(f.pages)
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool { return f.closed }

// ActiveForms returns the number of registered form-fill environments.
func (f *Fake) ActiveForms() int { return len(f.forms) }

// OpenPages returns the number of loaded pages.
func (f *Fake) OpenPages() int { return len(f.pages) }

// OpenDocuments returns the number of loaded documents.
func (f *Fake) OpenDocuments() int { return len(f.docs) }

// Field returns a copy of widget annot of doc.
func (f *Fake) Field(doc engine.DocumentID, annot int) (FakeField, bool) {
	fields := f.fields[doc]
	if annot < 0 || annot >= len(fields) {
		return FakeField{}, false
	}
	field := *fields[annot]
	field.Selected = slices.Clone(field.Selected)
	return field, true
}

// FocusedForms returns the number of environments holding form focus.
func (f *Fake) FocusedForms() int {
	n := 0
	for _, ff := range f.forms {
		if ff.focus != nil {
			n++
		}
	}
	return n
}

// FormVersion returns the version form was registered with, or 0.
func (f *Fake) FormVersion(form engine.FormID) int {
	if ff, ok := f.forms[form]; ok {
		return ff.version
	}
	return 0
}

var _ engine.Engine = (*Fake)(nil)
