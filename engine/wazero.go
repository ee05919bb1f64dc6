package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/errors"
)

// DefaultHostModule is the import module name the guest calls back into.
const DefaultHostModule = "pdfbridge"

const guestModuleName = "pdfium"

// Guest exports.
const (
	fnMalloc              = "malloc"
	fnFree                = "free"
	fnInitialize          = "_initialize"
	fnInitLibrary         = "FPDF_InitLibrary"
	fnDestroyLibrary      = "FPDF_DestroyLibrary"
	fnLoadMemDocument     = "FPDF_LoadMemDocument"
	fnCloseDocument       = "FPDF_CloseDocument"
	fnGetLastError        = "FPDF_GetLastError"
	fnGetPageCount        = "FPDF_GetPageCount"
	fnLoadPage            = "FPDF_LoadPage"
	fnClosePage           = "FPDF_ClosePage"
	fnSaveAsCopy          = "PDFiumExt_SaveAsCopy"
	fnInitFormFill        = "PDFiumExt_InitFormFillEnvironment"
	fnExitFormFill        = "PDFiumExt_ExitFormFillEnvironment"
	fnFormAfterLoadPage   = "FORM_OnAfterLoadPage"
	fnFormBeforeClosePage = "FORM_OnBeforeClosePage"
	fnGetAnnot            = "FPDFPage_GetAnnot"
	fnCloseAnnot          = "FPDFPage_CloseAnnot"
	fnSetFocusedAnnot     = "FORM_SetFocusedAnnot"
	fnSelectAllText       = "FORM_SelectAllText"
	fnReplaceSelection    = "FORM_ReplaceSelection"
	fnSetIndexSelected    = "FORM_SetIndexSelected"
	fnOnChar              = "FORM_OnChar"
	fnForceToKillFocus    = "FORM_ForceToKillFocus"
)

var requiredExports = []string{
	fnMalloc,
	fnFree,
	fnInitLibrary,
	fnLoadMemDocument,
	fnCloseDocument,
	fnGetLastError,
	fnGetPageCount,
	fnLoadPage,
	fnClosePage,
	fnSaveAsCopy,
	fnInitFormFill,
	fnExitFormFill,
	fnFormAfterLoadPage,
	fnFormBeforeClosePage,
	fnGetAnnot,
	fnCloseAnnot,
	fnSetFocusedAnnot,
	fnSelectAllText,
	fnReplaceSelection,
	fnSetIndexSelected,
	fnOnChar,
	fnForceToKillFocus,
}

// Config holds configuration for engine creation
type Config struct {
	// HostModule is the module name the guest imports callbacks from.
	// Empty means DefaultHostModule.
	HostModule string

	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// WazeroEngine implements Engine by hosting a pdfium WebAssembly build on
// wazero.
type WazeroEngine struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	mod      api.Module
	fns      map[string]api.Function
	docs     map[DocumentID]*guestDoc
	forms    map[FormID]*guestForm
	pages    map[PageID]*guestPage
	writers  map[uint32]FileWriter
	hostName string
	nextID   uint32
	state    engineState
}

type engineState uint8

const (
	stateCompiled engineState = iota
	stateReady
	stateClosed
)

type guestDoc struct {
	handle  uint32
	dataPtr uint32
}

type guestForm struct {
	cb     FormCallbacks
	handle uint32
	doc    DocumentID
	// annot is the focused annotation handle, or 0.
	annot uint32
}

type guestPage struct {
	handle uint32
	doc    DocumentID
	index  int
}

// NewWazeroEngine compiles wasmBytes into a new engine. Init must be called
// before use.
func NewWazeroEngine(ctx context.Context, wasmBytes []byte, cfg *Config) (*WazeroEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	hostName := DefaultHostModule

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.HostModule != "" {
			hostName = cfg.HostModule
		}
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		runtime.Close(ctx)
		return nil, errors.Load("compile engine module", err)
	}

	return &WazeroEngine{
		runtime:  runtime,
		compiled: compiled,
		fns:      make(map[string]api.Function),
		docs:     make(map[DocumentID]*guestDoc),
		forms:    make(map[FormID]*guestForm),
		pages:    make(map[PageID]*guestPage),
		writers:  make(map[uint32]FileWriter),
		hostName: hostName,
	}, nil
}

// Init instantiates the guest and bootstraps the library.
func (e *WazeroEngine) Init(ctx context.Context) error {
	switch e.state {
	case stateReady:
		return errors.LifecycleViolation(errors.PhaseInit, "engine already initialized")
	case stateClosed:
		return errors.LifecycleViolation(errors.PhaseInit, "engine closed")
	}

	if err := e.instantiate(ctx); err != nil {
		e.closePartial(ctx)
		return err
	}

	e.state = stateReady
	Logger().Debug("engine initialized", zap.String("host_module", e.hostName))
	return nil
}

func (e *WazeroEngine) instantiate(ctx context.Context) error {
	if err := instantiateWASI(ctx, e.runtime); err != nil {
		return errors.Instantiation(fmt.Errorf("instantiate WASI: %w", err))
	}
	if err := e.instantiateHost(ctx); err != nil {
		return errors.Instantiation(fmt.Errorf("instantiate host module %q: %w", e.hostName, err))
	}

	// _start is never run; reactor builds expose _initialize instead.
	modCfg := wazero.NewModuleConfig().WithName(guestModuleName).WithStartFunctions()
	mod, err := e.runtime.InstantiateModule(ctx, e.compiled, modCfg)
	if err != nil {
		return errors.Instantiation(err)
	}
	e.mod = mod

	for _, name := range requiredExports {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			return errors.NotFound(errors.PhaseLoad, "export", name)
		}
		e.fns[name] = fn
	}
	if mod.Memory() == nil {
		return errors.NotFound(errors.PhaseLoad, "export", "memory")
	}

	if fn := mod.ExportedFunction(fnInitialize); fn != nil {
		if _, err := fn.Call(ctx); err != nil {
			return errors.Wrap(errors.PhaseInit, errors.KindEngine, err, "call "+fnInitialize)
		}
	}
	_, err = e.call(ctx, errors.PhaseInit, fnInitLibrary)
	return err
}

// closePartial undoes a failed Init so a retry reports the same failure
// instead of a module name collision.
func (e *WazeroEngine) closePartial(ctx context.Context) {
	for _, name := range []string{guestModuleName, e.hostName, wasiModuleName} {
		if m := e.runtime.Module(name); m != nil {
			if err := m.Close(ctx); err != nil {
				Logger().Warn("close partially instantiated module", zap.String("module", name), zap.Error(err))
			}
		}
	}
	e.mod = nil
	clear(e.fns)
}

// Close destroys the library and releases the runtime. Closing twice is a
// no-op.
func (e *WazeroEngine) Close(ctx context.Context) error {
	if e.state == stateClosed {
		return nil
	}
	if e.state == stateReady {
		if fn := e.mod.ExportedFunction(fnDestroyLibrary); fn != nil {
			if _, err := fn.Call(ctx); err != nil {
				Logger().Warn("destroy library", zap.Error(err))
			}
		}
	}
	e.state = stateClosed
	clear(e.docs)
	clear(e.forms)
	clear(e.pages)
	clear(e.writers)
	return e.runtime.Close(ctx)
}

func (e *WazeroEngine) ready(phase errors.Phase) error {
	if e.state != stateReady {
		return errors.LifecycleViolation(phase, "engine not initialized")
	}
	return nil
}

func (e *WazeroEngine) id() uint32 {
	e.nextID++
	if e.nextID == 0 {
		e.nextID++
	}
	return e.nextID
}

func (e *WazeroEngine) call(ctx context.Context, phase errors.Phase, name string, args ...uint64) ([]uint64, error) {
	fn := e.fns[name]
	if fn == nil {
		return nil, errors.NotFound(phase, "export", name)
	}
	res, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.Wrap(phase, errors.KindEngine, err, "call "+name)
	}
	return res, nil
}

func (e *WazeroEngine) lastError(ctx context.Context) ErrorCode {
	res, err := e.call(ctx, errors.PhaseHost, fnGetLastError)
	if err != nil || len(res) == 0 {
		return CodeUnknown
	}
	return ErrorCode(uint32(res[0]))
}

func (e *WazeroEngine) engineError(ctx context.Context, phase errors.Phase, op string) error {
	code := e.lastError(ctx)
	return errors.Engine(phase, code, fmt.Sprintf("%s: %s", op, code))
}

// malloc copies data into fresh guest memory.
func (e *WazeroEngine) malloc(ctx context.Context, phase errors.Phase, data []byte) (uint32, error) {
	res, err := e.call(ctx, phase, fnMalloc, uint64(len(data)))
	if err != nil {
		return 0, errors.AllocationFailed(phase, len(data), err)
	}
	ptr := uint32(res[0])
	if ptr == 0 {
		return 0, errors.AllocationFailed(phase, len(data), nil)
	}
	if !e.mod.Memory().Write(ptr, data) {
		e.free(ctx, ptr)
		return 0, errors.AllocationFailed(phase, len(data), fmt.Errorf("write out of bounds: offset=%d, length=%d", ptr, len(data)))
	}
	return ptr, nil
}

func (e *WazeroEngine) free(ctx context.Context, ptr uint32) {
	if ptr == 0 {
		return
	}
	if _, err := e.call(ctx, errors.PhaseHost, fnFree, uint64(ptr)); err != nil {
		Logger().Warn("guest free failed", zap.Uint32("ptr", ptr), zap.Error(err))
	}
}

// LoadDocument copies data into guest memory and opens it. The copy lives
// until CloseDocument, since the engine reads from it lazily.
func (e *WazeroEngine) LoadDocument(ctx context.Context, data []byte, password string) (DocumentID, error) {
	if err := e.ready(errors.PhaseDocument); err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, errors.InvalidInput(errors.PhaseDocument, "empty document data")
	}

	dataPtr, err := e.malloc(ctx, errors.PhaseDocument, data)
	if err != nil {
		return 0, err
	}

	var pwdPtr uint32
	if password != "" {
		pwdPtr, err = e.malloc(ctx, errors.PhaseDocument, append([]byte(password), 0))
		if err != nil {
			e.free(ctx, dataPtr)
			return 0, err
		}
		defer e.free(ctx, pwdPtr)
	}

	res, err := e.call(ctx, errors.PhaseDocument, fnLoadMemDocument, uint64(dataPtr), uint64(len(data)), uint64(pwdPtr))
	if err != nil {
		e.free(ctx, dataPtr)
		return 0, err
	}
	handle := uint32(res[0])
	if handle == 0 {
		loadErr := e.engineError(ctx, errors.PhaseDocument, "load document")
		e.free(ctx, dataPtr)
		return 0, loadErr
	}

	id := DocumentID(e.id())
	e.docs[id] = &guestDoc{handle: handle, dataPtr: dataPtr}
	debugf("loaded %s (%d bytes) as guest handle %d", id, len(data), handle)
	return id, nil
}

// CloseDocument closes doc and frees its guest copy.
func (e *WazeroEngine) CloseDocument(ctx context.Context, doc DocumentID) error {
	if err := e.ready(errors.PhaseDocument); err != nil {
		return err
	}
	d, ok := e.docs[doc]
	if !ok {
		return errors.UnboundDocument(errors.PhaseDocument, fmt.Sprintf("%s is not loaded", doc))
	}
	delete(e.docs, doc)

	if _, err := e.call(ctx, errors.PhaseDocument, fnCloseDocument, uint64(d.handle)); err != nil {
		return err
	}
	e.free(ctx, d.dataPtr)
	return nil
}

func (e *WazeroEngine) DocumentLoaded(doc DocumentID) bool {
	_, ok := e.docs[doc]
	return ok && e.state == stateReady
}

func (e *WazeroEngine) document(phase errors.Phase, doc DocumentID) (*guestDoc, error) {
	if err := e.ready(phase); err != nil {
		return nil, err
	}
	d, ok := e.docs[doc]
	if !ok {
		return nil, errors.UnboundDocument(phase, fmt.Sprintf("%s is not loaded", doc))
	}
	return d, nil
}

func (e *WazeroEngine) PageCount(ctx context.Context, doc DocumentID) (int, error) {
	d, err := e.document(errors.PhaseDocument, doc)
	if err != nil {
		return 0, err
	}
	res, err := e.call(ctx, errors.PhaseDocument, fnGetPageCount, uint64(d.handle))
	if err != nil {
		return 0, err
	}
	return int(int32(uint32(res[0]))), nil
}

// SaveAsCopy registers w under a fresh token for the duration of the call.
func (e *WazeroEngine) SaveAsCopy(ctx context.Context, doc DocumentID, w FileWriter, flags SaveFlags) error {
	d, err := e.document(errors.PhaseSave, doc)
	if err != nil {
		return err
	}
	if w == nil {
		return errors.InvalidInput(errors.PhaseSave, "nil file writer")
	}

	token := e.id()
	e.writers[token] = w
	defer delete(e.writers, token)

	res, err := e.call(ctx, errors.PhaseSave, fnSaveAsCopy, uint64(d.handle), uint64(token), uint64(flags))
	if err != nil {
		return err
	}
	if uint32(res[0]) == 0 {
		return e.engineError(ctx, errors.PhaseSave, "save as copy")
	}
	return nil
}

// InitFormFill registers cb. The FormID doubles as the callback token the
// guest passes back to the ffi_* imports.
func (e *WazeroEngine) InitFormFill(ctx context.Context, doc DocumentID, version int, cb FormCallbacks) (FormID, error) {
	d, err := e.document(errors.PhaseForm, doc)
	if err != nil {
		return 0, err
	}
	if cb == nil {
		return 0, errors.InvalidInput(errors.PhaseForm, "nil form callbacks")
	}

	id := FormID(e.id())
	e.forms[id] = &guestForm{cb: cb, doc: doc}

	res, err := e.call(ctx, errors.PhaseForm, fnInitFormFill, uint64(d.handle), uint64(id), uint64(uint32(version)))
	if err != nil {
		delete(e.forms, id)
		return 0, err
	}
	handle := uint32(res[0])
	if handle == 0 {
		delete(e.forms, id)
		return 0, e.engineError(ctx, errors.PhaseForm, "init form-fill environment")
	}
	e.forms[id].handle = handle
	return id, nil
}

func (e *WazeroEngine) ExitFormFill(ctx context.Context, form FormID) error {
	if err := e.ready(errors.PhaseForm); err != nil {
		return err
	}
	f, ok := e.forms[form]
	if !ok {
		return errors.InvalidHandle(errors.PhaseForm, "form-fill environment", form)
	}
	delete(e.forms, form)
	if f.annot != 0 {
		e.closeAnnot(ctx, f.annot)
	}
	_, err := e.call(ctx, errors.PhaseForm, fnExitFormFill, uint64(f.handle))
	return err
}

func (e *WazeroEngine) LoadPage(ctx context.Context, doc DocumentID, index int) (PageID, error) {
	d, err := e.document(errors.PhaseDocument, doc)
	if err != nil {
		return 0, err
	}
	if index < 0 {
		return 0, errors.InvalidInput(errors.PhaseDocument, fmt.Sprintf("negative page index %d", index))
	}
	res, err := e.call(ctx, errors.PhaseDocument, fnLoadPage, uint64(d.handle), uint64(uint32(index)))
	if err != nil {
		return 0, err
	}
	handle := uint32(res[0])
	if handle == 0 {
		return 0, e.engineError(ctx, errors.PhaseDocument, fmt.Sprintf("load page %d", index))
	}
	id := PageID(e.id())
	e.pages[id] = &guestPage{handle: handle, doc: doc, index: index}
	return id, nil
}

func (e *WazeroEngine) ClosePage(ctx context.Context, page PageID) error {
	if err := e.ready(errors.PhaseDocument); err != nil {
		return err
	}
	p, ok := e.pages[page]
	if !ok {
		return errors.InvalidHandle(errors.PhaseDocument, "page", page)
	}
	delete(e.pages, page)
	_, err := e.call(ctx, errors.PhaseDocument, fnClosePage, uint64(p.handle))
	return err
}

func (e *WazeroEngine) formPage(form FormID, page PageID) (*guestForm, *guestPage, error) {
	if err := e.ready(errors.PhaseForm); err != nil {
		return nil, nil, err
	}
	f, ok := e.forms[form]
	if !ok {
		return nil, nil, errors.InvalidHandle(errors.PhaseForm, "form-fill environment", form)
	}
	p, ok := e.pages[page]
	if !ok {
		return nil, nil, errors.InvalidHandle(errors.PhaseForm, "page", page)
	}
	if p.doc != f.doc {
		return nil, nil, errors.InvalidInput(errors.PhaseForm,
			fmt.Sprintf("%s belongs to %s, environment is bound to %s", page, p.doc, f.doc))
	}
	return f, p, nil
}

func (e *WazeroEngine) FormAfterLoadPage(ctx context.Context, form FormID, page PageID) error {
	f, p, err := e.formPage(form, page)
	if err != nil {
		return err
	}
	_, err = e.call(ctx, errors.PhaseForm, fnFormAfterLoadPage, uint64(p.handle), uint64(f.handle))
	return err
}

func (e *WazeroEngine) FormBeforeClosePage(ctx context.Context, form FormID, page PageID) error {
	f, p, err := e.formPage(form, page)
	if err != nil {
		return err
	}
	_, err = e.call(ctx, errors.PhaseForm, fnFormBeforeClosePage, uint64(p.handle), uint64(f.handle))
	return err
}

// pageIndex maps a guest page handle back to its index, or -1.
func (e *WazeroEngine) pageIndex(handle uint32) int {
	for _, p := range e.pages {
		if p.handle == handle {
			return p.index
		}
	}
	return -1
}

var _ Engine = (*WazeroEngine)(nil)
