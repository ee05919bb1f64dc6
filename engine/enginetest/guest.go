package enginetest

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/internal/synth"
)

// GuestPageBase is added to a page index to form the guest page handle.
const GuestPageBase = 256

// GuestConfig shapes the synthetic engine guest.
type GuestConfig struct {
	// HostModule defaults to engine.DefaultHostModule.
	HostModule string
	// Pages is what FPDF_GetPageCount reports for any document.
	Pages int32
	// Fields is how many annotations per page accept form focus. Defaults
	// to 1.
	Fields int32
}

// Guest builds a WebAssembly module implementing the engine guest ABI with
// trivial semantics:
//
//   - malloc is a bump allocator that never frees
//   - one document slot; a non-null password fails with CodePassword,
//     empty data with CodeFormat
//   - PDFiumExt_SaveAsCopy writes the document back in two blocks
//   - form environments use the host token as their handle
//   - FORM_OnAfterLoadPage calls ffi_invalidate for the full page, then
//     ffi_set_cursor(hand) and ffi_on_change
//   - FORM_OnBeforeClosePage calls ffi_set_cursor(arrow)
//   - annotation handles are index+1; FORM_SetFocusedAnnot fails past
//     Fields, and the field edits succeed only while an annotation is
//     focused. FORM_ReplaceSelection calls ffi_on_change
func Guest(cfg GuestConfig) []byte {
	host := cfg.HostModule
	if host == "" {
		host = engine.DefaultHostModule
	}
	pages := cfg.Pages
	if pages <= 0 {
		pages = 1
	}
	fields := cfg.Fields
	if fields <= 0 {
		fields = 1
	}

	i32 := api.ValueTypeI32
	f64 := api.ValueTypeF64
	types := func(ts ...api.ValueType) []api.ValueType { return ts }

	b := synth.NewModuleBuilder()

	writeBlock := b.ImportFunc(host, "write_block", types(i32, i32, i32), types(i32))
	invalidate := b.ImportFunc(host, "ffi_invalidate", types(i32, i32, f64, f64, f64, f64), nil)
	onChange := b.ImportFunc(host, "ffi_on_change", types(i32), nil)
	setCursor := b.ImportFunc(host, "ffi_set_cursor", types(i32, i32), nil)

	heap := b.AddGlobal(i32, true, 1024)
	docPtr := b.AddGlobal(i32, true, 0)
	docLen := b.AddGlobal(i32, true, 0)
	lastErr := b.AddGlobal(i32, true, 0)
	formToken := b.AddGlobal(i32, true, 0)
	focused := b.AddGlobal(i32, true, 0)

	b.SetMemory(2, "memory")

	fail := func(code engine.ErrorCode) []byte {
		return synth.Seq(
			synth.If(),
			synth.I32Const(int32(code)), synth.GlobalSet(lastErr),
			synth.I32Const(0), synth.Op(synth.OpReturn, synth.OpEnd),
		)
	}
	half := synth.Seq(synth.GlobalGet(docLen), synth.I32Const(1), synth.Op(synth.OpI32ShrU))

	b.AddFunc("_initialize", nil, nil, nil)
	b.AddFunc("FPDF_InitLibrary", nil, nil, nil)
	b.AddFunc("FPDF_DestroyLibrary", nil, nil, nil)

	b.AddFunc("malloc", types(i32), types(i32), synth.Seq(
		synth.GlobalGet(heap),
		synth.GlobalGet(heap), synth.LocalGet(0), synth.Op(synth.OpI32Add), synth.GlobalSet(heap),
	))
	b.AddFunc("free", types(i32), nil, nil)

	b.AddFunc("FPDF_LoadMemDocument", types(i32, i32, i32), types(i32), synth.Seq(
		synth.LocalGet(2), fail(engine.CodePassword),
		synth.LocalGet(1), synth.Op(synth.OpI32Eqz), fail(engine.CodeFormat),
		synth.LocalGet(0), synth.GlobalSet(docPtr),
		synth.LocalGet(1), synth.GlobalSet(docLen),
		synth.I32Const(0), synth.GlobalSet(lastErr),
		synth.I32Const(1),
	))
	b.AddFunc("FPDF_CloseDocument", types(i32), nil, synth.Seq(
		synth.I32Const(0), synth.GlobalSet(docLen),
	))
	b.AddFunc("FPDF_GetLastError", nil, types(i32), synth.GlobalGet(lastErr))
	b.AddFunc("FPDF_GetPageCount", types(i32), types(i32), synth.I32Const(pages))

	b.AddFunc("FPDF_LoadPage", types(i32, i32), types(i32), synth.Seq(
		synth.LocalGet(1), synth.I32Const(pages), synth.Op(synth.OpI32GeU), fail(engine.CodePage),
		synth.LocalGet(1), synth.I32Const(GuestPageBase), synth.Op(synth.OpI32Add),
	))
	b.AddFunc("FPDF_ClosePage", types(i32), nil, nil)

	b.AddFunc("PDFiumExt_SaveAsCopy", types(i32, i32, i32), types(i32), synth.Seq(
		synth.LocalGet(1), synth.GlobalGet(docPtr), half,
		synth.Call(writeBlock), synth.Op(synth.OpI32Eqz), fail(engine.CodeUnknown),
		synth.LocalGet(1),
		synth.GlobalGet(docPtr), half, synth.Op(synth.OpI32Add),
		synth.GlobalGet(docLen), half, synth.Op(synth.OpI32Sub),
		synth.Call(writeBlock), synth.Op(synth.OpI32Eqz), fail(engine.CodeUnknown),
		synth.I32Const(1),
	))

	b.AddFunc("PDFiumExt_InitFormFillEnvironment", types(i32, i32, i32), types(i32), synth.Seq(
		synth.LocalGet(1), synth.GlobalSet(formToken),
		synth.LocalGet(1),
	))
	b.AddFunc("PDFiumExt_ExitFormFillEnvironment", types(i32), nil, synth.Seq(
		synth.I32Const(0), synth.GlobalSet(formToken),
	))

	b.AddFunc("FORM_OnAfterLoadPage", types(i32, i32), nil, synth.Seq(
		synth.GlobalGet(formToken), synth.LocalGet(0),
		synth.F64Const(0), synth.F64Const(0), synth.F64Const(612), synth.F64Const(792),
		synth.Call(invalidate),
		synth.GlobalGet(formToken), synth.I32Const(int32(engine.CursorHand)), synth.Call(setCursor),
		synth.GlobalGet(formToken), synth.Call(onChange),
	))
	b.AddFunc("FORM_OnBeforeClosePage", types(i32, i32), nil, synth.Seq(
		synth.GlobalGet(formToken), synth.I32Const(int32(engine.CursorArrow)), synth.Call(setCursor),
	))

	b.AddFunc("FPDFPage_GetAnnot", types(i32, i32), types(i32), synth.Seq(
		synth.LocalGet(1), synth.I32Const(1), synth.Op(synth.OpI32Add),
	))
	b.AddFunc("FPDFPage_CloseAnnot", types(i32), nil, nil)

	b.AddFunc("FORM_SetFocusedAnnot", types(i32, i32), types(i32), synth.Seq(
		synth.LocalGet(1), synth.I32Const(1), synth.Op(synth.OpI32Sub),
		synth.I32Const(fields), synth.Op(synth.OpI32GeU), fail(engine.CodeUnknown),
		synth.LocalGet(1), synth.GlobalSet(focused),
		synth.I32Const(1),
	))
	b.AddFunc("FORM_SelectAllText", types(i32, i32), types(i32), synth.GlobalGet(focused))
	b.AddFunc("FORM_ReplaceSelection", types(i32, i32, i32), nil, synth.Seq(
		synth.GlobalGet(formToken), synth.Call(onChange),
	))
	b.AddFunc("FORM_SetIndexSelected", types(i32, i32, i32, i32), types(i32), synth.GlobalGet(focused))
	b.AddFunc("FORM_OnChar", types(i32, i32, i32, i32), types(i32), synth.GlobalGet(focused))
	b.AddFunc("FORM_ForceToKillFocus", types(i32), types(i32), synth.Seq(
		synth.I32Const(0), synth.GlobalSet(focused),
		synth.I32Const(1),
	))

	return b.Build()
}
