package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/pdfium-bridge/errors"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// encodeWide converts s to the NUL-terminated UTF-16LE string the form
// subsystem expects.
func encodeWide(s string) ([]byte, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	return append(b, 0, 0), nil
}

func fieldError(f FieldFailure, detail string) error {
	return errors.Engine(errors.PhaseForm, f, detail)
}

// fieldCall calls a boolean form export and reports a zero result as f.
func (e *WazeroEngine) fieldCall(ctx context.Context, f FieldFailure, name string, args ...uint64) error {
	res, err := e.call(ctx, errors.PhaseForm, name, args...)
	if err != nil {
		return err
	}
	if uint32(res[0]) == 0 {
		return fieldError(f, f.String())
	}
	return nil
}

func (e *WazeroEngine) closeAnnot(ctx context.Context, handle uint32) {
	if _, err := e.call(ctx, errors.PhaseForm, fnCloseAnnot, uint64(handle)); err != nil {
		Logger().Warn("close annotation", zap.Uint32("annot", handle), zap.Error(err))
	}
}

func (e *WazeroEngine) FocusAnnot(ctx context.Context, form FormID, page PageID, annot int) error {
	f, p, err := e.formPage(form, page)
	if err != nil {
		return err
	}
	if annot < 0 {
		return errors.InvalidInput(errors.PhaseForm, fmt.Sprintf("negative annotation index %d", annot))
	}
	if f.annot != 0 {
		return errors.LifecycleViolation(errors.PhaseForm, fmt.Sprintf("%s already has a focused annotation", form))
	}

	res, err := e.call(ctx, errors.PhaseForm, fnGetAnnot, uint64(p.handle), uint64(uint32(annot)))
	if err != nil {
		return err
	}
	handle := uint32(res[0])
	if handle == 0 {
		return fieldError(FieldCantFocusAnnot, fmt.Sprintf("annotation %d: not found", annot))
	}
	if err := e.fieldCall(ctx, FieldCantFocusAnnot, fnSetFocusedAnnot, uint64(f.handle), uint64(handle)); err != nil {
		e.closeAnnot(ctx, handle)
		return err
	}
	f.annot = handle
	return nil
}

func (e *WazeroEngine) SelectAllText(ctx context.Context, form FormID, page PageID) error {
	f, p, err := e.formPage(form, page)
	if err != nil {
		return err
	}
	return e.fieldCall(ctx, FieldCantSelectText, fnSelectAllText, uint64(f.handle), uint64(p.handle))
}

// ReplaceSelection copies text into guest memory as UTF-16LE for the
// duration of the call.
func (e *WazeroEngine) ReplaceSelection(ctx context.Context, form FormID, page PageID, text string) error {
	f, p, err := e.formPage(form, page)
	if err != nil {
		return err
	}
	wide, err := encodeWide(text)
	if err != nil {
		return errors.Wrap(errors.PhaseForm, errors.KindInvalidInput, err, "encode replacement text")
	}
	ptr, err := e.malloc(ctx, errors.PhaseForm, wide)
	if err != nil {
		return err
	}
	defer e.free(ctx, ptr)

	_, err = e.call(ctx, errors.PhaseForm, fnReplaceSelection, uint64(f.handle), uint64(p.handle), uint64(ptr))
	return err
}

func (e *WazeroEngine) SetIndexSelected(ctx context.Context, form FormID, page PageID, index int, selected bool) error {
	f, p, err := e.formPage(form, page)
	if err != nil {
		return err
	}
	if index < 0 {
		return errors.InvalidInput(errors.PhaseForm, fmt.Sprintf("negative option index %d", index))
	}
	var sel uint64
	if selected {
		sel = 1
	}
	return e.fieldCall(ctx, FieldCantSelectOption, fnSetIndexSelected, uint64(f.handle), uint64(p.handle), uint64(uint32(index)), sel)
}

func (e *WazeroEngine) OnChar(ctx context.Context, form FormID, page PageID, char rune, modifiers int) error {
	f, p, err := e.formPage(form, page)
	if err != nil {
		return err
	}
	return e.fieldCall(ctx, FieldCantCheckField, fnOnChar, uint64(f.handle), uint64(p.handle), uint64(uint32(char)), uint64(uint32(modifiers)))
}

// KillFocus drops form focus and closes the focused annotation, if any.
func (e *WazeroEngine) KillFocus(ctx context.Context, form FormID) error {
	if err := e.ready(errors.PhaseForm); err != nil {
		return err
	}
	f, ok := e.forms[form]
	if !ok {
		return errors.InvalidHandle(errors.PhaseForm, "form-fill environment", form)
	}

	res, err := e.call(ctx, errors.PhaseForm, fnForceToKillFocus, uint64(f.handle))
	if err == nil && uint32(res[0]) == 0 {
		debugf("%s had no focus to kill", form)
	}
	if f.annot != 0 {
		e.closeAnnot(ctx, f.annot)
		f.annot = 0
	}
	return err
}
