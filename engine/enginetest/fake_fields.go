package enginetest

import (
	"context"
	"fmt"
	"slices"
	"unicode"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/errors"
)

func fieldError(f engine.FieldFailure, detail string) error {
	return errors.Engine(errors.PhaseForm, f, detail)
}

// focused returns the focused field of form when it has type typ.
func (f *Fake) focused(form engine.FormID, page engine.PageID, typ string) (*fakeForm, *FakeField, error) {
	ff, _, err := f.formPage(form, page)
	if err != nil {
		return nil, nil, err
	}
	if ff.focus == nil || ff.focus.Type != typ {
		return ff, nil, nil
	}
	return ff, ff.focus, nil
}

func (f *Fake) FocusAnnot(_ context.Context, form engine.FormID, page engine.PageID, annot int) error {
	ff, _, err := f.formPage(form, page)
	if err != nil {
		return err
	}
	if annot < 0 {
		return errors.InvalidInput(errors.PhaseForm, fmt.Sprintf("negative annotation index %d", annot))
	}
	if ff.focus != nil {
		return errors.LifecycleViolation(errors.PhaseForm, fmt.Sprintf("%s already has a focused annotation", form))
	}
	fields := f.fields[ff.doc]
	if annot >= len(fields) {
		return fieldError(engine.FieldCantFocusAnnot, fmt.Sprintf("annotation %d: not found", annot))
	}
	ff.focus = fields[annot]
	ff.selectAll = false
	if ff.focus.Type == "Tx" {
		ff.cb.SetTextFieldFocus(ff.focus.Text, true)
	}
	return nil
}

func (f *Fake) SelectAllText(_ context.Context, form engine.FormID, page engine.PageID) error {
	ff, field, err := f.focused(form, page, "Tx")
	if err != nil {
		return err
	}
	if field == nil {
		return fieldError(engine.FieldCantSelectText, engine.FieldCantSelectText.String())
	}
	ff.selectAll = true
	return nil
}

// ReplaceSelection replaces the whole value after SelectAllText and appends
// otherwise. Without a focused text field it does nothing.
func (f *Fake) ReplaceSelection(_ context.Context, form engine.FormID, page engine.PageID, text string) error {
	ff, field, err := f.focused(form, page, "Tx")
	if err != nil || field == nil {
		return err
	}
	if ff.selectAll {
		field.Text = text
	} else {
		field.Text += text
	}
	ff.selectAll = false
	ff.cb.OnChange()
	return nil
}

func (f *Fake) SetIndexSelected(_ context.Context, form engine.FormID, page engine.PageID, index int, selected bool) error {
	ff, field, err := f.focused(form, page, "Ch")
	if err != nil {
		return err
	}
	if index < 0 {
		return errors.InvalidInput(errors.PhaseForm, fmt.Sprintf("negative option index %d", index))
	}
	if field == nil {
		return fieldError(engine.FieldCantSelectOption, engine.FieldCantSelectOption.String())
	}
	i, found := slices.BinarySearch(field.Selected, index)
	switch {
	case selected && !found:
		field.Selected = slices.Insert(field.Selected, i, index)
	case !selected && found:
		field.Selected = slices.Delete(field.Selected, i, i+1)
	}
	ff.cb.OnChange()
	return nil
}

// OnChar toggles a focused check box on KeyReturn and types printable
// characters into a focused text field.
func (f *Fake) OnChar(_ context.Context, form engine.FormID, page engine.PageID, char rune, _ int) error {
	ff, _, err := f.formPage(form, page)
	if err != nil {
		return err
	}
	field := ff.focus
	switch {
	case field == nil:
	case field.Type == "Btn" && char == engine.KeyReturn:
		field.Checked = !field.Checked
		ff.cb.OnChange()
		return nil
	case field.Type == "Tx" && unicode.IsPrint(char):
		field.Text += string(char)
		ff.cb.OnChange()
		return nil
	}
	return fieldError(engine.FieldCantCheckField, engine.FieldCantCheckField.String())
}

func (f *Fake) KillFocus(_ context.Context, form engine.FormID) error {
	if err := f.check(errors.PhaseForm); err != nil {
		return err
	}
	ff, ok := f.forms[form]
	if !ok {
		return errors.InvalidHandle(errors.PhaseForm, "form-fill environment", form)
	}
	if ff.focus != nil && ff.focus.Type == "Tx" {
		ff.cb.SetTextFieldFocus(ff.focus.Text, false)
	}
	ff.focus = nil
	ff.selectAll = false
	return nil
}
