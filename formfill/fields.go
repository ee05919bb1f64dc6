package formfill

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/errors"
)

// FieldKind selects how SetFieldValue edits a widget.
type FieldKind uint8

const (
	// FieldText replaces the whole value of a text field.
	FieldText FieldKind = iota + 1
	// FieldSelection selects or deselects one option of a choice field.
	FieldSelection
	// FieldChecked toggles a check box or radio button.
	FieldChecked
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "text"
	case FieldSelection:
		return "selection"
	case FieldChecked:
		return "checked"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// FieldValue is the edit applied to one widget.
type FieldValue struct {
	Kind     FieldKind
	Text     string
	Index    int
	Selected bool
}

func TextValue(text string) FieldValue { return FieldValue{Kind: FieldText, Text: text} }
func CheckedValue() FieldValue         { return FieldValue{Kind: FieldChecked} }

func SelectionValue(index int, selected bool) FieldValue {
	return FieldValue{Kind: FieldSelection, Index: index, Selected: selected}
}

// SetFieldValue focuses annotation annot of p, applies v through the form
// subsystem the way a user edit would, and drops focus again. Focus is
// released on every path past a successful focus.
//
// Engine refusals carry an engine.FieldFailure as the error Value:
// FieldCantFocusAnnot, FieldCantSelectText, FieldCantSelectOption or
// FieldCantCheckField.
func (e *Environment) SetFieldValue(ctx context.Context, p *Page, annot int, v FieldValue) error {
	if e.retired {
		return errors.LifecycleViolation(errors.PhaseForm, "form-fill environment already exited")
	}
	if p == nil || p.closed {
		return errors.InvalidHandle(errors.PhaseForm, "form page", nil)
	}
	if p.env != e {
		return errors.InvalidInput(errors.PhaseForm, "form page belongs to another environment")
	}
	if annot < 0 {
		return errors.New(errors.PhaseForm, errors.KindInvalidInput).
			Value(annot).
			Detail("negative annotation index").
			Build()
	}
	switch v.Kind {
	case FieldText, FieldChecked:
	case FieldSelection:
		if v.Index < 0 {
			return errors.New(errors.PhaseForm, errors.KindInvalidInput).
				Value(v.Index).
				Detail("negative option index").
				Build()
		}
	default:
		return errors.InvalidInput(errors.PhaseForm, fmt.Sprintf("unknown field kind %s", v.Kind))
	}

	if err := e.eng.FocusAnnot(ctx, e.form, p.id, annot); err != nil {
		return err
	}

	err := e.applyField(ctx, p, v)
	if kerr := e.eng.KillFocus(ctx, e.form); kerr != nil {
		if err != nil {
			Logger().Warn("kill focus after failed edit",
				zap.Int("annot", annot),
				zap.Stringer("kind", v.Kind),
				zap.Error(kerr))
			return err
		}
		return kerr
	}
	return err
}

func (e *Environment) applyField(ctx context.Context, p *Page, v FieldValue) error {
	switch v.Kind {
	case FieldText:
		if err := e.eng.SelectAllText(ctx, e.form, p.id); err != nil {
			return err
		}
		return e.eng.ReplaceSelection(ctx, e.form, p.id, v.Text)
	case FieldSelection:
		return e.eng.SetIndexSelected(ctx, e.form, p.id, v.Index, v.Selected)
	default:
		return e.eng.OnChar(ctx, e.form, p.id, engine.KeyReturn, 0)
	}
}
