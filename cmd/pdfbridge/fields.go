package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/formfill"
)

// fieldEdit is one -set flag: page:annot:text:<value>, page:annot:select:<n>,
// page:annot:deselect:<n> or page:annot:check.
type fieldEdit struct {
	page  int
	annot int
	value formfill.FieldValue
}

func (e fieldEdit) String() string {
	return fmt.Sprintf("%d:%d:%s", e.page, e.annot, e.value.Kind)
}

func parseFieldEdit(s string) (fieldEdit, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return fieldEdit{}, fmt.Errorf("field edit %q: want page:annot:kind[:value]", s)
	}
	page, err := strconv.Atoi(parts[0])
	if err != nil || page < 0 {
		return fieldEdit{}, fmt.Errorf("field edit %q: bad page %q", s, parts[0])
	}
	annot, err := strconv.Atoi(parts[1])
	if err != nil || annot < 0 {
		return fieldEdit{}, fmt.Errorf("field edit %q: bad annotation %q", s, parts[1])
	}

	e := fieldEdit{page: page, annot: annot}
	arg, hasArg := "", len(parts) == 4
	if hasArg {
		arg = parts[3]
	}
	switch kind := parts[2]; kind {
	case "text":
		if !hasArg {
			return fieldEdit{}, fmt.Errorf("field edit %q: text needs a value", s)
		}
		e.value = formfill.TextValue(arg)
	case "select", "deselect":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return fieldEdit{}, fmt.Errorf("field edit %q: bad option index %q", s, arg)
		}
		e.value = formfill.SelectionValue(n, kind == "select")
	case "check":
		if hasArg {
			return fieldEdit{}, fmt.Errorf("field edit %q: check takes no value", s)
		}
		e.value = formfill.CheckedValue()
	default:
		return fieldEdit{}, fmt.Errorf("field edit %q: unknown kind %q", s, kind)
	}
	return e, nil
}

// setField applies e through the session's form environment, binding one
// first if needed.
func (s *session) setField(ctx context.Context, e fieldEdit) error {
	if err := s.bindForm(ctx); err != nil {
		return err
	}
	page, err := s.bridge.OpenFormPage(ctx, s.env, e.page)
	if err != nil {
		return err
	}
	err = s.bridge.SetFormFieldValue(ctx, page, e.annot, e.value)
	if cerr := s.bridge.CloseFormPage(ctx, page); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	s.logger.Info("field set", zap.Stringer("edit", e))
	return nil
}
