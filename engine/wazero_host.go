package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

var (
	i32 = api.ValueTypeI32
	f64 = api.ValueTypeF64
)

// instantiateHost defines the callback imports the guest links against.
func (e *WazeroEngine) instantiateHost(ctx context.Context) error {
	rect := []api.ValueType{i32, i32, f64, f64, f64, f64}
	str := []api.ValueType{i32, i32, i32}

	_, err := e.runtime.NewHostModuleBuilder(e.hostName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostWriteBlock), str, []api.ValueType{i32}).
		Export("write_block").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostInvalidate), rect, nil).
		Export("ffi_invalidate").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostOutputSelectedRect), rect, nil).
		Export("ffi_output_selected_rect").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostSetCursor), []api.ValueType{i32, i32}, nil).
		Export("ffi_set_cursor").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostOnChange), []api.ValueType{i32}, nil).
		Export("ffi_on_change").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostExecuteNamedAction), str, nil).
		Export("ffi_execute_named_action").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostDoURIAction), str, nil).
		Export("ffi_do_uri_action").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostDoGoToAction), []api.ValueType{i32, i32, i32}, nil).
		Export("ffi_do_goto_action").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostSetTextFieldFocus), []api.ValueType{i32, i32, i32, i32}, nil).
		Export("ffi_set_text_field_focus").
		Instantiate(ctx)
	return err
}

// hostWriteBlock returns 1 when the block was accepted and 0 otherwise,
// which makes the guest serializer abort.
func (e *WazeroEngine) hostWriteBlock(_ context.Context, m api.Module, stack []uint64) {
	token := api.DecodeU32(stack[0])
	ptr := api.DecodeU32(stack[1])
	size := api.DecodeU32(stack[2])
	stack[0] = 0

	w, ok := e.writers[token]
	if !ok {
		Logger().Warn("write_block for unknown writer", zap.Uint32("writer", token))
		return
	}
	data, ok := m.Memory().Read(ptr, size)
	if !ok {
		Logger().Warn("write_block out of bounds", zap.Uint32("ptr", ptr), zap.Uint32("len", size))
		return
	}
	if err := w.WriteBlock(data); err != nil {
		debugf("writer %d rejected %d bytes: %v", token, size, err)
		return
	}
	stack[0] = 1
}

// callbacks resolves a guest token. Unknown tokens are dropped.
func (e *WazeroEngine) callbacks(token uint64) FormCallbacks {
	f, ok := e.forms[FormID(api.DecodeU32(token))]
	if !ok {
		debugf("callback for unknown form token %d", uint32(token))
		return nil
	}
	return f.cb
}

func decodeRect(stack []uint64) Rect {
	return Rect{
		Left:   api.DecodeF64(stack[0]),
		Top:    api.DecodeF64(stack[1]),
		Right:  api.DecodeF64(stack[2]),
		Bottom: api.DecodeF64(stack[3]),
	}
}

func readString(m api.Module, ptr, size uint64) (string, bool) {
	data, ok := m.Memory().Read(api.DecodeU32(ptr), api.DecodeU32(size))
	if !ok {
		return "", false
	}
	return string(data), true
}

func (e *WazeroEngine) hostInvalidate(_ context.Context, _ api.Module, stack []uint64) {
	if cb := e.callbacks(stack[0]); cb != nil {
		cb.Invalidate(e.pageIndex(api.DecodeU32(stack[1])), decodeRect(stack[2:]))
	}
}

func (e *WazeroEngine) hostOutputSelectedRect(_ context.Context, _ api.Module, stack []uint64) {
	if cb := e.callbacks(stack[0]); cb != nil {
		cb.OutputSelectedRect(e.pageIndex(api.DecodeU32(stack[1])), decodeRect(stack[2:]))
	}
}

func (e *WazeroEngine) hostSetCursor(_ context.Context, _ api.Module, stack []uint64) {
	if cb := e.callbacks(stack[0]); cb != nil {
		cb.SetCursor(Cursor(api.DecodeI32(stack[1])))
	}
}

func (e *WazeroEngine) hostOnChange(_ context.Context, _ api.Module, stack []uint64) {
	if cb := e.callbacks(stack[0]); cb != nil {
		cb.OnChange()
	}
}

func (e *WazeroEngine) hostExecuteNamedAction(_ context.Context, m api.Module, stack []uint64) {
	cb := e.callbacks(stack[0])
	if cb == nil {
		return
	}
	if name, ok := readString(m, stack[1], stack[2]); ok {
		cb.ExecuteNamedAction(name)
	}
}

func (e *WazeroEngine) hostDoURIAction(_ context.Context, m api.Module, stack []uint64) {
	cb := e.callbacks(stack[0])
	if cb == nil {
		return
	}
	if uri, ok := readString(m, stack[1], stack[2]); ok {
		cb.DoURIAction(uri)
	}
}

func (e *WazeroEngine) hostDoGoToAction(_ context.Context, _ api.Module, stack []uint64) {
	if cb := e.callbacks(stack[0]); cb != nil {
		cb.DoGoToAction(int(api.DecodeI32(stack[1])), ZoomMode(api.DecodeI32(stack[2])))
	}
}

func (e *WazeroEngine) hostSetTextFieldFocus(_ context.Context, m api.Module, stack []uint64) {
	cb := e.callbacks(stack[0])
	if cb == nil {
		return
	}
	if value, ok := readString(m, stack[1], stack[2]); ok {
		cb.SetTextFieldFocus(value, api.DecodeU32(stack[3]) != 0)
	}
}
