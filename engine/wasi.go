package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

const wasiModuleName = "wasi_snapshot_preview1"

// instantiateWASI provides WASI preview1 for engine builds linked against
// wasi-libc. Nothing is mounted and no args or env are passed.
func instantiateWASI(ctx context.Context, r wazero.Runtime) error {
	if r.Module(wasiModuleName) != nil {
		return nil
	}
	builder := r.NewHostModuleBuilder(wasiModuleName)
	wasi_snapshot_preview1.NewFunctionExporter().ExportFunctions(builder)
	_, err := builder.Instantiate(ctx)
	return err
}
