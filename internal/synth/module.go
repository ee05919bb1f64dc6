package synth

import (
	"github.com/tetratelabs/wazero/api"
)

const (
	sectionType   = 0x01
	sectionImport = 0x02
	sectionFunc   = 0x03
	sectionMemory = 0x05
	sectionGlobal = 0x06
	sectionExport = 0x07
	sectionCode   = 0x0a

	externFunc   = 0x00
	externMemory = 0x02
	externGlobal = 0x03
)

// ModuleBuilder assembles a core module.
type ModuleBuilder struct {
	memExport string
	imports   []importFunc
	funcs     []localFunc
	globals   []global
	memPages  uint32
	hasMemory bool
}

type importFunc struct {
	module  string
	name    string
	params  []api.ValueType
	results []api.ValueType
}

type localFunc struct {
	export  string
	params  []api.ValueType
	results []api.ValueType
	locals  []api.ValueType
	body    []byte
}

type global struct {
	valType api.ValueType
	mutable bool
	init    int64
}

// NewModuleBuilder creates an empty builder.
func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{}
}

// ImportFunc declares a function import and returns its function index.
func (b *ModuleBuilder) ImportFunc(module, name string, params, results []api.ValueType) uint32 {
	b.imports = append(b.imports, importFunc{
		module:  module,
		name:    name,
		params:  params,
		results: results,
	})
	return uint32(len(b.imports) - 1)
}

// AddGlobal defines a global with an initial value and returns its index.
// Float globals are always initialized to zero.
func (b *ModuleBuilder) AddGlobal(valType api.ValueType, mutable bool, init int64) uint32 {
	b.globals = append(b.globals, global{valType: valType, mutable: mutable, init: init})
	return uint32(len(b.globals) - 1)
}

// SetMemory defines a memory of minPages and exports it under name.
func (b *ModuleBuilder) SetMemory(minPages uint32, name string) {
	b.hasMemory = true
	b.memPages = minPages
	b.memExport = name
}

// AddFunc defines a function and returns its index. body holds the
// instructions without the final end opcode. An empty export name keeps
// the function private.
func (b *ModuleBuilder) AddFunc(export string, params, results []api.ValueType, body []byte) uint32 {
	return b.AddFuncWithLocals(export, params, results, nil, body)
}

// AddFuncWithLocals is AddFunc with extra declared locals, numbered after
// the params.
func (b *ModuleBuilder) AddFuncWithLocals(export string, params, results, locals []api.ValueType, body []byte) uint32 {
	b.funcs = append(b.funcs, localFunc{
		export:  export,
		params:  params,
		results: results,
		locals:  locals,
		body:    body,
	})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Build generates the module bytes.
func (b *ModuleBuilder) Build() []byte {
	var wasm []byte

	// Magic and version
	wasm = append(wasm, 0x00, 0x61, 0x73, 0x6d)
	wasm = append(wasm, 0x01, 0x00, 0x00, 0x00)

	if len(b.imports)+len(b.funcs) > 0 {
		wasm = appendSection(wasm, sectionType, b.buildTypeSection())
	}
	if len(b.imports) > 0 {
		wasm = appendSection(wasm, sectionImport, b.buildImportSection())
	}
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, sectionFunc, b.buildFuncSection())
	}
	if b.hasMemory {
		wasm = appendSection(wasm, sectionMemory, b.buildMemorySection())
	}
	if len(b.globals) > 0 {
		wasm = appendSection(wasm, sectionGlobal, b.buildGlobalSection())
	}
	wasm = appendSection(wasm, sectionExport, b.buildExportSection())
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, sectionCode, b.buildCodeSection())
	}

	return wasm
}

func appendSection(wasm []byte, id byte, section []byte) []byte {
	wasm = append(wasm, id)
	wasm = append(wasm, EncodeULEB128(uint32(len(section)))...)
	return append(wasm, section...)
}

// One type per function, imports first.
func (b *ModuleBuilder) buildTypeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.imports)+len(b.funcs)))...)

	for _, f := range b.imports {
		section = append(section, 0x60)
		section = append(section, encodeValTypes(f.params)...)
		section = append(section, encodeValTypes(f.results)...)
	}
	for _, f := range b.funcs {
		section = append(section, 0x60)
		section = append(section, encodeValTypes(f.params)...)
		section = append(section, encodeValTypes(f.results)...)
	}

	return section
}

func (b *ModuleBuilder) buildImportSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.imports)))...)

	for i, f := range b.imports {
		section = append(section, encodeName(f.module)...)
		section = append(section, encodeName(f.name)...)
		section = append(section, externFunc)
		section = append(section, EncodeULEB128(uint32(i))...)
	}

	return section
}

func (b *ModuleBuilder) buildFuncSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for i := range b.funcs {
		section = append(section, EncodeULEB128(uint32(len(b.imports)+i))...)
	}
	return section
}

func (b *ModuleBuilder) buildMemorySection() []byte {
	var section []byte
	section = append(section, 0x01)
	section = append(section, 0x00)
	section = append(section, EncodeULEB128(b.memPages)...)
	return section
}

func (b *ModuleBuilder) buildGlobalSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.globals)))...)

	for _, g := range b.globals {
		section = append(section, ValTypeToWasm(g.valType))
		if g.mutable {
			section = append(section, 0x01)
		} else {
			section = append(section, 0x00)
		}
		switch g.valType {
		case api.ValueTypeI32:
			section = append(section, 0x41)
			section = append(section, EncodeSLEB128(int32(g.init))...)
		case api.ValueTypeI64:
			section = append(section, 0x42)
			section = append(section, EncodeSLEB128(g.init)...)
		case api.ValueTypeF32:
			section = append(section, 0x43, 0, 0, 0, 0)
		case api.ValueTypeF64:
			section = append(section, 0x44, 0, 0, 0, 0, 0, 0, 0, 0)
		default:
			section = append(section, 0x41, 0x00)
		}
		section = append(section, OpEnd)
	}

	return section
}

func (b *ModuleBuilder) buildExportSection() []byte {
	var entries []byte
	count := 0

	if b.hasMemory && b.memExport != "" {
		entries = append(entries, encodeName(b.memExport)...)
		entries = append(entries, externMemory, 0x00)
		count++
	}

	for i, f := range b.funcs {
		if f.export == "" {
			continue
		}
		entries = append(entries, encodeName(f.export)...)
		entries = append(entries, externFunc)
		entries = append(entries, EncodeULEB128(uint32(len(b.imports)+i))...)
		count++
	}

	section := EncodeULEB128(uint32(count))
	return append(section, entries...)
}

func (b *ModuleBuilder) buildCodeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)

	for _, f := range b.funcs {
		body := buildFuncBody(f)
		section = append(section, EncodeULEB128(uint32(len(body)))...)
		section = append(section, body...)
	}

	return section
}

func buildFuncBody(f localFunc) []byte {
	var body []byte
	body = append(body, EncodeULEB128(uint32(len(f.locals)))...)
	for _, t := range f.locals {
		body = append(body, 0x01, ValTypeToWasm(t))
	}
	body = append(body, f.body...)
	body = append(body, OpEnd)
	return body
}
