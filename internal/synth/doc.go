// Package synth builds small core WebAssembly modules in memory.
//
// It exists so engine code can be exercised on a real wazero runtime
// without a compiled document engine: tests describe a guest with imported
// host functions, globals, a memory and hand-assembled function bodies, and
// Build emits the binary.
//
// Function indices follow the core module index space. Imports are numbered
// first, so all ImportFunc calls must precede AddFunc.
package synth
