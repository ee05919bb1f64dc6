package synth

import (
	"encoding/binary"
	"math"
)

// Opcodes used by hand-assembled bodies.
const (
	OpReturn   byte = 0x0f
	OpEnd      byte = 0x0b
	OpIf       byte = 0x04
	OpDrop     byte = 0x1a
	OpI32Eqz   byte = 0x45
	OpI32Add   byte = 0x6a
	OpI32Sub   byte = 0x6b
	OpI32ShrU  byte = 0x76
	OpI32GeU   byte = 0x4f
	BlockEmpty byte = 0x40
)

// Seq concatenates instruction fragments.
func Seq(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Op wraps raw opcodes as a fragment.
func Op(ops ...byte) []byte {
	return ops
}

func I32Const(v int32) []byte {
	return append([]byte{0x41}, EncodeSLEB128(v)...)
}

func I64Const(v int64) []byte {
	return append([]byte{0x42}, EncodeSLEB128(v)...)
}

func F64Const(v float64) []byte {
	out := make([]byte, 9)
	out[0] = 0x44
	binary.LittleEndian.PutUint64(out[1:], math.Float64bits(v))
	return out
}

func LocalGet(i uint32) []byte {
	return append([]byte{0x20}, EncodeULEB128(i)...)
}

func LocalSet(i uint32) []byte {
	return append([]byte{0x21}, EncodeULEB128(i)...)
}

func GlobalGet(i uint32) []byte {
	return append([]byte{0x23}, EncodeULEB128(i)...)
}

func GlobalSet(i uint32) []byte {
	return append([]byte{0x24}, EncodeULEB128(i)...)
}

func Call(fn uint32) []byte {
	return append([]byte{0x10}, EncodeULEB128(fn)...)
}

// If opens a block with no result; close it with OpEnd.
func If() []byte {
	return []byte{OpIf, BlockEmpty}
}
