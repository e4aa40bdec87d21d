// File: protocol/constants.go
// Author: momentics <momentics@gmail.com>
//
// WebSocket wire protocol constants.

package protocol

const (
	// Opcodes
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA

	// Bit masks
	FinBit  = 0x80
	MaskBit = 0x80

	// MaxFramePayload bounds a single frame to protect against resource
	// exhaustion from a misbehaving server.
	MaxFramePayload = 1 << 20 // 1 MiB
)

// IsControl reports whether opcode designates a control frame.
func IsControl(opcode byte) bool {
	return opcode&0x8 != 0
}
