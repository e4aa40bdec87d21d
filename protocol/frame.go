// File: protocol/frame.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Frame type and byte-level encoding/decoding.

package protocol

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/momentics/chatloop/api"
)

// Frame is a decoded WebSocket frame.
type Frame struct {
	IsFinal bool
	Opcode  byte
	Payload []byte
}

// decodeFrame parses one frame from raw. It returns the frame and the number
// of bytes consumed, or (nil, 0, nil) when raw holds an incomplete frame.
func decodeFrame(raw []byte) (*Frame, int, error) {
	if len(raw) < 2 {
		return nil, 0, nil
	}
	fin := raw[0]&FinBit != 0
	opcode := raw[0] & 0x0F
	masked := raw[1]&MaskBit != 0
	length := int64(raw[1] & 0x7F)
	offset := 2

	switch length {
	case 126:
		if len(raw) < offset+2 {
			return nil, 0, nil
		}
		length = int64(binary.BigEndian.Uint16(raw[offset:]))
		offset += 2
	case 127:
		if len(raw) < offset+8 {
			return nil, 0, nil
		}
		wide := binary.BigEndian.Uint64(raw[offset:])
		if wide > MaxFramePayload {
			return nil, 0, fmt.Errorf("%w: payload of %d bytes exceeds limit", api.ErrInvalidFrame, wide)
		}
		length = int64(wide)
		offset += 8
	}

	if length > MaxFramePayload {
		return nil, 0, fmt.Errorf("%w: payload of %d bytes exceeds limit", api.ErrInvalidFrame, length)
	}

	var maskKey [4]byte
	if masked {
		if len(raw) < offset+4 {
			return nil, 0, nil
		}
		copy(maskKey[:], raw[offset:offset+4])
		offset += 4
	}

	total := offset + int(length)
	if len(raw) < total {
		return nil, 0, nil
	}

	payload := make([]byte, length)
	copy(payload, raw[offset:total])
	if masked {
		maskInPlace(payload, maskKey)
	}

	return &Frame{IsFinal: fin, Opcode: opcode, Payload: payload}, total, nil
}

// EncodeFrame serializes a client frame. Client frames are always masked
// with a fresh random key, as the server side of the connection requires.
func EncodeFrame(opcode byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxFramePayload {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds limit", api.ErrInvalidFrame, len(payload))
	}

	var hdr [10]byte
	hdr[0] = FinBit | (opcode & 0x0F)

	var header []byte
	switch {
	case len(payload) <= 125:
		hdr[1] = byte(len(payload)) | MaskBit
		header = hdr[:2]
	case len(payload) <= 0xFFFF:
		hdr[1] = 126 | MaskBit
		binary.BigEndian.PutUint16(hdr[2:], uint16(len(payload)))
		header = hdr[:4]
	default:
		hdr[1] = 127 | MaskBit
		binary.BigEndian.PutUint64(hdr[2:], uint64(len(payload)))
		header = hdr[:10]
	}

	var maskKey [4]byte
	if _, err := rand.Read(maskKey[:]); err != nil {
		return nil, fmt.Errorf("mask key: %w", err)
	}

	out := make([]byte, 0, len(header)+4+len(payload))
	out = append(out, header...)
	out = append(out, maskKey[:]...)
	start := len(out)
	out = append(out, payload...)
	maskInPlace(out[start:], maskKey)
	return out, nil
}

// maskInPlace applies the XOR mask to buf.
func maskInPlace(buf []byte, key [4]byte) {
	for i := range buf {
		buf[i] ^= key[i%4]
	}
}
