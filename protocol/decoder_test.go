// File: protocol/decoder_test.go
// Author: momentics <momentics@gmail.com>

package protocol_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/momentics/chatloop/api"
	"github.com/momentics/chatloop/protocol"
)

// scriptReader plays back a sequence of Read results, imitating a
// non-blocking socket: each step delivers some bytes, a would-block, or EOF.
// Once a step returns io.EOF, every later read returns io.EOF too.
type scriptReader struct {
	steps []step
	eof   bool
}

type step struct {
	data []byte
	err  error
}

func (r *scriptReader) Read(p []byte) (int, error) {
	if len(r.steps) == 0 {
		if r.eof {
			return 0, io.EOF
		}
		return 0, api.ErrWouldBlock
	}
	s := r.steps[0]
	r.steps = r.steps[1:]
	if s.err == io.EOF {
		r.eof = true
	}
	n := copy(p, s.data)
	return n, s.err
}

func encode(t *testing.T, opcode byte, payload []byte) []byte {
	t.Helper()
	raw, err := protocol.EncodeFrame(opcode, payload)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestDecoderDrainsBackToBackFrames(t *testing.T) {
	var wire []byte
	wire = append(wire, encode(t, protocol.OpcodeText, []byte("one"))...)
	wire = append(wire, encode(t, protocol.OpcodeText, []byte("two"))...)

	d := protocol.NewDecoder(&scriptReader{steps: []step{{data: wire}}})

	for _, want := range []string{"one", "two"} {
		frame, err := d.Next()
		if err != nil {
			t.Fatal(err)
		}
		if string(frame.Payload) != want {
			t.Errorf("payload = %q, want %q", frame.Payload, want)
		}
	}
	if _, err := d.Next(); !errors.Is(err, api.ErrWouldBlock) {
		t.Errorf("drained decoder returned %v, want ErrWouldBlock", err)
	}
}

func TestDecoderBuffersPartialFrameAcrossReads(t *testing.T) {
	wire := encode(t, protocol.OpcodeBinary, bytes.Repeat([]byte("z"), 300))
	half := len(wire) / 2

	r := &scriptReader{steps: []step{{data: wire[:half]}}}
	d := protocol.NewDecoder(r)

	if _, err := d.Next(); !errors.Is(err, api.ErrWouldBlock) {
		t.Fatalf("first read: %v, want ErrWouldBlock", err)
	}
	if d.Buffered() != half {
		t.Errorf("Buffered() = %d, want %d", d.Buffered(), half)
	}

	r.steps = []step{{data: wire[half:]}}
	frame, err := d.Next()
	if err != nil {
		t.Fatal(err)
	}
	if len(frame.Payload) != 300 || frame.Opcode != protocol.OpcodeBinary {
		t.Errorf("frame = opcode %d, %d bytes", frame.Opcode, len(frame.Payload))
	}
	if d.Buffered() != 0 {
		t.Errorf("Buffered() = %d after full frame", d.Buffered())
	}
}

func TestDecoderDecodesBytesDeliveredWithEOF(t *testing.T) {
	wire := encode(t, protocol.OpcodeText, []byte("last words"))
	d := protocol.NewDecoder(&scriptReader{steps: []step{{data: wire, err: io.EOF}}})

	frame, err := d.Next()
	if err != nil {
		t.Fatalf("frame delivered with EOF was lost: %v", err)
	}
	if string(frame.Payload) != "last words" {
		t.Errorf("payload = %q", frame.Payload)
	}
	if _, err := d.Next(); !errors.Is(err, api.ErrConnClosed) {
		t.Errorf("err = %v, want ErrConnClosed", err)
	}
}

func TestDecoderReportsEOFAsConnClosed(t *testing.T) {
	d := protocol.NewDecoder(&scriptReader{steps: []step{{err: io.EOF}}})
	if _, err := d.Next(); !errors.Is(err, api.ErrConnClosed) {
		t.Errorf("err = %v, want ErrConnClosed", err)
	}
}

func TestDecoderSurfacesFramingError(t *testing.T) {
	raw := []byte{0x82, 127, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}
	d := protocol.NewDecoder(&scriptReader{steps: []step{{data: raw}}})
	if _, err := d.Next(); !errors.Is(err, api.ErrInvalidFrame) {
		t.Errorf("err = %v, want ErrInvalidFrame", err)
	}
}
