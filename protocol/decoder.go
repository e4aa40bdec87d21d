// File: protocol/decoder.go
// Author: momentics <momentics@gmail.com>
//
// Streaming frame decoder for a non-blocking connection. Partial frames stay
// buffered across calls; the decoder never waits for bytes that have not
// arrived yet.

package protocol

import (
	"io"

	"github.com/momentics/chatloop/api"
)

const readChunk = 4096

// Decoder reads WebSocket frames from a non-blocking reader.
type Decoder struct {
	r   io.Reader
	buf []byte
}

// NewDecoder returns a Decoder draining frames from r. r's Read must return
// a would-block error (see api.IsWouldBlock) instead of blocking when no
// data is available.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next returns the next complete frame.
//
// When the buffered bytes plus whatever r can deliver right now do not form
// a complete frame, Next returns api.ErrWouldBlock; the partial frame stays
// buffered for the next call. io.EOF from r is reported as
// api.ErrConnClosed. Any other read or framing error is returned as is.
func (d *Decoder) Next() (*Frame, error) {
	for {
		if frame, n, err := decodeFrame(d.buf); err != nil {
			return nil, err
		} else if frame != nil {
			d.buf = d.buf[n:]
			return frame, nil
		}

		chunk := make([]byte, readChunk)
		n, err := d.r.Read(chunk)
		if n > 0 {
			d.buf = append(d.buf, chunk[:n]...)
		}
		if err != nil {
			if n > 0 {
				continue // decode the bytes that did arrive first
			}
			if err == io.EOF {
				return nil, api.ErrConnClosed
			}
			if api.IsWouldBlock(err) {
				return nil, api.ErrWouldBlock
			}
			return nil, err
		}
	}
}

// Buffered returns the number of undecoded bytes currently held.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}
