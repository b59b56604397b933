package resp

import (
	"errors"
	"io"
)

const readChunk = 4096

// Reader decodes values from a streaming transport. It accumulates raw bytes
// and retries Decode until a complete value is available, so it tolerates
// arbitrarily fragmented reads.
type Reader struct {
	r   io.Reader
	buf []byte
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:   r,
		buf: make([]byte, 0, readChunk),
	}
}

// ReadValue reads the next complete value from the transport.
//
// io.EOF is returned only on a clean boundary between values; a transport
// that closes mid-frame yields io.ErrUnexpectedEOF.
func (r *Reader) ReadValue() (Value, error) {
	for {
		if len(r.buf) > 0 {
			v, n, err := Decode(r.buf)
			if err == nil {
				r.consume(n)
				return v, nil
			}
			if !errors.Is(err, ErrIncomplete) {
				return Value{}, err
			}
		}

		if err := r.fill(); err != nil {
			if err == io.EOF && len(r.buf) > 0 {
				return Value{}, io.ErrUnexpectedEOF
			}
			return Value{}, err
		}
	}
}

func (r *Reader) consume(n int) {
	remaining := copy(r.buf, r.buf[n:])
	r.buf = r.buf[:remaining]
}

func (r *Reader) fill() error {
	if cap(r.buf)-len(r.buf) < readChunk/2 {
		grown := make([]byte, len(r.buf), cap(r.buf)*2+readChunk)
		copy(grown, r.buf)
		r.buf = grown
	}

	n, err := r.r.Read(r.buf[len(r.buf):cap(r.buf)])
	r.buf = r.buf[:len(r.buf)+n]
	if n > 0 {
		return nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return err
}
