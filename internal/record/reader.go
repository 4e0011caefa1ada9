// Package record frames a byte stream into delimiter-terminated path records.
package record

import (
	"bytes"
	"io"
)

const (
	// Null is the delimiter used by locate -0.
	Null byte = 0
	// Newline is the delimiter used by plain locate output.
	Newline byte = '\n'

	defaultChunkSize = 32 * 1024
)

// Reader splits the output of an io.Reader into records.
//
// Unlike bufio.Scanner, a Reader exposes a single-read step (Fill) and a
// check for whether a whole record is already buffered (Ready), which lets
// callers pull from a pipe only when a poll says data is there.
type Reader struct {
	src   io.Reader
	delim byte
	buf   []byte
	start int
	chunk []byte
	err   error
}

// NewReader creates a Reader splitting src on delim.
func NewReader(src io.Reader, delim byte) *Reader {
	return NewReaderSize(src, delim, defaultChunkSize)
}

// NewReaderSize creates a Reader whose underlying reads are at most size bytes.
func NewReaderSize(src io.Reader, delim byte, size int) *Reader {
	if size <= 0 {
		size = defaultChunkSize
	}
	return &Reader{
		src:   src,
		delim: delim,
		chunk: make([]byte, size),
	}
}

// Delimiter returns the record delimiter.
func (r *Reader) Delimiter() byte {
	return r.delim
}

// Fill performs exactly one read from the source and buffers the result.
// The returned error is sticky: once the source failed or ended, Fill
// returns the same error without reading again.
func (r *Reader) Fill() error {
	if r.err != nil {
		return r.err
	}

	if r.start > 0 {
		n := copy(r.buf, r.buf[r.start:])
		r.buf = r.buf[:n]
		r.start = 0
	}

	n, err := r.src.Read(r.chunk)
	if n > 0 {
		r.buf = append(r.buf, r.chunk[:n]...)
	}
	if err != nil {
		r.err = err
	}
	return r.err
}

// Ready reports whether Next can return without reading from the source:
// either a complete record is buffered or the source has ended.
func (r *Reader) Ready() bool {
	r.skipEmpty()
	if r.err != nil {
		return true
	}
	return bytes.IndexByte(r.buf[r.start:], r.delim) >= 0
}

// Buffered returns the number of unconsumed bytes.
func (r *Reader) Buffered() int {
	return len(r.buf) - r.start
}

// Err returns the error that ended the source, nil while it is still open
// and nil after a clean io.EOF.
func (r *Reader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

// Next appends the next record to dst, without its delimiter.
//
// Trailing bytes without a delimiter are returned as a last record once the
// source reports io.EOF. When no record is left, Next returns dst unchanged
// together with io.EOF, or with the read error that ended the source.
func (r *Reader) Next(dst []byte) ([]byte, error) {
	for {
		r.skipEmpty()

		pending := r.buf[r.start:]
		if i := bytes.IndexByte(pending, r.delim); i >= 0 {
			dst = append(dst, pending[:i]...)
			r.start += i + 1
			return dst, nil
		}

		if r.err != nil {
			if len(pending) > 0 {
				dst = append(dst, pending...)
				r.start = len(r.buf)
				return dst, nil
			}
			return dst, r.err
		}

		_ = r.Fill()
	}
}

// skipEmpty drops leading delimiters so adjacent delimiters never produce
// empty records.
func (r *Reader) skipEmpty() {
	for r.start < len(r.buf) && r.buf[r.start] == r.delim {
		r.start++
	}
}
