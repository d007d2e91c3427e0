// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcore

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// bufSize is the chunk size the cursor reloads from the underlying
// reader at a time. ReadExact, used for stream payloads and xref
// entries, reads through this same buffer.
const bufSize = 65536

// ByteCursor is a random-access, position-tracking reader over a
// seekable PDF byte stream. It treats "\r", "\n" and "\r\n" as a
// single logical line terminator wherever PDF syntax calls for one.
type ByteCursor struct {
	r      io.ReaderAt
	size   int64
	offset int64 // logical read position

	buf []byte // lookahead window ending just before offset
	pos int    // index into buf of the next unread byte

	eof bool
}

// NewByteCursor returns a cursor reading r, which must report size
// total bytes, starting at byte offset 0.
func NewByteCursor(r io.ReaderAt, size int64) *ByteCursor {
	return &ByteCursor{r: r, size: size}
}

// Position returns the offset of the next byte ReadByte would return.
func (c *ByteCursor) Position() int64 {
	return c.offset - int64(len(c.buf)-c.pos)
}

// Seek repositions the cursor to offset, discarding any buffered
// lookahead.
func (c *ByteCursor) Seek(offset int64) {
	c.offset = offset
	c.buf = c.buf[:0]
	c.pos = 0
	c.eof = false
}

func (c *ByteCursor) fill() bool {
	if c.eof {
		return false
	}
	n := bufSize
	if remaining := c.size - c.offset; remaining < int64(n) {
		n = int(remaining)
	}
	if n <= 0 {
		c.eof = true
		return false
	}
	tmp := make([]byte, n)
	read, err := c.r.ReadAt(tmp, c.offset)
	if read == 0 {
		c.eof = true
		return false
	}
	c.buf = tmp[:read]
	c.pos = 0
	c.offset += int64(read)
	if c.offset >= c.size || err != nil {
		// This was the last chunk; further fills report EOF.
		c.eof = true
	}
	return true
}

// ReadByte returns the next byte, or (0, false) at end of input.
func (c *ByteCursor) ReadByte() (byte, bool) {
	if c.pos >= len(c.buf) {
		if !c.fill() {
			return 0, false
		}
	}
	b := c.buf[c.pos]
	c.pos++
	return b, true
}

// PeekByte returns the next byte without consuming it.
func (c *ByteCursor) PeekByte() (byte, bool) {
	if c.pos >= len(c.buf) {
		if !c.fill() {
			return 0, false
		}
	}
	return c.buf[c.pos], true
}

// unreadByte pushes the last-read byte back, valid only immediately
// after a ReadByte call that has not crossed a fill boundary.
func (c *ByteCursor) unreadByte() {
	if c.pos > 0 {
		c.pos--
	}
}

// ReadExact reads exactly n bytes, used for stream payloads and
// 20-byte xref entries. It returns an error if fewer than n bytes are
// available.
func (c *ByteCursor) ReadExact(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		b, ok := c.ReadByte()
		if !ok {
			return nil, wrapParseError("read exact", ClassLexical, c.Position(),
				errors.Errorf("expected %d bytes, got %d", n, len(out)))
		}
		out = append(out, b)
	}
	return out, nil
}

// FindStartxrefOffset scans backward from the end of the input for the
// last line-anchored occurrence of "startxref", then parses the
// non-negative integer that follows it, ending in "%%EOF". It returns
// the parsed offset.
func (c *ByteCursor) FindStartxrefOffset() (int64, error) {
	// A well-formed trailer keeps startxref within a couple KB of EOF,
	// but a large /ID or /Root, or an incremental update, can push it
	// further back. Escalate the trailing window rather than giving up
	// after the first miss, up to scanning the whole file.
	const initialWindow = 2048
	const maxWindow = 10 * 1024

	var (
		tail  []byte
		start int64
		idx   int
	)
	for window := int64(initialWindow); ; window *= 4 {
		if window > maxWindow && window < c.size {
			// jump straight to the full file once the escalated
			// window would exceed the last non-full step.
			window = c.size
		}
		if window >= c.size {
			window = c.size
		}
		start = c.size - window
		if start < 0 {
			start = 0
		}
		tail = make([]byte, c.size-start)
		if _, err := c.r.ReadAt(tail, start); err != nil && err != io.EOF {
			return 0, wrapParseError("find startxref", ClassStructural, start, err)
		}
		idx = findLastLine(tail, "startxref")
		if idx >= 0 {
			break
		}
		debugf("startxref not found in trailing %d bytes", len(tail))
		if start == 0 {
			return 0, newParseError("find startxref", ClassStructural, start, "startxref keyword not found")
		}
	}
	pos := idx + len("startxref")

	// Skip the line terminator and any surrounding whitespace.
	for pos < len(tail) && isSpace(tail[pos]) {
		pos++
	}
	digitStart := pos
	for pos < len(tail) && tail[pos] >= '0' && tail[pos] <= '9' {
		pos++
	}
	if pos == digitStart {
		return 0, newParseError("find startxref", ClassStructural, start+int64(digitStart), "startxref not followed by an integer")
	}
	offset, err := strconv.ParseInt(string(tail[digitStart:pos]), 10, 64)
	if err != nil {
		return 0, wrapParseError("find startxref", ClassStructural, start+int64(digitStart), err)
	}

	rest := tail[pos:]
	for len(rest) > 0 && isSpace(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) < 5 || string(rest[:5]) != "%%EOF" {
		return 0, newParseError("find startxref", ClassStructural, start+int64(pos), "startxref offset not followed by %%EOF")
	}

	return offset, nil
}

// findLastLine finds the last occurrence of s that starts at the
// beginning of a line (preceded by CR, LF, or the start of buf).
func findLastLine(buf []byte, s string) int {
	if len(s) == 0 || len(buf) < len(s) {
		return -1
	}
	needle := []byte(s)
	for i := len(buf) - len(needle); i >= 0; i-- {
		if i > 0 && buf[i-1] != '\n' && buf[i-1] != '\r' {
			continue
		}
		match := true
		for j := range needle {
			if buf[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
