// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcore

import (
	"fmt"

	"github.com/pkg/errors"
)

// Class categorizes a ParseError by where in the grammar it occurred.
type Class int

const (
	// ClassLexical covers malformed numbers, unterminated strings,
	// unknown keywords, bad hex digits, and short reads.
	ClassLexical Class = iota
	// ClassStructural covers an expected token kind not found, such as
	// a dictionary key that is not a Name, or a stream missing endstream.
	ClassStructural
	// ClassSemantic covers a stream Length that is missing, negative,
	// or not an Integer after resolution, and a malformed header.
	ClassSemantic
	// ClassUnexpectedEOF covers an Empty token where a value was required.
	ClassUnexpectedEOF
)

func (c Class) String() string {
	switch c {
	case ClassLexical:
		return "lexical"
	case ClassStructural:
		return "structural"
	case ClassSemantic:
		return "semantic"
	case ClassUnexpectedEOF:
		return "unexpected-eof"
	default:
		return "unknown"
	}
}

// ParseError is the error type returned by every parse operation in
// this package. It always carries the byte offset at which the error
// was detected, so a caller can inspect the surrounding bytes.
type ParseError struct {
	Op     string // operation that failed, e.g. "parse header", "parse xref"
	Class  Class
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdf: %s at offset %d: %s: %v", e.Op, e.Offset, e.Class, e.Err)
	}
	return fmt.Sprintf("pdf: %s at offset %d: %s", e.Op, e.Offset, e.Class)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// newParseError builds a ParseError, wrapping msg with errors.New so
// that callers using github.com/pkg/errors get a stack trace attached.
func newParseError(op string, class Class, offset int64, msg string) *ParseError {
	return &ParseError{Op: op, Class: class, Offset: offset, Err: errors.New(msg)}
}

func newParseErrorf(op string, class Class, offset int64, format string, args ...interface{}) *ParseError {
	return &ParseError{Op: op, Class: class, Offset: offset, Err: errors.Errorf(format, args...)}
}

// wrapParseError wraps an underlying error (typically from the
// ByteCursor's io.ReaderAt) with parser context.
func wrapParseError(op string, class Class, offset int64, err error) *ParseError {
	if err == nil {
		return nil
	}
	return &ParseError{Op: op, Class: class, Offset: offset, Err: errors.Wrap(err, op)}
}
