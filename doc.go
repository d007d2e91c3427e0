// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pdfcore implements the lexical and syntactic core of a PDF
// parser: tokenization of PDF syntax, parsing of PDF objects, indirect
// objects and streams, and parsing of classic cross-reference tables
// and trailers.
//
// The package is deliberately narrow. It does not decode stream
// filters, does not decrypt encrypted files, does not assemble a
// document-wide cross-reference index across multiple xref sections,
// and does not render or extract text. Those are the job of a
// surrounding document layer built on top of this package.
//
// The three collaborating types are ByteCursor (random access over the
// input), Tokenizer (a pull-based, pushback-capable token source), and
// ObjectParser (which turns tokens into Objects, IndirectObjects and
// XRefTables). A stream's declared Length may be an indirect reference;
// resolving it is delegated to a ReferenceResolver supplied by the
// caller, so this package never needs to own a cross-reference index
// itself.
package pdfcore

import "fmt"

// DebugOn enables diagnostic logging to stdout of header, xref and
// stream-length parsing decisions. Off by default; a caller embedding
// this package in a CLI can flip it for troubleshooting a specific
// file.
var DebugOn = false

func debugf(format string, args ...interface{}) {
	if DebugOn {
		fmt.Printf("pdfcore: "+format+"\n", args...)
	}
}
