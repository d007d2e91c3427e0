// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcore

import "sync"

// tokenizerPool reuses Tokenizers (and their scratch buffers) across
// re-entrant ParseIndirectObject calls made by a ReferenceResolver,
// so resolving a chain of stream Lengths doesn't allocate a fresh
// Tokenizer per hop.
var tokenizerPool = sync.Pool{
	New: func() interface{} {
		return &Tokenizer{
			ignoreComments: true,
			tmp:            make([]byte, 0, 256),
			pushback:       make([]Token, 0, 4),
		}
	},
}

// AcquireTokenizer retrieves a pooled Tokenizer bound to cur. Pair with
// ReleaseTokenizer once the caller is done with it.
func AcquireTokenizer(cur *ByteCursor) *Tokenizer {
	tz := tokenizerPool.Get().(*Tokenizer)
	tz.cur = cur
	tz.ignoreComments = true
	tz.pushback = tz.pushback[:0]
	tz.tmp = tz.tmp[:0]
	return tz
}

// ReleaseTokenizer returns tz to the pool. tz must not be used again by
// the caller afterward.
func ReleaseTokenizer(tz *Tokenizer) {
	if tz == nil {
		return
	}
	tz.cur = nil
	tz.pushback = tz.pushback[:0]
	tz.tmp = tz.tmp[:0]
	tokenizerPool.Put(tz)
}
