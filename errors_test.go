// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcore

import (
	"errors"
	"testing"
)

func TestParseErrorMessageIncludesOpClassOffset(t *testing.T) {
	err := newParseError("parse object", ClassLexical, 42, "bad token")
	msg := err.Error()
	for _, want := range []string{"parse object", "42", "lexical", "bad token"} {
		if !contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestParseErrorUnwrap(t *testing.T) {
	inner := errors.New("underlying failure")
	pe := wrapParseError("read exact", ClassUnexpectedEOF, 10, inner)
	if !errors.Is(pe, inner) && errors.Unwrap(pe) == nil {
		t.Errorf("Unwrap() did not expose the underlying error")
	}
}

func TestWrapParseErrorNilIsNil(t *testing.T) {
	if wrapParseError("op", ClassStructural, 0, nil) != nil {
		t.Errorf("wrapParseError(nil) should return nil")
	}
}

func TestClassString(t *testing.T) {
	cases := map[Class]string{
		ClassLexical:       "lexical",
		ClassStructural:    "structural",
		ClassSemantic:      "semantic",
		ClassUnexpectedEOF: "unexpected-eof",
	}
	for class, want := range cases {
		if got := class.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", class, got, want)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
