// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcore

import (
	"fmt"
	"sort"
	"strings"
)

// ObjectKind discriminates the tagged variants an ObjectParser produces.
type ObjectKind int

const (
	KindNull ObjectKind = iota
	KindBoolean
	KindInteger
	KindReal
	KindName
	KindString
	KindArray
	KindDictionary
	KindStream
	KindReference
)

func (k ObjectKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindReal:
		return "Real"
	case KindName:
		return "Name"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindDictionary:
		return "Dictionary"
	case KindStream:
		return "Stream"
	case KindReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// StringOrigin distinguishes a String Object's lexical origin, since a
// document layer may need to tell literal strings (which may carry
// PDFDocEncoding or UTF-16 text) from hex strings (often raw binary).
type StringOrigin int

const (
	OriginLiteral StringOrigin = iota
	OriginHex
)

// ObjRef identifies an indirect object by object id and generation.
type ObjRef struct {
	ID         uint32
	Generation uint16
}

func (r ObjRef) String() string {
	return fmt.Sprintf("%d %d R", r.ID, r.Generation)
}

// Dictionary maps Name keys to Objects. Insertion order is not
// preserved; a later duplicate key overwrites an earlier one.
type Dictionary map[string]Object

// Get returns the value for key, or the zero Object (Kind() == KindNull)
// if key is absent.
func (d Dictionary) Get(key string) Object {
	return d[key]
}

// Keys returns the dictionary's keys in sorted order, for deterministic
// iteration (printing, testing) despite Go's randomized map order.
func (d Dictionary) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Object is a PDF object value: a tagged union over Null, Boolean,
// Integer, Real, Name, String, Array, Dictionary, Stream and Reference.
// Values are immutable once constructed.
type Object struct {
	kind ObjectKind

	boolean bool
	integer int64
	real    float64
	text    string // Name or String payload
	origin  StringOrigin
	array   []Object
	dict    Dictionary
	stream  []byte // raw bytes, only meaningful when kind == KindStream
	ref     ObjRef
}

// Kind reports the object's variant.
func (o Object) Kind() ObjectKind { return o.kind }

// Null is the PDF null object (also the zero value of Object).
func Null() Object { return Object{kind: KindNull} }

func Boolean(b bool) Object { return Object{kind: KindBoolean, boolean: b} }

func Integer(v int64) Object { return Object{kind: KindInteger, integer: v} }

func Real(v float64) Object { return Object{kind: KindReal, real: v} }

func Name(s string) Object { return Object{kind: KindName, text: s} }

func String(b []byte, origin StringOrigin) Object {
	return Object{kind: KindString, text: string(b), origin: origin}
}

func Array(items []Object) Object { return Object{kind: KindArray, array: items} }

func DictObject(d Dictionary) Object { return Object{kind: KindDictionary, dict: d} }

func Stream(d Dictionary, raw []byte) Object {
	return Object{kind: KindStream, dict: d, stream: raw}
}

func Reference(id uint32, gen uint16) Object {
	return Object{kind: KindReference, ref: ObjRef{ID: id, Generation: gen}}
}

// Accessors return the zero value of their type when Kind() does not
// match, mirroring the teacher's permissive accessor style so callers
// can traverse without checking Kind() at every step.

func (o Object) Bool() bool {
	if o.kind != KindBoolean {
		return false
	}
	return o.boolean
}

func (o Object) Int64() int64 {
	switch o.kind {
	case KindInteger:
		return o.integer
	case KindReal:
		return int64(o.real)
	default:
		return 0
	}
}

func (o Object) Float64() float64 {
	switch o.kind {
	case KindReal:
		return o.real
	case KindInteger:
		return float64(o.integer)
	default:
		return 0
	}
}

func (o Object) NameValue() string {
	if o.kind != KindName {
		return ""
	}
	return o.text
}

func (o Object) StringBytes() []byte {
	if o.kind != KindString {
		return nil
	}
	return []byte(o.text)
}

func (o Object) StringOrigin() StringOrigin { return o.origin }

func (o Object) ArrayItems() []Object {
	if o.kind != KindArray {
		return nil
	}
	return o.array
}

func (o Object) DictValue() Dictionary {
	switch o.kind {
	case KindDictionary:
		return o.dict
	case KindStream:
		return o.dict
	default:
		return nil
	}
}

func (o Object) StreamBytes() []byte {
	if o.kind != KindStream {
		return nil
	}
	return o.stream
}

func (o Object) RefValue() ObjRef {
	if o.kind != KindReference {
		return ObjRef{}
	}
	return o.ref
}

func (o Object) String() string {
	switch o.kind {
	case KindNull:
		return "null"
	case KindBoolean:
		return fmt.Sprintf("%t", o.boolean)
	case KindInteger:
		return fmt.Sprintf("%d", o.integer)
	case KindReal:
		return fmt.Sprintf("%g", o.real)
	case KindName:
		return "/" + o.text
	case KindString:
		return fmt.Sprintf("(%q)", o.text)
	case KindArray:
		parts := make([]string, len(o.array))
		for i, it := range o.array {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case KindDictionary:
		return dictString(o.dict)
	case KindStream:
		return dictString(o.dict) + fmt.Sprintf(" stream(%d bytes)", len(o.stream))
	case KindReference:
		return o.ref.String()
	default:
		return "?"
	}
}

func dictString(d Dictionary) string {
	var b strings.Builder
	b.WriteString("<<")
	for i, k := range d.Keys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("/" + k + " " + d[k].String())
	}
	b.WriteString(">>")
	return b.String()
}
