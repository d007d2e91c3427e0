// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcore

import (
	"strconv"
	"strings"
	"testing"
)

func newParserFromString(s string) *ObjectParser {
	return NewObjectParser(NewByteCursor(strings.NewReader(s), int64(len(s))), nil)
}

func TestParseHeader(t *testing.T) {
	p := newParserFromString("%PDF-1.7\n1 0 obj\n")
	major, minor, err := p.ParseHeader()
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if major != 1 || minor != 7 {
		t.Errorf("ParseHeader = %d.%d, want 1.7", major, minor)
	}
}

func TestParseHeaderMalformed(t *testing.T) {
	p := newParserFromString("not a header")
	if _, _, err := p.ParseHeader(); err == nil {
		t.Errorf("expected error for malformed header")
	}
}

func TestParseObjectSimpleValues(t *testing.T) {
	p := newParserFromString("true false null /Name (abc) 3.5")
	kinds := []ObjectKind{KindBoolean, KindBoolean, KindNull, KindName, KindString, KindReal}
	for i, want := range kinds {
		obj, ok, err := p.ParseObject()
		if err != nil {
			t.Fatalf("object %d: ParseObject: %v", i, err)
		}
		if !ok {
			t.Fatalf("object %d: ok = false", i)
		}
		if obj.Kind() != want {
			t.Errorf("object %d: Kind() = %s, want %s", i, obj.Kind(), want)
		}
	}
}

func TestParseObjectReferenceDisambiguation(t *testing.T) {
	// "1 0 R 2 0 3.5": the first triple is a reference, the second
	// integer "2" is immediately followed by another integer "0" and
	// then a non-R token, so it must resolve as a bare Integer(2) and
	// leave "0 3.5" for the caller to read next.
	p := newParserFromString("1 0 R 2 0 3.5")

	obj, ok, err := p.ParseObject()
	if err != nil || !ok {
		t.Fatalf("first object: ok=%v err=%v", ok, err)
	}
	if obj.Kind() != KindReference {
		t.Fatalf("first object Kind() = %s, want Reference", obj.Kind())
	}
	if ref := obj.RefValue(); ref.ID != 1 || ref.Generation != 0 {
		t.Errorf("RefValue() = %+v, want {1 0}", ref)
	}

	obj2, ok, err := p.ParseObject()
	if err != nil || !ok {
		t.Fatalf("second object: ok=%v err=%v", ok, err)
	}
	if obj2.Kind() != KindInteger || obj2.Int64() != 2 {
		t.Fatalf("second object = %v, want Integer(2)", obj2)
	}

	obj3, ok, err := p.ParseObject()
	if err != nil || !ok {
		t.Fatalf("third object: ok=%v err=%v", ok, err)
	}
	if obj3.Kind() != KindInteger || obj3.Int64() != 0 {
		t.Fatalf("third object = %v, want Integer(0)", obj3)
	}

	obj4, ok, err := p.ParseObject()
	if err != nil || !ok {
		t.Fatalf("fourth object: ok=%v err=%v", ok, err)
	}
	if obj4.Kind() != KindReal || obj4.Float64() != 3.5 {
		t.Fatalf("fourth object = %v, want Real(3.5)", obj4)
	}
}

func TestParseObjectNestedDictAndArray(t *testing.T) {
	p := newParserFromString("<</A[1 2 3]/B<</C true>>>>")
	obj, ok, err := p.ParseObject()
	if err != nil || !ok {
		t.Fatalf("ParseObject: ok=%v err=%v", ok, err)
	}
	if obj.Kind() != KindDictionary {
		t.Fatalf("Kind() = %s, want Dictionary", obj.Kind())
	}
	d := obj.DictValue()
	arr := d.Get("A")
	if arr.Kind() != KindArray {
		t.Fatalf("A.Kind() = %s, want Array", arr.Kind())
	}
	items := arr.ArrayItems()
	if len(items) != 3 {
		t.Fatalf("len(A items) = %d, want 3", len(items))
	}
	for i, item := range items {
		if item.Int64() != int64(i+1) {
			t.Errorf("A[%d] = %v, want %d", i, item, i+1)
		}
	}
	nested := d.Get("B")
	if nested.Kind() != KindDictionary {
		t.Fatalf("B.Kind() = %s, want Dictionary", nested.Kind())
	}
	if c := nested.DictValue().Get("C"); c.Kind() != KindBoolean || !c.Bool() {
		t.Errorf("B/C = %v, want true", c)
	}
}

func TestParseObjectEmptyArrayMissReportsChildToken(t *testing.T) {
	// Regression: the empty-or-error decision must switch on the token
	// that caused ParseObject's miss, not re-inspect the opener.
	p := newParserFromString("[]")
	obj, _, err := p.ParseObject()
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if obj.Kind() != KindArray || len(obj.ArrayItems()) != 0 {
		t.Errorf("ParseObject = %v, want empty Array", obj)
	}
}

func TestParseObjectArrayUnterminatedIsUnexpectedEOFError(t *testing.T) {
	p := newParserFromString("[1 2 3")
	_, _, err := p.ParseObject()
	if err == nil {
		t.Fatalf("expected error for unterminated array")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error is %T, want *ParseError", err)
	}
	if pe.Class != ClassUnexpectedEOF {
		t.Errorf("Class = %v, want ClassUnexpectedEOF", pe.Class)
	}
}

func TestParseObjectHexStringOddLengthPadding(t *testing.T) {
	p := newParserFromString("<48656C6C6F2>")
	obj, ok, err := p.ParseObject()
	if err != nil || !ok {
		t.Fatalf("ParseObject: ok=%v err=%v", ok, err)
	}
	want := "Hello" + string([]byte{0x20})
	if string(obj.StringBytes()) != want {
		t.Errorf("StringBytes() = %q, want %q", obj.StringBytes(), want)
	}
	if obj.StringOrigin() != OriginHex {
		t.Errorf("StringOrigin() = %v, want OriginHex", obj.StringOrigin())
	}
}

func TestParseObjectProbeMissAtTrailer(t *testing.T) {
	// Inside an indirect object body loop, hitting "trailer" should be a
	// probe miss (ok=false, err=nil) with the token pushed back, not an
	// error, so the xref reader can pick it up afterward.
	p := newParserFromString("trailer<</Size 1>>")
	obj, ok, err := p.ParseObject()
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	if ok {
		t.Fatalf("ParseObject ok = true for trailer keyword, want probe miss")
	}
	if obj.Kind() != KindNull {
		t.Errorf("ParseObject returned non-zero object on miss: %v", obj)
	}
	tok := p.Tokenizer().Next()
	if tok.Kind != TokKeyword || tok.Keyword != KwTrailer {
		t.Errorf("token after miss = %v, want trailer keyword pushed back", tok)
	}
}

func TestParseIndirectObjectWithStream(t *testing.T) {
	payload := "0123456789"
	src := "1 0 obj\n<</Length " + strconv.Itoa(len(payload)) + ">>\nstream\n" + payload + "\nendstream\nendobj\n"
	p := newParserFromString(src)
	var at int64
	obj, ok, err := p.ParseIndirectObject(&at)
	if err != nil {
		t.Fatalf("ParseIndirectObject: %v", err)
	}
	if !ok {
		t.Fatalf("ParseIndirectObject: ok = false")
	}
	if obj.ID != 1 || obj.Generation != 0 {
		t.Errorf("ID/Generation = %d/%d, want 1/0", obj.ID, obj.Generation)
	}
	if obj.Body.Kind() != KindStream {
		t.Fatalf("Body.Kind() = %s, want Stream", obj.Body.Kind())
	}
	if string(obj.Body.StreamBytes()) != payload {
		t.Errorf("StreamBytes() = %q, want %q", obj.Body.StreamBytes(), payload)
	}
}

func TestParseIndirectObjectNoStream(t *testing.T) {
	p := newParserFromString("5 0 obj\n42\nendobj\n")
	var at int64
	obj, ok, err := p.ParseIndirectObject(&at)
	if err != nil || !ok {
		t.Fatalf("ParseIndirectObject: ok=%v err=%v", ok, err)
	}
	if obj.Body.Int64() != 42 {
		t.Errorf("Body = %v, want Integer(42)", obj.Body)
	}
}

func TestParseIndirectObjectProbeMissNotTriple(t *testing.T) {
	p := newParserFromString("trailer <</Size 1>>")
	var at int64
	obj, ok, err := p.ParseIndirectObject(&at)
	if err != nil {
		t.Fatalf("expected probe miss, got error: %v", err)
	}
	if ok || obj != nil {
		t.Fatalf("expected ok=false, obj=nil; got ok=%v obj=%v", ok, obj)
	}
	tok := p.Tokenizer().Next()
	if tok.Kind != TokKeyword || tok.Keyword != KwTrailer {
		t.Errorf("pushed-back token = %v, want trailer keyword restored first", tok)
	}
}

func TestParseIndirectObjectSeeksAndRestoresPosition(t *testing.T) {
	prefix := "9 9 obj\n1\nendobj\n"
	target := "3 0 obj\n(hi)\nendobj\n"
	src := prefix + target
	p := newParserFromString(src)

	// Position the tokenizer partway into the first object before the
	// re-entrant call, to verify position is restored afterward.
	first := p.Tokenizer().Next()
	if first.Kind != TokInteger || first.Int != 9 {
		t.Fatalf("first token = %v", first)
	}
	posBeforeReentry := p.Tokenizer().Position()

	at := int64(len(prefix))
	obj, ok, err := p.ParseIndirectObject(&at)
	if err != nil || !ok {
		t.Fatalf("ParseIndirectObject: ok=%v err=%v", ok, err)
	}
	if obj.ID != 3 {
		t.Errorf("ID = %d, want 3", obj.ID)
	}
	if p.Tokenizer().Position() != posBeforeReentry {
		t.Errorf("Position() after reentry = %d, want restored %d", p.Tokenizer().Position(), posBeforeReentry)
	}

	second := p.Tokenizer().Next()
	if second.Kind != TokInteger || second.Int != 9 {
		t.Fatalf("token after restore = %v, want second 9", second)
	}
}

func TestParseIndirectObjectIndirectLengthViaResolver(t *testing.T) {
	payload := "abcdefghij"
	lengthObjSrc := "2 0 obj\n" + strconv.Itoa(len(payload)) + "\nendobj\n"
	streamObjSrc := "1 0 obj\n<</Length 2 0 R>>\nstream\n" + payload + "\nendstream\nendobj\n"
	src := lengthObjSrc + streamObjSrc

	lengthOffset := int64(0)
	streamOffset := int64(len(lengthObjSrc))

	cur := NewByteCursor(strings.NewReader(src), int64(len(src)))
	resolver := ResolverFunc(func(id uint32, generation uint16) (Object, bool) {
		if id != 2 {
			return Object{}, false
		}
		resolverParser := NewObjectParser(cur, NullResolver{})
		at := lengthOffset
		obj, ok, err := resolverParser.ParseIndirectObject(&at)
		if err != nil || !ok {
			return Object{}, false
		}
		return obj.Body, true
	})

	p := NewObjectParser(cur, resolver)
	at := streamOffset
	obj, ok, err := p.ParseIndirectObject(&at)
	if err != nil {
		t.Fatalf("ParseIndirectObject: %v", err)
	}
	if !ok {
		t.Fatalf("ParseIndirectObject: ok = false")
	}
	if string(obj.Body.StreamBytes()) != payload {
		t.Errorf("StreamBytes() = %q, want %q", obj.Body.StreamBytes(), payload)
	}
}

func TestParseIndirectObjectMissingLengthIsSemanticError(t *testing.T) {
	src := "1 0 obj\n<</Type/X>>\nstream\nabc\nendstream\nendobj\n"
	p := newParserFromString(src)
	var at int64
	_, _, err := p.ParseIndirectObject(&at)
	if err == nil {
		t.Fatalf("expected error for missing /Length")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error is %T, want *ParseError", err)
	}
	if pe.Class != ClassSemantic {
		t.Errorf("Class = %v, want ClassSemantic", pe.Class)
	}
}

func TestParseXRefAndTrailer(t *testing.T) {
	src := "xref\n0 2\n" +
		"0000000000 65535 f \n" +
		"0000000017 00000 n \n" +
		"trailer\n<</Size 2/Root 1 0 R>>\n"
	p := newParserFromString(src)

	table, err := p.ParseXRef(nil)
	if err != nil {
		t.Fatalf("ParseXRef: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	e0, ok := table.Lookup(0)
	if !ok || e0.InUse {
		t.Errorf("entry 0 = %+v, want free", e0)
	}
	e1, ok := table.Lookup(1)
	if !ok || !e1.InUse || e1.Offset != 17 {
		t.Errorf("entry 1 = %+v, want in-use offset 17", e1)
	}

	trailer, err := p.ParseTrailer()
	if err != nil {
		t.Fatalf("ParseTrailer: %v", err)
	}
	if size := trailer.Get("Size"); size.Int64() != 2 {
		t.Errorf("trailer Size = %v, want 2", size)
	}
	if root := trailer.Get("Root"); root.Kind() != KindReference {
		t.Errorf("trailer Root.Kind() = %s, want Reference", root.Kind())
	}
}

func TestParseXRefRequiresXrefKeyword(t *testing.T) {
	p := newParserFromString("not xref")
	if _, err := p.ParseXRef(nil); err == nil {
		t.Errorf("expected error when xref keyword is absent")
	}
}

func TestParseTrailerRequiresDictionary(t *testing.T) {
	p := newParserFromString("trailer 5")
	if _, err := p.ParseTrailer(); err == nil {
		t.Errorf("expected error when trailer value is not a dictionary")
	}
}

func TestParseDictDuplicateKeyOverwrites(t *testing.T) {
	p := newParserFromString("<</A 1/A 2>>")
	obj, ok, err := p.ParseObject()
	if err != nil || !ok {
		t.Fatalf("ParseObject: ok=%v err=%v", ok, err)
	}
	if got := obj.DictValue().Get("A"); got.Int64() != 2 {
		t.Errorf("A = %v, want 2 (later duplicate wins)", got)
	}
}

func TestParseDictMissingValueIsStructuralError(t *testing.T) {
	p := newParserFromString("<</A >>")
	_, _, err := p.ParseObject()
	if err == nil {
		t.Fatalf("expected error for missing dictionary value")
	}
}

func TestParseDictNonNameKeyIsStructuralError(t *testing.T) {
	p := newParserFromString("<<1 2>>")
	_, _, err := p.ParseObject()
	if err == nil {
		t.Fatalf("expected error for non-Name dictionary key")
	}
}

// depthGuardResolver is a self-referential resolver that fails closed
// once Length resolution recurses past a fixed depth. The core itself
// never detects a Length-reference cycle -- that is left to whatever
// resolver a caller supplies, per the open question on cycle guarding.
type depthGuardResolver struct {
	table    *XRefTable
	cur      *ByteCursor
	depth    int
	maxDepth int
}

func (r *depthGuardResolver) Resolve(id uint32, generation uint16) (Object, bool) {
	if r.depth >= r.maxDepth {
		return Object{}, false
	}
	entry, ok := r.table.Lookup(id)
	if !ok || !entry.InUse || entry.Generation != generation {
		return Object{}, false
	}
	r.depth++
	defer func() { r.depth-- }()

	p := NewObjectParser(r.cur, r)
	at := entry.Offset
	obj, ok, err := p.ParseIndirectObject(&at)
	if err != nil || !ok {
		return Object{}, false
	}
	return obj.Body, true
}

func TestDepthGuardResolverBreaksCycle(t *testing.T) {
	// Object 1's Length points at object 2, whose own Length points
	// back at object 1: an ill-formed document that would recurse
	// forever without an external guard.
	obj1 := "1 0 obj\n<</Length 2 0 R>>\nstream\nX\nendstream\nendobj\n"
	obj2 := "2 0 obj\n<</Length 1 0 R>>\nstream\nY\nendstream\nendobj\n"
	src := obj1 + obj2

	table := NewXRefTable()
	table.set(XRefEntry{ObjectID: 1, Generation: 0, Offset: 0, InUse: true})
	table.set(XRefEntry{ObjectID: 2, Generation: 0, Offset: int64(len(obj1)), InUse: true})

	cur := NewByteCursor(strings.NewReader(src), int64(len(src)))
	guarded := &depthGuardResolver{table: table, cur: cur, maxDepth: 4}

	p := NewObjectParser(cur, guarded)
	at := int64(0)
	_, _, err := p.ParseIndirectObject(&at)
	if err == nil {
		t.Fatalf("expected a semantic error once the depth guard trips, got none")
	}
}
