// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Syntactic parsing of PDF objects, indirect objects, streams, and
// cross-reference tables from a Tokenizer.

package pdfcore

import "strconv"

// ObjectParser consumes Tokens from a Tokenizer and emits PDF Objects,
// IndirectObjects and XRefTables. It holds a ReferenceResolver it
// consults only when a stream's Length entry is itself a Reference.
type ObjectParser struct {
	cur      *ByteCursor
	tz       *Tokenizer
	resolver ReferenceResolver
}

// NewObjectParser returns a parser reading from cur, using resolver to
// satisfy indirect stream lengths. Pass NullResolver{} if the input is
// known not to use indirect Length entries.
func NewObjectParser(cur *ByteCursor, resolver ReferenceResolver) *ObjectParser {
	if resolver == nil {
		resolver = NullResolver{}
	}
	return &ObjectParser{cur: cur, tz: NewTokenizer(cur), resolver: resolver}
}

// Tokenizer exposes the underlying Tokenizer, e.g. for a caller that
// wants to probe tokens directly around a parse failure.
func (p *ObjectParser) Tokenizer() *Tokenizer { return p.tz }

// ParseHeader reads the PDF header comment ("%PDF-M.N") and returns
// its version. Comment emission is enabled for the duration of this
// call and restored to "ignored" on return, even on error.
func (p *ObjectParser) ParseHeader() (major, minor int, err error) {
	p.tz.SetIgnoreComments(false)
	defer p.tz.SetIgnoreComments(true)

	tok := p.tz.Next()
	if tok.Kind != TokComment {
		return 0, 0, newParseError("parse header", ClassSemantic, tok.Offset, "expected %PDF- header comment, got "+tok.Kind.String())
	}
	const prefix = "PDF-"
	if len(tok.Text) <= len(prefix) || tok.Text[:len(prefix)] != prefix {
		return 0, 0, newParseErrorf("parse header", ClassSemantic, tok.Offset, "malformed header comment %q", tok.Text)
	}
	rest := tok.Text[len(prefix):]
	dot := -1
	for i := 0; i < len(rest); i++ {
		if rest[i] == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return 0, 0, newParseErrorf("parse header", ClassSemantic, tok.Offset, "malformed header version %q", rest)
	}
	majorStr, minorStr := rest[:dot], rest[dot+1:]
	majorVal, err1 := strconv.Atoi(majorStr)
	minorVal, err2 := strconv.Atoi(minorStr)
	if err1 != nil || err2 != nil || majorVal < 0 || minorVal < 0 {
		return 0, 0, newParseErrorf("parse header", ClassSemantic, tok.Offset, "malformed header version %q", rest)
	}
	debugf("header version %d.%d", majorVal, minorVal)
	return majorVal, minorVal, nil
}

// ParseXRefOffset locates the startxref offset by scanning backward
// from the end of the input.
func (p *ObjectParser) ParseXRefOffset() (int64, error) {
	return p.cur.FindStartxrefOffset()
}

// ParseObject reads one PDF Object. ok is false with err == nil when
// the next token cannot begin an object (a probe miss: the caller's
// closing delimiter, or any other unrecognized lead token) — the token
// is pushed back so the next Tokenizer.Next() call returns it again.
// ok is false with err != nil on a genuine lexical or structural
// failure.
func (p *ObjectParser) ParseObject() (obj Object, ok bool, err error) {
	tok := p.tz.Next()
	return p.parseObjectFrom(tok)
}

func (p *ObjectParser) parseObjectFrom(tok Token) (Object, bool, error) {
	switch tok.Kind {
	case TokName:
		return Name(tok.Text), true, nil
	case TokLiteralString:
		return String([]byte(tok.Text), OriginLiteral), true, nil
	case TokHexString:
		return String([]byte(tok.Text), OriginHex), true, nil
	case TokKeyword:
		switch tok.Keyword {
		case KwTrue:
			return Boolean(true), true, nil
		case KwFalse:
			return Boolean(false), true, nil
		case KwNull:
			return Null(), true, nil
		default:
			p.tz.PushBack(tok)
			return Object{}, false, nil
		}
	case TokArrayOpen:
		obj, err := p.parseArray()
		return obj, err == nil, err
	case TokDictionaryOpen:
		obj, err := p.parseDict()
		return obj, err == nil, err
	case TokInteger:
		return p.parseIntegerOrReference(tok)
	case TokReal:
		return Real(tok.Float), true, nil
	case TokError:
		return Object{}, false, newParseError("parse object", ClassLexical, tok.Offset, tok.Text)
	default:
		// ArrayClose, DictionaryClose, Empty, Comment, or any other
		// token that cannot start an object: not an error, signal
		// "no object here" and let the caller inspect it via Next().
		p.tz.PushBack(tok)
		return Object{}, false, nil
	}
}

// parseIntegerOrReference implements the "id gen R" lookahead. The
// two speculative tokens are pushed back, in source order, the moment
// the pattern fails to match — the read is never partially committed.
func (p *ObjectParser) parseIntegerOrReference(first Token) (Object, bool, error) {
	second := p.tz.Next()
	if second.Kind != TokInteger {
		p.tz.PushBack(second)
		return Integer(first.Int), true, nil
	}
	third := p.tz.Next()
	if third.Kind == TokKeyword && third.Keyword == KwR {
		return Reference(uint32(first.Int), uint16(second.Int)), true, nil
	}
	p.tz.PushBack(third)
	p.tz.PushBack(second)
	return Integer(first.Int), true, nil
}

func (p *ObjectParser) parseArray() (Object, error) {
	var items []Object
	for {
		item, ok, err := p.ParseObject()
		if err != nil {
			return Object{}, err
		}
		if !ok {
			closer := p.tz.Next()
			switch closer.Kind {
			case TokArrayClose:
				return Array(items), nil
			case TokError:
				return Object{}, newParseError("parse array", ClassLexical, closer.Offset, closer.Text)
			case TokEmpty:
				return Object{}, newParseError("parse array", ClassUnexpectedEOF, closer.Offset, "unexpected EOF in array")
			default:
				return Object{}, newParseErrorf("parse array", ClassStructural, closer.Offset, "unexpected token %s in array", closer.Kind)
			}
		}
		items = append(items, item)
	}
}

func (p *ObjectParser) parseDict() (Object, error) {
	d := Dictionary{}
	for {
		key, ok, err := p.ParseObject()
		if err != nil {
			return Object{}, err
		}
		if !ok {
			closer := p.tz.Next()
			switch closer.Kind {
			case TokDictionaryClose:
				return DictObject(d), nil
			case TokError:
				return Object{}, newParseError("parse dictionary", ClassLexical, closer.Offset, closer.Text)
			case TokEmpty:
				return Object{}, newParseError("parse dictionary", ClassUnexpectedEOF, closer.Offset, "unexpected EOF in dictionary")
			default:
				return Object{}, newParseErrorf("parse dictionary", ClassStructural, closer.Offset, "unexpected token %s in dictionary", closer.Kind)
			}
		}
		if key.Kind() != KindName {
			return Object{}, newParseErrorf("parse dictionary", ClassStructural, p.tz.Position(), "dictionary key is not a Name (got %s)", key.Kind())
		}
		val, ok, err := p.ParseObject()
		if err != nil {
			return Object{}, err
		}
		if !ok {
			missing := p.tz.Next()
			p.tz.PushBack(missing)
			return Object{}, newParseErrorf("parse dictionary", ClassStructural, missing.Offset, "missing value for key /%s", key.NameValue())
		}
		d[key.NameValue()] = val
	}
}

// ParseIndirectObject parses the "id gen obj ... endobj" (or
// "... stream ... endstream endobj") production. If at is non-nil, the
// current position is saved, the cursor seeks to *at, the object is
// parsed, and the original position is restored before returning —
// this makes it safe for a ReferenceResolver to re-enter the parser.
//
// ok is false with err == nil when the leading "id gen obj" triple is
// not present: every token consumed during the probe is pushed back in
// source order, and the caller should treat this as "no object here",
// not a failure.
func (p *ObjectParser) ParseIndirectObject(at *int64) (obj *IndirectObject, ok bool, err error) {
	if at != nil {
		saved := p.tz.Position()
		p.tz.Seek(*at)
		defer p.tz.Seek(saved)
	}
	return p.parseIndirectObjectBody()
}

func (p *ObjectParser) parseIndirectObjectBody() (*IndirectObject, bool, error) {
	tok1 := p.tz.Next()
	if tok1.Kind != TokInteger {
		p.tz.PushBack(tok1)
		return nil, false, nil
	}
	tok2 := p.tz.Next()
	if tok2.Kind != TokInteger {
		p.tz.PushBack(tok2)
		p.tz.PushBack(tok1)
		return nil, false, nil
	}
	tok3 := p.tz.Next()
	if tok3.Kind != TokKeyword || tok3.Keyword != KwObj {
		p.tz.PushBack(tok3)
		p.tz.PushBack(tok2)
		p.tz.PushBack(tok1)
		return nil, false, nil
	}

	id := uint32(tok1.Int)
	gen := uint16(tok2.Int)

	body, ok, err := p.ParseObject()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		missing := p.tz.Next()
		return nil, false, newParseError("parse indirect object", ClassStructural, missing.Offset, "indirect object body is empty")
	}

	next := p.tz.Next()
	switch {
	case next.Kind == TokKeyword && next.Keyword == KwEndObj:
		return &IndirectObject{ID: id, Generation: gen, Body: body}, true, nil

	case next.Kind == TokKeyword && next.Keyword == KwStream:
		streamObj, err := p.finishStream(body, next.Offset)
		if err != nil {
			return nil, false, err
		}
		return &IndirectObject{ID: id, Generation: gen, Body: streamObj}, true, nil

	default:
		return nil, false, newParseErrorf("parse indirect object", ClassStructural, next.Offset,
			"expected endobj or stream, got %s", next.Kind)
	}
}

func (p *ObjectParser) finishStream(body Object, streamKwOffset int64) (Object, error) {
	if body.Kind() != KindDictionary {
		return Object{}, newParseError("parse stream", ClassStructural, streamKwOffset, "stream keyword not preceded by a dictionary")
	}
	dict := body.DictValue()
	lengthObj, present := dict["Length"]
	if !present {
		return Object{}, newParseError("parse stream", ClassSemantic, streamKwOffset, "stream dictionary missing /Length")
	}

	length, err := p.resolveLength(lengthObj, streamKwOffset)
	if err != nil {
		return Object{}, err
	}

	if err := p.tz.ConsumeStreamEOL(); err != nil {
		return Object{}, err
	}
	raw, err := p.tz.ReadRawBytes(int(length))
	if err != nil {
		return Object{}, err
	}

	endstream := p.tz.Next()
	if endstream.Kind != TokKeyword || endstream.Keyword != KwEndStream {
		return Object{}, newParseErrorf("parse stream", ClassStructural, endstream.Offset, "expected endstream, got %s", endstream.Kind)
	}
	endobj := p.tz.Next()
	if endobj.Kind != TokKeyword || endobj.Keyword != KwEndObj {
		return Object{}, newParseErrorf("parse stream", ClassStructural, endobj.Offset, "expected endobj, got %s", endobj.Kind)
	}

	return Stream(dict, raw), nil
}

func (p *ObjectParser) resolveLength(lengthObj Object, offset int64) (int64, error) {
	switch lengthObj.Kind() {
	case KindInteger:
		v := lengthObj.Int64()
		if v < 0 {
			return 0, newParseErrorf("parse stream", ClassSemantic, offset, "stream /Length is negative (%d)", v)
		}
		return v, nil
	case KindReference:
		ref := lengthObj.RefValue()
		debugf("resolving indirect stream length %s", ref)
		resolved, ok := p.resolver.Resolve(ref.ID, ref.Generation)
		if !ok {
			return 0, newParseErrorf("parse stream", ClassSemantic, offset, "could not resolve /Length reference %s", ref)
		}
		if resolved.Kind() != KindInteger {
			return 0, newParseErrorf("parse stream", ClassSemantic, offset, "resolved /Length is not an Integer (got %s)", resolved.Kind())
		}
		v := resolved.Int64()
		if v < 0 {
			return 0, newParseErrorf("parse stream", ClassSemantic, offset, "resolved stream /Length is negative (%d)", v)
		}
		return v, nil
	default:
		return 0, newParseErrorf("parse stream", ClassSemantic, offset, "stream /Length is not an Integer or Reference (got %s)", lengthObj.Kind())
	}
}

// ParseXRef parses a classic cross-reference table: one or more
// sections, each "firstID count" followed by exactly count fixed-width
// entries, until the next token is the "trailer" keyword (which is
// pushed back for ParseTrailer). If at is non-nil, the tokenizer seeks
// there first (no position is saved/restored — unlike
// ParseIndirectObject, xref parsing is not expected to be re-entrant).
func (p *ObjectParser) ParseXRef(at *int64) (*XRefTable, error) {
	if at != nil {
		p.tz.Seek(*at)
	}
	tok := p.tz.Next()
	if tok.Kind != TokKeyword || tok.Keyword != KwXref {
		return nil, newParseErrorf("parse xref", ClassStructural, tok.Offset, "expected xref keyword, got %s", tok.Kind)
	}

	table := NewXRefTable()
	for {
		next := p.tz.Next()
		if next.Kind == TokKeyword && next.Keyword == KwTrailer {
			p.tz.PushBack(next)
			return table, nil
		}
		if next.Kind != TokInteger {
			return nil, newParseErrorf("parse xref", ClassStructural, next.Offset, "expected section start integer, got %s", next.Kind)
		}
		startID := next.Int
		countTok := p.tz.Next()
		if countTok.Kind != TokInteger {
			return nil, newParseErrorf("parse xref", ClassStructural, countTok.Offset, "expected section count integer, got %s", countTok.Kind)
		}
		count := countTok.Int
		if startID < 0 || count < 0 {
			return nil, newParseErrorf("parse xref", ClassSemantic, next.Offset, "xref section has negative start or count")
		}
		debugf("xref section: %d objects starting at id %d", count, startID)
		for i := int64(0); i < count; i++ {
			entryTok := p.tz.ReadXRefEntry(uint32(startID + i))
			if entryTok.Kind == TokError {
				return nil, newParseError("parse xref", ClassLexical, entryTok.Offset, entryTok.Text)
			}
			table.set(entryTok.XRef)
		}
	}
}

// ParseTrailer requires the "trailer" keyword followed by one
// Dictionary object.
func (p *ObjectParser) ParseTrailer() (Dictionary, error) {
	tok := p.tz.Next()
	if tok.Kind != TokKeyword || tok.Keyword != KwTrailer {
		return nil, newParseErrorf("parse trailer", ClassStructural, tok.Offset, "expected trailer keyword, got %s", tok.Kind)
	}
	obj, ok, err := p.ParseObject()
	if err != nil {
		return nil, err
	}
	if !ok || obj.Kind() != KindDictionary {
		return nil, newParseError("parse trailer", ClassStructural, p.tz.Position(), "trailer not followed by a dictionary")
	}
	return obj.DictValue(), nil
}
