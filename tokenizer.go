// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tokenization of PDF syntax from a ByteCursor.

package pdfcore

import (
	"strconv"

	"github.com/pkg/errors"
)

// Tokenizer is a pull-based, pushback-capable source of Tokens over a
// ByteCursor. In practice the object parser pushes back at most three
// tokens (the "id gen obj" header probe; the reference lookahead pushes
// back at most two), so the pushback stack is a small
// inline slice rather than anything fancier, but it behaves as an
// unbounded strict LIFO.
type Tokenizer struct {
	cur *ByteCursor

	// ignoreComments, when true, causes Next to skip Comment tokens
	// silently. Off only while ParseHeader reads the version comment.
	ignoreComments bool

	pushback []Token
	tmp      []byte
}

// NewTokenizer returns a Tokenizer pulling from cur, starting with
// comments ignored.
func NewTokenizer(cur *ByteCursor) *Tokenizer {
	return &Tokenizer{cur: cur, ignoreComments: true, tmp: make([]byte, 0, 256)}
}

// Seek clears the pushback stack and repositions the underlying cursor.
func (tz *Tokenizer) Seek(offset int64) {
	tz.pushback = tz.pushback[:0]
	tz.cur.Seek(offset)
}

// Position returns the underlying cursor's current position.
func (tz *Tokenizer) Position() int64 {
	return tz.cur.Position()
}

// PushBack restores tok so the next Next() call returns it again. The
// stack is a strict LIFO: pushing t1 then t2 means Next returns t2
// first, then t1.
func (tz *Tokenizer) PushBack(tok Token) {
	tz.pushback = append(tz.pushback, tok)
}

// Next consumes and classifies one token.
func (tz *Tokenizer) Next() Token {
	if n := len(tz.pushback); n > 0 {
		tok := tz.pushback[n-1]
		tz.pushback = tz.pushback[:n-1]
		return tok
	}

	for {
		offset := tz.cur.Position()
		b, ok := tz.cur.ReadByte()
		if !ok {
			return Token{Kind: TokEmpty, Offset: offset}
		}
		if isSpace(b) {
			continue
		}
		if b == '%' {
			tok := tz.readComment(offset)
			if tz.ignoreComments {
				continue
			}
			return tok
		}
		return tz.classify(b, offset)
	}
}

func (tz *Tokenizer) classify(b byte, offset int64) Token {
	switch b {
	case '<':
		if nb, ok := tz.cur.PeekByte(); ok && nb == '<' {
			tz.cur.ReadByte()
			return Token{Kind: TokDictionaryOpen, Offset: offset}
		}
		return tz.readHexString(offset)
	case '>':
		if nb, ok := tz.cur.PeekByte(); ok && nb == '>' {
			tz.cur.ReadByte()
			return Token{Kind: TokDictionaryClose, Offset: offset}
		}
		return Token{Kind: TokError, Offset: offset, Text: "unexpected '>'"}
	case '(':
		return tz.readLiteralString(offset)
	case '[':
		return Token{Kind: TokArrayOpen, Offset: offset}
	case ']':
		return Token{Kind: TokArrayClose, Offset: offset}
	case '/':
		return tz.readName(offset)
	case ')', '{', '}':
		return Token{Kind: TokError, Offset: offset, Text: "unexpected delimiter '" + string(b) + "'"}
	default:
		tz.cur.unreadByte()
		return tz.readNumberOrKeyword(offset)
	}
}

func (tz *Tokenizer) readComment(offset int64) Token {
	tz.tmp = tz.tmp[:0]
	for {
		b, ok := tz.cur.ReadByte()
		if !ok || b == '\r' || b == '\n' {
			break
		}
		tz.tmp = append(tz.tmp, b)
	}
	return Token{Kind: TokComment, Offset: offset, Text: string(tz.tmp)}
}

func (tz *Tokenizer) readHexString(offset int64) Token {
	tz.tmp = tz.tmp[:0]
	var pending int
	havePending := false
	for {
		b, ok := tz.cur.ReadByte()
		if !ok {
			return Token{Kind: TokError, Offset: offset, Text: "unterminated hex string"}
		}
		if b == '>' {
			break
		}
		if isSpace(b) {
			continue
		}
		x := unhex(b)
		if x < 0 {
			return Token{Kind: TokError, Offset: offset, Text: "invalid hex digit in hex string"}
		}
		if !havePending {
			pending = x
			havePending = true
		} else {
			tz.tmp = append(tz.tmp, byte(pending<<4|x))
			havePending = false
		}
	}
	if havePending {
		// Odd length: the spec pads the final nibble with 0.
		tz.tmp = append(tz.tmp, byte(pending<<4))
	}
	return Token{Kind: TokHexString, Offset: offset, Text: string(tz.tmp)}
}

func (tz *Tokenizer) readLiteralString(offset int64) Token {
	tz.tmp = tz.tmp[:0]
	depth := 1
	for {
		b, ok := tz.cur.ReadByte()
		if !ok {
			return Token{Kind: TokError, Offset: offset, Text: "unterminated literal string"}
		}
		switch b {
		case '(':
			depth++
			tz.tmp = append(tz.tmp, b)
		case ')':
			depth--
			if depth == 0 {
				return Token{Kind: TokLiteralString, Offset: offset, Text: string(tz.tmp)}
			}
			tz.tmp = append(tz.tmp, b)
		case '\\':
			tz.readStringEscape()
		default:
			tz.tmp = append(tz.tmp, b)
		}
	}
}

func (tz *Tokenizer) readStringEscape() {
	b, ok := tz.cur.ReadByte()
	if !ok {
		return
	}
	switch b {
	case 'n':
		tz.tmp = append(tz.tmp, '\n')
	case 'r':
		tz.tmp = append(tz.tmp, '\r')
	case 't':
		tz.tmp = append(tz.tmp, '\t')
	case 'b':
		tz.tmp = append(tz.tmp, '\b')
	case 'f':
		tz.tmp = append(tz.tmp, '\f')
	case '(', ')', '\\':
		tz.tmp = append(tz.tmp, b)
	case '\r':
		// Backslash-EOL is a line continuation: consume an optional
		// following \n and append nothing.
		if nb, ok := tz.cur.PeekByte(); ok && nb == '\n' {
			tz.cur.ReadByte()
		}
	case '\n':
		// line continuation, append nothing
	case '0', '1', '2', '3', '4', '5', '6', '7':
		x := int(b - '0')
		for i := 0; i < 2; i++ {
			nb, ok := tz.cur.PeekByte()
			if !ok || nb < '0' || nb > '7' {
				break
			}
			tz.cur.ReadByte()
			x = x*8 + int(nb-'0')
		}
		tz.tmp = append(tz.tmp, byte(x&0xFF))
	default:
		// Unrecognized escape: the backslash is ignored per spec.
		tz.tmp = append(tz.tmp, b)
	}
}

func (tz *Tokenizer) readName(offset int64) Token {
	tz.tmp = tz.tmp[:0]
	for {
		b, ok := tz.cur.PeekByte()
		if !ok || isDelim(b) || isSpace(b) {
			break
		}
		tz.cur.ReadByte()
		if b != '#' {
			tz.tmp = append(tz.tmp, b)
			continue
		}
		c1, ok1 := tz.cur.PeekByte()
		if !ok1 || isDelim(c1) || isSpace(c1) {
			tz.tmp = append(tz.tmp, '#')
			continue
		}
		tz.cur.ReadByte()
		c2, ok2 := tz.cur.PeekByte()
		if !ok2 || isDelim(c2) || isSpace(c2) {
			x := unhex(c1)
			if x < 0 {
				tz.tmp = append(tz.tmp, '#', c1)
				continue
			}
			tz.tmp = append(tz.tmp, byte(x<<4))
			continue
		}
		tz.cur.ReadByte()
		x1, x2 := unhex(c1), unhex(c2)
		if x1 < 0 || x2 < 0 {
			tz.tmp = append(tz.tmp, '#', c1, c2)
			continue
		}
		tz.tmp = append(tz.tmp, byte(x1<<4|x2))
	}
	return Token{Kind: TokName, Offset: offset, Text: string(tz.tmp)}
}

func (tz *Tokenizer) readNumberOrKeyword(offset int64) Token {
	tz.tmp = tz.tmp[:0]
	for {
		b, ok := tz.cur.PeekByte()
		if !ok || isDelim(b) || isSpace(b) {
			break
		}
		tz.cur.ReadByte()
		tz.tmp = append(tz.tmp, b)
	}
	s := string(tz.tmp)

	if isIntegerLexeme(s) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Token{Kind: TokError, Offset: offset, Text: errors.Wrap(err, "malformed integer").Error()}
		}
		return Token{Kind: TokInteger, Offset: offset, Int: v}
	}
	if isRealLexeme(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Token{Kind: TokError, Offset: offset, Text: errors.Wrap(err, "malformed real").Error()}
		}
		return Token{Kind: TokReal, Offset: offset, Float: v}
	}
	if kw, ok := isKeyword(s); ok {
		return Token{Kind: TokKeyword, Offset: offset, Keyword: kw}
	}
	return Token{Kind: TokError, Offset: offset, Text: "unknown keyword " + s}
}

func isIntegerLexeme(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isRealLexeme(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	dots := 0
	digits := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			dots++
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		digits++
	}
	return dots == 1 && digits > 0
}

// ReadXRefEntry reads exactly one 20-byte fixed-width xref line:
// 10 digits (offset), space, 5 digits (generation), space, one byte
// 'n' or 'f', then two terminator bytes (any combination of space, CR
// and LF that brings the record to 20 bytes). expectedObjectID is
// assigned to the resulting entry; the source PDF does not repeat
// object ids inline.
func (tz *Tokenizer) ReadXRefEntry(expectedObjectID uint32) Token {
	// The subsection count preceding the first entry is read by the
	// number lexer, which stops at but does not consume the EOL
	// terminating it. Skip that leftover whitespace so the 20-byte
	// window starts exactly on the offset's first digit. (A previous
	// entry's 20-byte read already consumed its own terminator.)
	for {
		b, ok := tz.cur.PeekByte()
		if !ok || !isSpace(b) {
			break
		}
		tz.cur.ReadByte()
	}

	offset := tz.cur.Position()
	raw, err := tz.cur.ReadExact(20)
	if err != nil {
		return Token{Kind: TokError, Offset: offset, Text: "short read on xref entry: " + err.Error()}
	}

	offDigits := raw[0:10]
	if raw[10] != ' ' {
		return Token{Kind: TokError, Offset: offset, Text: "malformed xref entry: missing separator after offset"}
	}
	genDigits := raw[11:16]
	if raw[16] != ' ' {
		return Token{Kind: TokError, Offset: offset, Text: "malformed xref entry: missing separator after generation"}
	}
	marker := raw[17]
	if marker != 'n' && marker != 'f' {
		return Token{Kind: TokError, Offset: offset, Text: "malformed xref entry: marker byte is not 'n' or 'f'"}
	}

	off, err := parseFixedDigits(offDigits)
	if err != nil {
		return Token{Kind: TokError, Offset: offset, Text: "malformed xref entry offset: " + err.Error()}
	}
	gen, err := parseFixedDigits(genDigits)
	if err != nil {
		return Token{Kind: TokError, Offset: offset, Text: "malformed xref entry generation: " + err.Error()}
	}

	return Token{
		Kind:   TokXRefEntry,
		Offset: offset,
		XRef: XRefEntry{
			ObjectID:   expectedObjectID,
			Generation: uint16(gen),
			Offset:     off,
			InUse:      marker == 'n',
		},
	}
}

func parseFixedDigits(b []byte) (int64, error) {
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, errors.Errorf("non-digit byte %q", c)
		}
	}
	return strconv.ParseInt(string(b), 10, 64)
}

// ReadRawBytes bypasses tokenization to read n bytes verbatim, used
// for stream payloads immediately after the "stream" keyword and the
// single EOL that follows it.
func (tz *Tokenizer) ReadRawBytes(n int) ([]byte, error) {
	return tz.cur.ReadExact(n)
}

// ConsumeStreamEOL consumes exactly one end-of-line sequence (LF, or
// CR optionally followed by LF) immediately after the "stream"
// keyword, as required before the payload begins.
func (tz *Tokenizer) ConsumeStreamEOL() error {
	offset := tz.cur.Position()
	b, ok := tz.cur.ReadByte()
	if !ok {
		return newParseError("consume stream EOL", ClassStructural, offset, "unexpected EOF after stream keyword")
	}
	switch b {
	case '\n':
		return nil
	case '\r':
		if nb, ok := tz.cur.PeekByte(); ok && nb == '\n' {
			tz.cur.ReadByte()
		}
		return nil
	default:
		return newParseError("consume stream EOL", ClassStructural, offset, "stream keyword not followed by EOL")
	}
}

// SetIgnoreComments toggles comment emission. ParseHeader flips this
// off temporarily to read the %PDF- comment, then restores it.
func (tz *Tokenizer) SetIgnoreComments(v bool) {
	tz.ignoreComments = v
}
