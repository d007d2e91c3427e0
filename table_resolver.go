// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcore

// TableResolver is a ReferenceResolver backed by a single XRefTable and
// the ByteCursor the table was read from. It is the common case: a
// stream's /Length points at an indirect object whose own byte offset
// is already known from the cross-reference table parsed earlier in
// the same file.
//
// A document layer assembling multiple xref sections (out of scope
// for this package) would typically implement its own
// ReferenceResolver over its merged index instead of using this type.
type TableResolver struct {
	table *XRefTable
	cur   *ByteCursor
}

// NewTableResolver returns a resolver that looks objects up in table
// and parses them from cur.
func NewTableResolver(table *XRefTable, cur *ByteCursor) *TableResolver {
	return &TableResolver{table: table, cur: cur}
}

// Resolve looks up (id, generation) in the table and, if found and in
// use, parses the indirect object at its recorded offset, returning
// its body. Each call borrows a pooled Tokenizer for the re-entrant
// parse and returns it afterward.
func (r *TableResolver) Resolve(id uint32, generation uint16) (Object, bool) {
	entry, ok := r.table.Lookup(id)
	if !ok || !entry.InUse || entry.Generation != generation {
		return Object{}, false
	}

	tz := AcquireTokenizer(r.cur)
	defer ReleaseTokenizer(tz)

	parser := &ObjectParser{cur: r.cur, tz: tz, resolver: r}
	offset := entry.Offset
	obj, ok, err := parser.ParseIndirectObject(&offset)
	if err != nil || !ok {
		return Object{}, false
	}
	return obj.Body, true
}
