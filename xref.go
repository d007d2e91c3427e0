// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcore

import "fmt"

// XRefEntry is one row of a classic cross-reference table: an object
// id, its generation, the byte offset of its indirect object (when
// InUse), and whether it is in use or free.
type XRefEntry struct {
	ObjectID   uint32
	Generation uint16
	Offset     int64
	InUse      bool
}

func (e XRefEntry) String() string {
	mark := "f"
	if e.InUse {
		mark = "n"
	}
	return fmt.Sprintf("%d %d %010d %s", e.ObjectID, e.Generation, e.Offset, mark)
}

// XRefTable is the result of parsing one or more contiguous xref
// sections up to (but not including) the trailer keyword. Entries are
// indexed by ObjectID for direct lookup; assembling several XRefTables
// parsed at different offsets into one document-wide index is a
// document-layer concern, not this package's.
type XRefTable struct {
	entries map[uint32]XRefEntry
}

// NewXRefTable returns an empty table.
func NewXRefTable() *XRefTable {
	return &XRefTable{entries: make(map[uint32]XRefEntry)}
}

// Lookup returns the entry for objectID, if any.
func (t *XRefTable) Lookup(objectID uint32) (XRefEntry, bool) {
	e, ok := t.entries[objectID]
	return e, ok
}

// Len reports the number of entries in the table.
func (t *XRefTable) Len() int {
	return len(t.entries)
}

// Entries returns all entries, in no particular order.
func (t *XRefTable) Entries() []XRefEntry {
	out := make([]XRefEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	return out
}

func (t *XRefTable) set(e XRefEntry) {
	t.entries[e.ObjectID] = e
}
