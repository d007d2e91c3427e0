// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcore

import "fmt"

// IndirectObject is a top-level numbered, versioned PDF object,
// bracketed by obj/endobj in the source. Its Body is any Object except
// another IndirectObject.
type IndirectObject struct {
	ID         uint32
	Generation uint16
	Body       Object
}

func (o IndirectObject) String() string {
	return fmt.Sprintf("%d %d obj %s endobj", o.ID, o.Generation, o.Body)
}
