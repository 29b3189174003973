// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"bytes"
	"encoding/xml"

	"golang.org/x/net/html/charset"
)

// unmarshalXML decodes an OOXML part the same way every decoder in this
// package needs to: most parts declare UTF-8, but a minority (hand-edited
// or exported from older tooling) declare a legacy codepage. Wiring
// x/net/html/charset's CharsetReader here means those parts parse instead
// of failing the whole package load with CorruptPart (§4.2).
func unmarshalXML(raw []byte, v interface{}) error {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false
	return dec.Decode(v)
}
