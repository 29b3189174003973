// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/efp"
)

// ExtractFormulas implements §4.2.6's dedicated fast path: a single pass
// over a worksheet part collecting every <f> by cell reference, without
// materializing cell values. This exists because formula-only reads are
// common in benchmarking/binding contexts and a full decodeWorksheet pass
// does needless value/style work for that case.
func ExtractFormulas(raw []byte) (map[string]string, error) {
	out := map[string]string{}
	dec := xml.NewDecoder(strings.NewReader(string(raw)))
	var currentRef string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newCorruptPart("worksheet", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "c" {
				currentRef = attrValue(t, "r")
			}
			if t.Name.Local == "f" {
				var content string
				if err := dec.DecodeElement(&content, &t); err != nil {
					return nil, newCorruptPart("worksheet", err)
				}
				if currentRef != "" {
					out[currentRef] = content
				}
			}
		}
	}
	return out, nil
}

func attrValue(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// ValidateFormula tokenizes formula text with efp to reject a malformed
// formula before it is embedded in a cell (§1 Non-goals: formulas are
// stored and returned verbatim — this is syntax validation, never
// evaluation). A formula with unbalanced parens/brackets or a stray
// operator fails to tokenize cleanly and efp reports it via a panic
// recovered here, matching efp's own fail-fast parser contract.
func ValidateFormula(formula string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed formula %q: %v", ErrUnsupportedFeature, formula, r)
		}
	}()
	trimmed := stripLeadingEquals(strings.TrimSpace(formula))
	if trimmed == "" {
		return fmt.Errorf("%w: empty formula", ErrBadCellReference)
	}
	p := efp.ExcelParser()
	p.Parse(trimmed)
	return nil
}
