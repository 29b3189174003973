// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import "encoding/xml"

// sharedStringTable is the interned, workbook-global string table
// (§3.1 "SharedStrings"). It is read at load and, per §4.5.4's open
// question resolution, never rewritten in modify mode: new values are
// always written inline, so the sharedStrings part is either passed
// through untouched or (write-only mode) built fresh exactly once.
type sharedStringTable struct {
	strings []string
	index   map[string]int
}

func newSharedStringTable() *sharedStringTable {
	return &sharedStringTable{index: map[string]int{}}
}

// Get returns the string at idx, or "" if out of range (a malformed but
// recoverable reference; see §7 category 3).
func (t *sharedStringTable) Get(idx int) string {
	if idx < 0 || idx >= len(t.strings) {
		return ""
	}
	return t.strings[idx]
}

// Intern returns s's shared-string index, appending it if new. Used only
// by the write-only path that chooses to author shared strings; the
// modify path never calls this (§4.5.4).
func (t *sharedStringTable) Intern(s string) int {
	if i, ok := t.index[s]; ok {
		return i
	}
	i := len(t.strings)
	t.strings = append(t.strings, s)
	t.index[s] = i
	return i
}

type xlsxSST struct {
	XMLName xml.Name `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main sst"`
	Count   int      `xml:"count,attr"`
	Unique  int      `xml:"uniqueCount,attr"`
	SI      []xlsxSI `xml:"si"`
}

// xlsxSI is one shared-string entry: either a plain <t> or a sequence of
// rich-text <r> runs, which we flatten to plain text for value purposes
// per §4.2.3 ("rich-text retention is optional").
type xlsxSI struct {
	T string    `xml:"t"`
	R []xlsxRPr `xml:"r"`
}

type xlsxRPr struct {
	T string `xml:"t"`
}

func (si xlsxSI) flatten() string {
	if len(si.R) > 0 {
		out := ""
		for _, r := range si.R {
			out += r.T
		}
		return out
	}
	return si.T
}

// decodeSharedStrings parses xl/sharedStrings.xml. A missing part is legal
// (a workbook with only inline strings has none).
func decodeSharedStrings(raw []byte) (*sharedStringTable, error) {
	var sst xlsxSST
	if err := unmarshalXML(raw, &sst); err != nil {
		return nil, newCorruptPart("xl/sharedStrings.xml", err)
	}
	t := newSharedStringTable()
	for _, si := range sst.SI {
		s := si.flatten()
		t.strings = append(t.strings, s)
	}
	return t, nil
}

// encodeSharedStrings is only used by the write-only path's optional
// shared-string authoring (§4.3: inline is the default for new values).
func encodeSharedStrings(t *sharedStringTable) ([]byte, error) {
	sst := xlsxSST{Count: len(t.strings), Unique: len(t.strings)}
	for _, s := range t.strings {
		sst.SI = append(sst.SI, xlsxSI{T: s})
	}
	buf, err := xml.Marshal(sst)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), buf...), nil
}
