// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"encoding/xml"
	"path"
)

// Relationship type URIs this engine resolves (grounded on
// other_examples' xmlDrawing.go constant block, trimmed to the ones
// Tier-2 decode/encode actually uses).
const (
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeWorksheet      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeSharedStrings  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings"
	relTypeTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	relTypeComments       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	relTypeTable          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/table"
	relTypeDrawing        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/drawing"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeVMLDrawing     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/vmlDrawing"
)

type xlsxRelationships struct {
	XMLName      xml.Name           `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Relationship []xlsxRelationship `xml:"Relationship"`
}

type xlsxRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// relTable is a per-part rId -> relationship lookup (§3.1 "Relationships").
type relTable struct {
	byID map[string]xlsxRelationship
}

func decodeRels(raw []byte) (*relTable, error) {
	var rs xlsxRelationships
	if len(raw) == 0 {
		return &relTable{byID: map[string]xlsxRelationship{}}, nil
	}
	if err := unmarshalXML(raw, &rs); err != nil {
		return nil, newCorruptPart("_rels", err)
	}
	t := &relTable{byID: make(map[string]xlsxRelationship, len(rs.Relationship))}
	for _, r := range rs.Relationship {
		t.byID[r.ID] = r
	}
	return t, nil
}

func (t *relTable) target(id string) (string, bool) {
	r, ok := t.byID[id]
	if !ok {
		return "", false
	}
	return r.Target, true
}

func (t *relTable) byType(typ string) []xlsxRelationship {
	var out []xlsxRelationship
	for _, r := range t.byID {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

// relsPathFor returns the conventional "_rels/<basename>.rels" path
// alongside a part, e.g. "xl/workbook.xml" -> "xl/_rels/workbook.xml.rels".
func relsPathFor(partName string) string {
	dir, base := path.Split(partName)
	return dir + "_rels/" + base + ".rels"
}

// resolveTarget joins a relationship Target (which is relative to the
// referencing part's directory) into an absolute package part path.
func resolveTarget(fromPart, target string) string {
	if len(target) > 0 && target[0] == '/' {
		return target[1:]
	}
	dir, _ := path.Split(fromPart)
	return path.Clean(dir + target)
}

func encodeRels(rels []xlsxRelationship) ([]byte, error) {
	doc := xlsxRelationships{Relationship: rels}
	buf, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), buf...), nil
}
