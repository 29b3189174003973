// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import "encoding/xml"

// [Content_Types].xml declares, for the whole package, the MIME type of
// every part either by extension (Default) or by exact path (Override). A
// fresh save always regenerates it in full. Modify mode rebuilds it from
// the final part-name set (see saveModify, save.go) whenever workbookDirty
// is set, since that's the only time the part set can grow (new sheets,
// tables, comments) and require new declarations; anything that adds a
// table or comment part must set workbookDirty for exactly this reason.
type xlsxTypes struct {
	XMLName  xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults []xlsxCTDefault   `xml:"Default"`
	Overrides []xlsxCTOverride `xml:"Override"`
}

type xlsxCTDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xlsxCTOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

const (
	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	ctTheme         = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctTable         = "application/vnd.openxmlformats-officedocument.spreadsheetml.table+xml"
	ctComments      = "application/vnd.openxmlformats-officedocument.spreadsheetml.comments+xml"
	ctCore          = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp           = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// encodeContentTypes builds [Content_Types].xml from the part names that
// will actually be written, in the fixed part-name -> content-type mapping
// OOXML readers expect.
func encodeContentTypes(parts []string) ([]byte, error) {
	ct := xlsxTypes{
		Defaults: []xlsxCTDefault{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
		},
	}
	for _, p := range parts {
		switch {
		case p == "xl/workbook.xml":
			ct.Overrides = append(ct.Overrides, xlsxCTOverride{"/" + p, ctWorkbook})
		case p == "xl/styles.xml":
			ct.Overrides = append(ct.Overrides, xlsxCTOverride{"/" + p, ctStyles})
		case p == "xl/sharedStrings.xml":
			ct.Overrides = append(ct.Overrides, xlsxCTOverride{"/" + p, ctSharedStrings})
		case p == "xl/theme/theme1.xml":
			ct.Overrides = append(ct.Overrides, xlsxCTOverride{"/" + p, ctTheme})
		case p == "docProps/core.xml":
			ct.Overrides = append(ct.Overrides, xlsxCTOverride{"/" + p, ctCore})
		case p == "docProps/app.xml":
			ct.Overrides = append(ct.Overrides, xlsxCTOverride{"/" + p, ctApp})
		case hasPrefixAny(p, "xl/worksheets/") && !hasPrefixAny(p, "xl/worksheets/_rels/"):
			ct.Overrides = append(ct.Overrides, xlsxCTOverride{"/" + p, ctWorksheet})
		case hasPrefixAny(p, "xl/tables/"):
			ct.Overrides = append(ct.Overrides, xlsxCTOverride{"/" + p, ctTable})
		case hasPrefixAny(p, "xl/comments") || (hasPrefixAny(p, "xl/") && containsComments(p)):
			ct.Overrides = append(ct.Overrides, xlsxCTOverride{"/" + p, ctComments})
		}
	}
	buf, err := xml.Marshal(ct)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), buf...), nil
}

func containsComments(p string) bool {
	return len(p) > 8 && p[len(p)-4:] == ".xml" && indexOfComments(p) >= 0
}

func indexOfComments(p string) int {
	const needle = "comments"
	for i := 0; i+len(needle) <= len(p); i++ {
		if p[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func encodeRootRels() ([]byte, error) {
	return encodeRels([]xlsxRelationship{
		{ID: "rId1", Type: relTypeOfficeDocument, Target: "xl/workbook.xml"},
		{ID: "rId2", Type: "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties", Target: "docProps/core.xml"},
		{ID: "rId3", Type: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties", Target: "docProps/app.xml"},
	})
}

// minimalCoreProps / minimalAppProps are the smallest valid docProps parts;
// neither models the full Dublin Core / extended-properties schema since
// nothing in this engine reads them back.
func minimalCoreProps() []byte {
	return []byte(xml.Header + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"></cp:coreProperties>`)
}

func minimalAppProps() []byte {
	return []byte(xml.Header + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"><Application>xlengine</Application></Properties>`)
}
