// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import "encoding/xml"

// xlsxWorkbook is xl/workbook.xml's root element (§4.2.1).
type xlsxWorkbook struct {
	XMLName       xml.Name           `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main workbook"`
	WorkbookPr    *xlsxWorkbookPr    `xml:"workbookPr"`
	Sheets        xlsxSheets         `xml:"sheets"`
	DefinedNames  *xlsxDefinedNames  `xml:"definedNames"`
}

type xlsxWorkbookPr struct {
	Date1904 bool `xml:"date1904,attr,omitempty"`
}

type xlsxSheets struct {
	Sheet []xlsxSheetRef `xml:"sheet"`
}

type xlsxSheetRef struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	State   string `xml:"state,attr,omitempty"`
	RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xlsxDefinedNames struct {
	DefinedName []xlsxDefinedName `xml:"definedName"`
}

type xlsxDefinedName struct {
	Name        string `xml:"name,attr"`
	LocalSheetID *int  `xml:"localSheetId,attr"`
	Content     string `xml:",chardata"`
}

// decodedWorkbook is the intermediate result of parsing workbook.xml,
// before sheet rIds have been resolved against workbook.xml.rels into
// part paths (§4.2.1: "Reads r:id on each sheet and resolves against
// xl/_rels/workbook.xml.rels").
type decodedWorkbook struct {
	date1904 bool
	sheets   []decodedSheetRef
	names    []definedNameRecord
}

type decodedSheetRef struct {
	name    string
	sheetID int
	state   string
	rID     string
}

func decodeWorkbook(raw []byte) (*decodedWorkbook, error) {
	var wb xlsxWorkbook
	if err := unmarshalXML(raw, &wb); err != nil {
		return nil, newCorruptPart("xl/workbook.xml", err)
	}
	out := &decodedWorkbook{}
	if wb.WorkbookPr != nil {
		out.date1904 = wb.WorkbookPr.Date1904
	}
	for _, s := range wb.Sheets.Sheet {
		out.sheets = append(out.sheets, decodedSheetRef{name: s.Name, sheetID: s.SheetID, state: s.State, rID: s.RID})
	}
	if wb.DefinedNames != nil {
		for _, dn := range wb.DefinedNames.DefinedName {
			scope := -1
			if dn.LocalSheetID != nil {
				scope = *dn.LocalSheetID
			}
			out.names = append(out.names, definedNameRecord{
				name:       dn.Name,
				refersTo:   normalizeRefersTo(dn.Content),
				sheetScope: scope,
			})
		}
	}
	return out, nil
}

// normalizeRefersTo strips the leading "=" and "$" absolute markers that
// OOXML stores a defined name's target with, per §4.2.7.
func normalizeRefersTo(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '=' || c == '$' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// encodeWorkbook serializes the workbook topology (sheet list, date
// system, defined names) to workbook.xml. sheetRIDs maps sheet index to
// its relationship id, assigned by the caller alongside workbook.xml.rels.
func encodeWorkbook(m *workbookModel, sheetRIDs []string) ([]byte, error) {
	wb := xlsxWorkbook{
		WorkbookPr: &xlsxWorkbookPr{Date1904: m.date1904},
	}
	for i, s := range m.sheets {
		wb.Sheets.Sheet = append(wb.Sheets.Sheet, xlsxSheetRef{
			Name:    s.name,
			SheetID: i + 1,
			RID:     sheetRIDs[i],
		})
	}
	if len(m.definedNames) > 0 {
		wb.DefinedNames = &xlsxDefinedNames{}
		for _, dn := range m.definedNames {
			xdn := xlsxDefinedName{Name: dn.name, Content: dn.refersTo}
			if dn.sheetScope >= 0 {
				scope := dn.sheetScope
				xdn.LocalSheetID = &scope
			}
			wb.DefinedNames.DefinedName = append(wb.DefinedNames.DefinedName, xdn)
		}
	}
	buf, err := xml.Marshal(wb)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), buf...), nil
}
