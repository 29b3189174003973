// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import "encoding/xml"

// xlsxTable is xl/tables/tableN.xml's root element (§4.2.7 "Tables").
type xlsxTable struct {
	XMLName         xml.Name           `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main table"`
	Name            string             `xml:"name,attr"`
	DisplayName     string             `xml:"displayName,attr"`
	Ref             string             `xml:"ref,attr"`
	HeaderRowCount  *int               `xml:"headerRowCount,attr"`
	TotalsRowCount  int                `xml:"totalsRowCount,attr,omitempty"`
	AutoFilter      *xlsxAutoFilter    `xml:"autoFilter"`
	TableColumns    xlsxTableColumns   `xml:"tableColumns"`
	TableStyleInfo  *xlsxTableStyleInfo `xml:"tableStyleInfo"`
}

type xlsxTableColumns struct {
	Count  int               `xml:"count,attr"`
	Column []xlsxTableColumn `xml:"tableColumn"`
}

type xlsxTableColumn struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type xlsxTableStyleInfo struct {
	Name string `xml:"name,attr,omitempty"`
}

// decodeTable parses a tableN.xml part into a tableDef, enforcing §3.2's
// "columns.len() equals the column span of ref-range" invariant by
// trusting the parsed column span over a possibly-stale header count.
func decodeTable(raw []byte) (tableDef, error) {
	var xt xlsxTable
	if err := unmarshalXML(raw, &xt); err != nil {
		return tableDef{}, newCorruptPart("table", err)
	}
	minCol, minRow, maxCol, maxRow, err := parseRange(xt.Ref)
	if err != nil {
		return tableDef{}, newCorruptPart("table", err)
	}
	t := tableDef{
		displayName: xt.DisplayName,
		minRow:      minRow, minCol: minCol, maxRow: maxRow, maxCol: maxCol,
		totalsRowCount: xt.TotalsRowCount,
		autoFilter:     xt.AutoFilter != nil,
	}
	if xt.HeaderRowCount != nil {
		t.headerRowCount = *xt.HeaderRowCount
	} else {
		t.headerRowCount = 1
	}
	if xt.TableStyleInfo != nil {
		t.styleName = xt.TableStyleInfo.Name
	}
	for _, c := range xt.TableColumns.Column {
		t.columns = append(t.columns, tableColumn{Name: c.Name})
	}
	return t, nil
}

// encodeTable serializes a tableDef to tableN.xml. id becomes both the
// part's ordinal (table{id}.xml) and the Name fallback when displayName
// collides with nothing else.
func encodeTable(t tableDef, id int) ([]byte, error) {
	headerCount := t.headerRowCount
	xt := xlsxTable{
		Name:           t.displayName,
		DisplayName:    t.displayName,
		Ref:            formatRange(t.minCol, t.minRow, t.maxCol, t.maxRow),
		HeaderRowCount: &headerCount,
		TotalsRowCount: t.totalsRowCount,
	}
	if t.autoFilter {
		xt.AutoFilter = &xlsxAutoFilter{Ref: xt.Ref}
	}
	if t.styleName != "" {
		xt.TableStyleInfo = &xlsxTableStyleInfo{Name: t.styleName}
	}
	xt.TableColumns.Count = len(t.columns)
	for i, c := range t.columns {
		xt.TableColumns.Column = append(xt.TableColumns.Column, xlsxTableColumn{ID: i + 1, Name: c.Name})
	}
	buf, err := xml.Marshal(xt)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), buf...), nil
}
