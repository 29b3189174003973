// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

// This file rounds out the facade's read side (§6.2): the exported,
// value-type views onto every Tier-2 entity the model carries, plus the
// handful of Workbook/Sheet/Cell operations §6.2 names that facade.go's
// write-oriented pass didn't need. Everything here is read-only and
// allocates a fresh copy per call, consistent with the rest of the facade
// never handing back an aliased pointer into model state (§9).

// Hyperlink is the facade's read-only view of §3.1's Hyperlink entity.
type Hyperlink struct {
	Cell       string
	Target     string
	Display    string
	Tooltip    string
	IsInternal bool
}

// Comment is the facade's read-only view of §3.1's Comment entity.
type Comment struct {
	Cell   string
	Author string
	Text   string
}

// DataValidation is the facade's read-only view of §3.1's DataValidation
// entity.
type DataValidation struct {
	Range      string
	Type       string
	Operator   string
	Formula1   string
	Formula2   string
	AllowBlank bool
	ShowInput  bool
	ShowError  bool
	Prompt     string
	Error      string
}

// ConditionalFormat is the facade's read-only view of one rule from §3.1's
// ConditionalFormat entity.
type ConditionalFormat struct {
	Range      string
	RuleType   string
	Operator   string
	Formula    string
	Priority   int
	StopIfTrue bool
	Dxf        Dxf
}

// TableInfo is the facade's read-only view of §3.1's Table entity.
type TableInfo struct {
	DisplayName    string
	Range          string
	HeaderRowCount int
	TotalsRowCount int
	StyleName      string
	Columns        []string
	AutoFilter     bool
}

// Picture is the facade's read-only view of an anchored picture's metadata
// (§4 supplemented feature); pixel bytes are never decoded.
type Picture struct {
	Cell      string
	Width     int
	Height    int
	Extension string
}

// ActiveSheet returns the first sheet in workbook order, mirroring
// openpyxl's `wb.active` for a workbook that hasn't recorded an explicit
// active-tab index (§6.2 "active_sheet()").
func (wb *Workbook) ActiveSheet() (*Sheet, error) {
	names := wb.model.SheetNames()
	if len(names) == 0 {
		return nil, ErrSheetNotFound
	}
	return wb.Sheet(names[0])
}

// Close releases the workbook's retained source package, if any (§3.3,
// §5 "Resource ownership"). It is a no-op for WRITE_ONLY workbooks and
// safe to call more than once.
func (wb *Workbook) Close() error {
	wb.pkg = nil
	wb.aux = nil
	return nil
}

// Coordinate returns the cell's A1-style reference.
func (c *Cell) Coordinate() string {
	ref, _ := CoordinatesToCellName(c.col, c.row)
	return ref
}

// Row returns the cell's 1-based row.
func (c *Cell) Row() int { return c.row }

// Column returns the cell's 1-based column.
func (c *Cell) Column() int { return c.col }

// Hyperlink returns the hyperlink attached to the cell, if any.
func (c *Cell) Hyperlink() (Hyperlink, bool) {
	for _, hl := range c.sheet.data.hyperlinks {
		if hl.row == c.row && hl.col == c.col {
			ref, _ := CoordinatesToCellName(hl.col, hl.row)
			return Hyperlink{Cell: ref, Target: hl.target, Display: hl.display, Tooltip: hl.tooltip, IsInternal: hl.isInternal}, true
		}
	}
	return Hyperlink{}, false
}

// Comment returns the comment attached to the cell, if any.
func (c *Cell) Comment() (Comment, bool) {
	for _, cm := range c.sheet.data.comments {
		if cm.row == c.row && cm.col == c.col {
			ref, _ := CoordinatesToCellName(cm.col, cm.row)
			return Comment{Cell: ref, Author: cm.author, Text: cm.text}, true
		}
	}
	return Comment{}, false
}

// Merges returns every merged range on the sheet as A1-style "A1:B2"
// strings.
func (s *Sheet) Merges() []string {
	out := make([]string, len(s.data.merges))
	for i, m := range s.data.merges {
		out[i] = formatRange(m.minCol, m.minRow, m.maxCol, m.maxRow)
	}
	return out
}

// Hyperlinks returns every hyperlink on the sheet.
func (s *Sheet) Hyperlinks() []Hyperlink {
	out := make([]Hyperlink, len(s.data.hyperlinks))
	for i, hl := range s.data.hyperlinks {
		ref, _ := CoordinatesToCellName(hl.col, hl.row)
		out[i] = Hyperlink{Cell: ref, Target: hl.target, Display: hl.display, Tooltip: hl.tooltip, IsInternal: hl.isInternal}
	}
	return out
}

// Comments returns every comment on the sheet.
func (s *Sheet) Comments() []Comment {
	out := make([]Comment, len(s.data.comments))
	for i, cm := range s.data.comments {
		ref, _ := CoordinatesToCellName(cm.col, cm.row)
		out[i] = Comment{Cell: ref, Author: cm.author, Text: cm.text}
	}
	return out
}

// DataValidations returns every data-validation rule on the sheet.
func (s *Sheet) DataValidations() []DataValidation {
	out := make([]DataValidation, len(s.data.validations))
	for i, v := range s.data.validations {
		out[i] = DataValidation{
			Range:      formatRange(v.minCol, v.minRow, v.maxCol, v.maxRow),
			Type:       v.vtype, Operator: v.operator,
			Formula1: v.formula1, Formula2: v.formula2,
			AllowBlank: v.allowBlank, ShowInput: v.showInput, ShowError: v.showError,
			Prompt: v.prompt, Error: v.errorMsg,
		}
	}
	return out
}

// ConditionalFormats returns every conditional-formatting rule on the
// sheet, resolved against the workbook's dxf registry.
func (s *Sheet) ConditionalFormats() []ConditionalFormat {
	reg := s.wb.model.styles
	out := make([]ConditionalFormat, len(s.data.conditionals))
	for i, r := range s.data.conditionals {
		var dxf Dxf
		if r.dxfID >= 0 && r.dxfID < len(reg.dxfs) {
			dxf = reg.dxfs[r.dxfID]
		}
		out[i] = ConditionalFormat{
			Range:      formatRange(r.minCol, r.minRow, r.maxCol, r.maxRow),
			RuleType:   r.ruleType, Operator: r.operator, Formula: r.formula,
			Priority: r.priority, StopIfTrue: r.stopIfTrue, Dxf: dxf,
		}
	}
	return out
}

// Tables returns every table registered on the sheet.
func (s *Sheet) Tables() []TableInfo {
	out := make([]TableInfo, len(s.data.tables))
	for i, t := range s.data.tables {
		cols := make([]string, len(t.columns))
		for j, c := range t.columns {
			cols[j] = c.Name
		}
		out[i] = TableInfo{
			DisplayName: t.displayName, Range: formatRange(t.minCol, t.minRow, t.maxCol, t.maxRow),
			HeaderRowCount: t.headerRowCount, TotalsRowCount: t.totalsRowCount,
			StyleName: t.styleName, Columns: cols, AutoFilter: t.autoFilter,
		}
	}
	return out
}

// FreezePanes returns the sheet's freeze-pane split, if one is set.
func (s *Sheet) FreezePanes() (xSplit, ySplit int, topLeftCell string, ok bool) {
	if s.data.freeze == nil || !s.data.freeze.active {
		return 0, 0, "", false
	}
	return s.data.freeze.xSplit, s.data.freeze.ySplit, s.data.freeze.topLeftCell, true
}

// AutoFilter returns the sheet's auto-filter range, "" if unset.
func (s *Sheet) AutoFilter() string { return s.data.autoFilter }

// IterRows implements §6.2's iter_rows: it yields every cell in
// [minRow,maxRow] x [minCol,maxCol] in row-major order to fn. Returning
// false from fn stops iteration early. valuesOnly is accepted for parity
// with the openpyxl-shaped signature; the facade always hands back a
// CellValue; callers that want bare values read .Value directly.
func (s *Sheet) IterRows(minRow, maxRow, minCol, maxCol int, fn func(row, col int, v CellValue) bool) {
	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			v, _ := s.data.CellGet(r, c)
			if !fn(r, c, v) {
				return
			}
		}
	}
}
