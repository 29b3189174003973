// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import "fmt"

// Sheet is a lazy proxy onto one worksheet: constructing it never copies
// cell data, so opening a workbook with hundreds of sheets stays O(1)
// until each sheet is actually touched (§4.5.2's "lazy cell proxies").
type Sheet struct {
	wb   *Workbook
	data *sheet
}

// SheetNames returns every sheet name in workbook order.
func (wb *Workbook) SheetNames() []string { return wb.model.SheetNames() }

// Sheet returns a handle to the named sheet.
func (wb *Workbook) Sheet(name string) (*Sheet, error) {
	s, err := wb.model.SheetByName(name)
	if err != nil {
		return nil, err
	}
	return &Sheet{wb: wb, data: s}, nil
}

// AddSheet creates and returns a new, empty sheet.
func (wb *Workbook) AddSheet(name string) (*Sheet, error) {
	if err := wb.checkMutable(); err != nil {
		return nil, err
	}
	idx, err := wb.model.AddSheet(name)
	if err != nil {
		return nil, err
	}
	return &Sheet{wb: wb, data: wb.model.sheets[idx]}, nil
}

// DuplicateSheet clones src into a new sheet named dst (§4 supplemented
// feature).
func (wb *Workbook) DuplicateSheet(src, dst string) (*Sheet, error) {
	if err := wb.checkMutable(); err != nil {
		return nil, err
	}
	if err := wb.model.DuplicateSheet(src, dst); err != nil {
		return nil, err
	}
	return wb.Sheet(dst)
}

// DefinedName adds a workbook- or sheet-scoped defined name. sheetScope is
// -1 for workbook scope, or a 0-based sheet index to bind it locally.
func (wb *Workbook) DefinedName(name, refersTo string, sheetScope int) error {
	if err := wb.checkMutable(); err != nil {
		return err
	}
	wb.model.NameAdd(name, refersTo, sheetScope)
	return nil
}

// DefinedName is the facade's read-only view of §3.1's DefinedName entity.
// SheetScope is -1 for workbook scope, or the 0-based sheet index it is
// bound to.
type DefinedName struct {
	Name       string
	RefersTo   string
	SheetScope int
}

// DefinedNames returns every defined name in the workbook.
func (wb *Workbook) DefinedNames() []DefinedName {
	out := make([]DefinedName, len(wb.model.definedNames))
	for i, n := range wb.model.definedNames {
		out[i] = DefinedName{Name: n.name, RefersTo: n.refersTo, SheetScope: n.sheetScope}
	}
	return out
}

// Name returns the sheet's name.
func (s *Sheet) Name() string { return s.data.name }

// Dimension returns the bounding range of non-empty cells; ok is false for
// an empty sheet.
func (s *Sheet) Dimension() (minRow, minCol, maxRow, maxCol int, ok bool) {
	return s.data.dimension()
}

// Cell returns a handle to the cell at the given A1-style reference.
func (s *Sheet) Cell(ref string) (*Cell, error) {
	col, row, err := CellNameToCoordinates(ref)
	if err != nil {
		return nil, err
	}
	return s.CellAt(row, col), nil
}

// CellAt returns a handle to the cell at (row, col), 1-based. Unlike Cell
// it never fails: an out-of-range coordinate is only rejected when the
// handle is actually used to set a value.
func (s *Sheet) CellAt(row, col int) *Cell {
	return &Cell{sheet: s, row: row, col: col}
}

// Cell is a lazy (row, col) handle; it materializes the underlying value
// only when Value/SetValue (or a style accessor) is called.
type Cell struct {
	sheet *Sheet
	row   int
	col   int
}

// Value returns the cell's current value.
func (c *Cell) Value() CellValue {
	v, _ := c.sheet.data.CellGet(c.row, c.col)
	return v
}

// SetValue assigns v to the cell, preserving its current style.
func (c *Cell) SetValue(v CellValue) error {
	if err := c.sheet.wb.checkMutable(); err != nil {
		return err
	}
	c.sheet.data.CellSet(c.row, c.col, v, nil)
	return nil
}

// SetString is a convenience wrapper for the common string-cell case.
func (c *Cell) SetString(s string) error {
	return c.SetValue(CellValue{Type: CellString, Str: s})
}

// SetNumber is a convenience wrapper for the common numeric-cell case.
func (c *Cell) SetNumber(n float64) error {
	return c.SetValue(CellValue{Type: CellNumber, Num: n})
}

// SetFormula sets a formula cell; the leading "=" is optional. formula is
// validated with ValidateFormula before being stored (§4.2.6).
func (c *Cell) SetFormula(formula string) error {
	if err := ValidateFormula(formula); err != nil {
		return err
	}
	return c.SetValue(CellValue{Type: CellFormula, Formula: formula})
}

// Style returns the cell's fully resolved style. Each field is an
// independent copy: mutating the returned Font/Fill/Border never affects
// the cell unless re-assigned via SetFont/SetFill/... (§9).
func (c *Cell) Style() resolvedStyle {
	_, styleID := c.sheet.data.CellGet(c.row, c.col)
	return c.sheet.wb.model.styles.resolve(styleID)
}

// SetFont interns font and assigns it to the cell, leaving every other
// style aspect untouched.
func (c *Cell) SetFont(font Font) error {
	return c.restyle(func(cur *resolvedStyle) { cur.Font = font })
}

// SetFill interns fill and assigns it to the cell.
func (c *Cell) SetFill(fill Fill) error {
	return c.restyle(func(cur *resolvedStyle) { cur.Fill = fill })
}

// SetBorder interns border and assigns it to the cell.
func (c *Cell) SetBorder(border Border) error {
	return c.restyle(func(cur *resolvedStyle) { cur.Border = border })
}

// SetAlignment assigns align to the cell.
func (c *Cell) SetAlignment(align Alignment) error {
	return c.restyle(func(cur *resolvedStyle) { cur.Alignment = align })
}

// SetNumberFormat assigns a display format code (e.g. "0.00%", "m/d/yyyy")
// to the cell.
func (c *Cell) SetNumberFormat(code string) error {
	return c.restyle(func(cur *resolvedStyle) { cur.NumFmt = code })
}

func (c *Cell) restyle(apply func(*resolvedStyle)) error {
	if err := c.sheet.wb.checkMutable(); err != nil {
		return err
	}
	cur := c.Style()
	apply(&cur)
	reg := c.sheet.wb.model.styles
	id := reg.StyleIntern(cur.Font, cur.Fill, cur.Border, cur.NumFmt, cur.Alignment)
	c.sheet.data.CellSet(c.row, c.col, c.Value(), &id)
	return nil
}

// MergeCells merges the rectangular range from -> to (both A1-style refs).
func (s *Sheet) MergeCells(from, to string) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	minCol, minRow, maxCol, maxRow, err := parseRange(from + ":" + to)
	if err != nil {
		return err
	}
	return s.data.MergeAdd(minRow, minCol, maxRow, maxCol)
}

// SetColumnWidth sets the display width (in Excel's character-width unit)
// for column col (1-based).
func (s *Sheet) SetColumnWidth(col int, width float64) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	s.data.colWidths[col] = width
	s.data.fullyDirty = true
	return nil
}

// ColumnWidth returns the stored width for col, or ok=false if unset.
func (s *Sheet) ColumnWidth(col int) (width float64, ok bool) {
	width, ok = s.data.colWidths[col]
	return
}

// SetRowHeight sets the display height (in points) for row (1-based).
func (s *Sheet) SetRowHeight(row int, height float64) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	s.data.rowHeights[row] = height
	s.data.fullyDirty = true
	return nil
}

// SetFreezePanes freezes the sheet at the given split, per §3.1's
// FreezePane entity. topLeftCell is the first visible cell in the
// scrolling region, e.g. "B2".
func (s *Sheet) SetFreezePanes(xSplit, ySplit int, topLeftCell string) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	s.data.FreezeSet(freezePane{xSplit: xSplit, ySplit: ySplit, topLeftCell: topLeftCell, active: true})
	return nil
}

// SetAutoFilter applies an auto-filter over the given A1-style range.
func (s *Sheet) SetAutoFilter(rangeRef string) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	s.data.autoFilter = rangeRef
	s.data.fullyDirty = true
	return nil
}

// AddHyperlink attaches a hyperlink to the cell at ref. target is either an
// external URL or, when internal is true, an internal location such as
// "Sheet2!A1".
func (s *Sheet) AddHyperlink(ref, target, display, tooltip string, internal bool) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	col, row, err := CellNameToCoordinates(ref)
	if err != nil {
		return err
	}
	s.data.HyperlinkAdd(hyperlinkRecord{row: row, col: col, target: target, display: display, tooltip: tooltip, isInternal: internal})
	return nil
}

// AddComment attaches a legacy comment to the cell at ref.
func (s *Sheet) AddComment(ref, author, text string) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	col, row, err := CellNameToCoordinates(ref)
	if err != nil {
		return err
	}
	s.data.CommentAdd(commentRecord{row: row, col: col, author: author, text: text})
	// A new commentsN.xml part needs a [Content_Types].xml declaration;
	// workbookDirty is what triggers saveModify to rebuild it (save.go).
	s.wb.model.workbookDirty = true
	return nil
}

// AddDataValidation attaches a data-validation rule over the given
// A1-style range.
func (s *Sheet) AddDataValidation(rangeRef, vtype, operator, formula1, formula2 string) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	minCol, minRow, maxCol, maxRow, err := parseRange(rangeRef)
	if err != nil {
		return err
	}
	s.data.ValidationAdd(dataValidationRecord{
		minRow: minRow, minCol: minCol, maxRow: maxRow, maxCol: maxCol,
		vtype: vtype, operator: operator, formula1: formula1, formula2: formula2,
		showInput: true, showError: true,
	})
	return nil
}

// AddConditionalFormat attaches a conditional-formatting rule over the
// given A1-style range. dxf is interned and referenced by the rule.
func (s *Sheet) AddConditionalFormat(rangeRef, ruleType, operator, formula string, priority int, dxf Dxf) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	minCol, minRow, maxCol, maxRow, err := parseRange(rangeRef)
	if err != nil {
		return err
	}
	dxfID := s.wb.model.styles.internDxf(dxf)
	s.data.ConditionalAdd(conditionalRule{
		minRow: minRow, minCol: minCol, maxRow: maxRow, maxCol: maxCol,
		ruleType: ruleType, operator: operator, formula: formula,
		priority: priority, dxfID: dxfID,
	})
	return nil
}

// AddTable registers a table over the given A1-style range with the given
// column headers.
func (s *Sheet) AddTable(displayName, rangeRef string, columns []string, hasHeader bool) error {
	if err := s.wb.checkMutable(); err != nil {
		return err
	}
	minCol, minRow, maxCol, maxRow, err := parseRange(rangeRef)
	if err != nil {
		return err
	}
	if len(columns) != maxCol-minCol+1 {
		return fmt.Errorf("%w: table %q has %d columns but range spans %d", ErrBadCellReference, displayName, len(columns), maxCol-minCol+1)
	}
	t := tableDef{
		displayName: displayName,
		minRow:      minRow, minCol: minCol, maxRow: maxRow, maxCol: maxCol,
		headerRowCount: 1,
	}
	if !hasHeader {
		t.headerRowCount = 0
	}
	for _, name := range columns {
		t.columns = append(t.columns, tableColumn{Name: name})
	}
	s.data.TableAdd(t)
	// A new tableN_M.xml part needs a [Content_Types].xml declaration;
	// workbookDirty is what triggers saveModify to rebuild it (save.go).
	s.wb.model.workbookDirty = true
	return nil
}

// Pictures returns read-only metadata for every picture anchored on the
// sheet (§4 supplemented feature); image bytes are never decoded (image
// decode/encode is out of scope).
func (s *Sheet) Pictures() []Picture {
	out := make([]Picture, len(s.data.pictures))
	for i, p := range s.data.pictures {
		ref, _ := CoordinatesToCellName(p.col, p.row)
		out[i] = Picture{Cell: ref, Width: p.width, Height: p.height, Extension: p.extension}
	}
	return out
}
