// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"fmt"
	"sort"

	"github.com/mohae/deepcopy"
)

// ---- openpyxl-shaped style value objects (§4.5.3) ----
//
// These are plain, immutable-by-convention value types. Assigning one to a
// cell (Cell.SetFont, etc.) interns it into the style registry and gets
// back a stable style id; mutating a Font/Fill/... you already hold back
// from a getter never changes what's stored, by design (§9, "openpyxl API
// shape vs ownership discipline").

// Font mirrors openpyxl's Font: name, size, weight/slant/decoration flags
// and a foreground color.
type Font struct {
	Name      string
	Size      float64
	Bold      bool
	Italic    bool
	Underline string
	Strike    bool
	Color     string // RGB hex, no leading '#'
}

// Side is one edge of a Border: a line style plus color.
type Side struct {
	Style string
	Color string
}

// Border composes four edges plus an optional diagonal.
type Border struct {
	Top, Bottom, Left, Right, Diagonal Side
	DiagonalDirection                  string // "up", "down", "both", ""
}

// Fill mirrors openpyxl's PatternFill (gradient fills are out of scope:
// the spec's StyleRegistry only names pattern fills).
type Fill struct {
	Type    string // "none", "solid", "gray125", ...
	FgColor string
	BgColor string
}

// Alignment mirrors openpyxl's Alignment.
type Alignment struct {
	Horizontal   string
	Vertical     string
	WrapText     bool
	TextRotation int
	Indent       int
}

// Dxf is a differential format: every field is optional, and a zero value
// means "this aspect is not overridden" rather than "reset to default"
// (§4.3 / GLOSSARY "DXF").
type Dxf struct {
	Font       *Font
	Fill       *Fill
	NumFmtCode string
}

// cellXf is the internal (font,fill,border,numFmt,alignment) tuple a style
// id indexes into; it is the CellXF of the GLOSSARY.
type cellXf struct {
	numFmtID  int
	fontID    int
	fillID    int
	borderID  int
	alignment Alignment
}

// styleRegistry interns fonts/fills/borders/number-formats/cellXfs and
// dxfs by structural hash, per C4's style_intern operation and P4's dedup
// property. It is owned exclusively by the workbook.
type styleRegistry struct {
	fonts   []Font
	fills   []Fill
	borders []Border
	numFmts map[int]string // id -> custom format code, id >= 164
	xfs     []cellXf
	dxfs    []Dxf

	fontIndex   map[Font]int
	fillIndex   map[Fill]int
	borderIndex map[Border]int
	xfIndex     map[cellXf]int
	numFmtNext  int

	dirty bool
}

func newStyleRegistry() *styleRegistry {
	return &styleRegistry{
		numFmts:     map[int]string{},
		fontIndex:   map[Font]int{},
		fillIndex:   map[Fill]int{},
		borderIndex: map[Border]int{},
		xfIndex:     map[cellXf]int{},
		numFmtNext:  firstCustomNumFmtID,
	}
}

// rebuildDedup repopulates the interning maps after a decode pass, so that
// subsequent style_intern calls dedup against everything the source
// package already contained.
func (r *styleRegistry) rebuildDedup() {
	r.fontIndex = make(map[Font]int, len(r.fonts))
	for i, f := range r.fonts {
		if _, ok := r.fontIndex[f]; !ok {
			r.fontIndex[f] = i
		}
	}
	r.fillIndex = make(map[Fill]int, len(r.fills))
	for i, f := range r.fills {
		if _, ok := r.fillIndex[f]; !ok {
			r.fillIndex[f] = i
		}
	}
	r.borderIndex = make(map[Border]int, len(r.borders))
	for i, b := range r.borders {
		if _, ok := r.borderIndex[b]; !ok {
			r.borderIndex[b] = i
		}
	}
	r.xfIndex = make(map[cellXf]int, len(r.xfs))
	for i, xf := range r.xfs {
		if _, ok := r.xfIndex[xf]; !ok {
			r.xfIndex[xf] = i
		}
	}
	for id := range r.numFmts {
		if id >= r.numFmtNext {
			r.numFmtNext = id + 1
		}
	}
}

func (r *styleRegistry) internFont(f Font) int {
	if i, ok := r.fontIndex[f]; ok {
		return i
	}
	i := len(r.fonts)
	r.fonts = append(r.fonts, f)
	r.fontIndex[f] = i
	r.dirty = true
	return i
}

func (r *styleRegistry) internFill(f Fill) int {
	if i, ok := r.fillIndex[f]; ok {
		return i
	}
	i := len(r.fills)
	r.fills = append(r.fills, f)
	r.fillIndex[f] = i
	r.dirty = true
	return i
}

func (r *styleRegistry) internBorder(b Border) int {
	if i, ok := r.borderIndex[b]; ok {
		return i
	}
	i := len(r.borders)
	r.borders = append(r.borders, b)
	r.borderIndex[b] = i
	r.dirty = true
	return i
}

// internNumFmt interns a custom format code, returning its numFmtId. A
// built-in code is matched against the built-in table first so we don't
// waste a custom slot on "0.00%" etc.
func (r *styleRegistry) internNumFmt(code string) int {
	if code == "" || code == "General" {
		return 0
	}
	for id, builtin := range builtInNumFmt {
		if builtin == code {
			return id
		}
	}
	for id, c := range r.numFmts {
		if c == code {
			return id
		}
	}
	id := r.numFmtNext
	r.numFmtNext++
	r.numFmts[id] = code
	r.dirty = true
	return id
}

// numFmtCode resolves a numFmtId (built-in or custom) back to its format
// string, "General" if unknown.
func (r *styleRegistry) numFmtCode(id int) string {
	if code, ok := builtInNumFmt[id]; ok {
		return code
	}
	if code, ok := r.numFmts[id]; ok {
		return code
	}
	return "General"
}

// internDxf interns a differential format for conditional formatting and
// returns its dxfId. Dxfs are not deduped (Excel doesn't require it and
// dxf identity matters for "same rule referenced twice" semantics).
func (r *styleRegistry) internDxf(d Dxf) int {
	r.dxfs = append(r.dxfs, d)
	r.dirty = true
	return len(r.dxfs) - 1
}

// StyleIntern is the C4 style_intern operation: (font, fill, border,
// numFmt, alignment) -> style-id, deduped by structural hash (P4).
func (r *styleRegistry) StyleIntern(font Font, fill Fill, border Border, numFmtCode string, align Alignment) int {
	xf := cellXf{
		numFmtID:  r.internNumFmt(numFmtCode),
		fontID:    r.internFont(font),
		fillID:    r.internFill(fill),
		borderID:  r.internBorder(border),
		alignment: align,
	}
	if i, ok := r.xfIndex[xf]; ok {
		return i
	}
	i := len(r.xfs)
	r.xfs = append(r.xfs, xf)
	r.xfIndex[xf] = i
	r.dirty = true
	return i
}

// resolved is the fully resolved style for a style id, as handed back to
// facade callers. Each field is a deep copy of the interned value so
// mutating it can never alter the registry (§9).
type resolvedStyle struct {
	Font      Font
	Fill      Fill
	Border    Border
	NumFmt    string
	Alignment Alignment
}

func (r *styleRegistry) resolve(styleID int) resolvedStyle {
	if styleID < 0 || styleID >= len(r.xfs) {
		return resolvedStyle{NumFmt: "General"}
	}
	xf := r.xfs[styleID]
	out := resolvedStyle{
		NumFmt:    r.numFmtCode(xf.numFmtID),
		Alignment: xf.alignment,
	}
	if xf.fontID >= 0 && xf.fontID < len(r.fonts) {
		out.Font = deepcopy.Copy(r.fonts[xf.fontID]).(Font)
	}
	if xf.fillID >= 0 && xf.fillID < len(r.fills) {
		out.Fill = deepcopy.Copy(r.fills[xf.fillID]).(Fill)
	}
	if xf.borderID >= 0 && xf.borderID < len(r.borders) {
		out.Border = deepcopy.Copy(r.borders[xf.borderID]).(Border)
	}
	return out
}

// ---- cell value model (§3.1 "Cell") ----

// CellType discriminates the tagged-union cell value.
type CellType int

const (
	CellBlank CellType = iota
	CellString
	CellNumber
	CellBool
	CellError
	CellDate
	CellDateTime
	CellFormula
)

// CellValue is the tagged union described in §3.1/§9: exactly one of the
// typed fields is meaningful, selected by Type.
type CellValue struct {
	Type          CellType
	Str           string
	Num           float64
	Bool          bool
	ErrorCode     string
	Formula       string
	CachedNumeric *float64 // formula's cached <v>, if present
}

// cell is the model's internal representation; style/formula presence is
// tracked alongside the value per §3.1's invariant that a formula+cached
// value cell records both.
type cell struct {
	value   CellValue
	styleID int
}

// ---- sheet & workbook model (C4) ----

type mergeRange struct {
	minRow, minCol, maxRow, maxCol int
}

type hyperlinkRecord struct {
	row, col   int
	target     string
	display    string
	tooltip    string
	isInternal bool
}

type commentRecord struct {
	row, col int
	author   string
	text     string
	threaded bool
}

type dataValidationRecord struct {
	minRow, minCol, maxRow, maxCol int
	vtype, operator                string
	formula1, formula2              string
	allowBlank, showInput, showError bool
	promptTitle, prompt              string
	errorTitle, errorMsg             string
}

type conditionalRule struct {
	minRow, minCol, maxRow, maxCol int
	ruleType, operator             string
	formula                        string
	priority                       int
	stopIfTrue                     bool
	dxfID                          int
}

type tableColumn struct {
	Name string
}

type tableDef struct {
	displayName                        string
	minRow, minCol, maxRow, maxCol      int
	headerRowCount, totalsRowCount      int
	styleName                           string
	columns                             []tableColumn
	autoFilter                          bool
}

type freezePane struct {
	xSplit, ySplit     int
	topLeftCell        string
	active             bool
}

type pictureAnchor struct {
	row, col   int
	mediaPath  string
	width      int
	height     int
	extension  string
}

// sheet is the in-memory representation of one worksheet (§3.1 "Sheet").
// Cells are stored sparsely, keyed by (row, col), and sorted at emit time
// (C4's "sparse cell storage" clause).
type sheet struct {
	name   string
	index  int
	cells  map[[2]int]*cell
	merges []mergeRange

	colWidths map[int]float64
	rowHeights map[int]float64

	freeze     *freezePane
	hyperlinks []hyperlinkRecord
	comments   []commentRecord
	validations []dataValidationRecord
	conditionals []conditionalRule
	tables     []tableDef
	pictures   []pictureAnchor
	drawingPath string // source part path of this sheet's drawingN.xml, if any ("" if none)
	definedNames []definedNameRecord
	autoFilter string

	dirtyCells map[[2]int]bool
	fullyDirty bool // topology change (merges/tables/etc.) forces re-emit
}

func newSheet(name string, index int) *sheet {
	return &sheet{
		name:       name,
		index:      index,
		cells:      map[[2]int]*cell{},
		colWidths:  map[int]float64{},
		rowHeights: map[int]float64{},
		dirtyCells: map[[2]int]bool{},
	}
}

func (s *sheet) isDirty() bool {
	return s.fullyDirty || len(s.dirtyCells) > 0
}

func (s *sheet) markCellDirty(row, col int) {
	s.dirtyCells[[2]int{row, col}] = true
}

// sortedCoords returns every populated cell coordinate in row-major order
// (C4's "preserving insertion-free ordered iteration... sort by row then
// col at emit time").
func (s *sheet) sortedCoords() [][2]int {
	out := make([][2]int, 0, len(s.cells))
	for k := range s.cells {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// dimension returns the bounding range of non-empty cells (GLOSSARY
// "Dimension"), 1-based inclusive; ok is false for an empty sheet.
func (s *sheet) dimension() (minRow, minCol, maxRow, maxCol int, ok bool) {
	first := true
	for k := range s.cells {
		r, c := k[0], k[1]
		if first {
			minRow, maxRow, minCol, maxCol = r, r, c, c
			first = false
			continue
		}
		if r < minRow {
			minRow = r
		}
		if r > maxRow {
			maxRow = r
		}
		if c < minCol {
			minCol = c
		}
		if c > maxCol {
			maxCol = c
		}
	}
	return minRow, minCol, maxRow, maxCol, !first
}

type definedNameRecord struct {
	name      string
	refersTo  string
	sheetScope int // -1 for workbook scope
}

// workbookModel is the single owning structure (§3.3 "the workbook model
// exclusively owns all sheets, styles, strings, and metadata after load").
type workbookModel struct {
	sheets      []*sheet
	sheetByName map[string]int

	styles  *styleRegistry
	strings *sharedStringTable
	theme   *Theme

	definedNames []definedNameRecord

	date1904 bool

	stylesDirty    bool
	workbookDirty  bool // sheet list / defined names changed

	warnings []string
}

func newWorkbookModel() *workbookModel {
	return &workbookModel{
		sheetByName: map[string]int{},
		styles:      newStyleRegistry(),
		strings:     newSharedStringTable(),
		theme:       defaultTheme(),
	}
}

func (m *workbookModel) warn(msg string) {
	m.warnings = append(m.warnings, msg)
}

// AddSheet implements C4's add_sheet(name) -> sheet-index.
func (m *workbookModel) AddSheet(name string) (int, error) {
	if _, exists := m.sheetByName[name]; exists {
		return 0, fmt.Errorf("%w: sheet %q already exists", ErrBadCellReference, name)
	}
	idx := len(m.sheets)
	m.sheets = append(m.sheets, newSheet(name, idx))
	m.sheetByName[name] = idx
	m.workbookDirty = true
	return idx, nil
}

func (m *workbookModel) SheetNames() []string {
	out := make([]string, len(m.sheets))
	for i, s := range m.sheets {
		out[i] = s.name
	}
	return out
}

func (m *workbookModel) SheetByName(name string) (*sheet, error) {
	idx, ok := m.sheetByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return m.sheets[idx], nil
}

// DuplicateSheet clones src's cells, styles references and Tier-2 metadata
// into a brand-new sheet named dst. Supplemented beyond spec.md (see
// SPEC_FULL.md §4): a routine openpyxl/excelize capability that falls
// directly out of C4's existing operations and exercises the deepcopy
// wiring so callers can't mutate the original sheet's merges/validations
// through an aliased slice.
func (m *workbookModel) DuplicateSheet(src, dst string) error {
	srcSheet, err := m.SheetByName(src)
	if err != nil {
		return err
	}
	if _, exists := m.sheetByName[dst]; exists {
		return fmt.Errorf("%w: sheet %q already exists", ErrBadCellReference, dst)
	}
	idx := len(m.sheets)
	clone := deepcopy.Copy(srcSheet).(*sheet)
	clone.name = dst
	clone.index = idx
	clone.fullyDirty = true
	clone.dirtyCells = map[[2]int]bool{}
	m.sheets = append(m.sheets, clone)
	m.sheetByName[dst] = idx
	m.workbookDirty = true
	return nil
}

// CellSet implements C4's cell_set; a nil style leaves the cell's existing
// style id (0 for a brand-new cell).
func (s *sheet) CellSet(row, col int, v CellValue, styleID *int) {
	key := [2]int{row, col}
	c, ok := s.cells[key]
	if !ok {
		c = &cell{}
		s.cells[key] = c
	}
	c.value = v
	if styleID != nil {
		c.styleID = *styleID
	}
	s.markCellDirty(row, col)
}

// CellGet implements C4's cell_get, returning a blank CellValue for an
// absent cell rather than an error (§4.4).
func (s *sheet) CellGet(row, col int) (CellValue, int) {
	c, ok := s.cells[[2]int{row, col}]
	if !ok {
		return CellValue{Type: CellBlank}, 0
	}
	return c.value, c.styleID
}

// MergeAdd implements C4's merge_add, enforcing P5's non-overlap
// invariant.
func (s *sheet) MergeAdd(minRow, minCol, maxRow, maxCol int) error {
	nr := mergeRange{minRow, minCol, maxRow, maxCol}
	for _, existing := range s.merges {
		if rangesOverlap(existing, nr) {
			return fmt.Errorf("%w: merge range overlaps an existing merge", ErrBadCellReference)
		}
	}
	s.merges = append(s.merges, nr)
	s.fullyDirty = true
	return nil
}

func rangesOverlap(a, b mergeRange) bool {
	return a.minRow <= b.maxRow && b.minRow <= a.maxRow &&
		a.minCol <= b.maxCol && b.minCol <= a.maxCol
}

func (m *workbookModel) NameAdd(name, refersTo string, sheetScope int) {
	m.definedNames = append(m.definedNames, definedNameRecord{name: name, refersTo: refersTo, sheetScope: sheetScope})
	m.workbookDirty = true
}

func (s *sheet) TableAdd(t tableDef) {
	s.tables = append(s.tables, t)
	s.fullyDirty = true
}

func (s *sheet) ValidationAdd(v dataValidationRecord) {
	s.validations = append(s.validations, v)
	s.fullyDirty = true
}

func (s *sheet) ConditionalAdd(c conditionalRule) {
	s.conditionals = append(s.conditionals, c)
	s.fullyDirty = true
}

func (s *sheet) HyperlinkAdd(h hyperlinkRecord) {
	s.hyperlinks = append(s.hyperlinks, h)
	s.fullyDirty = true
}

func (s *sheet) CommentAdd(c commentRecord) {
	s.comments = append(s.comments, c)
	s.fullyDirty = true
}

func (s *sheet) FreezeSet(f freezePane) {
	s.freeze = &f
	s.fullyDirty = true
}

func (m *workbookModel) MarkStylesDirty() { m.stylesDirty = true }
