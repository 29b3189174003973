// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Mode is the workbook's access mode, fixed for the lifetime of a Workbook
// instance (§4.5.1's state machine: READ_ONLY and WRITE_ONLY never leave
// their state; MODIFY transitions once, to WRITTEN, on a successful Save).
type Mode int

const (
	ReadOnly Mode = iota
	WriteOnly
	Modify
	written // internal-only: a Modify workbook after Save has succeeded
)

// Workbook is the facade's root handle (C5). It owns the in-memory model
// exclusively; the originating Package, if any, is kept only so Save can
// pass through untouched parts byte-for-byte.
type Workbook struct {
	model *workbookModel
	mode  Mode
	pkg   *Package   // non-nil for Modify (and Open, until GC'd)
	aux   *loadedAux // part-name bookkeeping, non-nil for Modify
}

// loadedAux records where each sheet/table/comments part lives in the
// source package, so a surgical save can re-derive the same paths for
// untouched content and mint new ones only for what's new.
type loadedAux struct {
	sheetParts []string // xl/worksheets/sheetN.xml, by sheet index
	stylesPart string
	themePart  string
	sstPart    string
}

// Open loads path in READ_ONLY mode: mutators on the returned Workbook
// return ErrReadOnlyWorkbook, and Save is unavailable.
func Open(path string) (*Workbook, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newIoError("open", path, err)
	}
	return OpenReader(bytes.NewReader(raw), ReadOnly)
}

// OpenForModify loads path in MODIFY mode: the source package is retained
// so Save can re-emit unchanged parts byte-identically (P3).
func OpenForModify(path string) (*Workbook, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newIoError("open", path, err)
	}
	return OpenReader(bytes.NewReader(raw), Modify)
}

// OpenReader is the shared entry point behind Open/OpenForModify: it loads
// an .xlsx from an io.Reader in the given mode. mode must be ReadOnly or
// Modify; NewFile is the only way to obtain a WriteOnly workbook.
func OpenReader(r io.Reader, mode Mode) (*Workbook, error) {
	if mode != ReadOnly && mode != Modify {
		return nil, fmt.Errorf("xlengine: OpenReader mode must be ReadOnly or Modify")
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, newIoError("read", "", err)
	}
	if looksLikeCFB(raw) {
		_, encErr := DetectEncryption(raw)
		return nil, encErr
	}
	pkg, err := openPackage(raw)
	if err != nil {
		return nil, err
	}
	model, aux, err := loadWorkbook(pkg)
	if err != nil {
		return nil, err
	}
	wb := &Workbook{model: model, mode: mode}
	if mode == Modify {
		wb.pkg = pkg
		wb.aux = aux
	}
	return wb, nil
}

// NewFile returns a WRITE_ONLY workbook containing a single sheet named
// "Sheet1" (Excel's own default), per §4.5.1.
func NewFile() *Workbook {
	m := newWorkbookModel()
	m.AddSheet("Sheet1")
	return &Workbook{model: m, mode: WriteOnly}
}

// Mode reports the workbook's access mode.
func (wb *Workbook) Mode() Mode { return wb.mode }

// Warnings returns non-fatal notices accumulated while loading or mutating
// the workbook (malformed-but-recoverable parts, skipped rows, and so on;
// §7 category 3 "malformed but recoverable").
func (wb *Workbook) Warnings() []string { return wb.model.warnings }

func (wb *Workbook) checkMutable() error {
	if wb.mode == ReadOnly {
		return ErrReadOnlyWorkbook
	}
	if wb.mode == written {
		return ErrWorkbookAlreadySaved
	}
	return nil
}

// ---- loading ----

// loadWorkbook decodes every part of pkg into a fresh workbookModel. It is
// the C2-to-C4 boundary: after this returns, the model holds everything
// the facade needs and pkg is touched again only by a Modify-mode Save.
func loadWorkbook(pkg *Package) (*workbookModel, *loadedAux, error) {
	wbRaw, err := pkg.Read("xl/workbook.xml")
	if err != nil {
		return nil, nil, err
	}
	decoded, err := decodeWorkbook(wbRaw)
	if err != nil {
		return nil, nil, err
	}

	wbRels, err := readRelsOrEmpty(pkg, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return nil, nil, err
	}

	m := newWorkbookModel()
	m.date1904 = decoded.date1904

	aux := &loadedAux{}

	if themeTarget, ok := firstByType(wbRels, relTypeTheme); ok {
		path := resolveTarget("xl/workbook.xml", themeTarget)
		aux.themePart = path
		if pkg.Has(path) {
			raw, err := pkg.Read(path)
			if err != nil {
				return nil, nil, err
			}
			theme, err := decodeTheme(raw)
			if err != nil {
				m.warn(fmt.Sprintf("theme: %v", err))
			} else {
				m.theme = theme
			}
		}
	}

	stylesPath := "xl/styles.xml"
	if p, ok := firstByType(wbRels, relTypeStyles); ok {
		stylesPath = resolveTarget("xl/workbook.xml", p)
	}
	aux.stylesPart = stylesPath
	if pkg.Has(stylesPath) {
		raw, err := pkg.Read(stylesPath)
		if err != nil {
			return nil, nil, err
		}
		reg, err := decodeStyles(raw, m.theme)
		if err != nil {
			return nil, nil, err
		}
		m.styles = reg
	}

	sstPath := "xl/sharedStrings.xml"
	if p, ok := firstByType(wbRels, relTypeSharedStrings); ok {
		sstPath = resolveTarget("xl/workbook.xml", p)
	}
	aux.sstPart = sstPath
	if pkg.Has(sstPath) {
		raw, err := pkg.Read(sstPath)
		if err != nil {
			return nil, nil, err
		}
		strs, err := decodeSharedStrings(raw)
		if err != nil {
			return nil, nil, err
		}
		m.strings = strs
	}

	for _, ref := range decoded.sheets {
		target, ok := wbRels.target(ref.rID)
		if !ok {
			m.warn(fmt.Sprintf("sheet %q: unresolved relationship id %q, skipped", ref.name, ref.rID))
			continue
		}
		sheetPath := resolveTarget("xl/workbook.xml", target)
		raw, err := pkg.Read(sheetPath)
		if err != nil {
			return nil, nil, err
		}

		idx, addErr := m.AddSheet(ref.name)
		if addErr != nil {
			return nil, nil, addErr
		}
		s := m.sheets[idx]

		sheetRelsPath := relsPathFor(sheetPath)
		sheetRels, err := readRelsOrEmpty(pkg, sheetRelsPath)
		if err != nil {
			return nil, nil, err
		}

		if err := decodeWorksheet(raw, s, m.strings, m.date1904, m.styles, sheetRels); err != nil {
			return nil, nil, err
		}

		for _, rel := range sheetRels.byType(relTypeTable) {
			tablePath := resolveTarget(sheetPath, rel.Target)
			if !pkg.Has(tablePath) {
				continue
			}
			tRaw, err := pkg.Read(tablePath)
			if err != nil {
				return nil, nil, err
			}
			t, err := decodeTable(tRaw)
			if err != nil {
				m.warn(fmt.Sprintf("sheet %q: %v", ref.name, err))
				continue
			}
			s.tables = append(s.tables, t)
		}

		if crel, ok := firstByType(sheetRels, relTypeComments); ok {
			cPath := resolveTarget(sheetPath, crel)
			if pkg.Has(cPath) {
				cRaw, err := pkg.Read(cPath)
				if err != nil {
					return nil, nil, err
				}
				if err := decodeComments(cRaw, s); err != nil {
					m.warn(fmt.Sprintf("sheet %q: %v", ref.name, err))
				}
			}
		}

		if drel, ok := firstByType(sheetRels, relTypeDrawing); ok {
			drawingPath := resolveTarget(sheetPath, drel)
			if pkg.Has(drawingPath) {
				s.drawingPath = drawingPath
				if err := decodeDrawing(pkg, drawingPath, s, m); err != nil {
					m.warn(fmt.Sprintf("sheet %q: %v", ref.name, err))
				}
			}
		}

		aux.sheetParts = append(aux.sheetParts, sheetPath)
	}

	m.definedNames = decoded.names
	m.styles.rebuildDedup()

	return m, aux, nil
}

func readRelsOrEmpty(pkg *Package, path string) (*relTable, error) {
	if !pkg.Has(path) {
		return &relTable{byID: map[string]xlsxRelationship{}}, nil
	}
	raw, err := pkg.Read(path)
	if err != nil {
		return nil, err
	}
	return decodeRels(raw)
}

func firstByType(t *relTable, typ string) (string, bool) {
	rels := t.byType(typ)
	if len(rels) == 0 {
		return "", false
	}
	return rels[0].Target, true
}
