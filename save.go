// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"fmt"
	"io"
	"os"
)

// Save writes the workbook to path. For a MODIFY workbook this is the
// surgical save of §4.5.4: unchanged sheets and the styles/shared-strings
// parts are streamed through byte-identical (P3); only what's dirty is
// re-encoded. A WRITE_ONLY workbook always emits every part fresh. Save on
// a READ_ONLY workbook, or a second Save on the same MODIFY instance,
// fails without touching path.
func (wb *Workbook) Save(path string) error {
	if err := wb.checkMutable(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return newIoError("create", path, err)
	}
	if err := wb.SaveTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return newIoError("close", path, err)
	}
	if wb.mode == Modify {
		wb.mode = written
	}
	return nil
}

// SaveTo writes the workbook to an arbitrary io.Writer, applying the same
// mode rules as Save. It does not itself flip MODIFY to WRITTEN; callers
// driving SaveTo directly (tests, in-memory round-trips) own that.
func (wb *Workbook) SaveTo(w io.Writer) error {
	if err := wb.checkMutable(); err != nil {
		return err
	}
	if wb.mode == Modify {
		return wb.saveModify(w)
	}
	return wb.saveFresh(w)
}

// sheetPartPath returns the worksheet part path for sheet index idx,
// reusing the original path if idx existed in the loaded package and
// minting the conventional one for a sheet added since.
func (wb *Workbook) sheetPartPath(idx int) string {
	if wb.aux != nil && idx < len(wb.aux.sheetParts) {
		return wb.aux.sheetParts[idx]
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", idx+1)
}

// buildWorkbookRels assigns one rId per sheet plus styles/sharedStrings/
// theme, in that fixed order, and returns both the per-sheet rId slice and
// the encoded workbook.xml.rels bytes.
func buildWorkbookRels(m *workbookModel, sheetParts []string, sstNonEmpty, themePresent bool) ([]string, []byte, error) {
	sheetRIDs := make([]string, len(m.sheets))
	var rels []xlsxRelationship
	next := 1
	for i, path := range sheetParts {
		rid := fmt.Sprintf("rId%d", next)
		next++
		sheetRIDs[i] = rid
		rels = append(rels, xlsxRelationship{ID: rid, Type: relTypeWorksheet, Target: "worksheets/" + base(path)})
	}
	stylesRID := fmt.Sprintf("rId%d", next)
	next++
	rels = append(rels, xlsxRelationship{ID: stylesRID, Type: relTypeStyles, Target: "styles.xml"})
	if sstNonEmpty {
		rid := fmt.Sprintf("rId%d", next)
		next++
		rels = append(rels, xlsxRelationship{ID: rid, Type: relTypeSharedStrings, Target: "sharedStrings.xml"})
	}
	if themePresent {
		rid := fmt.Sprintf("rId%d", next)
		next++
		rels = append(rels, xlsxRelationship{ID: rid, Type: relTypeTheme, Target: "theme/theme1.xml"})
	}
	buf, err := encodeRels(rels)
	if err != nil {
		return nil, nil, err
	}
	return sheetRIDs, buf, nil
}

func base(partPath string) string {
	for i := len(partPath) - 1; i >= 0; i-- {
		if partPath[i] == '/' {
			return partPath[i+1:]
		}
	}
	return partPath
}

// encodeSheetBundle encodes one sheet's worksheet part, its rels part (nil
// if it needs none), and its table/comment parts, returning every (name,
// bytes) pair to write.
func encodeSheetBundle(s *sheet, sheetPath string, reg *styleRegistry) (map[string][]byte, error) {
	out := map[string][]byte{}

	externalLinks := 0
	for _, hl := range s.hyperlinks {
		if !hl.isInternal {
			externalLinks++
		}
	}
	tableRIDs := make([]string, len(s.tables))
	tableFiles := make([]string, len(s.tables))
	for i := range s.tables {
		tableRIDs[i] = fmt.Sprintf("rId%d", externalLinks+i+1)
		tableFiles[i] = fmt.Sprintf("table%d_%d.xml", s.index+1, i+1)
	}

	nextRID := externalLinks + len(s.tables) + 1
	drawingRID := ""
	if s.drawingPath != "" {
		drawingRID = fmt.Sprintf("rId%d", nextRID)
		nextRID++
	}

	buf, wsRels, err := encodeWorksheet(s, reg, tableRIDs, tableFiles, drawingRID)
	if err != nil {
		return nil, err
	}
	out[sheetPath] = buf

	for i, t := range s.tables {
		tp := "xl/tables/" + tableFiles[i]
		tbuf, err := encodeTable(t, i+1)
		if err != nil {
			return nil, err
		}
		out[tp] = tbuf
	}

	if cbuf, err := encodeComments(s); err != nil {
		return nil, err
	} else if cbuf != nil {
		cp := fmt.Sprintf("xl/comments%d.xml", s.index+1)
		out[cp] = cbuf
		wsRels = append(wsRels, xlsxRelationship{ID: fmt.Sprintf("rId%d", nextRID), Type: relTypeComments, Target: "../" + base(cp)})
	}

	if len(wsRels) > 0 {
		relBuf, err := encodeRels(wsRels)
		if err != nil {
			return nil, err
		}
		out[relsPathFor(sheetPath)] = relBuf
	}
	return out, nil
}

// saveFresh emits every part of a brand-new package; used for WRITE_ONLY
// workbooks, which have no source bytes to pass through.
func (wb *Workbook) saveFresh(w io.Writer) error {
	m := wb.model
	parts := map[string][]byte{}

	sheetPaths := make([]string, len(m.sheets))
	for i, s := range m.sheets {
		sheetPaths[i] = fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)
		bundle, err := encodeSheetBundle(s, sheetPaths[i], m.styles)
		if err != nil {
			return err
		}
		for name, buf := range bundle {
			parts[name] = buf
		}
	}

	sstNonEmpty := len(m.strings.strings) > 0
	sheetRIDs, wbRelsBuf, err := buildWorkbookRels(m, sheetPaths, sstNonEmpty, true)
	if err != nil {
		return err
	}
	parts["xl/_rels/workbook.xml.rels"] = wbRelsBuf

	wbBuf, err := encodeWorkbook(m, sheetRIDs)
	if err != nil {
		return err
	}
	parts["xl/workbook.xml"] = wbBuf

	stylesBuf, err := encodeStyles(m.styles)
	if err != nil {
		return err
	}
	parts["xl/styles.xml"] = stylesBuf

	if sstNonEmpty {
		sstBuf, err := encodeSharedStrings(m.strings)
		if err != nil {
			return err
		}
		parts["xl/sharedStrings.xml"] = sstBuf
	}

	parts["xl/theme/theme1.xml"] = encodeDefaultThemeXML(m.theme)
	parts["docProps/core.xml"] = minimalCoreProps()
	parts["docProps/app.xml"] = minimalAppProps()

	rootRelsBuf, err := encodeRootRels()
	if err != nil {
		return err
	}
	parts["_rels/.rels"] = rootRelsBuf

	names := make([]string, 0, len(parts)+1)
	for name := range parts {
		names = append(names, name)
	}
	ctBuf, err := encodeContentTypes(names)
	if err != nil {
		return err
	}
	parts["[Content_Types].xml"] = ctBuf
	names = append(names, "[Content_Types].xml")

	return writeParts(w, orderedNames(names), parts, nil)
}

// saveModify performs the surgical patch: dirty sheets and dirty styles
// are re-encoded; everything else streams through from the source package
// unchanged (P3). Workbook topology (sheet list, defined names) is
// re-derived whenever m.workbookDirty is set, which also forces
// workbook.xml.rels and [Content_Types].xml to be rebuilt since the part
// set may have grown.
func (wb *Workbook) saveModify(w io.Writer) error {
	m := wb.model
	pkg := wb.pkg
	aux := wb.aux
	fresh := map[string][]byte{}

	sheetPaths := make([]string, len(m.sheets))
	for i, s := range m.sheets {
		sheetPaths[i] = wb.sheetPartPath(i)
		isNew := i >= len(aux.sheetParts)
		if isNew || s.isDirty() {
			bundle, err := encodeSheetBundle(s, sheetPaths[i], m.styles)
			if err != nil {
				return err
			}
			for name, buf := range bundle {
				fresh[name] = buf
			}
		}
	}

	sstNonEmpty := len(m.strings.strings) > 0 || pkg.Has(aux.sstPart)
	themePresent := aux.themePart != "" && pkg.Has(aux.themePart)

	if m.workbookDirty {
		sheetRIDs, wbRelsBuf, err := buildWorkbookRels(m, sheetPaths, sstNonEmpty, true)
		if err != nil {
			return err
		}
		fresh["xl/_rels/workbook.xml.rels"] = wbRelsBuf
		wbBuf, err := encodeWorkbook(m, sheetRIDs)
		if err != nil {
			return err
		}
		fresh["xl/workbook.xml"] = wbBuf
	}

	if m.styles.dirty {
		stylesBuf, err := encodeStyles(m.styles)
		if err != nil {
			return err
		}
		fresh[ifEmpty(aux.stylesPart, "xl/styles.xml")] = stylesBuf
	}

	// Shared strings are never rewritten in modify mode (§4.5.4): new or
	// changed cell text is always emitted inline instead of re-indexed.

	finalNames := map[string]bool{}
	for _, n := range pkg.Names() {
		finalNames[n] = true
	}
	for n := range fresh {
		finalNames[n] = true
	}
	if m.workbookDirty {
		// the part set may have grown (new sheets/tables); [Content_Types].xml
		// must be rebuilt to declare them.
		names := make([]string, 0, len(finalNames))
		for n := range finalNames {
			names = append(names, n)
		}
		ctBuf, err := encodeContentTypes(names)
		if err != nil {
			return err
		}
		fresh["[Content_Types].xml"] = ctBuf
	}

	ordered := make([]string, 0, len(finalNames))
	for n := range finalNames {
		ordered = append(ordered, n)
	}
	return writeParts(w, orderedNames(ordered), fresh, pkg)
}

func ifEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// writeParts drives a packageWriter over names in order: anything present
// in fresh is written fresh, everything else is streamed raw from src
// (nil src means every name must be in fresh, i.e. a from-scratch save).
func writeParts(w io.Writer, names []string, fresh map[string][]byte, src *Package) error {
	pw := newPackageWriter(w)
	for _, name := range names {
		if buf, ok := fresh[name]; ok {
			if err := pw.WritePart(name, buf); err != nil {
				return err
			}
			continue
		}
		if src == nil {
			return fmt.Errorf("xlengine: missing part %q in fresh save", name)
		}
		if err := pw.CopyRaw(src, name); err != nil {
			return err
		}
	}
	return pw.Close()
}

// encodeDefaultThemeXML re-serializes a resolved Theme back to a minimal
// theme1.xml. Only used by saveFresh (WRITE_ONLY has no source theme part
// to pass through); modify mode always keeps the original theme bytes.
func encodeDefaultThemeXML(t *Theme) []byte {
	names := []string{"dk1", "lt1", "dk2", "lt2", "accent1", "accent2", "accent3", "accent4", "accent5", "accent6", "hlink", "folHlink"}
	var b []byte
	b = append(b, []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n")...)
	b = append(b, []byte(`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office"><a:themeElements><a:clrScheme name="Office">`)...)
	for i, n := range names {
		hex := t.colors[i]
		if hex == "" {
			hex = "000000"
		}
		b = append(b, []byte(fmt.Sprintf(`<a:%s><a:srgbClr val="%s"/></a:%s>`, n, hex, n))...)
	}
	b = append(b, []byte(`</a:clrScheme></a:themeElements></a:theme>`)...)
	return b
}
