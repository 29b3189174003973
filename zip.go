// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlengine

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"
	"time"
)

// entryMeta is the manifest record for one ZIP entry: everything Package
// I/O needs to either decompress it or stream its compressed bytes through
// unmodified.
type entryMeta struct {
	name             string
	method           uint16
	crc32            uint32
	compressedSize   uint64
	uncompressedSize uint64
	modified         zip.Header
}

// Package is the ZIP container abstraction from the design's Package I/O
// component (C1). It is opened once for read at load time and released
// when the owning Workbook is closed.
type Package struct {
	zr      *zip.Reader
	entries map[string]*zip.File
	order   []string // original ZIP order, needed for modify-mode re-emission
}

// openPackage parses the central directory of raw into a Package. It does
// not decompress any entry; that happens on demand via Read/Copy.
func openPackage(raw []byte) (*Package, error) {
	if len(raw) < 4 || !(bytes.HasPrefix(raw, []byte("PK\x03\x04")) || bytes.HasPrefix(raw, []byte("PK\x05\x06"))) {
		if looksLikeCFB(raw) {
			return nil, newUnsupportedFeature("encrypted workbook (OLE2/CFB container)")
		}
		return nil, ErrInvalidPackage
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, ErrInvalidPackage
	}
	p := &Package{zr: zr, entries: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.entries[f.Name] = f
		p.order = append(p.order, f.Name)
	}
	if _, ok := p.entries["xl/workbook.xml"]; !ok {
		return nil, ErrInvalidPackage
	}
	return p, nil
}

// Has reports whether the named part exists in the package.
func (p *Package) Has(name string) bool {
	_, ok := p.entries[name]
	return ok
}

// Read decompresses and returns the full contents of the named part.
func (p *Package) Read(name string) ([]byte, error) {
	f, ok := p.entries[name]
	if !ok {
		return nil, newCorruptPart(name, ErrSheetNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, newCorruptPart(name, err)
	}
	defer rc.Close()
	buf, err := io.ReadAll(rc)
	if err != nil {
		return nil, newCorruptPart(name, err)
	}
	return buf, nil
}

// Names returns every part name in original package order.
func (p *Package) Names() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// packageWriter assembles a new .xlsx ZIP. Entries are written in the
// deterministic order the design requires: [Content_Types].xml first, then
// rels, workbook, sharedStrings, styles, sheets by index, tables, drawings,
// media, docProps, with everything else (modify-mode pass-through) kept in
// source order relative to those anchors.
type packageWriter struct {
	zw *zip.Writer
}

func newPackageWriter(w io.Writer) *packageWriter {
	return &packageWriter{zw: zip.NewWriter(w)}
}

// WritePart DEFLATEs buf and stores it under name. Used for every freshly
// (re-)encoded XML part.
func (pw *packageWriter) WritePart(name string, buf []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	hdr.SetModTime(epoch)
	w, err := pw.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// CopyRaw streams src's entry e through byte-identical (same CRC, same
// compressed length, same compression method) without touching its
// payload. This is the mechanism behind P3: untouched modify-mode parts
// keep their original stored bytes.
func (pw *packageWriter) CopyRaw(src *Package, name string) error {
	f, ok := src.entries[name]
	if !ok {
		return newCorruptPart(name, ErrSheetNotFound)
	}
	rc, err := f.OpenRaw()
	if err != nil {
		return newCorruptPart(name, err)
	}
	hdr := f.FileHeader
	w, err := pw.zw.CreateRaw(&hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, rc)
	return err
}

func (pw *packageWriter) Close() error { return pw.zw.Close() }

// partOrder ranks a part name for deterministic emission order; lower
// sorts first. Parts not matched by a rule keep their relative source
// order (stable sort), which is what keeps modify-mode pass-through parts
// exactly where the source ZIP had them.
func partOrder(name string) int {
	switch {
	case name == "[Content_Types].xml":
		return 0
	case hasPrefixAny(name, "_rels/", "xl/_rels/", "xl/worksheets/_rels/"):
		return 1
	case name == "xl/workbook.xml":
		return 2
	case name == "xl/sharedStrings.xml":
		return 3
	case name == "xl/styles.xml":
		return 4
	case hasPrefixAny(name, "xl/worksheets/"):
		return 5
	case hasPrefixAny(name, "xl/tables/"):
		return 6
	case hasPrefixAny(name, "xl/drawings/"):
		return 7
	case hasPrefixAny(name, "xl/media/"):
		return 8
	case hasPrefixAny(name, "docProps/"):
		return 9
	default:
		return 10
	}
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

// orderedNames sorts names by partOrder, stable within each bucket so
// original package order is preserved among siblings (e.g. sheet1.xml
// before sheet2.xml as long as the source enumerated them that way).
func orderedNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.SliceStable(out, func(i, j int) bool {
		return partOrder(out[i]) < partOrder(out[j])
	})
	return out
}

// epoch is the fixed modification time stamped on freshly encoded parts so
// that two saves of logically identical content produce byte-identical
// ZIPs (useful for golden-file tests); it carries no real meaning.
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
