// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.
//
// Package xlengine providing a set of functions that allow you to write to
// and read from XLSX files. Supports reading and writing spreadsheet
// documents generated by Microsoft Excel(TM) 2007 and later, preserving
// style and Tier-2 metadata fidelity across read, write and surgical
// modify operations.
package xlengine

import "fmt"

// Sentinel errors surfaced to callers. These are the taxonomy kinds from
// the design: package-level failures are fatal at load, API-misuse errors
// are always surfaced, I/O errors carry an underlying cause.
var (
	// ErrInvalidPackage is returned when the opened file is not a well
	// formed ZIP container, or a required part is missing.
	ErrInvalidPackage = fmt.Errorf("xlengine: invalid package")

	// ErrUnsupportedFeature is returned for parts or encodings the engine
	// recognizes but deliberately does not implement (encrypted packages,
	// legacy binary formats, and so on).
	ErrUnsupportedFeature = fmt.Errorf("xlengine: unsupported feature")

	// ErrReadOnlyWorkbook is returned when a mutator is called on a
	// workbook opened in read-only mode.
	ErrReadOnlyWorkbook = fmt.Errorf("xlengine: workbook is read-only")

	// ErrWorkbookAlreadySaved is returned when Save is called a second
	// time on the same instance.
	ErrWorkbookAlreadySaved = fmt.Errorf("xlengine: workbook already saved")

	// ErrSheetNotFound is returned by sheet lookups for an unknown name.
	ErrSheetNotFound = fmt.Errorf("xlengine: sheet not found")

	// ErrBadCellReference is returned for a malformed A1-style reference
	// or range, or for an operation that would violate a structural
	// invariant (e.g. an overlapping merge).
	ErrBadCellReference = fmt.Errorf("xlengine: bad cell reference")
)

// CorruptPartError reports a part that failed to parse; the caller can
// recover the offending part name via Name.
type CorruptPartError struct {
	Name string
	Err  error
}

func (e *CorruptPartError) Error() string {
	return fmt.Sprintf("xlengine: corrupt part %q: %v", e.Name, e.Err)
}

func (e *CorruptPartError) Unwrap() error { return e.Err }

func newCorruptPart(name string, err error) error {
	return &CorruptPartError{Name: name, Err: err}
}

// IoError reports a failure from the underlying filesystem during save.
// The destination path may be left in a partially written state; callers
// are responsible for removing it.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("xlengine: io error during %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

func newIoError(op, path string, err error) error {
	return &IoError{Op: op, Path: path, Err: err}
}

// UnsupportedFeatureError carries a human description of the feature that
// triggered ErrUnsupportedFeature, so callers matching on errors.Is still
// get a useful message.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("xlengine: unsupported feature: %s", e.Feature)
}

func (e *UnsupportedFeatureError) Unwrap() error { return ErrUnsupportedFeature }

func newUnsupportedFeature(feature string) error {
	return &UnsupportedFeatureError{Feature: feature}
}
